package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Devliang24/tapb/internal/model"
	"gorm.io/gorm"
)

// FieldChange is one field's old/new pair as written to a history table.
// Values are canonical strings; nil means the field was unset.
type FieldChange struct {
	Field    string
	OldValue *string
	NewValue *string
}

// Changeset compares a partial update against an entity's current values and
// keeps only the fields that actually change. Columns are mutated with their
// native values; history rows get the stringified old/new pair. A field whose
// new value equals the old one is dropped entirely: no history, no update.
type Changeset struct {
	updates map[string]interface{}
	changes []FieldChange
}

func NewChangeset() *Changeset {
	return &Changeset{updates: make(map[string]interface{})}
}

// Set records a mutation of the named column when oldValue and newValue differ
// after canonical stringification. newValue is stored as-is so enum and
// pointer fields keep their native type.
func (cs *Changeset) Set(field string, oldValue, newValue interface{}) {
	o := Stringify(oldValue)
	n := Stringify(newValue)
	if equalValue(o, n) {
		return
	}
	cs.changes = append(cs.changes, FieldChange{Field: field, OldValue: clipValue(o), NewValue: clipValue(n)})
	cs.updates[field] = newValue
}

// History value columns are varchar(255); long text fields are clipped, the
// equality check above still sees the full values.
const historyValueMax = 255

func clipValue(s *string) *string {
	if s == nil || len(*s) <= historyValueMax {
		return s
	}
	clipped := (*s)[:historyValueMax]
	return &clipped
}

func (cs *Changeset) Empty() bool { return len(cs.changes) == 0 }

func (cs *Changeset) Changes() []FieldChange { return cs.changes }

func (cs *Changeset) Updates() map[string]interface{} { return cs.updates }

// Apply writes the column updates and one history row per changed field.
// record builds the entity-specific history row for a change; the whole
// update is atomic within tx, so a failed history insert rolls back the
// field mutations with it.
func (cs *Changeset) Apply(tx *gorm.DB, entity interface{}, record func(FieldChange) interface{}) error {
	if cs.Empty() {
		return nil
	}
	if err := tx.Model(entity).Updates(cs.updates).Error; err != nil {
		return err
	}
	for _, ch := range cs.changes {
		if err := tx.Create(record(ch)).Error; err != nil {
			return err
		}
	}
	return nil
}

// Stringify converts a field value to its canonical history representation.
// Enum values use their storage string, not a display label; nil pointers
// become SQL NULL, never the string "nil". All history writers go through
// this one function so the representation cannot drift between call sites.
func Stringify(v interface{}) *string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return strPtr(x)
	case *string:
		if x == nil {
			return nil
		}
		return strPtr(*x)
	case uint:
		return strPtr(strconv.FormatUint(uint64(x), 10))
	case *uint:
		if x == nil {
			return nil
		}
		return strPtr(strconv.FormatUint(uint64(*x), 10))
	case int:
		return strPtr(strconv.Itoa(x))
	case time.Time:
		return strPtr(x.UTC().Format("2006-01-02"))
	case *time.Time:
		if x == nil {
			return nil
		}
		return strPtr(x.UTC().Format("2006-01-02"))
	case model.RequirementStatus:
		return strPtr(string(x))
	case model.RequirementPriority:
		return strPtr(string(x))
	case model.SprintStatus:
		return strPtr(string(x))
	case model.TaskStatus:
		return strPtr(string(x))
	case model.BugStatus:
		return strPtr(string(x))
	case model.BugPriority:
		return strPtr(string(x))
	case model.BugSeverity:
		return strPtr(string(x))
	case model.BugEnvironment:
		return strPtr(string(x))
	case *model.BugEnvironment:
		if x == nil {
			return nil
		}
		return strPtr(string(*x))
	case model.BugCause:
		return strPtr(string(x))
	case *model.BugCause:
		if x == nil {
			return nil
		}
		return strPtr(string(*x))
	case model.TestCaseType:
		return strPtr(string(x))
	case model.TestCaseStatus:
		return strPtr(string(x))
	default:
		return strPtr(fmt.Sprintf("%v", x))
	}
}

func strPtr(s string) *string { return &s }

func equalValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
