package service

import "fmt"

// Display-number prefixes. Each entity type owns a distinct prefix and ids are
// table-local auto-increments, so a formatted number is unique system-wide.
const (
	PrefixBug         = "B"
	PrefixRequirement = "R"
	PrefixTask        = "T"
	PrefixTestCase    = "TC"
	PrefixSprint      = "S"
)

// FormatNumber derives the display identifier from a storage-assigned primary
// key, e.g. FormatNumber(PrefixBug, 12) == "B12". The id must already be
// flushed to the database; the number is written once and never changes.
func FormatNumber(prefix string, id uint) string {
	return fmt.Sprintf("%s%d", prefix, id)
}
