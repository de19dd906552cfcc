package service

import (
	"errors"
	"time"

	"github.com/Devliang24/tapb/internal/model"
	"gorm.io/gorm"
)

type BugService struct {
	db     *gorm.DB
	access *AccessService
}

func NewBugService(db *gorm.DB, access *AccessService) *BugService {
	return &BugService{db: db, access: access}
}

type BugCreate struct {
	Title         string
	Description   string
	Priority      model.BugPriority
	Severity      model.BugSeverity
	Environment   *model.BugEnvironment
	DefectCause   *model.BugCause
	SprintID      *uint
	RequirementID *uint
	TaskID        *uint
	TestCaseID    *uint
	AssigneeID    *uint
}

func (s *BugService) Create(projectID uint, in BugCreate, actorID uint) (*model.Bug, error) {
	if _, err := s.access.CheckProjectAccess(projectID, actorID); err != nil {
		return nil, err
	}
	if err := s.validateLinks(projectID, in.SprintID, in.RequirementID, in.TaskID, in.TestCaseID); err != nil {
		return nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = model.BugPriorityMedium
	}
	severity := in.Severity
	if severity == "" {
		severity = model.SeverityMajor
	}
	bug := &model.Bug{
		ProjectID:     projectID,
		SprintID:      in.SprintID,
		RequirementID: in.RequirementID,
		TaskID:        in.TaskID,
		TestCaseID:    in.TestCaseID,
		Title:         in.Title,
		Description:   in.Description,
		Status:        model.BugNew,
		Priority:      priority,
		Severity:      severity,
		Environment:   in.Environment,
		DefectCause:   in.DefectCause,
		CreatorID:     actorID,
		AssigneeID:    in.AssigneeID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(bug).Error; err != nil {
			return err
		}
		bug.Number = FormatNumber(PrefixBug, bug.ID)
		if err := tx.Model(bug).UpdateColumn("number", bug.Number).Error; err != nil {
			return err
		}
		// Creation is itself the first audit entry: status nil -> new.
		return tx.Create(&model.BugHistory{
			BugID:     bug.ID,
			Field:     "status",
			OldValue:  nil,
			NewValue:  Stringify(model.BugNew),
			ChangedBy: actorID,
			ChangedAt: time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(bug.ID, actorID)
}

func (s *BugService) Get(id, actorID uint) (*model.Bug, error) {
	bug, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(bug.ProjectID, actorID); err != nil {
		return nil, err
	}
	if err := s.db.Preload("Creator").Preload("Assignee").
		Preload("Sprint").Preload("Requirement").Preload("Task").
		First(bug, id).Error; err != nil {
		return nil, err
	}
	return bug, nil
}

type BugFilter struct {
	Status     string
	Priority   string
	Severity   string
	SprintID   *uint
	AssigneeID *uint
	Keyword    string
}

func (s *BugService) List(projectID uint, f BugFilter, page, pageSize int, actorID uint) ([]model.Bug, int64, error) {
	if _, err := s.access.CheckProjectAccess(projectID, actorID); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&model.Bug{}).Where("project_id = ?", projectID)
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		query = query.Where("priority = ?", f.Priority)
	}
	if f.Severity != "" {
		query = query.Where("severity = ?", f.Severity)
	}
	if f.SprintID != nil {
		query = query.Where("sprint_id = ?", *f.SprintID)
	}
	if f.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *f.AssigneeID)
	}
	if f.Keyword != "" {
		query = query.Where("title LIKE ? OR number LIKE ?", "%"+f.Keyword+"%", "%"+f.Keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bugs []model.Bug
	if err := query.Preload("Creator").Preload("Assignee").
		Order("updated_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&bugs).Error; err != nil {
		return nil, 0, err
	}
	return bugs, total, nil
}

type BugUpdate struct {
	Title         *string
	Description   *string
	Status        *model.BugStatus
	Priority      *model.BugPriority
	Severity      *model.BugSeverity
	Environment   *model.BugEnvironment
	DefectCause   *model.BugCause
	SprintID      *uint
	RequirementID *uint
	TaskID        *uint
	AssigneeID    *uint
}

func (s *BugService) Update(id uint, in BugUpdate, actorID uint) (*model.Bug, error) {
	bug, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(bug.ProjectID, actorID); err != nil {
		return nil, err
	}
	if err := s.validateLinks(bug.ProjectID, in.SprintID, in.RequirementID, in.TaskID, nil); err != nil {
		return nil, err
	}
	cs := NewChangeset()
	if in.Title != nil {
		cs.Set("title", bug.Title, *in.Title)
	}
	if in.Description != nil {
		cs.Set("description", bug.Description, *in.Description)
	}
	if in.Status != nil {
		cs.Set("status", bug.Status, *in.Status)
	}
	if in.Priority != nil {
		cs.Set("priority", bug.Priority, *in.Priority)
	}
	if in.Severity != nil {
		cs.Set("severity", bug.Severity, *in.Severity)
	}
	if in.Environment != nil {
		cs.Set("environment", bug.Environment, in.Environment)
	}
	if in.DefectCause != nil {
		cs.Set("defect_cause", bug.DefectCause, in.DefectCause)
	}
	// A zero link id clears the reference.
	if in.SprintID != nil {
		cs.Set("sprint_id", bug.SprintID, zeroToNil(in.SprintID))
	}
	if in.RequirementID != nil {
		cs.Set("requirement_id", bug.RequirementID, zeroToNil(in.RequirementID))
	}
	if in.TaskID != nil {
		cs.Set("task_id", bug.TaskID, zeroToNil(in.TaskID))
	}
	if in.AssigneeID != nil {
		cs.Set("assignee_id", bug.AssigneeID, in.AssigneeID)
	}

	if err := s.applyChanges(bug, cs, actorID); err != nil {
		return nil, err
	}
	return s.Get(id, actorID)
}

// UpdateStatus is the single-field fast path the board UI uses.
func (s *BugService) UpdateStatus(id uint, status model.BugStatus, actorID uint) (*model.Bug, error) {
	st := status
	return s.Update(id, BugUpdate{Status: &st}, actorID)
}

func (s *BugService) Assign(id uint, assigneeID *uint, actorID uint) (*model.Bug, error) {
	if assigneeID != nil {
		var user model.User
		if err := s.db.First(&user, *assigneeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NotFoundf("assignee not found")
			}
			return nil, err
		}
	}
	bug, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(bug.ProjectID, actorID); err != nil {
		return nil, err
	}
	cs := NewChangeset()
	cs.Set("assignee_id", bug.AssigneeID, assigneeID)
	if err := s.applyChanges(bug, cs, actorID); err != nil {
		return nil, err
	}
	return s.Get(id, actorID)
}

// BatchUpdateStatus applies the status item by item, skipping items the actor
// cannot access. Returns how many were updated.
func (s *BugService) BatchUpdateStatus(ids []uint, status model.BugStatus, actorID uint) (int, error) {
	if len(ids) == 0 {
		return 0, Validationf("no bug ids provided")
	}
	updated := 0
	for _, id := range ids {
		if _, err := s.UpdateStatus(id, status, actorID); err != nil {
			if _, ok := AsError(err); ok {
				continue
			}
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (s *BugService) BatchAssign(ids []uint, assigneeID *uint, actorID uint) (int, error) {
	if len(ids) == 0 {
		return 0, Validationf("no bug ids provided")
	}
	updated := 0
	for _, id := range ids {
		if _, err := s.Assign(id, assigneeID, actorID); err != nil {
			if _, ok := AsError(err); ok {
				continue
			}
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// BatchDelete is all-or-nothing: every bug must exist and the actor must be
// its creator or the project creator, otherwise nothing is deleted.
func (s *BugService) BatchDelete(ids []uint, actorID uint) error {
	if len(ids) == 0 {
		return Validationf("no bug ids provided")
	}
	var bugs []model.Bug
	if err := s.db.Where("id IN ?", ids).Find(&bugs).Error; err != nil {
		return err
	}
	if len(bugs) != len(ids) {
		return NotFoundf("some bugs not found")
	}
	for i := range bugs {
		project, err := s.access.CheckProjectAccess(bugs[i].ProjectID, actorID)
		if err != nil {
			return err
		}
		if bugs[i].CreatorID != actorID && project.CreatorID != actorID {
			return Forbiddenf("only bug creator or project creator can delete")
		}
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bug_id IN ?", ids).Delete(&model.BugComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bug_id IN ?", ids).Delete(&model.BugHistory{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&model.Bug{}).Error
	})
}

func (s *BugService) Delete(id, actorID uint) error {
	bug, err := s.find(id)
	if err != nil {
		return err
	}
	project, err := s.access.CheckProjectAccess(bug.ProjectID, actorID)
	if err != nil {
		return err
	}
	if bug.CreatorID != actorID && project.CreatorID != actorID {
		return Forbiddenf("only bug creator or project creator can delete")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bug_id = ?", id).Delete(&model.BugComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bug_id = ?", id).Delete(&model.BugHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Bug{}, id).Error
	})
}

func (s *BugService) History(id, actorID uint) ([]model.BugHistory, error) {
	bug, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(bug.ProjectID, actorID); err != nil {
		return nil, err
	}
	var history []model.BugHistory
	if err := s.db.Preload("User").Where("bug_id = ?", id).
		Order("changed_at desc, id desc").Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

func (s *BugService) applyChanges(bug *model.Bug, cs *Changeset, actorID uint) error {
	now := time.Now().UTC()
	return s.db.Transaction(func(tx *gorm.DB) error {
		return cs.Apply(tx, bug, func(ch FieldChange) interface{} {
			return &model.BugHistory{
				BugID:     bug.ID,
				Field:     ch.Field,
				OldValue:  ch.OldValue,
				NewValue:  ch.NewValue,
				ChangedBy: actorID,
				ChangedAt: now,
			}
		})
	})
}

// validateLinks checks that every provided reference exists and belongs to
// the same project. A zero id means "clear the link" and skips validation.
func (s *BugService) validateLinks(projectID uint, sprintID, requirementID, taskID, testCaseID *uint) error {
	if sprintID != nil && *sprintID != 0 {
		var sprint model.Sprint
		if err := s.db.First(&sprint, *sprintID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("sprint not found")
			}
			return err
		}
		if sprint.ProjectID != projectID {
			return Validationf("sprint must belong to the same project")
		}
	}
	if requirementID != nil && *requirementID != 0 {
		var requirement model.Requirement
		if err := s.db.First(&requirement, *requirementID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("requirement not found")
			}
			return err
		}
		if requirement.ProjectID != projectID {
			return Validationf("requirement must belong to the same project")
		}
	}
	if taskID != nil && *taskID != 0 {
		var task model.Task
		if err := s.db.Preload("Requirement").First(&task, *taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("task not found")
			}
			return err
		}
		if task.Requirement != nil && task.Requirement.ProjectID != projectID {
			return Validationf("task must belong to the same project")
		}
	}
	if testCaseID != nil && *testCaseID != 0 {
		var testCase model.TestCase
		if err := s.db.First(&testCase, *testCaseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("test case not found")
			}
			return err
		}
		if testCase.ProjectID != projectID {
			return Validationf("test case must belong to the same project")
		}
	}
	return nil
}

func zeroToNil(id *uint) *uint {
	if id != nil && *id == 0 {
		return nil
	}
	return id
}

func (s *BugService) find(id uint) (*model.Bug, error) {
	var bug model.Bug
	if err := s.db.First(&bug, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("bug not found")
		}
		return nil, err
	}
	return &bug, nil
}
