package service

import (
	"errors"
	"time"

	"github.com/Devliang24/tapb/internal/model"
	"gorm.io/gorm"
)

type RequirementService struct {
	db     *gorm.DB
	access *AccessService
}

func NewRequirementService(db *gorm.DB, access *AccessService) *RequirementService {
	return &RequirementService{db: db, access: access}
}

type RequirementCreate struct {
	Title       string
	Description string
	Priority    model.RequirementPriority
	SprintID    *uint
	CategoryID  *uint
	AssigneeID  *uint
	StartDate   *time.Time
	EndDate     *time.Time
}

func (s *RequirementService) Create(projectID uint, in RequirementCreate, actorID uint) (*model.Requirement, error) {
	if _, err := s.access.CheckProjectAccess(projectID, actorID); err != nil {
		return nil, err
	}
	if in.SprintID != nil {
		if err := s.validateSprint(projectID, *in.SprintID); err != nil {
			return nil, err
		}
	}
	if in.CategoryID != nil {
		if err := s.validateCategory(projectID, *in.CategoryID); err != nil {
			return nil, err
		}
	}
	if in.AssigneeID != nil {
		if err := s.validateAssignee(*in.AssigneeID); err != nil {
			return nil, err
		}
	}

	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	requirement := &model.Requirement{
		ProjectID:   projectID,
		SprintID:    in.SprintID,
		CategoryID:  in.CategoryID,
		Title:       in.Title,
		Description: in.Description,
		Status:      model.RequirementDraft,
		Priority:    priority,
		CreatorID:   actorID,
		AssigneeID:  in.AssigneeID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(requirement).Error; err != nil {
			return err
		}
		requirement.Number = FormatNumber(PrefixRequirement, requirement.ID)
		return tx.Model(requirement).UpdateColumn("number", requirement.Number).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(requirement.ID, actorID)
}

func (s *RequirementService) Get(id, actorID uint) (*model.Requirement, error) {
	requirement, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(requirement.ProjectID, actorID); err != nil {
		return nil, err
	}
	if err := s.db.Preload("Creator").Preload("Assignee").Preload("Sprint").
		First(requirement, id).Error; err != nil {
		return nil, err
	}
	return requirement, nil
}

type RequirementFilter struct {
	Status     string
	Priority   string
	SprintID   *uint
	CategoryID *uint
	Keyword    string
}

func (s *RequirementService) List(projectID uint, f RequirementFilter, page, pageSize int, actorID uint) ([]model.Requirement, int64, error) {
	if _, err := s.access.CheckProjectAccess(projectID, actorID); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&model.Requirement{}).Where("project_id = ?", projectID)
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		query = query.Where("priority = ?", f.Priority)
	}
	if f.SprintID != nil {
		query = query.Where("sprint_id = ?", *f.SprintID)
	}
	if f.CategoryID != nil {
		query = query.Where("category_id = ?", *f.CategoryID)
	}
	if f.Keyword != "" {
		query = query.Where("title LIKE ? OR number LIKE ?", "%"+f.Keyword+"%", "%"+f.Keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Requirement
	if err := query.Preload("Creator").Preload("Assignee").Preload("Sprint").
		Order("updated_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

type RequirementUpdate struct {
	Title       *string
	Description *string
	Status      *model.RequirementStatus
	Priority    *model.RequirementPriority
	SprintID    *uint
	CategoryID  *uint
	AssigneeID  *uint
	StartDate   *time.Time
	EndDate     *time.Time
}

func (s *RequirementService) Update(id uint, in RequirementUpdate, actorID uint) (*model.Requirement, error) {
	requirement, err := s.find(id)
	if err != nil {
		return nil, err
	}
	project, err := s.access.CheckProjectAccess(requirement.ProjectID, actorID)
	if err != nil {
		return nil, err
	}
	if err := CheckRequirementPermission(requirement, project, actorID); err != nil {
		return nil, err
	}

	if in.Status != nil {
		if err := ValidateRequirementTransition(requirement.Status, *in.Status); err != nil {
			return nil, err
		}
	}
	// Completed requirements freeze their core fields even when the status
	// itself is untouched.
	if requirement.Status == model.RequirementCompleted {
		if in.Title != nil || in.Description != nil || in.Priority != nil {
			return nil, FrozenFieldf("cannot modify core fields of completed requirement")
		}
	}

	sprintSet := in.SprintID != nil
	sprintID := in.SprintID
	if sprintSet {
		if *sprintID == 0 {
			// 0 clears the sprint assignment.
			sprintID = nil
		} else if err := s.validateSprint(requirement.ProjectID, *sprintID); err != nil {
			return nil, err
		}
	}
	if in.CategoryID != nil && *in.CategoryID != 0 {
		if err := s.validateCategory(requirement.ProjectID, *in.CategoryID); err != nil {
			return nil, err
		}
	}
	if in.AssigneeID != nil {
		if err := s.validateAssignee(*in.AssigneeID); err != nil {
			return nil, err
		}
	}

	cs := NewChangeset()
	if in.Title != nil {
		cs.Set("title", requirement.Title, *in.Title)
	}
	if in.Description != nil {
		cs.Set("description", requirement.Description, *in.Description)
	}
	if in.Status != nil {
		cs.Set("status", requirement.Status, *in.Status)
	}
	if in.Priority != nil {
		cs.Set("priority", requirement.Priority, *in.Priority)
	}
	if sprintSet {
		cs.Set("sprint_id", requirement.SprintID, sprintID)
	}
	if in.CategoryID != nil {
		cs.Set("category_id", requirement.CategoryID, zeroToNil(in.CategoryID))
	}
	if in.AssigneeID != nil {
		cs.Set("assignee_id", requirement.AssigneeID, in.AssigneeID)
	}
	if in.StartDate != nil {
		cs.Set("start_date", requirement.StartDate, in.StartDate)
	}
	if in.EndDate != nil {
		cs.Set("end_date", requirement.EndDate, in.EndDate)
	}

	now := time.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return cs.Apply(tx, requirement, func(ch FieldChange) interface{} {
			return &model.RequirementHistory{
				RequirementID: requirement.ID,
				Field:         ch.Field,
				OldValue:      ch.OldValue,
				NewValue:      ch.NewValue,
				ChangedBy:     actorID,
				ChangedAt:     now,
			}
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id, actorID)
}

// Delete removes the requirement, its tasks (with their comments, history,
// and bug references), its comments and history. Bugs and test cases pointing
// at it survive with the reference nulled.
func (s *RequirementService) Delete(id, actorID uint) error {
	requirement, err := s.find(id)
	if err != nil {
		return err
	}
	project, err := s.access.CheckProjectAccess(requirement.ProjectID, actorID)
	if err != nil {
		return err
	}
	if err := CheckRequirementPermission(requirement, project, actorID); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.deleteInTx(tx, requirement.ID)
	})
}

func (s *RequirementService) deleteInTx(tx *gorm.DB, id uint) error {
	if err := tx.Model(&model.Bug{}).Where("requirement_id = ?", id).
		Update("requirement_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Model(&model.TestCase{}).Where("requirement_id = ?", id).
		Update("requirement_id", nil).Error; err != nil {
		return err
	}

	var taskIDs []uint
	if err := tx.Model(&model.Task{}).Where("requirement_id = ?", id).Pluck("id", &taskIDs).Error; err != nil {
		return err
	}
	if len(taskIDs) > 0 {
		if err := tx.Model(&model.Bug{}).Where("task_id IN ?", taskIDs).
			Update("task_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN ?", taskIDs).Delete(&model.TaskComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN ?", taskIDs).Delete(&model.TaskHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("requirement_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("requirement_id = ?", id).Delete(&model.RequirementComment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("requirement_id = ?", id).Delete(&model.RequirementHistory{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Requirement{}, id).Error
}

// BulkUpdateStatus applies a status change item by item. Items failing
// permission or transition checks are skipped, not fatal; the returned count
// is the number actually updated.
func (s *RequirementService) BulkUpdateStatus(ids []uint, status model.RequirementStatus, actorID uint) (int, error) {
	if len(ids) == 0 {
		return 0, Validationf("no requirement ids provided")
	}
	var requirements []model.Requirement
	if err := s.db.Where("id IN ?", ids).Find(&requirements).Error; err != nil {
		return 0, err
	}
	if len(requirements) == 0 {
		return 0, NotFoundf("no requirements found")
	}

	updated := 0
	for i := range requirements {
		st := status
		if _, err := s.Update(requirements[i].ID, RequirementUpdate{Status: &st}, actorID); err != nil {
			if _, ok := AsError(err); ok {
				continue
			}
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// BulkDelete deletes item by item with the same skip-on-failure policy.
func (s *RequirementService) BulkDelete(ids []uint, actorID uint) (int, error) {
	if len(ids) == 0 {
		return 0, Validationf("no requirement ids provided")
	}
	var requirements []model.Requirement
	if err := s.db.Where("id IN ?", ids).Find(&requirements).Error; err != nil {
		return 0, err
	}
	if len(requirements) == 0 {
		return 0, NotFoundf("no requirements found")
	}

	deleted := 0
	for i := range requirements {
		if err := s.Delete(requirements[i].ID, actorID); err != nil {
			if _, ok := AsError(err); ok {
				continue
			}
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// History lists changes most recent first, insertion order breaking ties.
func (s *RequirementService) History(id, actorID uint) ([]model.RequirementHistory, error) {
	requirement, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(requirement.ProjectID, actorID); err != nil {
		return nil, err
	}
	var history []model.RequirementHistory
	if err := s.db.Preload("User").Where("requirement_id = ?", id).
		Order("changed_at desc, id desc").Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

func (s *RequirementService) find(id uint) (*model.Requirement, error) {
	var requirement model.Requirement
	if err := s.db.First(&requirement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("requirement not found")
		}
		return nil, err
	}
	return &requirement, nil
}

func (s *RequirementService) validateSprint(projectID, sprintID uint) error {
	var sprint model.Sprint
	if err := s.db.First(&sprint, sprintID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("sprint not found")
		}
		return err
	}
	if sprint.ProjectID != projectID {
		return Validationf("sprint must belong to the same project")
	}
	if sprint.Status == model.SprintCompleted {
		return Validationf("cannot assign to completed sprint")
	}
	return nil
}

func (s *RequirementService) validateCategory(projectID, categoryID uint) error {
	var category model.RequirementCategory
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("category not found")
		}
		return err
	}
	if category.ProjectID != projectID {
		return Validationf("category must belong to the same project")
	}
	return nil
}

func (s *RequirementService) validateAssignee(assigneeID uint) error {
	var user model.User
	if err := s.db.First(&user, assigneeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("assignee not found")
		}
		return err
	}
	return nil
}
