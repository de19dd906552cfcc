package service

import (
	"errors"
	"time"

	"github.com/Devliang24/tapb/internal/model"
	"gorm.io/gorm"
)

type TaskService struct {
	db     *gorm.DB
	access *AccessService
}

func NewTaskService(db *gorm.DB, access *AccessService) *TaskService {
	return &TaskService{db: db, access: access}
}

type TaskCreate struct {
	Title       string
	Description string
	Priority    model.RequirementPriority
	AssigneeID  *uint
	StartDate   *time.Time
	EndDate     *time.Time
}

func (s *TaskService) Create(requirementID uint, in TaskCreate, actorID uint) (*model.Task, error) {
	requirement, err := s.findRequirement(requirementID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(requirement.ProjectID, actorID); err != nil {
		return nil, err
	}
	if in.AssigneeID != nil {
		var user model.User
		if err := s.db.First(&user, *in.AssigneeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NotFoundf("assignee not found")
			}
			return nil, err
		}
	}

	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	task := &model.Task{
		RequirementID: requirementID,
		Title:         in.Title,
		Description:   in.Description,
		Status:        model.TaskTodo,
		Priority:      priority,
		CreatorID:     actorID,
		AssigneeID:    in.AssigneeID,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		task.Number = FormatNumber(PrefixTask, task.ID)
		return tx.Model(task).UpdateColumn("number", task.Number).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(task.ID, actorID)
}

func (s *TaskService) Get(id, actorID uint) (*model.Task, error) {
	task, err := s.find(id)
	if err != nil {
		return nil, err
	}
	requirement, err := s.findRequirement(task.RequirementID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(requirement.ProjectID, actorID); err != nil {
		return nil, err
	}
	if err := s.db.Preload("Creator").Preload("Assignee").Preload("Requirement").
		First(task, id).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) List(requirementID uint, status string, actorID uint) ([]model.Task, error) {
	requirement, err := s.findRequirement(requirementID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(requirement.ProjectID, actorID); err != nil {
		return nil, err
	}
	query := s.db.Where("requirement_id = ?", requirementID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var tasks []model.Task
	if err := query.Preload("Creator").Preload("Assignee").
		Order("created_at desc").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *model.TaskStatus
	Priority    *model.RequirementPriority
	AssigneeID  *uint
	StartDate   *time.Time
	EndDate     *time.Time
}

func (s *TaskService) Update(id uint, in TaskUpdate, actorID uint) (*model.Task, error) {
	task, err := s.find(id)
	if err != nil {
		return nil, err
	}
	requirement, err := s.findRequirement(task.RequirementID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(requirement.ProjectID, actorID); err != nil {
		return nil, err
	}
	if in.AssigneeID != nil {
		var user model.User
		if err := s.db.First(&user, *in.AssigneeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NotFoundf("assignee not found")
			}
			return nil, err
		}
	}

	cs := NewChangeset()
	if in.Title != nil {
		cs.Set("title", task.Title, *in.Title)
	}
	if in.Description != nil {
		cs.Set("description", task.Description, *in.Description)
	}
	if in.Status != nil {
		cs.Set("status", task.Status, *in.Status)
	}
	if in.Priority != nil {
		cs.Set("priority", task.Priority, *in.Priority)
	}
	if in.AssigneeID != nil {
		cs.Set("assignee_id", task.AssigneeID, in.AssigneeID)
	}
	if in.StartDate != nil {
		cs.Set("start_date", task.StartDate, in.StartDate)
	}
	if in.EndDate != nil {
		cs.Set("end_date", task.EndDate, in.EndDate)
	}

	now := time.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return cs.Apply(tx, task, func(ch FieldChange) interface{} {
			return &model.TaskHistory{
				TaskID:    task.ID,
				Field:     ch.Field,
				OldValue:  ch.OldValue,
				NewValue:  ch.NewValue,
				ChangedBy: actorID,
				ChangedAt: now,
			}
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id, actorID)
}

// Delete removes the task, its comments and history; bugs linked to it keep
// existing with the task reference nulled.
func (s *TaskService) Delete(id, actorID uint) error {
	task, err := s.find(id)
	if err != nil {
		return err
	}
	requirement, err := s.findRequirement(task.RequirementID)
	if err != nil {
		return err
	}
	project, err := s.access.CheckProjectAccess(requirement.ProjectID, actorID)
	if err != nil {
		return err
	}
	if task.CreatorID != actorID && project.CreatorID != actorID {
		return Forbiddenf("only task creator or project creator can delete")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Bug{}).Where("task_id = ?", id).
			Update("task_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&model.TaskComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&model.TaskHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Task{}, id).Error
	})
}

func (s *TaskService) History(id, actorID uint) ([]model.TaskHistory, error) {
	task, err := s.find(id)
	if err != nil {
		return nil, err
	}
	requirement, err := s.findRequirement(task.RequirementID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(requirement.ProjectID, actorID); err != nil {
		return nil, err
	}
	var history []model.TaskHistory
	if err := s.db.Preload("User").Where("task_id = ?", id).
		Order("changed_at desc, id desc").Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

func (s *TaskService) find(id uint) (*model.Task, error) {
	var task model.Task
	if err := s.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("task not found")
		}
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) findRequirement(id uint) (*model.Requirement, error) {
	var requirement model.Requirement
	if err := s.db.First(&requirement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("requirement not found")
		}
		return nil, err
	}
	return &requirement, nil
}
