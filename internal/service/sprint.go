package service

import (
	"errors"
	"time"

	"github.com/Devliang24/tapb/internal/model"
	"gorm.io/gorm"
)

type SprintService struct {
	db     *gorm.DB
	access *AccessService
}

func NewSprintService(db *gorm.DB, access *AccessService) *SprintService {
	return &SprintService{db: db, access: access}
}

type SprintCreate struct {
	Name      string
	Goal      string
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *SprintService) Create(projectID uint, in SprintCreate, actorID uint) (*model.Sprint, error) {
	project, err := s.access.CheckProjectAccess(projectID, actorID)
	if err != nil {
		return nil, err
	}
	if err := CheckProjectCreator(project, actorID, "create sprint"); err != nil {
		return nil, err
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, Validationf("end date must not be before start date")
	}

	sprint := &model.Sprint{
		ProjectID: projectID,
		Name:      in.Name,
		Goal:      in.Goal,
		Status:    model.SprintPlanning,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		CreatorID: actorID,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sprint).Error; err != nil {
			return err
		}
		sprint.Number = FormatNumber(PrefixSprint, sprint.ID)
		return tx.Model(sprint).UpdateColumn("number", sprint.Number).Error
	})
	if err != nil {
		return nil, err
	}
	return sprint, nil
}

func (s *SprintService) Get(id, actorID uint) (*model.Sprint, error) {
	sprint, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(sprint.ProjectID, actorID); err != nil {
		return nil, err
	}
	return sprint, nil
}

func (s *SprintService) List(projectID uint, status string, actorID uint) ([]model.Sprint, error) {
	if _, err := s.access.CheckProjectAccess(projectID, actorID); err != nil {
		return nil, err
	}
	query := s.db.Where("project_id = ?", projectID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var sprints []model.Sprint
	if err := query.Order("created_at desc").Find(&sprints).Error; err != nil {
		return nil, err
	}
	return sprints, nil
}

type SprintUpdate struct {
	Name      *string
	Goal      *string
	Status    *model.SprintStatus
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *SprintService) Update(id uint, in SprintUpdate, actorID uint) (*model.Sprint, error) {
	sprint, err := s.find(id)
	if err != nil {
		return nil, err
	}
	project, err := s.access.CheckProjectAccess(sprint.ProjectID, actorID)
	if err != nil {
		return nil, err
	}
	if err := CheckProjectCreator(project, actorID, "update sprint"); err != nil {
		return nil, err
	}

	if in.Status != nil {
		if err := ValidateSprintTransition(sprint.Status, *in.Status); err != nil {
			return nil, err
		}
	}
	// A completed sprint is a closed record: its timebox can no longer move.
	if sprint.Status == model.SprintCompleted {
		if in.StartDate != nil || in.EndDate != nil {
			return nil, FrozenFieldf("cannot modify dates of completed sprint")
		}
	}

	start := sprint.StartDate
	if in.StartDate != nil {
		start = in.StartDate
	}
	end := sprint.EndDate
	if in.EndDate != nil {
		end = in.EndDate
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, Validationf("end date must not be before start date")
	}

	cs := NewChangeset()
	if in.Name != nil {
		cs.Set("name", sprint.Name, *in.Name)
	}
	if in.Goal != nil {
		cs.Set("goal", sprint.Goal, *in.Goal)
	}
	if in.Status != nil {
		cs.Set("status", sprint.Status, *in.Status)
	}
	if in.StartDate != nil {
		cs.Set("start_date", sprint.StartDate, in.StartDate)
	}
	if in.EndDate != nil {
		cs.Set("end_date", sprint.EndDate, in.EndDate)
	}

	now := time.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return cs.Apply(tx, sprint, func(ch FieldChange) interface{} {
			return &model.SprintHistory{
				SprintID:  sprint.ID,
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
	return s.find(id)
}

// Delete removes the sprint and its history. Requirements, bugs and test
// cases assigned to it stay, with the sprint reference nulled out.
func (s *SprintService) Delete(id, actorID uint) error {
	sprint, err := s.find(id)
	if err != nil {
		return err
	}
	project, err := s.access.CheckProjectAccess(sprint.ProjectID, actorID)
	if err != nil {
		return err
	}
	if err := CheckProjectCreator(project, actorID, "delete sprint"); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Requirement{}).Where("sprint_id = ?", id).
			Update("sprint_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Bug{}).Where("sprint_id = ?", id).
			Update("sprint_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.TestCase{}).Where("sprint_id = ?", id).
			Update("sprint_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("sprint_id = ?", id).Delete(&model.SprintHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Sprint{}, id).Error
	})
}

type SprintStats struct {
	SprintID          uint             `json:"sprint_id"`
	RequirementTotal  int64            `json:"requirement_total"`
	RequirementByStat map[string]int64 `json:"requirements_by_status"`
	BugTotal          int64            `json:"bug_total"`
	BugByStatus       map[string]int64 `json:"bugs_by_status"`
}

func (s *SprintService) Stats(id, actorID uint) (*SprintStats, error) {
	sprint, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(sprint.ProjectID, actorID); err != nil {
		return nil, err
	}

	stats := &SprintStats{
		SprintID:          id,
		RequirementByStat: make(map[string]int64),
		BugByStatus:       make(map[string]int64),
	}
	type row struct {
		Status string
		Count  int64
	}
	var reqRows []row
	if err := s.db.Model(&model.Requirement{}).Select("status, count(*) as count").
		Where("sprint_id = ?", id).Group("status").Scan(&reqRows).Error; err != nil {
		return nil, err
	}
	for _, r := range reqRows {
		stats.RequirementByStat[r.Status] = r.Count
		stats.RequirementTotal += r.Count
	}
	var bugRows []row
	if err := s.db.Model(&model.Bug{}).Select("status, count(*) as count").
		Where("sprint_id = ?", id).Group("status").Scan(&bugRows).Error; err != nil {
		return nil, err
	}
	for _, r := range bugRows {
		stats.BugByStatus[r.Status] = r.Count
		stats.BugTotal += r.Count
	}
	return stats, nil
}

func (s *SprintService) History(id, actorID uint) ([]model.SprintHistory, error) {
	sprint, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(sprint.ProjectID, actorID); err != nil {
		return nil, err
	}
	var history []model.SprintHistory
	if err := s.db.Preload("User").Where("sprint_id = ?", id).
		Order("changed_at desc, id desc").Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

func (s *SprintService) find(id uint) (*model.Sprint, error) {
	var sprint model.Sprint
	if err := s.db.First(&sprint, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("sprint not found")
		}
		return nil, err
	}
	return &sprint, nil
}
