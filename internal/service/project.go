package service

import (
	"errors"
	"strings"

	"github.com/Devliang24/tapb/internal/model"
	"gorm.io/gorm"
)

type ProjectService struct {
	db     *gorm.DB
	access *AccessService
}

func NewProjectService(db *gorm.DB, access *AccessService) *ProjectService {
	return &ProjectService{db: db, access: access}
}

type ProjectCreate struct {
	Name        string
	Key         string
	Description string
	IsPublic    bool
	MemberIDs   []uint
}

func (s *ProjectService) Create(in ProjectCreate, creatorID uint) (*model.Project, error) {
	key := strings.ToUpper(in.Key)
	var count int64
	if err := s.db.Model(&model.Project{}).Where("`key` = ?", key).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, Conflictf("project key already exists")
	}

	project := &model.Project{
		Name:        in.Name,
		Key:         key,
		Description: in.Description,
		IsPublic:    in.IsPublic,
		CreatorID:   creatorID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		owner := &model.ProjectMember{ProjectID: project.ID, UserID: creatorID, Role: "owner"}
		if err := tx.Create(owner).Error; err != nil {
			return err
		}
		for _, uid := range in.MemberIDs {
			if uid == creatorID {
				continue
			}
			var user model.User
			if err := tx.First(&user, uid).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
			member := &model.ProjectMember{ProjectID: project.ID, UserID: uid, Role: "member"}
			if err := tx.Create(member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(project.ID, creatorID)
}

func (s *ProjectService) List(userID uint, page, pageSize int) ([]model.Project, int64, error) {
	query := s.db.Model(&model.Project{}).
		Where("creator_id = ? OR is_public = ? OR id IN (?)", userID, true,
			s.db.Model(&model.ProjectMember{}).Select("project_id").Where("user_id = ?", userID))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []model.Project
	if err := query.Preload("Creator").Order("updated_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (s *ProjectService) GetByID(id, userID uint) (*model.Project, error) {
	if _, err := s.access.CheckProjectAccess(id, userID); err != nil {
		return nil, err
	}
	var project model.Project
	if err := s.db.Preload("Creator").Preload("Members.User").First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

type ProjectUpdate struct {
	Name        *string
	Description *string
	IsPublic    *bool
}

func (s *ProjectService) Update(id uint, in ProjectUpdate, userID uint) (*model.Project, error) {
	project, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if err := CheckProjectCreator(project, userID, "update project"); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.IsPublic != nil {
		updates["is_public"] = *in.IsPublic
	}
	if len(updates) > 0 {
		if err := s.db.Model(project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id, userID)
}

// Delete removes the project and everything scoped to it. References between
// surviving rows never dangle because the whole teardown is one transaction.
func (s *ProjectService) Delete(id, userID uint) error {
	project, err := s.find(id)
	if err != nil {
		return err
	}
	if err := CheckProjectDeletable(project); err != nil {
		return err
	}
	if err := CheckProjectCreator(project, userID, "delete project"); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var bugIDs []uint
		if err := tx.Model(&model.Bug{}).Where("project_id = ?", id).Pluck("id", &bugIDs).Error; err != nil {
			return err
		}
		if len(bugIDs) > 0 {
			if err := tx.Where("bug_id IN ?", bugIDs).Delete(&model.BugComment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("bug_id IN ?", bugIDs).Delete(&model.BugHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", id).Delete(&model.Bug{}).Error; err != nil {
				return err
			}
		}

		var reqIDs []uint
		if err := tx.Model(&model.Requirement{}).Where("project_id = ?", id).Pluck("id", &reqIDs).Error; err != nil {
			return err
		}
		if len(reqIDs) > 0 {
			var taskIDs []uint
			if err := tx.Model(&model.Task{}).Where("requirement_id IN ?", reqIDs).Pluck("id", &taskIDs).Error; err != nil {
				return err
			}
			if len(taskIDs) > 0 {
				if err := tx.Where("task_id IN ?", taskIDs).Delete(&model.TaskComment{}).Error; err != nil {
					return err
				}
				if err := tx.Where("task_id IN ?", taskIDs).Delete(&model.TaskHistory{}).Error; err != nil {
					return err
				}
				if err := tx.Where("requirement_id IN ?", reqIDs).Delete(&model.Task{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("requirement_id IN ?", reqIDs).Delete(&model.RequirementComment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("requirement_id IN ?", reqIDs).Delete(&model.RequirementHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", id).Delete(&model.Requirement{}).Error; err != nil {
				return err
			}
		}

		var sprintIDs []uint
		if err := tx.Model(&model.Sprint{}).Where("project_id = ?", id).Pluck("id", &sprintIDs).Error; err != nil {
			return err
		}
		if len(sprintIDs) > 0 {
			if err := tx.Where("sprint_id IN ?", sprintIDs).Delete(&model.SprintHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", id).Delete(&model.Sprint{}).Error; err != nil {
				return err
			}
		}

		var caseIDs []uint
		if err := tx.Model(&model.TestCase{}).Where("project_id = ?", id).Pluck("id", &caseIDs).Error; err != nil {
			return err
		}
		if len(caseIDs) > 0 {
			if err := tx.Where("test_case_id IN ?", caseIDs).Delete(&model.TestCaseHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", id).Delete(&model.TestCase{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("project_id = ?", id).Delete(&model.RequirementCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.TestCaseCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Project{}, id).Error
	})
}

func (s *ProjectService) ListMembers(projectID, userID uint) ([]model.ProjectMember, error) {
	if _, err := s.access.CheckProjectAccess(projectID, userID); err != nil {
		return nil, err
	}
	var members []model.ProjectMember
	if err := s.db.Preload("User").Where("project_id = ?", projectID).Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (s *ProjectService) AddMember(projectID, memberUserID uint, role string, userID uint) (*model.ProjectMember, error) {
	project, err := s.find(projectID)
	if err != nil {
		return nil, err
	}
	if err := CheckProjectCreator(project, userID, "add members"); err != nil {
		return nil, err
	}

	var user model.User
	if err := s.db.First(&user, memberUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("user not found")
		}
		return nil, err
	}

	var count int64
	if err := s.db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, memberUserID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, Conflictf("user is already a member")
	}

	member := &model.ProjectMember{ProjectID: projectID, UserID: memberUserID, Role: role}
	if err := s.db.Create(member).Error; err != nil {
		return nil, err
	}
	member.User = &user
	return member, nil
}

func (s *ProjectService) UpdateMemberRole(projectID, memberID uint, role string, userID uint) (*model.ProjectMember, error) {
	project, err := s.find(projectID)
	if err != nil {
		return nil, err
	}
	if err := CheckProjectCreator(project, userID, "update members"); err != nil {
		return nil, err
	}

	var member model.ProjectMember
	if err := s.db.Where("id = ? AND project_id = ?", memberID, projectID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("member not found")
		}
		return nil, err
	}
	if err := s.db.Model(&member).Update("role", role).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *ProjectService) RemoveMember(projectID, memberID, userID uint) error {
	project, err := s.find(projectID)
	if err != nil {
		return err
	}
	if err := CheckProjectCreator(project, userID, "remove members"); err != nil {
		return err
	}

	var member model.ProjectMember
	if err := s.db.Where("id = ? AND project_id = ?", memberID, projectID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("member not found")
		}
		return err
	}
	if member.Role == "owner" {
		return Validationf("cannot remove project owner")
	}
	return s.db.Delete(&member).Error
}

// Stats counts requirements per status for the project dashboard.
func (s *ProjectService) Stats(projectID, userID uint) (map[string]int64, error) {
	if _, err := s.access.CheckProjectAccess(projectID, userID); err != nil {
		return nil, err
	}

	stats := make(map[string]int64)
	statuses := []model.RequirementStatus{
		model.RequirementDraft,
		model.RequirementApproved,
		model.RequirementInProgress,
		model.RequirementCompleted,
		model.RequirementCancelled,
	}
	for _, st := range statuses {
		var count int64
		if err := s.db.Model(&model.Requirement{}).
			Where("project_id = ? AND status = ?", projectID, st).
			Count(&count).Error; err != nil {
			return nil, err
		}
		stats[string(st)] = count
	}
	var total int64
	if err := s.db.Model(&model.Requirement{}).Where("project_id = ?", projectID).Count(&total).Error; err != nil {
		return nil, err
	}
	stats["total_requirements"] = total
	return stats, nil
}

type SearchHit struct {
	ID     uint   `json:"id"`
	Number string `json:"number"`
	Title  string `json:"title"`
	Status string `json:"status"`
	Type   string `json:"type"`
}

// Search matches requirements, tasks, and bugs of one project by title,
// number, or description.
func (s *ProjectService) Search(projectID uint, q string, limit int, userID uint) (map[string][]SearchHit, error) {
	if _, err := s.access.CheckProjectAccess(projectID, userID); err != nil {
		return nil, err
	}
	pattern := "%" + q + "%"

	var reqs []model.Requirement
	if err := s.db.Where("project_id = ?", projectID).
		Where("title LIKE ? OR number LIKE ? OR description LIKE ?", pattern, pattern, pattern).
		Limit(limit).Find(&reqs).Error; err != nil {
		return nil, err
	}

	var tasks []model.Task
	if err := s.db.Where("requirement_id IN (?)",
		s.db.Model(&model.Requirement{}).Select("id").Where("project_id = ?", projectID)).
		Where("title LIKE ? OR number LIKE ? OR description LIKE ?", pattern, pattern, pattern).
		Limit(limit).Find(&tasks).Error; err != nil {
		return nil, err
	}

	var bugs []model.Bug
	if err := s.db.Where("project_id = ?", projectID).
		Where("title LIKE ? OR number LIKE ? OR description LIKE ?", pattern, pattern, pattern).
		Limit(limit).Find(&bugs).Error; err != nil {
		return nil, err
	}

	result := map[string][]SearchHit{
		"requirements": {},
		"tasks":        {},
		"bugs":         {},
	}
	for _, r := range reqs {
		result["requirements"] = append(result["requirements"], SearchHit{
			ID: r.ID, Number: r.Number, Title: r.Title, Status: string(r.Status), Type: "requirement",
		})
	}
	for _, t := range tasks {
		result["tasks"] = append(result["tasks"], SearchHit{
			ID: t.ID, Number: t.Number, Title: t.Title, Status: string(t.Status), Type: "task",
		})
	}
	for _, b := range bugs {
		result["bugs"] = append(result["bugs"], SearchHit{
			ID: b.ID, Number: b.Number, Title: b.Title, Status: string(b.Status), Type: "bug",
		})
	}
	return result, nil
}

func (s *ProjectService) find(id uint) (*model.Project, error) {
	var project model.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("project not found")
		}
		return nil, err
	}
	return &project, nil
}
