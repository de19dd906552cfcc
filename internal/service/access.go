package service

import (
	"errors"

	"github.com/Devliang24/tapb/internal/model"
	"gorm.io/gorm"
)

// The demo example space is seeded for every installation and must survive
// any delete request.
const demoProjectKey = "DEMO"

type AccessService struct {
	db *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// CheckProjectAccess returns the project when the user is its creator, a
// member, or the project is public. NotFound and Forbidden stay distinct so
// the handler layer can answer 404 vs 403.
func (s *AccessService) CheckProjectAccess(projectID, userID uint) (*model.Project, error) {
	var project model.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("project not found")
		}
		return nil, err
	}
	if project.IsPublic || project.CreatorID == userID {
		return &project, nil
	}
	var count int64
	if err := s.db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, Forbiddenf("access denied")
	}
	return &project, nil
}

// AccessibleProjectIDs lists every project the user can see: created by them,
// joined as a member, or public.
func (s *AccessService) AccessibleProjectIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&model.Project{}).
		Where("creator_id = ? OR is_public = ? OR id IN (?)", userID, true,
			s.db.Model(&model.ProjectMember{}).Select("project_id").Where("user_id = ?", userID)).
		Pluck("id", &ids).Error
	return ids, err
}

// CheckProjectCreator gates operations reserved for the project creator:
// project update/delete, membership changes, sprint mutations.
func CheckProjectCreator(project *model.Project, userID uint, action string) error {
	if project.CreatorID != userID {
		return Forbiddenf("only project creator can %s", action)
	}
	return nil
}

// CheckRequirementPermission allows the requirement creator or the project
// creator to update/delete a requirement.
func CheckRequirementPermission(requirement *model.Requirement, project *model.Project, userID uint) error {
	if requirement.CreatorID != userID && project.CreatorID != userID {
		return Forbiddenf("only requirement creator or project creator can modify")
	}
	return nil
}

// CheckCommentAuthor allows only the comment author to edit or delete it.
func CheckCommentAuthor(authorID, userID uint, action string) error {
	if authorID != userID {
		return Forbiddenf("only comment author can %s", action)
	}
	return nil
}

// CheckProjectDeletable rejects deletion of the seeded demo space regardless
// of who asks.
func CheckProjectDeletable(project *model.Project) error {
	if project.Key == demoProjectKey {
		return Forbiddenf("demo project cannot be deleted")
	}
	return nil
}
