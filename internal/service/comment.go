package service

import (
	"errors"
	"regexp"

	"github.com/Devliang24/tapb/internal/model"
	"gorm.io/gorm"
)

// Mentions are written as @username or @[display name]; both forms resolve
// against the project's member usernames.
var mentionPattern = regexp.MustCompile(`@\[([^\]]+)\]|@(\w+)`)

type CommentService struct {
	db     *gorm.DB
	access *AccessService
}

func NewCommentService(db *gorm.DB, access *AccessService) *CommentService {
	return &CommentService{db: db, access: access}
}

// ExtractMentions resolves @mentions in content to user ids. Only the
// project creator and members are mentionable; unknown names are ignored.
func (s *CommentService) ExtractMentions(content string, projectID uint) (model.MentionedIDs, error) {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return model.MentionedIDs{}, nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if m[1] != "" {
			names = append(names, m[1])
		} else if m[2] != "" {
			names = append(names, m[2])
		}
	}

	var users []model.User
	if err := s.db.Where("username IN ?", names).Find(&users).Error; err != nil {
		return nil, err
	}
	var project model.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, err
	}

	ids := model.MentionedIDs{}
	seen := make(map[uint]bool)
	for _, u := range users {
		if seen[u.ID] {
			continue
		}
		ok := u.ID == project.CreatorID
		if !ok {
			var count int64
			if err := s.db.Model(&model.ProjectMember{}).
				Where("project_id = ? AND user_id = ?", projectID, u.ID).
				Count(&count).Error; err != nil {
				return nil, err
			}
			ok = count > 0
		}
		if ok {
			ids = append(ids, u.ID)
			seen[u.ID] = true
		}
	}
	return ids, nil
}

func (s *CommentService) CreateBugComment(bugID uint, content string, actorID uint) (*model.BugComment, error) {
	var bug model.Bug
	if err := s.db.First(&bug, bugID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("bug not found")
		}
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(bug.ProjectID, actorID); err != nil {
		return nil, err
	}
	mentions, err := s.ExtractMentions(content, bug.ProjectID)
	if err != nil {
		return nil, err
	}
	comment := &model.BugComment{
		BugID:            bugID,
		UserID:           actorID,
		Content:          content,
		MentionedUserIDs: mentions,
	}
	if err := s.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) ListBugComments(bugID, actorID uint) ([]model.BugComment, error) {
	var bug model.Bug
	if err := s.db.First(&bug, bugID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("bug not found")
		}
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(bug.ProjectID, actorID); err != nil {
		return nil, err
	}
	var comments []model.BugComment
	if err := s.db.Preload("User").Where("bug_id = ?", bugID).
		Order("created_at asc").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *CommentService) UpdateBugComment(id uint, content string, actorID uint) (*model.BugComment, error) {
	var comment model.BugComment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("comment not found")
		}
		return nil, err
	}
	if err := CheckCommentAuthor(comment.UserID, actorID, "edit"); err != nil {
		return nil, err
	}
	var bug model.Bug
	if err := s.db.First(&bug, comment.BugID).Error; err != nil {
		return nil, err
	}
	mentions, err := s.ExtractMentions(content, bug.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(&comment).Updates(map[string]interface{}{
		"content":            content,
		"mentioned_user_ids": mentions,
	}).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *CommentService) DeleteBugComment(id, actorID uint) error {
	var comment model.BugComment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("comment not found")
		}
		return err
	}
	if err := CheckCommentAuthor(comment.UserID, actorID, "delete"); err != nil {
		return err
	}
	return s.db.Delete(&comment).Error
}

func (s *CommentService) CreateRequirementComment(requirementID uint, content string, actorID uint) (*model.RequirementComment, error) {
	var requirement model.Requirement
	if err := s.db.First(&requirement, requirementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("requirement not found")
		}
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(requirement.ProjectID, actorID); err != nil {
		return nil, err
	}
	mentions, err := s.ExtractMentions(content, requirement.ProjectID)
	if err != nil {
		return nil, err
	}
	comment := &model.RequirementComment{
		RequirementID:    requirementID,
		UserID:           actorID,
		Content:          content,
		MentionedUserIDs: mentions,
	}
	if err := s.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) ListRequirementComments(requirementID, actorID uint) ([]model.RequirementComment, error) {
	var requirement model.Requirement
	if err := s.db.First(&requirement, requirementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("requirement not found")
		}
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(requirement.ProjectID, actorID); err != nil {
		return nil, err
	}
	var comments []model.RequirementComment
	if err := s.db.Preload("User").Where("requirement_id = ?", requirementID).
		Order("created_at asc").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *CommentService) DeleteRequirementComment(id, actorID uint) error {
	var comment model.RequirementComment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("comment not found")
		}
		return err
	}
	if err := CheckCommentAuthor(comment.UserID, actorID, "delete"); err != nil {
		return err
	}
	return s.db.Delete(&comment).Error
}

func (s *CommentService) CreateTaskComment(taskID uint, content string, actorID uint) (*model.TaskComment, error) {
	var task model.Task
	if err := s.db.Preload("Requirement").First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("task not found")
		}
		return nil, err
	}
	if task.Requirement == nil {
		return nil, NotFoundf("requirement not found")
	}
	if _, err := s.access.CheckProjectAccess(task.Requirement.ProjectID, actorID); err != nil {
		return nil, err
	}
	mentions, err := s.ExtractMentions(content, task.Requirement.ProjectID)
	if err != nil {
		return nil, err
	}
	comment := &model.TaskComment{
		TaskID:           taskID,
		UserID:           actorID,
		Content:          content,
		MentionedUserIDs: mentions,
	}
	if err := s.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) ListTaskComments(taskID, actorID uint) ([]model.TaskComment, error) {
	var task model.Task
	if err := s.db.Preload("Requirement").First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("task not found")
		}
		return nil, err
	}
	if task.Requirement != nil {
		if _, err := s.access.CheckProjectAccess(task.Requirement.ProjectID, actorID); err != nil {
			return nil, err
		}
	}
	var comments []model.TaskComment
	if err := s.db.Preload("User").Where("task_id = ?", taskID).
		Order("created_at asc").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *CommentService) DeleteTaskComment(id, actorID uint) error {
	var comment model.TaskComment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("comment not found")
		}
		return err
	}
	if err := CheckCommentAuthor(comment.UserID, actorID, "delete"); err != nil {
		return err
	}
	return s.db.Delete(&comment).Error
}
