package service

import (
	"errors"

	"github.com/Devliang24/tapb/internal/model"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// List is the user directory backing assignee pickers and @mention lookup.
func (s *UserService) List(keyword string) ([]model.UserBrief, error) {
	query := s.db.Model(&model.User{})
	if keyword != "" {
		query = query.Where("username LIKE ? OR email LIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	var users []model.User
	if err := query.Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	briefs := make([]model.UserBrief, 0, len(users))
	for i := range users {
		briefs = append(briefs, users[i].Brief())
	}
	return briefs, nil
}

func (s *UserService) Get(id uint) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("user not found")
		}
		return nil, err
	}
	return &user, nil
}
