package model

import "time"

type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Key         string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"key"`
	Description string    `gorm:"type:text" json:"description"`
	IsPublic    bool      `gorm:"not null;default:false" json:"is_public"`
	CreatorID   uint      `gorm:"not null;index:idx_creator_id" json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Creator *User           `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
}

func (Project) TableName() string { return "projects" }

type ProjectMember struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID uint   `gorm:"not null;uniqueIndex:uk_project_user" json:"project_id"`
	UserID    uint   `gorm:"not null;uniqueIndex:uk_project_user;index:idx_user_id" json:"user_id"`
	Role      string `gorm:"type:varchar(50);not null" json:"role"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ProjectMember) TableName() string { return "project_members" }
