package model

import "time"

type SprintStatus string

const (
	SprintPlanning  SprintStatus = "planning"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
)

type Sprint struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	ProjectID uint         `gorm:"not null;index:idx_sprint_project" json:"project_id"`
	Number    string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"number"`
	Name      string       `gorm:"type:varchar(100);not null" json:"name"`
	Goal      string       `gorm:"type:text" json:"goal"`
	Status    SprintStatus `gorm:"type:varchar(20);not null;default:planning" json:"status"`
	StartDate *time.Time   `gorm:"type:date" json:"start_date"`
	EndDate   *time.Time   `gorm:"type:date" json:"end_date"`
	CreatorID uint         `gorm:"not null" json:"creator_id"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Creator *User    `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}

func (Sprint) TableName() string { return "sprints" }

type SprintHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SprintID  uint      `gorm:"not null;index:idx_sprinthist_sprint" json:"sprint_id"`
	Field     string    `gorm:"type:varchar(50);not null" json:"field"`
	OldValue  *string   `gorm:"type:varchar(255)" json:"old_value"`
	NewValue  *string   `gorm:"type:varchar(255)" json:"new_value"`
	ChangedBy uint      `gorm:"not null" json:"changed_by"`
	ChangedAt time.Time `gorm:"not null" json:"changed_at"`

	User *User `gorm:"foreignKey:ChangedBy" json:"user,omitempty"`
}

func (SprintHistory) TableName() string { return "sprint_history" }
