package model

import "time"

type RequirementStatus string

const (
	RequirementDraft      RequirementStatus = "draft"
	RequirementApproved   RequirementStatus = "approved"
	RequirementInProgress RequirementStatus = "in_progress"
	RequirementCompleted  RequirementStatus = "completed"
	RequirementCancelled  RequirementStatus = "cancelled"
)

type RequirementPriority string

const (
	PriorityHigh   RequirementPriority = "high"
	PriorityMedium RequirementPriority = "medium"
	PriorityLow    RequirementPriority = "low"
)

type Requirement struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	ProjectID   uint                `gorm:"not null;index:idx_req_project" json:"project_id"`
	SprintID    *uint               `gorm:"index:idx_req_sprint" json:"sprint_id"`
	CategoryID  *uint               `gorm:"index:idx_req_category" json:"category_id"`
	Number      string              `gorm:"type:varchar(50);uniqueIndex;not null" json:"number"`
	Title       string              `gorm:"type:varchar(200);not null" json:"title"`
	Description string              `gorm:"type:text;not null" json:"description"`
	Status      RequirementStatus   `gorm:"type:varchar(20);not null;default:draft;index:idx_req_status" json:"status"`
	Priority    RequirementPriority `gorm:"type:varchar(10);not null;default:medium" json:"priority"`
	CreatorID   uint                `gorm:"not null" json:"creator_id"`
	AssigneeID  *uint               `json:"assignee_id"`
	StartDate   *time.Time          `gorm:"type:date" json:"start_date"`
	EndDate     *time.Time          `gorm:"type:date" json:"end_date"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	Project  *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Sprint   *Sprint  `gorm:"foreignKey:SprintID" json:"sprint,omitempty"`
	Creator  *User    `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Assignee *User    `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}

func (Requirement) TableName() string { return "requirements" }

type RequirementHistory struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RequirementID uint      `gorm:"not null;index:idx_reqhist_requirement" json:"requirement_id"`
	Field         string    `gorm:"type:varchar(50);not null" json:"field"`
	OldValue      *string   `gorm:"type:varchar(255)" json:"old_value"`
	NewValue      *string   `gorm:"type:varchar(255)" json:"new_value"`
	ChangedBy     uint      `gorm:"not null" json:"changed_by"`
	ChangedAt     time.Time `gorm:"not null" json:"changed_at"`

	User *User `gorm:"foreignKey:ChangedBy" json:"user,omitempty"`
}

func (RequirementHistory) TableName() string { return "requirement_history" }
