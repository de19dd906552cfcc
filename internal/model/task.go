package model

import "time"

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

type Task struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	RequirementID uint                `gorm:"not null;index:idx_task_requirement" json:"requirement_id"`
	Number        string              `gorm:"type:varchar(50);uniqueIndex;not null" json:"number"`
	Title         string              `gorm:"type:varchar(200);not null" json:"title"`
	Description   string              `gorm:"type:text" json:"description"`
	Status        TaskStatus          `gorm:"type:varchar(20);not null;default:todo" json:"status"`
	Priority      RequirementPriority `gorm:"type:varchar(10);not null;default:medium" json:"priority"`
	CreatorID     uint                `gorm:"not null" json:"creator_id"`
	AssigneeID    *uint               `json:"assignee_id"`
	StartDate     *time.Time          `gorm:"type:date" json:"start_date"`
	EndDate       *time.Time          `gorm:"type:date" json:"end_date"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`

	Requirement *Requirement `gorm:"foreignKey:RequirementID" json:"requirement,omitempty"`
	Creator     *User        `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Assignee    *User        `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}

func (Task) TableName() string { return "tasks" }

type TaskHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"not null;index:idx_taskhist_task" json:"task_id"`
	Field     string    `gorm:"type:varchar(50);not null" json:"field"`
	OldValue  *string   `gorm:"type:varchar(255)" json:"old_value"`
	NewValue  *string   `gorm:"type:varchar(255)" json:"new_value"`
	ChangedBy uint      `gorm:"not null" json:"changed_by"`
	ChangedAt time.Time `gorm:"not null" json:"changed_at"`

	User *User `gorm:"foreignKey:ChangedBy" json:"user,omitempty"`
}

func (TaskHistory) TableName() string { return "task_history" }
