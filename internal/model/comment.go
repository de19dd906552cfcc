package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// MentionedIDs stores the user ids extracted from @mentions as a JSON array.
type MentionedIDs []uint

func (m MentionedIDs) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *MentionedIDs) Scan(value interface{}) error {
	if value == nil {
		*m = MentionedIDs{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case string:
		bytes = []byte(v)
	case []byte:
		bytes = v
	}
	return json.Unmarshal(bytes, m)
}

type BugComment struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	BugID            uint         `gorm:"not null;index:idx_bugcomment_bug" json:"bug_id"`
	UserID           uint         `gorm:"not null" json:"user_id"`
	Content          string       `gorm:"type:text;not null" json:"content"`
	MentionedUserIDs MentionedIDs `gorm:"type:json" json:"mentioned_user_ids"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (BugComment) TableName() string { return "bug_comments" }

type RequirementComment struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	RequirementID    uint         `gorm:"not null;index:idx_reqcomment_requirement" json:"requirement_id"`
	UserID           uint         `gorm:"not null" json:"user_id"`
	Content          string       `gorm:"type:text;not null" json:"content"`
	MentionedUserIDs MentionedIDs `gorm:"type:json" json:"mentioned_user_ids"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (RequirementComment) TableName() string { return "requirement_comments" }

type TaskComment struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	TaskID           uint         `gorm:"not null;index:idx_taskcomment_task" json:"task_id"`
	UserID           uint         `gorm:"not null" json:"user_id"`
	Content          string       `gorm:"type:text;not null" json:"content"`
	MentionedUserIDs MentionedIDs `gorm:"type:json" json:"mentioned_user_ids"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (TaskComment) TableName() string { return "task_comments" }
