package model

import "time"

type BugStatus string

const (
	BugNew        BugStatus = "new"
	BugConfirmed  BugStatus = "confirmed"
	BugInProgress BugStatus = "in_progress"
	BugResolved   BugStatus = "resolved"
	BugClosed     BugStatus = "closed"
	BugReopened   BugStatus = "reopened"
)

type BugPriority string

const (
	BugPriorityCritical BugPriority = "critical"
	BugPriorityHigh     BugPriority = "high"
	BugPriorityMedium   BugPriority = "medium"
	BugPriorityLow      BugPriority = "low"
)

type BugSeverity string

const (
	SeverityBlocker  BugSeverity = "blocker"
	SeverityCritical BugSeverity = "critical"
	SeverityMajor    BugSeverity = "major"
	SeverityMinor    BugSeverity = "minor"
	SeverityTrivial  BugSeverity = "trivial"
)

type BugEnvironment string

const (
	EnvDevelopment BugEnvironment = "development"
	EnvTesting     BugEnvironment = "testing"
	EnvStaging     BugEnvironment = "staging"
	EnvProduction  BugEnvironment = "production"
)

type BugCause string

const (
	CauseCodeError      BugCause = "code_error"
	CauseDesignFlaw     BugCause = "design_flaw"
	CauseRequirementGap BugCause = "requirement_gap"
	CauseEnvironment    BugCause = "environment_issue"
	CauseOther          BugCause = "other"
)

type Bug struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ProjectID     uint            `gorm:"not null;index:idx_bug_project" json:"project_id"`
	SprintID      *uint           `gorm:"index:idx_bug_sprint" json:"sprint_id"`
	RequirementID *uint           `gorm:"index:idx_bug_requirement" json:"requirement_id"`
	TaskID        *uint           `gorm:"index:idx_bug_task" json:"task_id"`
	TestCaseID    *uint           `gorm:"index:idx_bug_testcase" json:"testcase_id"`
	Number        string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"number"`
	Title         string          `gorm:"type:varchar(200);not null" json:"title"`
	Description   string          `gorm:"type:text;not null" json:"description"`
	Status        BugStatus       `gorm:"type:varchar(20);not null;default:new;index:idx_bug_status" json:"status"`
	Priority      BugPriority     `gorm:"type:varchar(10);not null;default:medium" json:"priority"`
	Severity      BugSeverity     `gorm:"type:varchar(10);not null;default:major" json:"severity"`
	Environment   *BugEnvironment `gorm:"type:varchar(20)" json:"environment"`
	DefectCause   *BugCause       `gorm:"type:varchar(20)" json:"defect_cause"`
	CreatorID     uint            `gorm:"not null" json:"creator_id"`
	AssigneeID    *uint           `json:"assignee_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Project     *Project     `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Sprint      *Sprint      `gorm:"foreignKey:SprintID" json:"sprint,omitempty"`
	Requirement *Requirement `gorm:"foreignKey:RequirementID" json:"requirement,omitempty"`
	Task        *Task        `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Creator     *User        `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Assignee    *User        `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}

func (Bug) TableName() string { return "bugs" }

type BugHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BugID     uint      `gorm:"not null;index:idx_bughist_bug" json:"bug_id"`
	Field     string    `gorm:"type:varchar(50);not null" json:"field"`
	OldValue  *string   `gorm:"type:varchar(255)" json:"old_value"`
	NewValue  *string   `gorm:"type:varchar(255)" json:"new_value"`
	ChangedBy uint      `gorm:"not null" json:"changed_by"`
	ChangedAt time.Time `gorm:"not null" json:"changed_at"`

	User *User `gorm:"foreignKey:ChangedBy" json:"user,omitempty"`
}

func (BugHistory) TableName() string { return "bug_history" }
