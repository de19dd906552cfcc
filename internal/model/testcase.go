package model

import "time"

type TestCaseType string

const (
	CaseFunctional    TestCaseType = "functional"
	CasePerformance   TestCaseType = "performance"
	CaseSecurity      TestCaseType = "security"
	CaseCompatibility TestCaseType = "compatibility"
	CaseSmoke         TestCaseType = "smoke"
	CaseRegression    TestCaseType = "regression"
)

type TestCaseStatus string

const (
	CasePassed      TestCaseStatus = "passed"
	CaseFailed      TestCaseStatus = "failed"
	CaseNotExecuted TestCaseStatus = "not_executed"
)

type TestCase struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	ProjectID      uint                `gorm:"not null;index:idx_case_project" json:"project_id"`
	CategoryID     *uint               `gorm:"index:idx_case_category" json:"category_id"`
	RequirementID  *uint               `gorm:"index:idx_case_requirement" json:"requirement_id"`
	SprintID       *uint               `gorm:"index:idx_case_sprint" json:"sprint_id"`
	Number         string              `gorm:"type:varchar(50);uniqueIndex;not null" json:"number"`
	Name           string              `gorm:"type:varchar(200);not null" json:"name"`
	Type           TestCaseType        `gorm:"type:varchar(20);not null;default:functional" json:"type"`
	Status         TestCaseStatus      `gorm:"type:varchar(20);not null;default:not_executed" json:"status"`
	Priority       RequirementPriority `gorm:"type:varchar(10);not null;default:medium" json:"priority"`
	Module         string              `gorm:"type:varchar(200)" json:"module"`
	Feature        string              `gorm:"type:varchar(200)" json:"feature"`
	Precondition   string              `gorm:"type:text" json:"precondition"`
	Steps          string              `gorm:"type:text" json:"steps"`
	TestData       string              `gorm:"type:text" json:"test_data"`
	ExpectedResult string              `gorm:"type:text" json:"expected_result"`
	ActualResult   string              `gorm:"type:text" json:"actual_result"`
	CreatorID      uint                `gorm:"not null" json:"creator_id"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`

	Project     *Project          `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Category    *TestCaseCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Requirement *Requirement      `gorm:"foreignKey:RequirementID" json:"requirement,omitempty"`
	Creator     *User             `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}

func (TestCase) TableName() string { return "testcases" }

type TestCaseHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TestCaseID uint      `gorm:"not null;index:idx_casehist_testcase" json:"testcase_id"`
	Field      string    `gorm:"type:varchar(50);not null" json:"field"`
	OldValue   *string   `gorm:"type:varchar(255)" json:"old_value"`
	NewValue   *string   `gorm:"type:varchar(255)" json:"new_value"`
	ChangedBy  uint      `gorm:"not null" json:"changed_by"`
	ChangedAt  time.Time `gorm:"not null" json:"changed_at"`

	User *User `gorm:"foreignKey:ChangedBy" json:"user,omitempty"`
}

func (TestCaseHistory) TableName() string { return "testcase_history" }
