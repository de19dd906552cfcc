package model

import "time"

// RequirementCategory and TestCaseCategory form per-project forests. Roots have
// a nil ParentID; Order is the zero-based position among same-parent siblings.

type RequirementCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index:idx_reqcat_project" json:"project_id"`
	ParentID  *uint     `gorm:"index:idx_reqcat_parent" json:"parent_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Order     int       `gorm:"column:order;not null;default:0" json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RequirementCategory) TableName() string { return "requirement_categories" }

type TestCaseCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index:idx_casecat_project" json:"project_id"`
	ParentID  *uint     `gorm:"index:idx_casecat_parent" json:"parent_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Order     int       `gorm:"column:order;not null;default:0" json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TestCaseCategory) TableName() string { return "testcase_categories" }
