package service

import (
	"errors"
	"time"

	"github.com/Devliang24/tapb/internal/model"
	"gorm.io/gorm"
)

type TestCaseService struct {
	db     *gorm.DB
	access *AccessService
}

func NewTestCaseService(db *gorm.DB, access *AccessService) *TestCaseService {
	return &TestCaseService{db: db, access: access}
}

type TestCaseCreate struct {
	Name           string
	Type           model.TestCaseType
	Priority       model.RequirementPriority
	CategoryID     *uint
	RequirementID  *uint
	SprintID       *uint
	Module         string
	Feature        string
	Precondition   string
	Steps          string
	TestData       string
	ExpectedResult string
}

func (s *TestCaseService) Create(projectID uint, in TestCaseCreate, actorID uint) (*model.TestCase, error) {
	if _, err := s.access.CheckProjectAccess(projectID, actorID); err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		if err := s.validateCategory(projectID, *in.CategoryID); err != nil {
			return nil, err
		}
	}
	if in.RequirementID != nil {
		if err := s.validateRequirement(projectID, *in.RequirementID); err != nil {
			return nil, err
		}
	}
	if in.SprintID != nil {
		if err := s.validateSprint(projectID, *in.SprintID); err != nil {
			return nil, err
		}
	}

	caseType := in.Type
	if caseType == "" {
		caseType = model.CaseFunctional
	}
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	testCase := &model.TestCase{
		ProjectID:      projectID,
		CategoryID:     in.CategoryID,
		RequirementID:  in.RequirementID,
		SprintID:       in.SprintID,
		Name:           in.Name,
		Type:           caseType,
		Status:         model.CaseNotExecuted,
		Priority:       priority,
		Module:         in.Module,
		Feature:        in.Feature,
		Precondition:   in.Precondition,
		Steps:          in.Steps,
		TestData:       in.TestData,
		ExpectedResult: in.ExpectedResult,
		CreatorID:      actorID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(testCase).Error; err != nil {
			return err
		}
		testCase.Number = FormatNumber(PrefixTestCase, testCase.ID)
		return tx.Model(testCase).UpdateColumn("number", testCase.Number).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(testCase.ID, actorID)
}

func (s *TestCaseService) Get(id, actorID uint) (*model.TestCase, error) {
	testCase, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(testCase.ProjectID, actorID); err != nil {
		return nil, err
	}
	if err := s.db.Preload("Creator").Preload("Category").Preload("Requirement").
		First(testCase, id).Error; err != nil {
		return nil, err
	}
	return testCase, nil
}

type TestCaseFilter struct {
	Status     string
	Type       string
	Priority   string
	CategoryID *uint
	Keyword    string
}

func (s *TestCaseService) List(projectID uint, f TestCaseFilter, page, pageSize int, actorID uint) ([]model.TestCase, int64, error) {
	if _, err := s.access.CheckProjectAccess(projectID, actorID); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&model.TestCase{}).Where("project_id = ?", projectID)
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.Priority != "" {
		query = query.Where("priority = ?", f.Priority)
	}
	if f.CategoryID != nil {
		query = query.Where("category_id = ?", *f.CategoryID)
	}
	if f.Keyword != "" {
		query = query.Where("name LIKE ? OR number LIKE ?", "%"+f.Keyword+"%", "%"+f.Keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cases []model.TestCase
	if err := query.Preload("Creator").Preload("Category").
		Order("updated_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&cases).Error; err != nil {
		return nil, 0, err
	}
	return cases, total, nil
}

type TestCaseUpdate struct {
	Name           *string
	Type           *model.TestCaseType
	Status         *model.TestCaseStatus
	Priority       *model.RequirementPriority
	CategoryID     *uint
	RequirementID  *uint
	SprintID       *uint
	Module         *string
	Feature        *string
	Precondition   *string
	Steps          *string
	TestData       *string
	ExpectedResult *string
	ActualResult   *string
}

func (s *TestCaseService) Update(id uint, in TestCaseUpdate, actorID uint) (*model.TestCase, error) {
	testCase, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(testCase.ProjectID, actorID); err != nil {
		return nil, err
	}
	if in.CategoryID != nil && *in.CategoryID != 0 {
		if err := s.validateCategory(testCase.ProjectID, *in.CategoryID); err != nil {
			return nil, err
		}
	}
	if in.RequirementID != nil && *in.RequirementID != 0 {
		if err := s.validateRequirement(testCase.ProjectID, *in.RequirementID); err != nil {
			return nil, err
		}
	}
	if in.SprintID != nil && *in.SprintID != 0 {
		if err := s.validateSprint(testCase.ProjectID, *in.SprintID); err != nil {
			return nil, err
		}
	}

	cs := NewChangeset()
	if in.Name != nil {
		cs.Set("name", testCase.Name, *in.Name)
	}
	if in.Type != nil {
		cs.Set("type", testCase.Type, *in.Type)
	}
	if in.Status != nil {
		cs.Set("status", testCase.Status, *in.Status)
	}
	if in.Priority != nil {
		cs.Set("priority", testCase.Priority, *in.Priority)
	}
	// A zero id clears the reference.
	if in.CategoryID != nil {
		cs.Set("category_id", testCase.CategoryID, zeroToNil(in.CategoryID))
	}
	if in.RequirementID != nil {
		cs.Set("requirement_id", testCase.RequirementID, zeroToNil(in.RequirementID))
	}
	if in.SprintID != nil {
		cs.Set("sprint_id", testCase.SprintID, zeroToNil(in.SprintID))
	}
	if in.Module != nil {
		cs.Set("module", testCase.Module, *in.Module)
	}
	if in.Feature != nil {
		cs.Set("feature", testCase.Feature, *in.Feature)
	}
	if in.Precondition != nil {
		cs.Set("precondition", testCase.Precondition, *in.Precondition)
	}
	if in.Steps != nil {
		cs.Set("steps", testCase.Steps, *in.Steps)
	}
	if in.TestData != nil {
		cs.Set("test_data", testCase.TestData, *in.TestData)
	}
	if in.ExpectedResult != nil {
		cs.Set("expected_result", testCase.ExpectedResult, *in.ExpectedResult)
	}
	if in.ActualResult != nil {
		cs.Set("actual_result", testCase.ActualResult, *in.ActualResult)
	}

	now := time.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return cs.Apply(tx, testCase, func(ch FieldChange) interface{} {
			return &model.TestCaseHistory{
				TestCaseID: testCase.ID,
				Field:      ch.Field,
				OldValue:   ch.OldValue,
				NewValue:   ch.NewValue,
				ChangedBy:  actorID,
				ChangedAt:  now,
			}
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id, actorID)
}

func (s *TestCaseService) Delete(id, actorID uint) error {
	testCase, err := s.find(id)
	if err != nil {
		return err
	}
	project, err := s.access.CheckProjectAccess(testCase.ProjectID, actorID)
	if err != nil {
		return err
	}
	if testCase.CreatorID != actorID && project.CreatorID != actorID {
		return Forbiddenf("only test case creator or project creator can delete")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Bug{}).Where("test_case_id = ?", id).
			Update("test_case_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("test_case_id = ?", id).Delete(&model.TestCaseHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.TestCase{}, id).Error
	})
}

// BatchDelete applies the same per-case permission check item by item and
// skips failures, reporting how many were removed.
func (s *TestCaseService) BatchDelete(ids []uint, actorID uint) (int, error) {
	if len(ids) == 0 {
		return 0, Validationf("no test case ids provided")
	}
	deleted := 0
	for _, id := range ids {
		if err := s.Delete(id, actorID); err != nil {
			if _, ok := AsError(err); ok {
				continue
			}
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func (s *TestCaseService) History(id, actorID uint) ([]model.TestCaseHistory, error) {
	testCase, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(testCase.ProjectID, actorID); err != nil {
		return nil, err
	}
	var history []model.TestCaseHistory
	if err := s.db.Preload("User").Where("test_case_id = ?", id).
		Order("changed_at desc, id desc").Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

func (s *TestCaseService) validateCategory(projectID, categoryID uint) error {
	var category model.TestCaseCategory
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("category not found")
		}
		return err
	}
	if category.ProjectID != projectID {
		return Validationf("category must belong to the same project")
	}
	return nil
}

func (s *TestCaseService) validateRequirement(projectID, requirementID uint) error {
	var requirement model.Requirement
	if err := s.db.First(&requirement, requirementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("requirement not found")
		}
		return err
	}
	if requirement.ProjectID != projectID {
		return Validationf("requirement must belong to the same project")
	}
	return nil
}

func (s *TestCaseService) validateSprint(projectID, sprintID uint) error {
	var sprint model.Sprint
	if err := s.db.First(&sprint, sprintID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("sprint not found")
		}
		return err
	}
	if sprint.ProjectID != projectID {
		return Validationf("sprint must belong to the same project")
	}
	return nil
}

func (s *TestCaseService) find(id uint) (*model.TestCase, error) {
	var testCase model.TestCase
	if err := s.db.First(&testCase, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("test case not found")
		}
		return nil, err
	}
	return &testCase, nil
}
