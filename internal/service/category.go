package service

import (
	"errors"

	"github.com/Devliang24/tapb/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryService manages the requirement and test case category forests.
// Both trees behave identically: a new node is appended after its siblings,
// and deleting a node splices it out, reattaching its children to the
// deleted node's parent rather than dropping the subtree.
type CategoryService struct {
	db     *gorm.DB
	access *AccessService
}

func NewCategoryService(db *gorm.DB, access *AccessService) *CategoryService {
	return &CategoryService{db: db, access: access}
}

// orderBy quotes the order column, an SQL keyword on both backends.
func orderBy() clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: "order"}}
}

func (s *CategoryService) CreateRequirementCategory(projectID uint, name string, parentID *uint, actorID uint) (*model.RequirementCategory, error) {
	if _, err := s.access.CheckProjectAccess(projectID, actorID); err != nil {
		return nil, err
	}
	if parentID != nil {
		var parent model.RequirementCategory
		if err := s.db.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NotFoundf("parent category not found")
			}
			return nil, err
		}
		if parent.ProjectID != projectID {
			return nil, Validationf("parent category must belong to the same project")
		}
	}

	category := &model.RequirementCategory{
		ProjectID: projectID,
		ParentID:  parentID,
		Name:      name,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.nextRequirementOrder(tx, projectID, parentID)
		if err != nil {
			return err
		}
		category.Order = order
		return tx.Create(category).Error
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) ListRequirementCategories(projectID, actorID uint) ([]model.RequirementCategory, error) {
	if _, err := s.access.CheckProjectAccess(projectID, actorID); err != nil {
		return nil, err
	}
	var categories []model.RequirementCategory
	if err := s.db.Where("project_id = ?", projectID).
		Order(orderBy()).Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CategoryService) UpdateRequirementCategory(id uint, name string, actorID uint) (*model.RequirementCategory, error) {
	var category model.RequirementCategory
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("category not found")
		}
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(category.ProjectID, actorID); err != nil {
		return nil, err
	}
	if err := s.db.Model(&category).Update("name", name).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteRequirementCategory splices the node out: requirements filed under it
// lose the category, its children move up to its parent, then the row goes.
func (s *CategoryService) DeleteRequirementCategory(id, actorID uint) error {
	var category model.RequirementCategory
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("category not found")
		}
		return err
	}
	if _, err := s.access.CheckProjectAccess(category.ProjectID, actorID); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Requirement{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.RequirementCategory{}).Where("parent_id = ?", id).
			Update("parent_id", category.ParentID).Error; err != nil {
			return err
		}
		return tx.Delete(&model.RequirementCategory{}, id).Error
	})
}

func (s *CategoryService) CreateTestCaseCategory(projectID uint, name string, parentID *uint, actorID uint) (*model.TestCaseCategory, error) {
	if _, err := s.access.CheckProjectAccess(projectID, actorID); err != nil {
		return nil, err
	}
	if parentID != nil {
		var parent model.TestCaseCategory
		if err := s.db.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NotFoundf("parent category not found")
			}
			return nil, err
		}
		if parent.ProjectID != projectID {
			return nil, Validationf("parent category must belong to the same project")
		}
	}

	category := &model.TestCaseCategory{
		ProjectID: projectID,
		ParentID:  parentID,
		Name:      name,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.nextTestCaseOrder(tx, projectID, parentID)
		if err != nil {
			return err
		}
		category.Order = order
		return tx.Create(category).Error
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) ListTestCaseCategories(projectID, actorID uint) ([]model.TestCaseCategory, error) {
	if _, err := s.access.CheckProjectAccess(projectID, actorID); err != nil {
		return nil, err
	}
	var categories []model.TestCaseCategory
	if err := s.db.Where("project_id = ?", projectID).
		Order(orderBy()).Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CategoryService) UpdateTestCaseCategory(id uint, name string, actorID uint) (*model.TestCaseCategory, error) {
	var category model.TestCaseCategory
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("category not found")
		}
		return nil, err
	}
	if _, err := s.access.CheckProjectAccess(category.ProjectID, actorID); err != nil {
		return nil, err
	}
	if err := s.db.Model(&category).Update("name", name).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) DeleteTestCaseCategory(id, actorID uint) error {
	var category model.TestCaseCategory
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("category not found")
		}
		return err
	}
	if _, err := s.access.CheckProjectAccess(category.ProjectID, actorID); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.TestCase{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.TestCaseCategory{}).Where("parent_id = ?", id).
			Update("parent_id", category.ParentID).Error; err != nil {
			return err
		}
		return tx.Delete(&model.TestCaseCategory{}, id).Error
	})
}

// New nodes append after existing siblings: order = current sibling count.
func (s *CategoryService) nextRequirementOrder(tx *gorm.DB, projectID uint, parentID *uint) (int, error) {
	query := tx.Model(&model.RequirementCategory{}).Where("project_id = ?", projectID)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (s *CategoryService) nextTestCaseOrder(tx *gorm.DB, projectID uint, parentID *uint) (int, error) {
	query := tx.Model(&model.TestCaseCategory{}).Where("project_id = ?", projectID)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
