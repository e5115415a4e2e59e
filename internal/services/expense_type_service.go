package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

type expenseTypeService struct {
	db *gorm.DB
}

// NewExpenseTypeService creates a new ExpenseTypeServicer.
func NewExpenseTypeService(db *gorm.DB) ExpenseTypeServicer {
	return &expenseTypeService{db: db}
}

// requireExpenseCategory checks that categoryID is one of the user's expense
// categories.
func requireExpenseCategory(db *gorm.DB, userID, categoryID string) error {
	var category models.Category
	err := db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if category.Type != models.CategoryTypeExpense {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category must be an expense category")
	}
	return nil
}

func (s *expenseTypeService) CreateExpenseType(userID, name string, categoryID *string) (*models.ExpenseType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "expense type name is required")
	}
	if categoryID != nil && *categoryID == "" {
		categoryID = nil
	}
	if categoryID != nil {
		if err := requireExpenseCategory(s.db, userID, *categoryID); err != nil {
			return nil, err
		}
	}

	et := &models.ExpenseType{UserID: userID, Name: name, CategoryID: categoryID}
	if err := s.db.Create(et).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetExpenseTypeByID(userID, et.ID)
}

// GetUserExpenseTypes lists the user's expense types with their categories,
// ordered by name.
func (s *expenseTypeService) GetUserExpenseTypes(userID string) ([]models.ExpenseType, error) {
	var types []models.ExpenseType
	if err := s.db.Preload("Category").Where("user_id = ?", userID).Order("name ASC").Find(&types).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return types, nil
}

func (s *expenseTypeService) GetExpenseTypeByID(userID, expenseTypeID string) (*models.ExpenseType, error) {
	var et models.ExpenseType
	err := s.db.Preload("Category").Where("id = ? AND user_id = ?", expenseTypeID, userID).First(&et).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseTypeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &et, nil
}

func (s *expenseTypeService) UpdateExpenseType(userID, expenseTypeID, name string, categoryID *string) (*models.ExpenseType, error) {
	et, err := s.GetExpenseTypeByID(userID, expenseTypeID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name = strings.TrimSpace(name); name != "" {
		updates["name"] = name
	}
	if categoryID != nil {
		if *categoryID == "" {
			updates["category_id"] = nil
		} else {
			if err := requireExpenseCategory(s.db, userID, *categoryID); err != nil {
				return nil, err
			}
			updates["category_id"] = *categoryID
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(et).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetExpenseTypeByID(userID, expenseTypeID)
}

// DeleteExpenseType removes an expense type no expense refers to.
func (s *expenseTypeService) DeleteExpenseType(userID, expenseTypeID string) error {
	et, err := s.GetExpenseTypeByID(userID, expenseTypeID)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.Expense{}).Where("expense_type_id = ?", expenseTypeID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrExpenseTypeInUse
	}

	if err := s.db.Delete(et).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
