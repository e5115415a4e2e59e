package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

type institutionService struct {
	db *gorm.DB
}

// NewInstitutionService creates a new InstitutionServicer.
func NewInstitutionService(db *gorm.DB) InstitutionServicer {
	return &institutionService{db: db}
}

func (s *institutionService) CreateInstitution(userID, name, logoURL string) (*models.Institution, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "institution name is required")
	}
	inst := &models.Institution{UserID: userID, Name: name, LogoURL: strings.TrimSpace(logoURL)}
	if err := s.db.Create(inst).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return inst, nil
}

func (s *institutionService) GetUserInstitutions(userID string) ([]models.Institution, error) {
	var institutions []models.Institution
	if err := s.db.Where("user_id = ?", userID).Order("name ASC").Find(&institutions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return institutions, nil
}

// DeleteInstitution removes an institution no income or expense refers to.
func (s *institutionService) DeleteInstitution(userID, institutionID string) error {
	inst, err := requireInstitution(s.db, userID, institutionID)
	if err != nil {
		return err
	}

	for _, model := range []interface{}{&models.Income{}, &models.Expense{}} {
		var count int64
		if err := s.db.Model(model).Where("institution_id = ?", institutionID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrInstitutionInUse
		}
	}

	if err := s.db.Delete(inst).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func requireInstitution(db *gorm.DB, userID, institutionID string) (*models.Institution, error) {
	var inst models.Institution
	if err := db.Where("id = ? AND user_id = ?", institutionID, userID).First(&inst).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInstitutionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &inst, nil
}
