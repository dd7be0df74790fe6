package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories"
	"gorm.io/gorm"
)

type SectionPostgreSQL struct {
	db *gorm.DB
}

func NewSectionPostgreSQL(db *gorm.DB) repositories.SectionRepository {
	return &SectionPostgreSQL{db: db}
}

func (s *SectionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, section *models.Section) error {
	if err := getDB(s.db, tx).WithContext(ctx).Create(section).Error; err != nil {
		return fmt.Errorf("failed to create section: %w", err)
	}
	return nil
}

func (s *SectionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Section, error) {
	var section models.Section
	if err := getDB(s.db, tx).WithContext(ctx).First(&section, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get section %d: %w", id, err)
	}
	return &section, nil
}

func (s *SectionPostgreSQL) ListBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) ([]*models.Section, error) {
	var sections []*models.Section
	err := getDB(s.db, tx).WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("seq ASC, id ASC").
		Find(&sections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	return sections, nil
}

func (s *SectionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, section *models.Section) error {
	if err := getDB(s.db, tx).WithContext(ctx).Omit("Questions").Save(section).Error; err != nil {
		return fmt.Errorf("failed to update section: %w", err)
	}
	return nil
}

func (s *SectionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := getDB(s.db, tx).WithContext(ctx).Delete(&models.Section{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete section: %w", err)
	}
	return nil
}

func (s *SectionPostgreSQL) CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (int64, error) {
	var count int64
	err := getDB(s.db, tx).WithContext(ctx).
		Model(&models.Section{}).
		Where("survey_id = ?", surveyID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count sections: %w", err)
	}
	return count, nil
}

func (s *SectionPostgreSQL) ShiftSeqAfter(ctx context.Context, tx *gorm.DB, surveyID uint, afterSeq, delta int) error {
	err := getDB(s.db, tx).WithContext(ctx).
		Model(&models.Section{}).
		Where("survey_id = ? AND seq > ?", surveyID, afterSeq).
		UpdateColumn("seq", gorm.Expr("seq + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("failed to renumber sections: %w", err)
	}
	return nil
}
