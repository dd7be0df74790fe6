package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories"
	"gorm.io/gorm"
)

type SurveyPostgreSQL struct {
	db *gorm.DB
}

func NewSurveyPostgreSQL(db *gorm.DB) repositories.SurveyRepository {
	return &SurveyPostgreSQL{db: db}
}

func (s *SurveyPostgreSQL) Create(ctx context.Context, tx *gorm.DB, survey *models.Survey) error {
	if err := getDB(s.db, tx).WithContext(ctx).Create(survey).Error; err != nil {
		return fmt.Errorf("failed to create survey: %w", err)
	}
	return nil
}

func (s *SurveyPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error) {
	var survey models.Survey
	if err := getDB(s.db, tx).WithContext(ctx).First(&survey, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get survey %d: %w", id, err)
	}
	return &survey, nil
}

func (s *SurveyPostgreSQL) GetWithStructure(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error) {
	var survey models.Survey
	err := getDB(s.db, tx).WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC, id ASC")
		}).
		Preload("Sections.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC, id ASC")
		}).
		First(&survey, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get survey %d: %w", id, err)
	}
	return &survey, nil
}

func (s *SurveyPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SurveyFilters) ([]*models.Survey, error) {
	var surveys []*models.Survey
	query := getDB(s.db, tx).WithContext(ctx).Model(&models.Survey{})
	if !filters.IncludeInactive {
		query = query.Where("active = ?", true)
	}
	if filters.VisibleOnly {
		query = query.Where("visible = ?", true)
	}
	// Inactive surveys keep their last seq, so active ones sort first.
	if err := query.Order("active DESC, seq ASC, id ASC").Find(&surveys).Error; err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	return surveys, nil
}

func (s *SurveyPostgreSQL) Update(ctx context.Context, tx *gorm.DB, survey *models.Survey) error {
	if err := getDB(s.db, tx).WithContext(ctx).Omit("Sections").Save(survey).Error; err != nil {
		return fmt.Errorf("failed to update survey: %w", err)
	}
	return nil
}

func (s *SurveyPostgreSQL) CountActive(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := getDB(s.db, tx).WithContext(ctx).
		Model(&models.Survey{}).
		Where("active = ?", true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count surveys: %w", err)
	}
	return count, nil
}

func (s *SurveyPostgreSQL) ShiftSeqAfter(ctx context.Context, tx *gorm.DB, afterSeq, delta int) error {
	err := getDB(s.db, tx).WithContext(ctx).
		Model(&models.Survey{}).
		Where("active = ? AND seq > ?", true, afterSeq).
		UpdateColumn("seq", gorm.Expr("seq + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("failed to renumber surveys: %w", err)
	}
	return nil
}
