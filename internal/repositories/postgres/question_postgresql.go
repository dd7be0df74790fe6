package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if err := getDB(q.db, tx).WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	if err := getDB(q.db, tx).WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get question %d: %w", id, err)
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) ListBySection(ctx context.Context, tx *gorm.DB, sectionID uint) ([]*models.Question, error) {
	var questions []*models.Question
	err := getDB(q.db, tx).WithContext(ctx).
		Where("section_id = ?", sectionID).
		Order("seq ASC, id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) ListBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) ([]*models.Question, error) {
	var questions []*models.Question
	err := getDB(q.db, tx).WithContext(ctx).
		Select("questions.*").
		Joins("JOIN sections ON sections.id = questions.section_id").
		Where("sections.survey_id = ?", surveyID).
		Order("sections.seq ASC, questions.seq ASC, questions.id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list survey questions: %w", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if err := getDB(q.db, tx).WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := getDB(q.db, tx).WithContext(ctx).Delete(&models.Question{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) DeleteBySection(ctx context.Context, tx *gorm.DB, sectionID uint) error {
	err := getDB(q.db, tx).WithContext(ctx).
		Where("section_id = ?", sectionID).
		Delete(&models.Question{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete section questions: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) CountBySection(ctx context.Context, tx *gorm.DB, sectionID uint) (int64, error) {
	var count int64
	err := getDB(q.db, tx).WithContext(ctx).
		Model(&models.Question{}).
		Where("section_id = ?", sectionID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

func (q *QuestionPostgreSQL) ShiftSeqAfter(ctx context.Context, tx *gorm.DB, sectionID uint, afterSeq, delta int) error {
	err := getDB(q.db, tx).WithContext(ctx).
		Model(&models.Question{}).
		Where("section_id = ? AND seq > ?", sectionID, afterSeq).
		UpdateColumn("seq", gorm.Expr("seq + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("failed to renumber questions: %w", err)
	}
	return nil
}
