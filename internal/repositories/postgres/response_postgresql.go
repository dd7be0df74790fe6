package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{db: db}
}

func (r *ResponsePostgreSQL) GetEnvelope(ctx context.Context, tx *gorm.DB, instanceID uint, userID string) (*models.SurveyResponse, error) {
	var envelope models.SurveyResponse
	err := getDB(r.db, tx).WithContext(ctx).
		Where("blockinstanceid = ? AND userid = ?", instanceID, userID).
		First(&envelope).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get survey response: %w", err)
	}
	return &envelope, nil
}

func (r *ResponsePostgreSQL) CreateEnvelope(ctx context.Context, tx *gorm.DB, envelope *models.SurveyResponse) error {
	if err := getDB(r.db, tx).WithContext(ctx).Create(envelope).Error; err != nil {
		return fmt.Errorf("failed to create survey response: %w", err)
	}
	return nil
}

func (r *ResponsePostgreSQL) TouchEnvelope(ctx context.Context, tx *gorm.DB, envelopeID uint, at time.Time) error {
	err := getDB(r.db, tx).WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("id = ?", envelopeID).
		UpdateColumn("timemodified", at).Error
	if err != nil {
		return fmt.Errorf("failed to update survey response: %w", err)
	}
	return nil
}

func (r *ResponsePostgreSQL) ListEnvelopes(ctx context.Context, tx *gorm.DB, instanceID uint) ([]*models.SurveyResponse, error) {
	var envelopes []*models.SurveyResponse
	err := getDB(r.db, tx).WithContext(ctx).
		Where("blockinstanceid = ?", instanceID).
		Order("userid ASC").
		Find(&envelopes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list survey responses: %w", err)
	}
	return envelopes, nil
}

func (r *ResponsePostgreSQL) SetQuestionOrder(ctx context.Context, tx *gorm.DB, envelopeID uint, order string) (bool, error) {
	result := getDB(r.db, tx).WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("id = ? AND (questionorder IS NULL OR questionorder = '')", envelopeID).
		UpdateColumn("questionorder", order)
	if result.Error != nil {
		return false, fmt.Errorf("failed to store question order: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *ResponsePostgreSQL) MarkCompleted(ctx context.Context, tx *gorm.DB, envelopeID uint, at time.Time) (bool, error) {
	result := getDB(r.db, tx).WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("id = ? AND timecompleted IS NULL", envelopeID).
		UpdateColumn("timecompleted", at)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark survey response completed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *ResponsePostgreSQL) UpsertAnswer(ctx context.Context, tx *gorm.DB, answer *models.QuestionResponse) error {
	err := getDB(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "blockinstanceid"},
				{Name: "questionid"},
				{Name: "userid"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"responsevalue", "timemodified"}),
		}).
		Create(answer).Error
	if err != nil {
		return fmt.Errorf("failed to save question response: %w", err)
	}
	return nil
}

func (r *ResponsePostgreSQL) ListAnswers(ctx context.Context, tx *gorm.DB, instanceID uint, userID string) ([]*models.QuestionResponse, error) {
	var answers []*models.QuestionResponse
	err := getDB(r.db, tx).WithContext(ctx).
		Where("blockinstanceid = ? AND userid = ?", instanceID, userID).
		Order("questionid ASC").
		Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list question responses: %w", err)
	}
	return answers, nil
}

func (r *ResponsePostgreSQL) CountAnswers(ctx context.Context, tx *gorm.DB, instanceID uint, userID string, questionIDs []uint) (int64, error) {
	if len(questionIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := getDB(r.db, tx).WithContext(ctx).
		Model(&models.QuestionResponse{}).
		Where("blockinstanceid = ? AND userid = ? AND questionid IN ?", instanceID, userID, questionIDs).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count question responses: %w", err)
	}
	return count, nil
}

func (r *ResponsePostgreSQL) CountAnswersByUser(ctx context.Context, tx *gorm.DB, instanceID uint, questionIDs []uint) ([]repositories.AnswerCount, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	var counts []repositories.AnswerCount
	err := getDB(r.db, tx).WithContext(ctx).
		Model(&models.QuestionResponse{}).
		Select("userid AS user_id, COUNT(*) AS count").
		Where("blockinstanceid = ? AND questionid IN ?", instanceID, questionIDs).
		Group("userid").
		Order("userid ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count question responses: %w", err)
	}
	return counts, nil
}

func (r *ResponsePostgreSQL) DeleteByInstance(ctx context.Context, tx *gorm.DB, instanceID uint) error {
	return getDB(r.db, tx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blockinstanceid = ?", instanceID).Delete(&models.QuestionResponse{}).Error; err != nil {
			return fmt.Errorf("failed to delete question responses: %w", err)
		}
		if err := tx.Where("blockinstanceid = ?", instanceID).Delete(&models.SurveyResponse{}).Error; err != nil {
			return fmt.Errorf("failed to delete survey responses: %w", err)
		}
		return nil
	})
}
