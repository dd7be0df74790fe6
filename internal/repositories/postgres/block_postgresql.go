package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories"
	"gorm.io/gorm"
)

type BlockInstancePostgreSQL struct {
	db *gorm.DB
}

func NewBlockInstancePostgreSQL(db *gorm.DB) repositories.BlockInstanceRepository {
	return &BlockInstancePostgreSQL{db: db}
}

func (b *BlockInstancePostgreSQL) Create(ctx context.Context, tx *gorm.DB, instance *models.BlockInstance) error {
	if err := getDB(b.db, tx).WithContext(ctx).Create(instance).Error; err != nil {
		return fmt.Errorf("failed to create block instance: %w", err)
	}
	return nil
}

func (b *BlockInstancePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.BlockInstance, error) {
	var instance models.BlockInstance
	if err := getDB(b.db, tx).WithContext(ctx).First(&instance, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get block instance %d: %w", id, err)
	}
	return &instance, nil
}

func (b *BlockInstancePostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.BlockInstance, error) {
	var instances []*models.BlockInstance
	err := getDB(b.db, tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Find(&instances).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list block instances: %w", err)
	}
	return instances, nil
}

func (b *BlockInstancePostgreSQL) Update(ctx context.Context, tx *gorm.DB, instance *models.BlockInstance) error {
	if err := getDB(b.db, tx).WithContext(ctx).Save(instance).Error; err != nil {
		return fmt.Errorf("failed to update block instance: %w", err)
	}
	return nil
}

// Delete removes the instance together with its reporting copies.
func (b *BlockInstancePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return getDB(b.db, tx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blockinstanceid = ?", id).Delete(&models.SurveyQuestion{}).Error; err != nil {
			return fmt.Errorf("failed to delete survey questions: %w", err)
		}
		if err := tx.Where("blockinstanceid = ?", id).Delete(&models.TeacherSurvey{}).Error; err != nil {
			return fmt.Errorf("failed to delete teacher survey: %w", err)
		}
		if err := tx.Delete(&models.BlockInstance{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete block instance: %w", err)
		}
		return nil
	})
}

func (b *BlockInstancePostgreSQL) ReplaceReportingCopies(ctx context.Context, tx *gorm.DB, instance *models.BlockInstance, questionIDs []uint) error {
	return getDB(b.db, tx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blockinstanceid = ?", instance.ID).Delete(&models.SurveyQuestion{}).Error; err != nil {
			return fmt.Errorf("failed to clear survey questions: %w", err)
		}
		if err := tx.Where("blockinstanceid = ?", instance.ID).Delete(&models.TeacherSurvey{}).Error; err != nil {
			return fmt.Errorf("failed to clear teacher survey: %w", err)
		}
		if !instance.Configured() {
			return nil
		}

		teacherSurvey := &models.TeacherSurvey{
			BlockInstanceID: instance.ID,
			CourseID:        instance.CourseID,
			TeacherID:       instance.TeacherID,
			SurveyID:        instance.SurveyID,
		}
		if err := tx.Create(teacherSurvey).Error; err != nil {
			return fmt.Errorf("failed to create teacher survey: %w", err)
		}

		if len(questionIDs) == 0 {
			return nil
		}
		rows := make([]models.SurveyQuestion, 0, len(questionIDs))
		for _, id := range questionIDs {
			rows = append(rows, models.SurveyQuestion{BlockInstanceID: instance.ID, QuestionID: id})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to create survey questions: %w", err)
		}
		return nil
	})
}

func (b *BlockInstancePostgreSQL) GetTeacherSurvey(ctx context.Context, tx *gorm.DB, instanceID uint) (*models.TeacherSurvey, error) {
	var row models.TeacherSurvey
	err := getDB(b.db, tx).WithContext(ctx).
		Where("blockinstanceid = ?", instanceID).
		First(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher survey: %w", err)
	}
	return &row, nil
}

func (b *BlockInstancePostgreSQL) ListSurveyQuestions(ctx context.Context, tx *gorm.DB, instanceID uint) ([]*models.SurveyQuestion, error) {
	var rows []*models.SurveyQuestion
	err := getDB(b.db, tx).WithContext(ctx).
		Where("blockinstanceid = ?", instanceID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list survey questions: %w", err)
	}
	return rows, nil
}
