package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"gorm.io/gorm"
)

type BlockInstanceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, instance *models.BlockInstance) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.BlockInstance, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.BlockInstance, error)
	Update(ctx context.Context, tx *gorm.DB, instance *models.BlockInstance) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// ReplaceReportingCopies rewrites the teacher-survey row and the
	// survey-question rows of the instance.
	ReplaceReportingCopies(ctx context.Context, tx *gorm.DB, instance *models.BlockInstance, questionIDs []uint) error
	GetTeacherSurvey(ctx context.Context, tx *gorm.DB, instanceID uint) (*models.TeacherSurvey, error)
	ListSurveyQuestions(ctx context.Context, tx *gorm.DB, instanceID uint) ([]*models.SurveyQuestion, error)
}

// ResponseRepository stores envelopes and answers.
type ResponseRepository interface {
	GetEnvelope(ctx context.Context, tx *gorm.DB, instanceID uint, userID string) (*models.SurveyResponse, error)
	CreateEnvelope(ctx context.Context, tx *gorm.DB, envelope *models.SurveyResponse) error
	TouchEnvelope(ctx context.Context, tx *gorm.DB, envelopeID uint, at time.Time) error
	ListEnvelopes(ctx context.Context, tx *gorm.DB, instanceID uint) ([]*models.SurveyResponse, error)

	// SetQuestionOrder stores order only when none is stored yet and
	// reports whether it did.
	SetQuestionOrder(ctx context.Context, tx *gorm.DB, envelopeID uint, order string) (bool, error)
	// MarkCompleted stamps timecompleted only when it is still unset and
	// reports whether it did.
	MarkCompleted(ctx context.Context, tx *gorm.DB, envelopeID uint, at time.Time) (bool, error)

	// UpsertAnswer inserts or overwrites the answer keyed by
	// (instance, question, user).
	UpsertAnswer(ctx context.Context, tx *gorm.DB, answer *models.QuestionResponse) error
	ListAnswers(ctx context.Context, tx *gorm.DB, instanceID uint, userID string) ([]*models.QuestionResponse, error)
	CountAnswers(ctx context.Context, tx *gorm.DB, instanceID uint, userID string, questionIDs []uint) (int64, error)
	CountAnswersByUser(ctx context.Context, tx *gorm.DB, instanceID uint, questionIDs []uint) ([]AnswerCount, error)
	DeleteByInstance(ctx context.Context, tx *gorm.DB, instanceID uint) error
}
