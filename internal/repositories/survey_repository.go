package repositories

import (
	"context"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"gorm.io/gorm"
)

// SurveyRepository covers surveys. Sequence numbers count active surveys.
type SurveyRepository interface {
	Create(ctx context.Context, tx *gorm.DB, survey *models.Survey) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error)
	// GetWithStructure loads sections and questions ordered by seq.
	GetWithStructure(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error)
	List(ctx context.Context, tx *gorm.DB, filters SurveyFilters) ([]*models.Survey, error)
	Update(ctx context.Context, tx *gorm.DB, survey *models.Survey) error

	CountActive(ctx context.Context, tx *gorm.DB) (int64, error)
	// ShiftSeqAfter adds delta to the seq of every active survey whose seq
	// is greater than afterSeq.
	ShiftSeqAfter(ctx context.Context, tx *gorm.DB, afterSeq, delta int) error
}

type SectionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, section *models.Section) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Section, error)
	ListBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) ([]*models.Section, error)
	Update(ctx context.Context, tx *gorm.DB, section *models.Section) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (int64, error)
	ShiftSeqAfter(ctx context.Context, tx *gorm.DB, surveyID uint, afterSeq, delta int) error
}

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	ListBySection(ctx context.Context, tx *gorm.DB, sectionID uint) ([]*models.Question, error)
	// ListBySurvey orders by section seq, then question seq.
	ListBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) ([]*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	DeleteBySection(ctx context.Context, tx *gorm.DB, sectionID uint) error

	CountBySection(ctx context.Context, tx *gorm.DB, sectionID uint) (int64, error)
	ShiftSeqAfter(ctx context.Context, tx *gorm.DB, sectionID uint, afterSeq, delta int) error
}
