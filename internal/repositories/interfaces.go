package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository groups every store used by the service and owns transactions.
type Repository interface {
	Survey() SurveyRepository
	Section() SectionRepository
	Question() QuestionRepository
	BlockInstance() BlockInstanceRepository
	Response() ResponseRepository
	Membership() MembershipRepository

	// WithTransaction runs fn inside a database transaction. Repositories
	// called with the supplied tx take part in it; a nil tx means the
	// default connection.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Ping(ctx context.Context) error
	Close() error
}

// ===== SHARED FILTER STRUCTS =====

type SurveyFilters struct {
	IncludeInactive bool `json:"include_inactive"`
	VisibleOnly     bool `json:"visible_only"`
}

// ===== SHARED HELPER STRUCTS =====

// AnswerCount is the number of applicable answers a respondent has given.
type AnswerCount struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

// IsNotFoundError reports whether err wraps gorm's record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
