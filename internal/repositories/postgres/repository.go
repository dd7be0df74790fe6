package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/voice-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the GORM backed repositories.Repository. Despite the package
// name the queries stay portable so tests can run them on SQLite.
type Repository struct {
	db *gorm.DB

	survey     repositories.SurveyRepository
	section    repositories.SectionRepository
	question   repositories.QuestionRepository
	block      repositories.BlockInstanceRepository
	response   repositories.ResponseRepository
	membership repositories.MembershipRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		survey:     NewSurveyPostgreSQL(db),
		section:    NewSectionPostgreSQL(db),
		question:   NewQuestionPostgreSQL(db),
		block:      NewBlockInstancePostgreSQL(db),
		response:   NewResponsePostgreSQL(db),
		membership: NewMembershipPostgreSQL(db),
	}
}

func (r *Repository) Survey() repositories.SurveyRepository               { return r.survey }
func (r *Repository) Section() repositories.SectionRepository             { return r.section }
func (r *Repository) Question() repositories.QuestionRepository           { return r.question }
func (r *Repository) BlockInstance() repositories.BlockInstanceRepository { return r.block }
func (r *Repository) Response() repositories.ResponseRepository           { return r.response }
func (r *Repository) Membership() repositories.MembershipRepository       { return r.membership }

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// getDB returns the transaction when one is supplied.
func getDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
