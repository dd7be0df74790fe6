// Package testutil opens throwaway SQLite databases carrying the service
// schema, for repository, service and handler tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AllModels lists every table the service owns.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.CourseEnrolment{},
		&models.Group{},
		&models.GroupMember{},
		&models.Grouping{},
		&models.GroupingGroup{},
		&models.Survey{},
		&models.Section{},
		&models.Question{},
		&models.BlockInstance{},
		&models.TeacherSurvey{},
		&models.SurveyQuestion{},
		&models.SurveyResponse{},
		&models.QuestionResponse{},
	}
}

// NewDB returns an isolated in-memory database with the schema applied.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db := NewRawDB(t)
	require.NoError(t, db.AutoMigrate(AllModels()...))
	return db
}

// NewRawDB returns an empty in-memory database. It is limited to one
// connection, so code that escapes a transaction blocks instead of silently
// reading around it.
func NewRawDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}
