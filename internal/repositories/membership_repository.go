package repositories

import (
	"context"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"gorm.io/gorm"
)

// MembershipRepository answers who is in a course, group or grouping.
type MembershipRepository interface {
	UpsertUser(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetUsers(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error)

	Enrol(ctx context.Context, tx *gorm.DB, enrolment *models.CourseEnrolment) error
	Unenrol(ctx context.Context, tx *gorm.DB, courseID uint, userID, role string) error
	UsersWithRoles(ctx context.Context, tx *gorm.DB, courseID uint, roles []string) ([]string, error)
	HasAnyRole(ctx context.Context, tx *gorm.DB, courseID uint, userID string, roles []string) (bool, error)

	CreateGroup(ctx context.Context, tx *gorm.DB, group *models.Group) error
	GetGroup(ctx context.Context, tx *gorm.DB, id uint) (*models.Group, error)
	ListGroups(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Group, error)
	AddGroupMember(ctx context.Context, tx *gorm.DB, groupID uint, userID string) error
	GroupMembers(ctx context.Context, tx *gorm.DB, groupID uint) ([]string, error)

	CreateGrouping(ctx context.Context, tx *gorm.DB, grouping *models.Grouping) error
	GetGrouping(ctx context.Context, tx *gorm.DB, id uint) (*models.Grouping, error)
	ListGroupings(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Grouping, error)
	AddGroupToGrouping(ctx context.Context, tx *gorm.DB, groupingID, groupID uint) error
	GroupingMembers(ctx context.Context, tx *gorm.DB, groupingID uint) ([]string, error)
}
