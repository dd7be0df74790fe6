package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MembershipPostgreSQL struct {
	db *gorm.DB
}

func NewMembershipPostgreSQL(db *gorm.DB) repositories.MembershipRepository {
	return &MembershipPostgreSQL{db: db}
}

func (m *MembershipPostgreSQL) UpsertUser(ctx context.Context, tx *gorm.DB, user *models.User) error {
	err := getDB(m.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "email", "updated_at", "deleted_at"}),
		}).
		Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (m *MembershipPostgreSQL) GetUsers(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []*models.User
	if err := getDB(m.db, tx).WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

func (m *MembershipPostgreSQL) Enrol(ctx context.Context, tx *gorm.DB, enrolment *models.CourseEnrolment) error {
	err := getDB(m.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(enrolment).Error
	if err != nil {
		return fmt.Errorf("failed to enrol user: %w", err)
	}
	return nil
}

func (m *MembershipPostgreSQL) Unenrol(ctx context.Context, tx *gorm.DB, courseID uint, userID, role string) error {
	err := getDB(m.db, tx).WithContext(ctx).
		Where("course_id = ? AND user_id = ? AND role = ?", courseID, userID, role).
		Delete(&models.CourseEnrolment{}).Error
	if err != nil {
		return fmt.Errorf("failed to unenrol user: %w", err)
	}
	return nil
}

func (m *MembershipPostgreSQL) UsersWithRoles(ctx context.Context, tx *gorm.DB, courseID uint, roles []string) ([]string, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	var ids []string
	err := getDB(m.db, tx).WithContext(ctx).
		Model(&models.CourseEnrolment{}).
		Distinct().
		Where("course_id = ? AND role IN ?", courseID, roles).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list course users: %w", err)
	}
	return ids, nil
}

func (m *MembershipPostgreSQL) HasAnyRole(ctx context.Context, tx *gorm.DB, courseID uint, userID string, roles []string) (bool, error) {
	if len(roles) == 0 || userID == "" {
		return false, nil
	}
	var count int64
	err := getDB(m.db, tx).WithContext(ctx).
		Model(&models.CourseEnrolment{}).
		Where("course_id = ? AND user_id = ? AND role IN ?", courseID, userID, roles).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check course role: %w", err)
	}
	return count > 0, nil
}

func (m *MembershipPostgreSQL) CreateGroup(ctx context.Context, tx *gorm.DB, group *models.Group) error {
	if err := getDB(m.db, tx).WithContext(ctx).Create(group).Error; err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

func (m *MembershipPostgreSQL) GetGroup(ctx context.Context, tx *gorm.DB, id uint) (*models.Group, error) {
	var group models.Group
	if err := getDB(m.db, tx).WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get group %d: %w", id, err)
	}
	return &group, nil
}

func (m *MembershipPostgreSQL) ListGroups(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Group, error) {
	var groups []*models.Group
	err := getDB(m.db, tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("name ASC, id ASC").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (m *MembershipPostgreSQL) AddGroupMember(ctx context.Context, tx *gorm.DB, groupID uint, userID string) error {
	err := getDB(m.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.GroupMember{GroupID: groupID, UserID: userID}).Error
	if err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

func (m *MembershipPostgreSQL) GroupMembers(ctx context.Context, tx *gorm.DB, groupID uint) ([]string, error) {
	var ids []string
	err := getDB(m.db, tx).WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	return ids, nil
}

func (m *MembershipPostgreSQL) CreateGrouping(ctx context.Context, tx *gorm.DB, grouping *models.Grouping) error {
	if err := getDB(m.db, tx).WithContext(ctx).Create(grouping).Error; err != nil {
		return fmt.Errorf("failed to create grouping: %w", err)
	}
	return nil
}

func (m *MembershipPostgreSQL) GetGrouping(ctx context.Context, tx *gorm.DB, id uint) (*models.Grouping, error) {
	var grouping models.Grouping
	if err := getDB(m.db, tx).WithContext(ctx).First(&grouping, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get grouping %d: %w", id, err)
	}
	return &grouping, nil
}

func (m *MembershipPostgreSQL) ListGroupings(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Grouping, error) {
	var groupings []*models.Grouping
	err := getDB(m.db, tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("name ASC, id ASC").
		Find(&groupings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list groupings: %w", err)
	}
	return groupings, nil
}

func (m *MembershipPostgreSQL) AddGroupToGrouping(ctx context.Context, tx *gorm.DB, groupingID, groupID uint) error {
	err := getDB(m.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.GroupingGroup{GroupingID: groupingID, GroupID: groupID}).Error
	if err != nil {
		return fmt.Errorf("failed to add group to grouping: %w", err)
	}
	return nil
}

func (m *MembershipPostgreSQL) GroupingMembers(ctx context.Context, tx *gorm.DB, groupingID uint) ([]string, error) {
	var ids []string
	err := getDB(m.db, tx).WithContext(ctx).
		Model(&models.GroupMember{}).
		Distinct().
		Joins("JOIN grouping_groups ON grouping_groups.group_id = group_members.group_id").
		Where("grouping_groups.grouping_id = ?", groupingID).
		Order("group_members.user_id ASC").
		Pluck("group_members.user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list grouping members: %w", err)
	}
	return ids, nil
}
