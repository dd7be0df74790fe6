package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories"
	"github.com/SAP-F-2025/voice-service/internal/validator"
	"gorm.io/gorm"
)

// MembershipService maintains the directory that audiences are resolved
// against. It is fed by site administrators or an upstream sync.
type MembershipService interface {
	UpsertUser(ctx context.Context, principal Principal, req *UserRequest) (*models.User, error)
	Enrol(ctx context.Context, principal Principal, courseID uint, req *EnrolmentRequest) (*models.CourseEnrolment, error)
	Unenrol(ctx context.Context, principal Principal, courseID uint, userID, role string) error

	CreateGroup(ctx context.Context, principal Principal, courseID uint, req *GroupRequest) (*models.Group, error)
	ListGroups(ctx context.Context, principal Principal, courseID uint) ([]*models.Group, error)
	AddGroupMember(ctx context.Context, principal Principal, groupID uint, userID string) error

	CreateGrouping(ctx context.Context, principal Principal, courseID uint, req *GroupingRequest) (*models.Grouping, error)
	ListGroupings(ctx context.Context, principal Principal, courseID uint) ([]*models.Grouping, error)
}

type membershipService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    *ServiceLogger
}

func NewMembershipService(repo repositories.Repository, validator *validator.Validator, logger *ServiceLogger) MembershipService {
	return &membershipService{
		repo:      repo,
		validator: validator,
		logger:    logger,
	}
}

func (s *membershipService) UpsertUser(ctx context.Context, principal Principal, req *UserRequest) (*models.User, error) {
	op := s.logger.WithOperation(ctx, "upsert_user", principal.UserID)

	if err := requireSiteAdmin(principal, 0, "user", "manage"); err != nil {
		op.LogResult(0, "user", err)
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(0, "user", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user := &models.User{
		ID:       strings.TrimSpace(req.ID),
		FullName: strings.TrimSpace(req.FullName),
		Email:    strings.TrimSpace(req.Email),
	}
	err := s.repo.Membership().UpsertUser(ctx, nil, user)
	op.LogResult(0, "user", err)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *membershipService) Enrol(ctx context.Context, principal Principal, courseID uint, req *EnrolmentRequest) (*models.CourseEnrolment, error) {
	op := s.logger.WithOperation(ctx, "enrol", principal.UserID)

	if err := requireSiteAdmin(principal, courseID, "course", "enrol users in"); err != nil {
		op.LogResult(courseID, "course", err)
		return nil, err
	}
	if courseID == 0 {
		return nil, NewValidationError("course_id", "course is required", courseID)
	}
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(courseID, "course", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	enrolment := &models.CourseEnrolment{
		CourseID: courseID,
		UserID:   strings.TrimSpace(req.UserID),
		Role:     strings.TrimSpace(req.Role),
	}
	err := s.repo.Membership().Enrol(ctx, nil, enrolment)
	op.LogResult(courseID, "course", err)
	if err != nil {
		return nil, err
	}
	return enrolment, nil
}

func (s *membershipService) Unenrol(ctx context.Context, principal Principal, courseID uint, userID, role string) error {
	op := s.logger.WithOperation(ctx, "unenrol", principal.UserID)

	if err := requireSiteAdmin(principal, courseID, "course", "unenrol users from"); err != nil {
		op.LogResult(courseID, "course", err)
		return err
	}
	err := s.repo.Membership().Unenrol(ctx, nil, courseID, userID, role)
	op.LogResult(courseID, "course", err)
	return err
}

func (s *membershipService) CreateGroup(ctx context.Context, principal Principal, courseID uint, req *GroupRequest) (*models.Group, error) {
	op := s.logger.WithOperation(ctx, "create_group", principal.UserID)

	if err := requireSiteAdmin(principal, courseID, "course", "create groups in"); err != nil {
		op.LogResult(courseID, "course", err)
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(courseID, "course", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	group := &models.Group{CourseID: courseID, Name: strings.TrimSpace(req.Name)}
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Membership().CreateGroup(ctx, tx, group); err != nil {
			return err
		}
		for _, userID := range req.Members {
			if err := s.repo.Membership().AddGroupMember(ctx, tx, group.ID, userID); err != nil {
				return err
			}
		}
		return nil
	})

	op.LogResult(group.ID, "group", err)
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *membershipService) ListGroups(ctx context.Context, principal Principal, courseID uint) ([]*models.Group, error) {
	if err := requireSiteAdmin(principal, courseID, "course", "list groups of"); err != nil {
		return nil, err
	}
	return s.repo.Membership().ListGroups(ctx, nil, courseID)
}

func (s *membershipService) AddGroupMember(ctx context.Context, principal Principal, groupID uint, userID string) error {
	op := s.logger.WithOperation(ctx, "add_group_member", principal.UserID)

	if err := requireSiteAdmin(principal, groupID, "group", "add members to"); err != nil {
		op.LogResult(groupID, "group", err)
		return err
	}
	if strings.TrimSpace(userID) == "" {
		return NewValidationError("user_id", "user_id is required", userID)
	}
	if _, err := s.getGroup(ctx, nil, groupID); err != nil {
		op.LogResult(groupID, "group", err)
		return err
	}

	err := s.repo.Membership().AddGroupMember(ctx, nil, groupID, userID)
	op.LogResult(groupID, "group", err)
	return err
}

// CreateGrouping creates the grouping and links the given groups, which must
// belong to the same course.
func (s *membershipService) CreateGrouping(ctx context.Context, principal Principal, courseID uint, req *GroupingRequest) (*models.Grouping, error) {
	op := s.logger.WithOperation(ctx, "create_grouping", principal.UserID)

	if err := requireSiteAdmin(principal, courseID, "course", "create groupings in"); err != nil {
		op.LogResult(courseID, "course", err)
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(courseID, "course", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	grouping := &models.Grouping{CourseID: courseID, Name: strings.TrimSpace(req.Name)}
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Membership().CreateGrouping(ctx, tx, grouping); err != nil {
			return err
		}
		for _, groupID := range req.GroupIDs {
			group, err := s.getGroup(ctx, tx, groupID)
			if err != nil {
				return err
			}
			if group.CourseID != courseID {
				return ErrGroupNotFound
			}
			if err := s.repo.Membership().AddGroupToGrouping(ctx, tx, grouping.ID, groupID); err != nil {
				return err
			}
		}
		return nil
	})

	op.LogResult(grouping.ID, "grouping", err)
	if err != nil {
		return nil, err
	}
	return grouping, nil
}

func (s *membershipService) ListGroupings(ctx context.Context, principal Principal, courseID uint) ([]*models.Grouping, error) {
	if err := requireSiteAdmin(principal, courseID, "course", "list groupings of"); err != nil {
		return nil, err
	}
	return s.repo.Membership().ListGroupings(ctx, nil, courseID)
}

func (s *membershipService) getGroup(ctx context.Context, tx *gorm.DB, id uint) (*models.Group, error) {
	group, err := s.repo.Membership().GetGroup(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}
