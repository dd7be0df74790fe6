package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SAP-F-2025/voice-service/internal/events"
	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories"
	"github.com/SAP-F-2025/voice-service/internal/validator"
	"gorm.io/gorm"
)

// BlockService manages the survey blocks placed in a course. Every
// operation requires a site administrator or an authoring role in the
// course.
type BlockService interface {
	CreateBlock(ctx context.Context, principal Principal, courseID uint, req *CreateBlockRequest) (*models.BlockInstance, error)
	ListBlocks(ctx context.Context, principal Principal, courseID uint) ([]*models.BlockInstance, error)
	GetConfiguration(ctx context.Context, principal Principal, courseID, instanceID uint) (*BlockConfiguration, error)
	SaveConfiguration(ctx context.Context, principal Principal, courseID, instanceID uint, req *SaveBlockRequest) (*models.BlockInstance, error)
	DeleteBlock(ctx context.Context, principal Principal, courseID, instanceID uint) error
	AudienceOptions(ctx context.Context, principal Principal, courseID uint) ([]models.AudienceOption, error)
}

type blockService struct {
	repo      repositories.Repository
	resolver  Resolver
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *ServiceLogger
	now       func() time.Time
}

func NewBlockService(repo repositories.Repository, resolver Resolver, publisher events.EventPublisher, validator *validator.Validator, logger *ServiceLogger) BlockService {
	return &blockService{
		repo:      repo,
		resolver:  resolver,
		publisher: publisher,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *blockService) CreateBlock(ctx context.Context, principal Principal, courseID uint, req *CreateBlockRequest) (*models.BlockInstance, error) {
	op := s.logger.WithOperation(ctx, "create_block", principal.UserID)

	if err := requireCourseStaff(ctx, s.resolver, principal, courseID, 0, "add a survey block to"); err != nil {
		op.LogResult(0, "block_instance", err)
		return nil, err
	}
	if req == nil {
		req = &CreateBlockRequest{}
	}
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(0, "block_instance", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	instance, err := models.NewBlockInstance(courseID, req.Title)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	now := s.now().UTC()
	instance.TimeCreated = now
	instance.TimeModified = now

	err = s.repo.BlockInstance().Create(ctx, nil, instance)
	op.LogResult(instance.ID, "block_instance", err)
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func (s *blockService) ListBlocks(ctx context.Context, principal Principal, courseID uint) ([]*models.BlockInstance, error) {
	if err := requireCourseStaff(ctx, s.resolver, principal, courseID, 0, "list survey blocks of"); err != nil {
		return nil, err
	}
	return s.repo.BlockInstance().ListByCourse(ctx, nil, courseID)
}

// GetConfiguration returns what the edit form needs. The chosen survey's
// questions are marked checked when they are selected or mandatory.
func (s *blockService) GetConfiguration(ctx context.Context, principal Principal, courseID, instanceID uint) (*BlockConfiguration, error) {
	if err := requireCourseStaff(ctx, s.resolver, principal, courseID, instanceID, "configure"); err != nil {
		return nil, err
	}
	instance, err := s.getInstance(ctx, nil, courseID, instanceID)
	if err != nil {
		return nil, err
	}

	surveys, err := s.repo.Survey().List(ctx, nil, repositories.SurveyFilters{})
	if err != nil {
		return nil, err
	}
	options, err := s.audienceOptions(ctx, courseID)
	if err != nil {
		return nil, err
	}

	config := &BlockConfiguration{
		Instance:        instance,
		Surveys:         surveys,
		AudienceOptions: options,
	}
	if !instance.Configured() {
		return config, nil
	}

	survey, err := s.resolver.SurveyStructure(ctx, nil, instance.SurveyID)
	if err != nil {
		return nil, err
	}
	config.Survey = markChecked(survey, instance.SelectedQuestionIDs())
	return config, nil
}

func (s *blockService) SaveConfiguration(ctx context.Context, principal Principal, courseID, instanceID uint, req *SaveBlockRequest) (*models.BlockInstance, error) {
	op := s.logger.WithOperation(ctx, "save_block_configuration", principal.UserID)

	if err := requireCourseStaff(ctx, s.resolver, principal, courseID, instanceID, "configure"); err != nil {
		op.LogResult(instanceID, "block_instance", err)
		return nil, err
	}
	if req == nil {
		return nil, ErrValidationFailed
	}
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(instanceID, "block_instance", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	teacherID := strings.TrimSpace(req.TeacherID)
	if teacherID == "" {
		teacherID = principal.UserID
	}

	var instance *models.BlockInstance
	var applicable []uint

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		instance, err = s.getInstance(ctx, tx, courseID, instanceID)
		if err != nil {
			return err
		}

		survey, err := s.repo.Survey().GetByID(ctx, tx, req.SurveyID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSurveyNotFound
			}
			return err
		}
		if !survey.Active {
			return ErrSurveyInactive
		}

		isAuthor, err := s.resolver.IsAuthor(ctx, tx, courseID, teacherID)
		if err != nil {
			return err
		}
		if !isAuthor {
			return ValidationErrors{*NewValidationError("teacher_id", "teacher must hold an authoring role in the course", teacherID)}
		}

		bank, err := s.repo.Question().ListBySurvey(ctx, tx, survey.ID)
		if err != nil {
			return err
		}
		inSurvey := make(map[uint]bool, len(bank))
		for _, q := range bank {
			inSurvey[q.ID] = true
		}
		var errs ValidationErrors
		for _, id := range req.QuestionIDs {
			if !inSurvey[id] {
				errs = append(errs, *NewValidationError("question_ids", fmt.Sprintf("question %d does not belong to survey %d", id, survey.ID), id))
			}
		}
		if len(errs) > 0 {
			return errs
		}

		audience := models.ParseAudience(req.Group)
		inCourse, err := audienceInCourse(ctx, s.repo, tx, courseID, audience)
		if err != nil {
			return err
		}
		if !inCourse {
			return fmt.Errorf("%w: %s is not part of course %d", ErrGroupNotFound, audience.String(), courseID)
		}

		if title := strings.TrimSpace(req.Title); title != "" {
			instance.Title = title
		}
		instance.SurveyID = survey.ID
		instance.GroupSel = audience.String()
		instance.TeacherID = teacherID
		instance.QuestionsCSV = models.FormatIDList(models.SortedIDs(uniqueIDs(req.QuestionIDs)))
		if req.Open != nil {
			instance.Open = *req.Open
		}
		instance.TimeModified = s.now().UTC()

		if err := s.repo.BlockInstance().Update(ctx, tx, instance); err != nil {
			return err
		}

		structure, err := s.repo.Survey().GetWithStructure(ctx, tx, survey.ID)
		if err != nil {
			return err
		}
		for _, q := range ApplicableQuestions(structure, instance.SelectedQuestionIDs()) {
			applicable = append(applicable, q.ID)
		}
		return s.repo.BlockInstance().ReplaceReportingCopies(ctx, tx, instance, applicable)
	})

	op.LogResult(instanceID, "block_instance", err)
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, s.publisher, s.logger, events.NewVoiceEvent(events.EventBlockConfigured, events.BlockConfiguredEvent{
		BlockInstanceID: instance.ID,
		CourseID:        instance.CourseID,
		SurveyID:        instance.SurveyID,
		TeacherID:       instance.TeacherID,
		Audience:        instance.GroupSel,
		QuestionIDs:     applicable,
	}))
	return instance, nil
}

// DeleteBlock removes the instance, its reporting copies and every response
// given to it.
func (s *blockService) DeleteBlock(ctx context.Context, principal Principal, courseID, instanceID uint) error {
	op := s.logger.WithOperation(ctx, "delete_block", principal.UserID)

	if err := requireCourseStaff(ctx, s.resolver, principal, courseID, instanceID, "delete"); err != nil {
		op.LogResult(instanceID, "block_instance", err)
		return err
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.getInstance(ctx, tx, courseID, instanceID); err != nil {
			return err
		}
		if err := s.repo.Response().DeleteByInstance(ctx, tx, instanceID); err != nil {
			return err
		}
		return s.repo.BlockInstance().Delete(ctx, tx, instanceID)
	})

	op.LogResult(instanceID, "block_instance", err)
	return err
}

func (s *blockService) AudienceOptions(ctx context.Context, principal Principal, courseID uint) ([]models.AudienceOption, error) {
	if err := requireCourseStaff(ctx, s.resolver, principal, courseID, 0, "list audiences of"); err != nil {
		return nil, err
	}
	return s.audienceOptions(ctx, courseID)
}

// ===== HELPERS =====

func (s *blockService) audienceOptions(ctx context.Context, courseID uint) ([]models.AudienceOption, error) {
	groups, err := s.repo.Membership().ListGroups(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	groupings, err := s.repo.Membership().ListGroupings(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}

	options := make([]models.AudienceOption, 0, 1+len(groups)+len(groupings))
	options = append(options, models.AudienceOption{Value: string(models.AudienceAll), Label: "All participants"})
	for _, g := range groups {
		sel := models.Audience{Kind: models.AudienceGroup, ID: g.ID}
		options = append(options, models.AudienceOption{Value: sel.String(), Label: "Group: " + g.Name})
	}
	for _, g := range groupings {
		sel := models.Audience{Kind: models.AudienceGrouping, ID: g.ID}
		options = append(options, models.AudienceOption{Value: sel.String(), Label: "Grouping: " + g.Name})
	}
	return options, nil
}

func (s *blockService) getInstance(ctx context.Context, tx *gorm.DB, courseID, instanceID uint) (*models.BlockInstance, error) {
	instance, err := s.repo.BlockInstance().GetByID(ctx, tx, instanceID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrBlockInstanceNotFound
		}
		return nil, err
	}
	if instance.CourseID != courseID {
		return nil, ErrBlockInstanceNotFound
	}
	return instance, nil
}

// markChecked copies the survey tree so that a cached structure is never
// mutated.
func markChecked(survey *models.Survey, selected []uint) *models.Survey {
	chosen := make(map[uint]bool, len(selected))
	for _, id := range selected {
		chosen[id] = true
	}

	out := *survey
	out.Sections = make([]models.Section, len(survey.Sections))
	for i, section := range survey.Sections {
		section.Questions = append([]models.Question(nil), section.Questions...)
		for j := range section.Questions {
			q := &section.Questions[j]
			q.Checked = chosen[q.ID] || q.Mandatory
		}
		out.Sections[i] = section
	}
	return &out
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
