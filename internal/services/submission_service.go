package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/voice-service/internal/events"
	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories"
	"github.com/SAP-F-2025/voice-service/internal/validator"
	"gorm.io/gorm"
)

// SubmissionService is the respondent side of a survey block.
type SubmissionService interface {
	// SubmitAnswer stores one answer and reports success as true. Any
	// failure is returned as an error and nothing is written.
	SubmitAnswer(ctx context.Context, principal Principal, req *SubmitAnswerRequest) (bool, error)
	// StartSurvey renders the survey for the respondent, freezing a shuffled
	// question order on first render.
	StartSurvey(ctx context.Context, principal Principal, courseID, instanceID uint) (*SurveyView, error)
	BlockView(ctx context.Context, principal Principal, courseID, instanceID uint) (*BlockView, error)
}

type submissionService struct {
	repo      repositories.Repository
	resolver  Resolver
	publisher events.EventPublisher
	validator *validator.Validator
	policy    models.OrderPolicy
	logger    *ServiceLogger

	shuffle Shuffler
	now     func() time.Time
}

func NewSubmissionService(repo repositories.Repository, resolver Resolver, publisher events.EventPublisher, validator *validator.Validator, policy models.OrderPolicy, logger *ServiceLogger) SubmissionService {
	if !policy.Valid() {
		policy = models.OrderAppend
	}
	return &submissionService{
		repo:      repo,
		resolver:  resolver,
		publisher: publisher,
		validator: validator,
		policy:    policy,
		logger:    logger,
		shuffle:   DefaultShuffle,
		now:       time.Now,
	}
}

// ===== SUBMIT ANSWER =====

func (s *submissionService) SubmitAnswer(ctx context.Context, principal Principal, req *SubmitAnswerRequest) (bool, error) {
	op := s.logger.WithOperation(ctx, "submit_answer", principal.UserID)

	if !principal.Authenticated() {
		op.LogResult(0, "block_instance", ErrUnauthorized)
		return false, ErrUnauthorized
	}
	if req == nil {
		return false, ErrValidationFailed
	}
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(req.InstanceID, "block_instance", err)
		return false, fmt.Errorf("validation failed: %w", err)
	}

	now := s.now().UTC()
	var pending []*events.VoiceEvent

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		resolved, err := s.resolver.ResolveQuestions(ctx, tx, req.InstanceID)
		if err != nil {
			return err
		}
		if err := s.checkRespondent(ctx, tx, resolved.Instance, principal.UserID); err != nil {
			return err
		}
		if !resolved.Applicable(req.QuestionID) {
			return ErrQuestionNotApplicable
		}

		envelope, err := s.ensureEnvelope(ctx, tx, resolved.Instance.ID, principal.UserID, now)
		if err != nil {
			return err
		}

		answer, err := models.NewQuestionResponse(resolved.Instance.ID, req.QuestionID, principal.UserID, req.ResponseValue, now)
		if err != nil {
			return err
		}
		if err := s.repo.Response().UpsertAnswer(ctx, tx, answer); err != nil {
			return err
		}

		total := len(resolved.Questions)
		answered, err := s.repo.Response().CountAnswers(ctx, tx, resolved.Instance.ID, principal.UserID, resolved.QuestionIDs())
		if err != nil {
			return err
		}

		pending = append(pending, events.NewVoiceEvent(events.EventAnswerSubmitted, events.AnswerSubmittedEvent{
			BlockInstanceID: resolved.Instance.ID,
			CourseID:        resolved.Instance.CourseID,
			QuestionID:      req.QuestionID,
			UserID:          principal.UserID,
			Answered:        int(answered),
			Total:           total,
			SubmittedAt:     now,
		}))

		if DeriveStatus(int(answered), total) != models.StatusCompleted {
			return nil
		}
		stamped, err := s.repo.Response().MarkCompleted(ctx, tx, envelope.ID, now)
		if err != nil {
			return err
		}
		if stamped {
			pending = append(pending, events.NewVoiceEvent(events.EventSurveyCompleted, events.SurveyCompletedEvent{
				BlockInstanceID: resolved.Instance.ID,
				CourseID:        resolved.Instance.CourseID,
				SurveyID:        resolved.Instance.SurveyID,
				UserID:          principal.UserID,
				CompletedAt:     now,
			}))
		}
		return nil
	})

	op.LogResult(req.InstanceID, "block_instance", err)
	if err != nil {
		return false, err
	}

	s.publish(ctx, pending...)
	return true, nil
}

// ===== START SURVEY =====

func (s *submissionService) StartSurvey(ctx context.Context, principal Principal, courseID, instanceID uint) (*SurveyView, error) {
	op := s.logger.WithOperation(ctx, "start_survey", principal.UserID)

	if !principal.Authenticated() {
		op.LogResult(instanceID, "block_instance", ErrUnauthorized)
		return nil, ErrUnauthorized
	}

	now := s.now().UTC()
	var view *SurveyView
	var started *events.VoiceEvent

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		resolved, err := s.resolver.ResolveQuestions(ctx, tx, instanceID)
		if err != nil {
			return err
		}
		if resolved.Instance.CourseID != courseID {
			return ErrBlockInstanceNotFound
		}
		if err := s.checkRespondent(ctx, tx, resolved.Instance, principal.UserID); err != nil {
			return err
		}

		envelope, err := s.ensureEnvelope(ctx, tx, instanceID, principal.UserID, now)
		if err != nil {
			return err
		}

		applicable := resolved.QuestionIDs()
		if envelope.QuestionOrder == "" && len(applicable) > 0 {
			shuffled := append([]uint(nil), applicable...)
			s.shuffle(shuffled)

			stored, err := s.repo.Response().SetQuestionOrder(ctx, tx, envelope.ID, models.FormatIDList(shuffled))
			if err != nil {
				return err
			}
			if stored {
				envelope.QuestionOrder = models.FormatIDList(shuffled)
				started = events.NewVoiceEvent(events.EventSurveyStarted, events.SurveyStartedEvent{
					BlockInstanceID: instanceID,
					CourseID:        courseID,
					UserID:          principal.UserID,
					QuestionOrder:   shuffled,
				})
			} else if envelope, err = s.repo.Response().GetEnvelope(ctx, tx, instanceID, principal.UserID); err != nil {
				return err
			}
		}

		order := ReconcileOrder(envelope.Order(), applicable, s.policy)

		answers, err := s.repo.Response().ListAnswers(ctx, tx, instanceID, principal.UserID)
		if err != nil {
			return err
		}
		given := make(map[uint]string, len(answers))
		for _, a := range answers {
			given[a.QuestionID] = a.ResponseValue
		}

		byID := make(map[uint]*models.Question, len(resolved.Questions))
		for _, q := range resolved.Questions {
			byID[q.ID] = q
		}

		questions := make([]*SurveyQuestionView, 0, len(order))
		for _, id := range order {
			q := byID[id]
			item := &SurveyQuestionView{
				ID:           q.ID,
				SectionID:    q.SectionID,
				Name:         q.Name,
				QuestionText: q.QuestionText,
				Files:        q.Files,
				Mandatory:    q.Mandatory,
			}
			if value, ok := given[id]; ok {
				item.Answer = &value
			}
			questions = append(questions, item)
		}

		completion, err := studentCompletion(ctx, s.repo, tx, resolved, principal.UserID)
		if err != nil {
			return err
		}

		view = &SurveyView{
			BlockInstanceID: instanceID,
			CourseID:        resolved.Instance.CourseID,
			Title:           resolved.Instance.Title,
			SurveyID:        resolved.Survey.ID,
			SurveyName:      resolved.Survey.Name,
			Intro:           resolved.Survey.Intro,
			Format:          resolved.Survey.Format,
			Questions:       questions,
			Completion:      completion,
		}
		return nil
	})

	op.LogResult(instanceID, "block_instance", err)
	if err != nil {
		return nil, err
	}

	if started != nil {
		s.publish(ctx, started)
	}
	return view, nil
}

// ===== BLOCK VIEW =====

func (s *submissionService) BlockView(ctx context.Context, principal Principal, courseID, instanceID uint) (*BlockView, error) {
	if !principal.Authenticated() {
		return nil, ErrUnauthorized
	}

	instance, err := s.repo.BlockInstance().GetByID(ctx, nil, instanceID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrBlockInstanceNotFound
		}
		return nil, err
	}
	if instance.CourseID != courseID {
		return nil, ErrBlockInstanceNotFound
	}

	view := &BlockView{
		BlockInstanceID: instance.ID,
		CourseID:        instance.CourseID,
		Title:           instance.Title,
		Role:            BlockViewHidden,
		Configured:      instance.Configured(),
		Open:            instance.Open,
	}
	isOwner := instance.TeacherID != "" && instance.TeacherID == principal.UserID
	if !instance.Configured() {
		if isOwner {
			view.Role = BlockViewTeacher
		}
		return view, nil
	}

	resolved, err := s.resolver.ResolveQuestions(ctx, nil, instanceID)
	if err != nil {
		return nil, err
	}

	if isOwner {
		report, err := courseCompletion(ctx, s.repo, s.resolver, nil, resolved)
		if err != nil {
			return nil, err
		}
		view.Role = BlockViewTeacher
		view.Summary = &report.Summary
		return view, nil
	}

	audience, err := s.resolver.ResolveAudience(ctx, nil, instance)
	if err != nil {
		return nil, err
	}
	if !containsUser(audience, principal.UserID) {
		return view, nil
	}

	completion, err := studentCompletion(ctx, s.repo, nil, resolved, principal.UserID)
	if err != nil {
		return nil, err
	}
	view.Role = BlockViewStudent
	view.Student = completion
	return view, nil
}

// ===== HELPERS =====

func (s *submissionService) checkRespondent(ctx context.Context, tx *gorm.DB, instance *models.BlockInstance, userID string) error {
	if !instance.Open {
		return ErrSurveyClosed
	}
	audience, err := s.resolver.ResolveAudience(ctx, tx, instance)
	if err != nil {
		return err
	}
	if !containsUser(audience, userID) {
		return ErrNotInAudience
	}
	return nil
}

// ensureEnvelope returns the respondent's envelope, creating it on first
// contact and bumping timemodified otherwise.
func (s *submissionService) ensureEnvelope(ctx context.Context, tx *gorm.DB, instanceID uint, userID string, now time.Time) (*models.SurveyResponse, error) {
	envelope, err := s.repo.Response().GetEnvelope(ctx, tx, instanceID, userID)
	if err == nil {
		if err := s.repo.Response().TouchEnvelope(ctx, tx, envelope.ID, now); err != nil {
			return nil, err
		}
		envelope.TimeModified = now
		return envelope, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, err
	}

	envelope, err = models.NewSurveyResponse(instanceID, userID, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Response().CreateEnvelope(ctx, tx, envelope); err != nil {
		return nil, err
	}
	return envelope, nil
}

func (s *submissionService) publish(ctx context.Context, pending ...*events.VoiceEvent) {
	publishEvents(ctx, s.publisher, s.logger, pending...)
}

// publishEvents runs after the transaction has committed. A publish failure
// is logged and does not undo the write.
func publishEvents(ctx context.Context, publisher events.EventPublisher, logger *ServiceLogger, pending ...*events.VoiceEvent) {
	if publisher == nil {
		return
	}
	for _, event := range pending {
		if err := publisher.Publish(ctx, event); err != nil {
			logger.Logger().ErrorContext(ctx, "Failed to publish event",
				"event_type", event.Type,
				"event_id", event.ID,
				"error", err)
		}
	}
}
