package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories"
	"gorm.io/gorm"
)

// DeriveStatus maps an answer count onto a completion state. A survey with
// no applicable questions counts as completed.
func DeriveStatus(answered, total int) models.CompletionStatus {
	switch {
	case total <= 0 || answered >= total:
		return models.StatusCompleted
	case answered <= 0:
		return models.StatusNotStarted
	default:
		return models.StatusInProgress
	}
}

// Tally counts statuses. Percentages are zero for an empty audience.
func Tally(statuses []models.CompletionStatus) models.CompletionSummary {
	summary := models.CompletionSummary{Total: len(statuses)}
	for _, status := range statuses {
		switch status {
		case models.StatusCompleted:
			summary.Completed++
		case models.StatusInProgress:
			summary.InProgress++
		default:
			summary.NotStarted++
		}
	}
	summary.CompletedPercent = percent(summary.Completed, summary.Total)
	summary.InProgressPercent = percent(summary.InProgress, summary.Total)
	summary.NotStartedPercent = percent(summary.NotStarted, summary.Total)
	return summary
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// CompletionService derives progress from stored answers on every call;
// nothing is cached between calls.
type CompletionService interface {
	StudentCompletion(ctx context.Context, instanceID uint, userID string) (*models.StudentCompletion, error)
	CourseCompletion(ctx context.Context, principal Principal, courseID, instanceID uint) (*models.CourseCompletion, error)
}

type completionService struct {
	repo     repositories.Repository
	resolver Resolver
	logger   *ServiceLogger
}

func NewCompletionService(repo repositories.Repository, resolver Resolver, logger *ServiceLogger) CompletionService {
	return &completionService{
		repo:     repo,
		resolver: resolver,
		logger:   logger,
	}
}

func (s *completionService) StudentCompletion(ctx context.Context, instanceID uint, userID string) (*models.StudentCompletion, error) {
	resolved, err := s.resolver.ResolveQuestions(ctx, nil, instanceID)
	if err != nil {
		return nil, err
	}
	return studentCompletion(ctx, s.repo, nil, resolved, userID)
}

func (s *completionService) CourseCompletion(ctx context.Context, principal Principal, courseID, instanceID uint) (*models.CourseCompletion, error) {
	op := s.logger.WithOperation(ctx, "course_completion", principal.UserID)

	resolved, err := s.resolver.ResolveQuestions(ctx, nil, instanceID)
	if err != nil {
		op.LogResult(instanceID, "block_instance", err)
		return nil, err
	}
	if resolved.Instance.CourseID != courseID {
		op.LogResult(instanceID, "block_instance", ErrBlockInstanceNotFound)
		return nil, ErrBlockInstanceNotFound
	}
	if err := requireCourseStaff(ctx, s.resolver, principal, courseID, instanceID, "view completions of"); err != nil {
		op.LogResult(instanceID, "block_instance", err)
		return nil, err
	}

	report, err := courseCompletion(ctx, s.repo, s.resolver, nil, resolved)
	op.LogResult(instanceID, "block_instance", err)
	return report, err
}

func studentCompletion(ctx context.Context, repo repositories.Repository, tx *gorm.DB, resolved *ResolvedBlock, userID string) (*models.StudentCompletion, error) {
	total := len(resolved.Questions)
	answered, err := repo.Response().CountAnswers(ctx, tx, resolved.Instance.ID, userID, resolved.QuestionIDs())
	if err != nil {
		return nil, err
	}

	completion := &models.StudentCompletion{
		UserID:   userID,
		Status:   DeriveStatus(int(answered), total),
		Answered: int(answered),
		Total:    total,
	}

	envelope, err := repo.Response().GetEnvelope(ctx, tx, resolved.Instance.ID, userID)
	switch {
	case err == nil:
		completion.TimeCompleted = envelope.TimeCompleted
	case !repositories.IsNotFoundError(err):
		return nil, err
	}
	return completion, nil
}

func courseCompletion(ctx context.Context, repo repositories.Repository, resolver Resolver, tx *gorm.DB, resolved *ResolvedBlock) (*models.CourseCompletion, error) {
	audience, err := resolver.ResolveAudience(ctx, tx, resolved.Instance)
	if err != nil {
		return nil, err
	}

	counts, err := repo.Response().CountAnswersByUser(ctx, tx, resolved.Instance.ID, resolved.QuestionIDs())
	if err != nil {
		return nil, err
	}
	answered := make(map[string]int, len(counts))
	for _, c := range counts {
		answered[c.UserID] = c.Count
	}

	envelopes, err := repo.Response().ListEnvelopes(ctx, tx, resolved.Instance.ID)
	if err != nil {
		return nil, err
	}
	byUser := make(map[string]*models.SurveyResponse, len(envelopes))
	for _, e := range envelopes {
		byUser[e.UserID] = e
	}

	users, err := repo.Membership().GetUsers(ctx, tx, audience)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName
	}

	total := len(resolved.Questions)
	students := make([]*models.StudentCompletion, 0, len(audience))
	statuses := make([]models.CompletionStatus, 0, len(audience))
	for _, userID := range audience {
		row := &models.StudentCompletion{
			UserID:   userID,
			FullName: names[userID],
			Status:   DeriveStatus(answered[userID], total),
			Answered: answered[userID],
			Total:    total,
		}
		if e, ok := byUser[userID]; ok {
			row.TimeCompleted = e.TimeCompleted
		}
		students = append(students, row)
		statuses = append(statuses, row.Status)
	}

	sort.SliceStable(students, func(i, j int) bool {
		if students[i].FullName != students[j].FullName {
			return students[i].FullName < students[j].FullName
		}
		return students[i].UserID < students[j].UserID
	})

	return &models.CourseCompletion{
		BlockInstanceID: resolved.Instance.ID,
		CourseID:        resolved.Instance.CourseID,
		SurveyID:        resolved.Instance.SurveyID,
		QuestionCount:   total,
		Summary:         Tally(statuses),
		Students:        students,
	}, nil
}

// requireCourseStaff allows site administrators and users holding an
// authoring role in the course.
func requireCourseStaff(ctx context.Context, resolver Resolver, principal Principal, courseID, resourceID uint, action string) error {
	if !principal.Authenticated() {
		return ErrUnauthorized
	}
	if principal.SiteAdmin {
		return nil
	}
	isAuthor, err := resolver.IsAuthor(ctx, nil, courseID, principal.UserID)
	if err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}
	if !isAuthor {
		return NewPermissionError(principal.UserID, resourceID, "block_instance", action, "requires an authoring role in the course")
	}
	return nil
}
