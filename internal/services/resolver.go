package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/SAP-F-2025/voice-service/internal/cache"
	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories"
	"gorm.io/gorm"
)

// ResolvedBlock is a block instance together with its survey and the
// questions that apply to it, in bank order.
type ResolvedBlock struct {
	Instance  *models.BlockInstance
	Survey    *models.Survey
	Questions []*models.Question
}

// QuestionIDs returns the applicable ids in bank order.
func (r *ResolvedBlock) QuestionIDs() []uint {
	ids := make([]uint, len(r.Questions))
	for i, q := range r.Questions {
		ids[i] = q.ID
	}
	return ids
}

func (r *ResolvedBlock) Applicable(questionID uint) bool {
	for _, q := range r.Questions {
		if q.ID == questionID {
			return true
		}
	}
	return false
}

// Resolver turns a block instance configuration into its applicable
// questions and its audience.
type Resolver interface {
	ResolveQuestions(ctx context.Context, tx *gorm.DB, instanceID uint) (*ResolvedBlock, error)
	ResolveAudience(ctx context.Context, tx *gorm.DB, instance *models.BlockInstance) ([]string, error)
	IsAuthor(ctx context.Context, tx *gorm.DB, courseID uint, userID string) (bool, error)
	SurveyStructure(ctx context.Context, tx *gorm.DB, surveyID uint) (*models.Survey, error)
}

type RoleConfig struct {
	StudentRole    string
	AuthoringRoles []string
}

type resolver struct {
	repo   repositories.Repository
	cache  cache.StructureCache
	roles  RoleConfig
	logger *ServiceLogger
}

func NewResolver(repo repositories.Repository, structureCache cache.StructureCache, roles RoleConfig, logger *ServiceLogger) Resolver {
	if structureCache == nil {
		structureCache = cache.NewNoopStructureCache()
	}
	return &resolver{
		repo:   repo,
		cache:  structureCache,
		roles:  roles,
		logger: logger,
	}
}

func (r *resolver) ResolveQuestions(ctx context.Context, tx *gorm.DB, instanceID uint) (*ResolvedBlock, error) {
	instance, err := r.repo.BlockInstance().GetByID(ctx, tx, instanceID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrBlockInstanceNotFound
		}
		return nil, err
	}
	if !instance.Configured() {
		return nil, ErrBlockNotConfigured
	}

	survey, err := r.SurveyStructure(ctx, tx, instance.SurveyID)
	if err != nil {
		return nil, err
	}

	return &ResolvedBlock{
		Instance:  instance,
		Survey:    survey,
		Questions: ApplicableQuestions(survey, instance.SelectedQuestionIDs()),
	}, nil
}

// SurveyStructure loads the survey with ordered sections and questions,
// going through the structure cache.
func (r *resolver) SurveyStructure(ctx context.Context, tx *gorm.DB, surveyID uint) (*models.Survey, error) {
	if cached, err := r.cache.GetSurvey(ctx, surveyID); err != nil {
		r.logger.Logger().WarnContext(ctx, "Survey structure cache read failed", "survey_id", surveyID, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	survey, err := r.repo.Survey().GetWithStructure(ctx, tx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}

	if err := r.cache.SetSurvey(ctx, survey); err != nil {
		r.logger.Logger().WarnContext(ctx, "Survey structure cache write failed", "survey_id", surveyID, "error", err)
	}
	return survey, nil
}

// ApplicableQuestions flattens the survey in section then question order,
// keeping questions that are selected or mandatory.
func ApplicableQuestions(survey *models.Survey, selected []uint) []*models.Question {
	chosen := make(map[uint]struct{}, len(selected))
	for _, id := range selected {
		chosen[id] = struct{}{}
	}

	sections := append([]models.Section(nil), survey.Sections...)
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Seq < sections[j].Seq })

	var out []*models.Question
	for _, section := range sections {
		questions := append([]models.Question(nil), section.Questions...)
		sort.SliceStable(questions, func(i, j int) bool { return questions[i].Seq < questions[j].Seq })
		for i := range questions {
			q := questions[i]
			if _, ok := chosen[q.ID]; ok || q.Mandatory {
				out = append(out, &q)
			}
		}
	}
	return out
}

func (r *resolver) ResolveAudience(ctx context.Context, tx *gorm.DB, instance *models.BlockInstance) ([]string, error) {
	audience := instance.Audience()

	inCourse, err := audienceInCourse(ctx, r.repo, tx, instance.CourseID, audience)
	if err != nil {
		return nil, err
	}
	if !inCourse {
		return []string{}, nil
	}

	var candidates []string
	switch audience.Kind {
	case models.AudienceAll:
		candidates, err = r.repo.Membership().UsersWithRoles(ctx, tx, instance.CourseID, []string{r.roles.StudentRole})
	case models.AudienceGroup:
		candidates, err = r.repo.Membership().GroupMembers(ctx, tx, audience.ID)
	case models.AudienceGrouping:
		candidates, err = r.repo.Membership().GroupingMembers(ctx, tx, audience.ID)
	default:
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve audience %q: %w", audience.String(), err)
	}

	authors, err := r.repo.Membership().UsersWithRoles(ctx, tx, instance.CourseID, r.roles.AuthoringRoles)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve course authors: %w", err)
	}
	excluded := make(map[string]struct{}, len(authors))
	for _, id := range authors {
		excluded[id] = struct{}{}
	}

	seen := make(map[string]struct{}, len(candidates))
	users := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if _, skip := excluded[id]; skip {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}

func (r *resolver) IsAuthor(ctx context.Context, tx *gorm.DB, courseID uint, userID string) (bool, error) {
	return r.repo.Membership().HasAnyRole(ctx, tx, courseID, userID, r.roles.AuthoringRoles)
}

func containsUser(users []string, userID string) bool {
	i := sort.SearchStrings(users, userID)
	return i < len(users) && users[i] == userID
}

// audienceInCourse reports whether a group or grouping selector points at the
// given course. Missing groups and groupings count as outside it.
func audienceInCourse(ctx context.Context, repo repositories.Repository, tx *gorm.DB, courseID uint, audience models.Audience) (bool, error) {
	var owner uint
	switch audience.Kind {
	case models.AudienceGroup:
		group, err := repo.Membership().GetGroup(ctx, tx, audience.ID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return false, nil
			}
			return false, err
		}
		owner = group.CourseID
	case models.AudienceGrouping:
		grouping, err := repo.Membership().GetGrouping(ctx, tx, audience.ID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return false, nil
			}
			return false, err
		}
		owner = grouping.CourseID
	default:
		return true, nil
	}
	return owner == courseID, nil
}
