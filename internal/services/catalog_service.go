package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SAP-F-2025/voice-service/internal/cache"
	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories"
	"github.com/SAP-F-2025/voice-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CatalogService administers the question bank. Every write requires a site
// administrator and keeps sequence numbers contiguous from 1.
type CatalogService interface {
	ListSurveys(ctx context.Context, filters repositories.SurveyFilters) ([]*models.Survey, error)
	GetSurvey(ctx context.Context, id uint) (*models.Survey, error)
	CreateSurvey(ctx context.Context, principal Principal, req *CreateSurveyRequest) (*models.Survey, error)
	UpdateSurvey(ctx context.Context, principal Principal, id uint, req *UpdateSurveyRequest) (*models.Survey, error)
	DeleteSurvey(ctx context.Context, principal Principal, id uint) error
	UndoDeleteSurvey(ctx context.Context, principal Principal, id uint) (*models.Survey, error)

	ListSections(ctx context.Context, surveyID uint) ([]*models.Section, error)
	CreateSection(ctx context.Context, principal Principal, surveyID uint, req *SectionRequest) (*models.Section, error)
	RenameSection(ctx context.Context, principal Principal, id uint, req *SectionRequest) (*models.Section, error)
	DeleteSection(ctx context.Context, principal Principal, id uint) error

	ListQuestions(ctx context.Context, sectionID uint) ([]*models.Question, error)
	CreateQuestion(ctx context.Context, principal Principal, sectionID uint, req *QuestionRequest) (*models.Question, error)
	UpdateQuestion(ctx context.Context, principal Principal, id uint, req *QuestionRequest) (*models.Question, error)
	DeleteQuestion(ctx context.Context, principal Principal, id uint) error
}

type catalogService struct {
	repo      repositories.Repository
	resolver  Resolver
	cache     cache.StructureCache
	validator *validator.Validator
	logger    *ServiceLogger
	now       func() time.Time
}

func NewCatalogService(repo repositories.Repository, resolver Resolver, structureCache cache.StructureCache, validator *validator.Validator, logger *ServiceLogger) CatalogService {
	if structureCache == nil {
		structureCache = cache.NewNoopStructureCache()
	}
	return &catalogService{
		repo:      repo,
		resolver:  resolver,
		cache:     structureCache,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// ===== SURVEYS =====

func (s *catalogService) ListSurveys(ctx context.Context, filters repositories.SurveyFilters) ([]*models.Survey, error) {
	return s.repo.Survey().List(ctx, nil, filters)
}

// GetSurvey returns the survey with its sections and questions.
func (s *catalogService) GetSurvey(ctx context.Context, id uint) (*models.Survey, error) {
	return s.resolver.SurveyStructure(ctx, nil, id)
}

func (s *catalogService) CreateSurvey(ctx context.Context, principal Principal, req *CreateSurveyRequest) (*models.Survey, error) {
	op := s.logger.WithOperation(ctx, "create_survey", principal.UserID)

	if err := requireSiteAdmin(principal, 0, "survey", "create"); err != nil {
		op.LogResult(0, "survey", err)
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(0, "survey", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}
	survey, err := models.NewSurvey(req.Name, req.Intro, models.SurveyFormat(req.Format), visible)
	if err != nil {
		op.LogResult(0, "survey", ErrValidationFailed)
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	survey.TimeModified = s.now().UTC()

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		count, err := s.repo.Survey().CountActive(ctx, tx)
		if err != nil {
			return err
		}
		survey.Seq = int(count) + 1
		return s.repo.Survey().Create(ctx, tx, survey)
	})

	op.LogResult(survey.ID, "survey", err)
	if err != nil {
		return nil, err
	}
	return survey, nil
}

func (s *catalogService) UpdateSurvey(ctx context.Context, principal Principal, id uint, req *UpdateSurveyRequest) (*models.Survey, error) {
	op := s.logger.WithOperation(ctx, "update_survey", principal.UserID)

	if err := requireSiteAdmin(principal, id, "survey", "update"); err != nil {
		op.LogResult(id, "survey", err)
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(id, "survey", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	survey, err := s.getSurvey(ctx, nil, id)
	if err != nil {
		op.LogResult(id, "survey", err)
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, NewValidationError("name", "name cannot be blank", *req.Name)
		}
		survey.Name = name
	}
	if req.Intro != nil {
		survey.Intro = *req.Intro
	}
	if req.Format != nil {
		survey.Format = models.SurveyFormat(*req.Format)
	}
	if req.Visible != nil {
		survey.Visible = *req.Visible
	}
	survey.TimeModified = s.now().UTC()

	err = s.repo.Survey().Update(ctx, nil, survey)
	op.LogResult(id, "survey", err)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return survey, nil
}

// DeleteSurvey deactivates the survey. It keeps its seq so that an undo can
// put it back in place; later active surveys move up by one.
func (s *catalogService) DeleteSurvey(ctx context.Context, principal Principal, id uint) error {
	op := s.logger.WithOperation(ctx, "delete_survey", principal.UserID)

	if err := requireSiteAdmin(principal, id, "survey", "delete"); err != nil {
		op.LogResult(id, "survey", err)
		return err
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		survey, err := s.getSurvey(ctx, tx, id)
		if err != nil {
			return err
		}
		if !survey.Active {
			return ErrSurveyInactive
		}

		survey.Active = false
		survey.TimeModified = s.now().UTC()
		if err := s.repo.Survey().Update(ctx, tx, survey); err != nil {
			return err
		}
		return s.repo.Survey().ShiftSeqAfter(ctx, tx, survey.Seq, -1)
	})

	op.LogResult(id, "survey", err)
	if err == nil {
		s.invalidate(ctx, id)
	}
	return err
}

// UndoDeleteSurvey reactivates the survey at its former position, clamped
// to the current number of active surveys.
func (s *catalogService) UndoDeleteSurvey(ctx context.Context, principal Principal, id uint) (*models.Survey, error) {
	op := s.logger.WithOperation(ctx, "undo_delete_survey", principal.UserID)

	if err := requireSiteAdmin(principal, id, "survey", "restore"); err != nil {
		op.LogResult(id, "survey", err)
		return nil, err
	}

	var survey *models.Survey
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		survey, err = s.getSurvey(ctx, tx, id)
		if err != nil {
			return err
		}
		if survey.Active {
			return ErrSurveyNotDeleted
		}

		count, err := s.repo.Survey().CountActive(ctx, tx)
		if err != nil {
			return err
		}
		pos := survey.Seq
		if pos < 1 {
			pos = 1
		}
		if pos > int(count)+1 {
			pos = int(count) + 1
		}

		if err := s.repo.Survey().ShiftSeqAfter(ctx, tx, pos-1, 1); err != nil {
			return err
		}
		survey.Active = true
		survey.Seq = pos
		survey.TimeModified = s.now().UTC()
		return s.repo.Survey().Update(ctx, tx, survey)
	})

	op.LogResult(id, "survey", err)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return survey, nil
}

// ===== SECTIONS =====

func (s *catalogService) ListSections(ctx context.Context, surveyID uint) ([]*models.Section, error) {
	if _, err := s.getSurvey(ctx, nil, surveyID); err != nil {
		return nil, err
	}
	return s.repo.Section().ListBySurvey(ctx, nil, surveyID)
}

func (s *catalogService) CreateSection(ctx context.Context, principal Principal, surveyID uint, req *SectionRequest) (*models.Section, error) {
	op := s.logger.WithOperation(ctx, "create_section", principal.UserID)

	if err := requireSiteAdmin(principal, surveyID, "survey", "add sections to"); err != nil {
		op.LogResult(surveyID, "survey", err)
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(surveyID, "survey", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	section, err := models.NewSection(surveyID, req.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.getSurvey(ctx, tx, surveyID); err != nil {
			return err
		}
		count, err := s.repo.Section().CountBySurvey(ctx, tx, surveyID)
		if err != nil {
			return err
		}
		section.Seq = int(count) + 1
		return s.repo.Section().Create(ctx, tx, section)
	})

	op.LogResult(section.ID, "section", err)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, surveyID)
	return section, nil
}

func (s *catalogService) RenameSection(ctx context.Context, principal Principal, id uint, req *SectionRequest) (*models.Section, error) {
	op := s.logger.WithOperation(ctx, "rename_section", principal.UserID)

	if err := requireSiteAdmin(principal, id, "section", "rename"); err != nil {
		op.LogResult(id, "section", err)
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(id, "section", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	section, err := s.getSection(ctx, nil, id)
	if err != nil {
		op.LogResult(id, "section", err)
		return nil, err
	}
	section.Name = strings.TrimSpace(req.Name)

	err = s.repo.Section().Update(ctx, nil, section)
	op.LogResult(id, "section", err)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, section.SurveyID)
	return section, nil
}

// DeleteSection removes the section and its questions and closes the gap
// in the survey's section numbering.
func (s *catalogService) DeleteSection(ctx context.Context, principal Principal, id uint) error {
	op := s.logger.WithOperation(ctx, "delete_section", principal.UserID)

	if err := requireSiteAdmin(principal, id, "section", "delete"); err != nil {
		op.LogResult(id, "section", err)
		return err
	}

	var surveyID uint
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		section, err := s.getSection(ctx, tx, id)
		if err != nil {
			return err
		}
		surveyID = section.SurveyID

		if err := s.repo.Question().DeleteBySection(ctx, tx, id); err != nil {
			return err
		}
		if err := s.repo.Section().Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.Section().ShiftSeqAfter(ctx, tx, section.SurveyID, section.Seq, -1)
	})

	op.LogResult(id, "section", err)
	if err == nil {
		s.invalidate(ctx, surveyID)
	}
	return err
}

// ===== QUESTIONS =====

func (s *catalogService) ListQuestions(ctx context.Context, sectionID uint) ([]*models.Question, error) {
	if _, err := s.getSection(ctx, nil, sectionID); err != nil {
		return nil, err
	}
	return s.repo.Question().ListBySection(ctx, nil, sectionID)
}

func (s *catalogService) CreateQuestion(ctx context.Context, principal Principal, sectionID uint, req *QuestionRequest) (*models.Question, error) {
	op := s.logger.WithOperation(ctx, "create_question", principal.UserID)

	if err := requireSiteAdmin(principal, sectionID, "section", "add questions to"); err != nil {
		op.LogResult(sectionID, "section", err)
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(sectionID, "section", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	mandatory := true
	if req.Mandatory != nil {
		mandatory = *req.Mandatory
	}
	question, err := models.NewQuestion(sectionID, req.Name, req.QuestionText, mandatory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if question.Files, err = encodeFiles(req.Files); err != nil {
		return nil, err
	}

	var surveyID uint
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		section, err := s.getSection(ctx, tx, sectionID)
		if err != nil {
			return err
		}
		surveyID = section.SurveyID

		count, err := s.repo.Question().CountBySection(ctx, tx, sectionID)
		if err != nil {
			return err
		}
		question.Seq = int(count) + 1
		return s.repo.Question().Create(ctx, tx, question)
	})

	op.LogResult(question.ID, "question", err)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, surveyID)
	return question, nil
}

func (s *catalogService) UpdateQuestion(ctx context.Context, principal Principal, id uint, req *QuestionRequest) (*models.Question, error) {
	op := s.logger.WithOperation(ctx, "update_question", principal.UserID)

	if err := requireSiteAdmin(principal, id, "question", "update"); err != nil {
		op.LogResult(id, "question", err)
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(id, "question", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	question, err := s.getQuestion(ctx, nil, id)
	if err != nil {
		op.LogResult(id, "question", err)
		return nil, err
	}
	section, err := s.getSection(ctx, nil, question.SectionID)
	if err != nil {
		op.LogResult(id, "question", err)
		return nil, err
	}

	question.Name = strings.TrimSpace(req.Name)
	question.QuestionText = req.QuestionText
	if req.Mandatory != nil {
		question.Mandatory = *req.Mandatory
	}
	if req.Files != nil {
		if question.Files, err = encodeFiles(req.Files); err != nil {
			return nil, err
		}
	}

	err = s.repo.Question().Update(ctx, nil, question)
	op.LogResult(id, "question", err)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, section.SurveyID)
	return question, nil
}

func (s *catalogService) DeleteQuestion(ctx context.Context, principal Principal, id uint) error {
	op := s.logger.WithOperation(ctx, "delete_question", principal.UserID)

	if err := requireSiteAdmin(principal, id, "question", "delete"); err != nil {
		op.LogResult(id, "question", err)
		return err
	}

	var surveyID uint
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		question, err := s.getQuestion(ctx, tx, id)
		if err != nil {
			return err
		}
		section, err := s.getSection(ctx, tx, question.SectionID)
		if err != nil {
			return err
		}
		surveyID = section.SurveyID

		if err := s.repo.Question().Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.Question().ShiftSeqAfter(ctx, tx, question.SectionID, question.Seq, -1)
	})

	op.LogResult(id, "question", err)
	if err == nil {
		s.invalidate(ctx, surveyID)
	}
	return err
}

// ===== HELPERS =====

func (s *catalogService) getSurvey(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error) {
	survey, err := s.repo.Survey().GetByID(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}
	return survey, nil
}

func (s *catalogService) getSection(ctx context.Context, tx *gorm.DB, id uint) (*models.Section, error) {
	section, err := s.repo.Section().GetByID(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	return section, nil
}

func (s *catalogService) getQuestion(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return question, nil
}

func (s *catalogService) invalidate(ctx context.Context, surveyID uint) {
	if err := s.cache.InvalidateSurvey(ctx, surveyID); err != nil {
		s.logger.Logger().WarnContext(ctx, "Failed to invalidate survey structure",
			"survey_id", surveyID,
			"error", err)
	}
}

func encodeFiles(files []models.QuestionFile) (datatypes.JSON, error) {
	if len(files) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(files)
	if err != nil {
		return nil, fmt.Errorf("failed to encode question files: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func requireSiteAdmin(principal Principal, resourceID uint, resource, action string) error {
	if !principal.Authenticated() {
		return ErrUnauthorized
	}
	if !principal.SiteAdmin {
		return NewPermissionError(principal.UserID, resourceID, resource, action, "requires site administrator")
	}
	return nil
}
