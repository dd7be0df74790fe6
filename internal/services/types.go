package services

import (
	"time"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"gorm.io/datatypes"
)

// ===== CATALOG =====

type CreateSurveyRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=255"`
	Intro   string `json:"intro"`
	Format  string `json:"format" validate:"required,survey_format"`
	Visible *bool  `json:"visible"`
}

type UpdateSurveyRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=255"`
	Intro   *string `json:"intro"`
	Format  *string `json:"format" validate:"omitempty,survey_format"`
	Visible *bool   `json:"visible"`
}

type SectionRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

type QuestionRequest struct {
	Name         string                `json:"name" validate:"required,min=1,max=255"`
	QuestionText string                `json:"question_text" validate:"required"`
	Mandatory    *bool                 `json:"mandatory"`
	Files        []models.QuestionFile `json:"files" validate:"omitempty,dive"`
}

// ===== BLOCK CONFIGURATION =====

type CreateBlockRequest struct {
	Title string `json:"title" validate:"max=255"`
}

type SaveBlockRequest struct {
	Title       string `json:"title" validate:"max=255"`
	SurveyID    uint   `json:"survey_id" validate:"required,gt=0"`
	Group       string `json:"group" validate:"audience_selector"`
	TeacherID   string `json:"teacher_id" validate:"max=255"`
	QuestionIDs []uint `json:"question_ids" validate:"omitempty,dive,gt=0"`
	Open        *bool  `json:"open"`
}

// BlockConfiguration is what the edit form needs: the current settings,
// every survey that can be chosen, the chosen survey's structure with
// applicable questions checked, and the audience options of the course.
type BlockConfiguration struct {
	Instance        *models.BlockInstance   `json:"instance"`
	Surveys         []*models.Survey        `json:"surveys"`
	Survey          *models.Survey          `json:"survey,omitempty"`
	AudienceOptions []models.AudienceOption `json:"audience_options"`
}

// ===== SUBMISSION =====

// SubmitAnswerRequest is the data payload of the submit_answer action.
type SubmitAnswerRequest struct {
	InstanceID    uint   `json:"instanceid" validate:"required,gt=0"`
	QuestionID    uint   `json:"questionid" validate:"required,gt=0"`
	ResponseValue string `json:"responsevalue" validate:"response_value"`
}

type SurveyQuestionView struct {
	ID           uint           `json:"id"`
	SectionID    uint           `json:"section_id"`
	Name         string         `json:"name"`
	QuestionText string         `json:"question_text"`
	Files        datatypes.JSON `json:"files,omitempty"`
	Mandatory    bool           `json:"mandatory"`
	Answer       *string        `json:"answer,omitempty"`
}

// SurveyView is the student's survey page: the questions in the order frozen
// for this respondent, with any answers already given.
type SurveyView struct {
	BlockInstanceID uint                      `json:"block_instance_id"`
	CourseID        uint                      `json:"course_id"`
	Title           string                    `json:"title"`
	SurveyID        uint                      `json:"survey_id"`
	SurveyName      string                    `json:"survey_name"`
	Intro           string                    `json:"intro"`
	Format          models.SurveyFormat       `json:"format"`
	Questions       []*SurveyQuestionView     `json:"questions"`
	Completion      *models.StudentCompletion `json:"completion"`
}

type BlockViewRole string

const (
	BlockViewStudent BlockViewRole = "student"
	BlockViewTeacher BlockViewRole = "teacher"
	BlockViewHidden  BlockViewRole = "hidden"
)

// BlockView is the content of the course block for one viewer.
type BlockView struct {
	BlockInstanceID uint                      `json:"block_instance_id"`
	CourseID        uint                      `json:"course_id"`
	Title           string                    `json:"title"`
	Role            BlockViewRole             `json:"role"`
	Configured      bool                      `json:"configured"`
	Open            bool                      `json:"open"`
	Student         *models.StudentCompletion `json:"student,omitempty"`
	Summary         *models.CompletionSummary `json:"summary,omitempty"`
}

// ===== MEMBERSHIP =====

type UserRequest struct {
	ID       string `json:"id" validate:"required,max=255"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type EnrolmentRequest struct {
	UserID string `json:"user_id" validate:"required,max=255"`
	Role   string `json:"role" validate:"required,max=100"`
}

type GroupRequest struct {
	Name    string   `json:"name" validate:"required,max=255"`
	Members []string `json:"members" validate:"omitempty,dive,required"`
}

type GroupingRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	GroupIDs []uint `json:"group_ids" validate:"omitempty,dive,gt=0"`
}

// ===== REPORTING =====

type CompletionExport struct {
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"-"`
	GeneratedAt time.Time `json:"generated_at"`
}
