package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type SurveyFormat string

const (
	FormatLikert SurveyFormat = "likert"
	FormatThumbs SurveyFormat = "thumbs"
)

func (f SurveyFormat) Valid() bool {
	return f == FormatLikert || f == FormatThumbs
}

// Survey is a question bank template. Inactive surveys are soft-deleted and keep
// their last sequence number so that an undo can restore them in place.
type Survey struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	Name         string       `json:"name" gorm:"not null;size:255" validate:"required,min=1,max=255"`
	Intro        string       `json:"intro" gorm:"type:text"`
	Format       SurveyFormat `json:"format" gorm:"not null;size:16;default:likert" validate:"required,survey_format"`
	Visible      bool         `json:"visible"`
	Active       bool         `json:"active" gorm:"index"`
	Seq          int          `json:"seq" gorm:"not null;default:0"`
	TimeModified time.Time    `json:"time_modified" gorm:"column:timemodified"`

	Sections []Section `json:"sections,omitempty" gorm:"foreignKey:SurveyID"`
}

func (Survey) TableName() string {
	return "surveys"
}

// NewSurvey builds a survey record, rejecting blank names and unknown formats.
func NewSurvey(name, intro string, format SurveyFormat, visible bool) (*Survey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("survey name is required")
	}
	if format == "" {
		format = FormatLikert
	}
	if !format.Valid() {
		return nil, errors.New("survey format must be likert or thumbs")
	}
	return &Survey{
		Name:    name,
		Intro:   intro,
		Format:  format,
		Visible: visible,
		Active:  true,
	}, nil
}

type Section struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	SurveyID uint   `json:"survey_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;size:255" validate:"required,min=1,max=255"`
	Seq      int    `json:"seq" gorm:"not null;default:0"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:SectionID"`
}

func (Section) TableName() string {
	return "sections"
}

func NewSection(surveyID uint, name string) (*Section, error) {
	name = strings.TrimSpace(name)
	if surveyID == 0 {
		return nil, errors.New("section requires a survey")
	}
	if name == "" {
		return nil, errors.New("section name is required")
	}
	return &Section{SurveyID: surveyID, Name: name}, nil
}

// Question belongs to a section. Mandatory questions are part of every block
// instance that uses the survey, whatever the teacher selected.
type Question struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	SectionID    uint           `json:"section_id" gorm:"not null;index"`
	Name         string         `json:"name" gorm:"not null;size:255"`
	QuestionText string         `json:"question_text" gorm:"column:questiontext;type:text;not null"`
	Files        datatypes.JSON `json:"files,omitempty" gorm:"type:jsonb"`
	Mandatory    bool           `json:"mandatory"`
	Seq          int            `json:"seq" gorm:"not null;default:0"`

	// Set when listing a survey for block configuration; not stored.
	Checked bool `json:"checked,omitempty" gorm:"-"`
}

func (Question) TableName() string {
	return "questions"
}

func NewQuestion(sectionID uint, name, text string, mandatory bool) (*Question, error) {
	name = strings.TrimSpace(name)
	if sectionID == 0 {
		return nil, errors.New("question requires a section")
	}
	if name == "" {
		return nil, errors.New("question name is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("question text is required")
	}
	return &Question{
		SectionID:    sectionID,
		Name:         name,
		QuestionText: text,
		Mandatory:    mandatory,
	}, nil
}

// QuestionFile describes a file embedded in the question text.
type QuestionFile struct {
	Name     string `json:"name" validate:"required,max=255"`
	URL      string `json:"url" validate:"required,url"`
	MimeType string `json:"mime_type,omitempty"`
}
