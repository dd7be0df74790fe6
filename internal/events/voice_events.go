package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of events the survey block emits
type EventType string

const (
	EventSurveyStarted   EventType = "survey.started"
	EventAnswerSubmitted EventType = "answer.submitted"
	EventSurveyCompleted EventType = "survey.completed"
	EventBlockConfigured EventType = "block.configured"
)

const (
	eventSource  = "student-voice"
	eventVersion = "1.0"
)

// VoiceEvent is the envelope for every published event
type VoiceEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewVoiceEvent stamps a fresh id and timestamp on the payload.
func NewVoiceEvent(eventType EventType, data interface{}) *VoiceEvent {
	return &VoiceEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

type SurveyStartedEvent struct {
	BlockInstanceID uint   `json:"block_instance_id"`
	CourseID        uint   `json:"course_id"`
	UserID          string `json:"user_id"`
	QuestionOrder   []uint `json:"question_order"`
}

type AnswerSubmittedEvent struct {
	BlockInstanceID uint      `json:"block_instance_id"`
	CourseID        uint      `json:"course_id"`
	QuestionID      uint      `json:"question_id"`
	UserID          string    `json:"user_id"`
	Answered        int       `json:"answered"`
	Total           int       `json:"total"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

type SurveyCompletedEvent struct {
	BlockInstanceID uint      `json:"block_instance_id"`
	CourseID        uint      `json:"course_id"`
	SurveyID        uint      `json:"survey_id"`
	UserID          string    `json:"user_id"`
	CompletedAt     time.Time `json:"completed_at"`
}

type BlockConfiguredEvent struct {
	BlockInstanceID uint   `json:"block_instance_id"`
	CourseID        uint   `json:"course_id"`
	SurveyID        uint   `json:"survey_id"`
	TeacherID       string `json:"teacher_id"`
	Audience        string `json:"audience"`
	QuestionIDs     []uint `json:"question_ids"`
}
