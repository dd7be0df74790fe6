package models

import "time"

type CompletionStatus string

const (
	StatusNotStarted CompletionStatus = "not_started"
	StatusInProgress CompletionStatus = "in_progress"
	StatusCompleted  CompletionStatus = "completed"
)

// StudentCompletion is the derived state of one respondent.
type StudentCompletion struct {
	UserID        string           `json:"user_id"`
	FullName      string           `json:"full_name,omitempty"`
	Status        CompletionStatus `json:"status"`
	Answered      int              `json:"answered"`
	Total         int              `json:"total"`
	TimeCompleted *time.Time       `json:"time_completed,omitempty"`
}

// CompletionSummary tallies an audience. Completed+InProgress+NotStarted == Total.
type CompletionSummary struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	NotStarted int `json:"not_started"`

	CompletedPercent  float64 `json:"completed_percent"`
	InProgressPercent float64 `json:"in_progress_percent"`
	NotStartedPercent float64 `json:"not_started_percent"`
}

// CourseCompletion is the teacher/admin view of a block instance.
type CourseCompletion struct {
	BlockInstanceID uint                 `json:"block_instance_id"`
	CourseID        uint                 `json:"course_id"`
	SurveyID        uint                 `json:"survey_id"`
	QuestionCount   int                  `json:"question_count"`
	Summary         CompletionSummary    `json:"summary"`
	Students        []*StudentCompletion `json:"students"`
}
