package models

import (
	"errors"
	"time"
)

// SurveyResponse is the per-respondent envelope for a block instance. It
// records timing, completion and the question order frozen on first render.
type SurveyResponse struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	BlockInstanceID uint       `json:"block_instance_id" gorm:"column:blockinstanceid;not null;uniqueIndex:idx_survey_responses_instance_user"`
	UserID          string     `json:"user_id" gorm:"column:userid;size:255;not null;uniqueIndex:idx_survey_responses_instance_user"`
	TimeCreated     time.Time  `json:"time_created" gorm:"column:timecreated"`
	TimeModified    time.Time  `json:"time_modified" gorm:"column:timemodified"`
	TimeCompleted   *time.Time `json:"time_completed" gorm:"column:timecompleted"`
	QuestionOrder   string     `json:"question_order" gorm:"column:questionorder;type:text"`
}

func (SurveyResponse) TableName() string {
	return "survey_responses"
}

func NewSurveyResponse(instanceID uint, userID string, now time.Time) (*SurveyResponse, error) {
	if instanceID == 0 {
		return nil, errors.New("survey response requires a block instance")
	}
	if userID == "" {
		return nil, errors.New("survey response requires a respondent")
	}
	return &SurveyResponse{
		BlockInstanceID: instanceID,
		UserID:          userID,
		TimeCreated:     now,
		TimeModified:    now,
	}, nil
}

func (r *SurveyResponse) Completed() bool {
	return r.TimeCompleted != nil && !r.TimeCompleted.IsZero()
}

func (r *SurveyResponse) Order() []uint {
	return ParseIDList(r.QuestionOrder)
}

// QuestionResponse holds one respondent's answer to one question of a block.
type QuestionResponse struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	BlockInstanceID uint      `json:"block_instance_id" gorm:"column:blockinstanceid;not null;uniqueIndex:idx_question_responses_key"`
	QuestionID      uint      `json:"question_id" gorm:"column:questionid;not null;uniqueIndex:idx_question_responses_key"`
	UserID          string    `json:"user_id" gorm:"column:userid;size:255;not null;uniqueIndex:idx_question_responses_key"`
	ResponseValue   string    `json:"response_value" gorm:"column:responsevalue;size:255"`
	TimeCreated     time.Time `json:"time_created" gorm:"column:timecreated"`
	TimeModified    time.Time `json:"time_modified" gorm:"column:timemodified"`
}

func (QuestionResponse) TableName() string {
	return "question_responses"
}

func NewQuestionResponse(instanceID, questionID uint, userID, value string, now time.Time) (*QuestionResponse, error) {
	if instanceID == 0 || questionID == 0 {
		return nil, errors.New("question response requires a block instance and a question")
	}
	if userID == "" {
		return nil, errors.New("question response requires a respondent")
	}
	return &QuestionResponse{
		BlockInstanceID: instanceID,
		QuestionID:      questionID,
		UserID:          userID,
		ResponseValue:   value,
		TimeCreated:     now,
		TimeModified:    now,
	}, nil
}

// OrderPolicy decides how a persisted question order is reconciled with the
// current applicable set when the two have diverged.
type OrderPolicy string

const (
	// OrderAppend keeps the persisted order for questions that are still
	// applicable and appends newly applicable ones in bank order.
	OrderAppend OrderPolicy = "append"
	// OrderDrop shows only the questions listed in the persisted order.
	OrderDrop OrderPolicy = "drop"
)

func (p OrderPolicy) Valid() bool {
	return p == OrderAppend || p == OrderDrop
}
