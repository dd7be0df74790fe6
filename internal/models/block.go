package models

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
)

type AudienceKind string

const (
	AudienceNone     AudienceKind = ""
	AudienceAll      AudienceKind = "all"
	AudienceGroup    AudienceKind = "group"
	AudienceGrouping AudienceKind = "grouping"
)

// Audience is the parsed form of a block's group selector.
type Audience struct {
	Kind AudienceKind
	ID   uint
}

// ParseAudience parses "all", "group-<id>" or "grouping-<id>". Anything else,
// including the empty string, yields AudienceNone.
func ParseAudience(selector string) Audience {
	selector = strings.TrimSpace(selector)
	switch {
	case selector == string(AudienceAll):
		return Audience{Kind: AudienceAll}
	case strings.HasPrefix(selector, "grouping-"):
		if id, ok := parsePositiveID(strings.TrimPrefix(selector, "grouping-")); ok {
			return Audience{Kind: AudienceGrouping, ID: id}
		}
	case strings.HasPrefix(selector, "group-"):
		if id, ok := parsePositiveID(strings.TrimPrefix(selector, "group-")); ok {
			return Audience{Kind: AudienceGroup, ID: id}
		}
	}
	return Audience{Kind: AudienceNone}
}

func (a Audience) String() string {
	switch a.Kind {
	case AudienceAll:
		return string(AudienceAll)
	case AudienceGroup, AudienceGrouping:
		return string(a.Kind) + "-" + strconv.FormatUint(uint64(a.ID), 10)
	}
	return ""
}

func parsePositiveID(s string) (uint, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// BlockInstance is the per-course configuration of a survey block.
type BlockInstance struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CourseID     uint      `json:"course_id" gorm:"not null;index"`
	Title        string    `json:"title" gorm:"size:255"`
	SurveyID     uint      `json:"survey_id" gorm:"index"`
	GroupSel     string    `json:"group" gorm:"column:group_selector;size:64"`
	TeacherID    string    `json:"teacher_id" gorm:"size:255;index"`
	QuestionsCSV string    `json:"questions_csv" gorm:"column:questionscsv;type:text"`
	Open         bool      `json:"open"`
	TimeCreated  time.Time `json:"time_created" gorm:"column:timecreated"`
	TimeModified time.Time `json:"time_modified" gorm:"column:timemodified"`
}

func (BlockInstance) TableName() string {
	return "block_instances"
}

const DefaultBlockTitle = "Student Voice"

func NewBlockInstance(courseID uint, title string) (*BlockInstance, error) {
	if courseID == 0 {
		return nil, errors.New("block instance requires a course")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultBlockTitle
	}
	return &BlockInstance{CourseID: courseID, Title: title, Open: true}, nil
}

func (b *BlockInstance) Audience() Audience {
	return ParseAudience(b.GroupSel)
}

func (b *BlockInstance) SelectedQuestionIDs() []uint {
	return ParseIDList(b.QuestionsCSV)
}

func (b *BlockInstance) Configured() bool {
	return b.SurveyID != 0
}

// TeacherSurvey and SurveyQuestion are reporting copies of a block's
// configuration, rewritten whenever the block is saved.
type TeacherSurvey struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	BlockInstanceID uint   `json:"block_instance_id" gorm:"column:blockinstanceid;not null;uniqueIndex"`
	CourseID        uint   `json:"course_id" gorm:"not null;index"`
	TeacherID       string `json:"teacher_id" gorm:"size:255;index"`
	SurveyID        uint   `json:"survey_id" gorm:"not null"`
}

func (TeacherSurvey) TableName() string {
	return "teacher_surveys"
}

type SurveyQuestion struct {
	ID              uint `json:"id" gorm:"primaryKey"`
	BlockInstanceID uint `json:"block_instance_id" gorm:"column:blockinstanceid;not null;index"`
	QuestionID      uint `json:"question_id" gorm:"not null"`
}

func (SurveyQuestion) TableName() string {
	return "survey_questions"
}

// ParseIDList parses a comma separated id list, skipping blanks and junk and
// keeping the first occurrence of each id.
func ParseIDList(csv string) []uint {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	seen := make(map[uint]struct{})
	var ids []uint
	for _, part := range strings.Split(csv, ",") {
		id, ok := parsePositiveID(strings.TrimSpace(part))
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func FormatIDList(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

// SortedIDs returns a sorted copy of ids.
func SortedIDs(ids []uint) []uint {
	out := append([]uint(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
