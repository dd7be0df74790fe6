package models

import (
	"time"

	"gorm.io/gorm"
)

// User mirrors the identity provider's user record.
type User struct {
	ID       string `json:"id" gorm:"primaryKey;size:255"`
	FullName string `json:"full_name" gorm:"not null;size:100"`
	Email    string `json:"email" gorm:"size:255;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// CourseEnrolment assigns a user a role (by shortname, e.g. "student",
// "editingteacher") in a course.
type CourseEnrolment struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_course_enrolments_key"`
	UserID   string `json:"user_id" gorm:"size:255;not null;uniqueIndex:idx_course_enrolments_key"`
	Role     string `json:"role" gorm:"size:100;not null;uniqueIndex:idx_course_enrolments_key"`
}

func (CourseEnrolment) TableName() string {
	return "course_enrolments"
}

type Group struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;size:255"`
}

func (Group) TableName() string {
	return "course_groups"
}

type GroupMember struct {
	GroupID uint   `json:"group_id" gorm:"primaryKey"`
	UserID  string `json:"user_id" gorm:"primaryKey;size:255"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

type Grouping struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;size:255"`
}

func (Grouping) TableName() string {
	return "course_groupings"
}

type GroupingGroup struct {
	GroupingID uint `json:"grouping_id" gorm:"primaryKey"`
	GroupID    uint `json:"group_id" gorm:"primaryKey"`
}

func (GroupingGroup) TableName() string {
	return "grouping_groups"
}

// AudienceOption is one entry of a block's group selector.
type AudienceOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
