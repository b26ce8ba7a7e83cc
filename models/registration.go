// File: /models/registration.go
package models

import (
	"time"
)

type RegistrationStatus string

const (
	StatusPending  RegistrationStatus = "pending"
	StatusApproved RegistrationStatus = "approved"
	StatusRejected RegistrationStatus = "rejected"
)

// FilterAll disables a registration list filter.
const FilterAll = "all"

func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// RegistrationStatuses lists the statuses in display order.
var RegistrationStatuses = []RegistrationStatus{StatusPending, StatusApproved, StatusRejected}

type Registration struct {
	ID                 string             `json:"id" gorm:"primaryKey;size:191"`
	EventSlug          string             `json:"event_slug" gorm:"not null;size:191;index"`
	FullName           string             `json:"full_name" gorm:"not null;size:255"`
	Email              string             `json:"email" gorm:"not null;size:255"`
	Phone              string             `json:"phone" gorm:"not null;size:50"`
	City               string             `json:"city" gorm:"not null;size:255"`
	State              string             `json:"state" gorm:"not null;size:100"`
	Instagram          string             `json:"instagram" gorm:"size:255"`
	Website            string             `json:"website" gorm:"size:1024"`
	CarYear            int                `json:"car_year" gorm:"not null"`
	CarMake            string             `json:"car_make" gorm:"not null;size:100"`
	CarModel           string             `json:"car_model" gorm:"not null;size:100"`
	CarColor           string             `json:"car_color" gorm:"not null;size:100"`
	HasRallyExperience *bool              `json:"has_rally_experience"`
	PreviousRallies    *string            `json:"previous_rallies" gorm:"type:text"`
	WhyJoin            string             `json:"why_join" gorm:"not null;type:text"`
	CarPhotos          StringSlice        `json:"car_photos" gorm:"type:json"`
	Status             RegistrationStatus `json:"status" gorm:"not null;size:20;default:pending;index"`
	CreatedAt          time.Time          `json:"created_at" gorm:"index"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// RegistrationFilter narrows the admin list. "all" or "" disables a dimension.
type RegistrationFilter struct {
	EventSlug string `form:"event_slug" json:"event_slug"`
	Status    string `form:"status" json:"status"`
}

func (f RegistrationFilter) SlugFilter() (string, bool) {
	if f.EventSlug == "" || f.EventSlug == FilterAll {
		return "", false
	}
	return f.EventSlug, true
}

func (f RegistrationFilter) StatusFilter() (string, bool) {
	if f.Status == "" || f.Status == FilterAll {
		return "", false
	}
	return f.Status, true
}
