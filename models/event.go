// File: /models/event.go
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Event is a rally shown on the public site. Stored in the posts table.
type Event struct {
	ID         string    `json:"id" gorm:"primaryKey;size:191"`
	Slug       string    `json:"slug" gorm:"not null;size:191;uniqueIndex"`
	Title      string    `json:"title" gorm:"not null;size:255"`
	Date       *string   `json:"date" gorm:"type:date"`
	Excerpt    string    `json:"excerpt" gorm:"type:text"`
	Content    string    `json:"content" gorm:"type:text"`
	CoverImage string    `json:"cover_image" gorm:"size:1024"`
	Published  bool      `json:"published" gorm:"not null;default:false;index"`
	Active     bool      `json:"active" gorm:"not null;default:false;index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Event) TableName() string {
	return "posts"
}

// AfterFind trims driver-specific DATE renderings ("2025-08-15T00:00:00Z")
// back to the calendar date.
func (e *Event) AfterFind(tx *gorm.DB) error {
	if e.Date == nil {
		return nil
	}
	date, _, _ := strings.Cut(strings.TrimSpace(*e.Date), "T")
	date, _, _ = strings.Cut(date, " ")
	if date == "" {
		e.Date = nil
		return nil
	}
	e.Date = &date
	return nil
}

// DateValue returns the calendar date or "" when the event is TBD.
func (e *Event) DateValue() string {
	if e.Date == nil {
		return ""
	}
	return *e.Date
}

// EventInput is the full set of fields an admin may submit when creating an
// event. Slug and active are deliberately absent.
type EventInput struct {
	Title      string  `json:"title"`
	Date       *string `json:"date"`
	Excerpt    string  `json:"excerpt"`
	Content    string  `json:"content"`
	CoverImage string  `json:"cover_image"`
	Published  bool    `json:"published"`
}

// EventUpdate is a partial edit; nil fields are left untouched.
type EventUpdate struct {
	Title      *string `json:"title"`
	Date       *string `json:"date"`
	ClearDate  bool    `json:"clear_date"`
	Excerpt    *string `json:"excerpt"`
	Content    *string `json:"content"`
	CoverImage *string `json:"cover_image"`
	Published  *bool   `json:"published"`
}

// Empty reports whether the update changes nothing.
func (u EventUpdate) Empty() bool {
	return u.Title == nil && u.Date == nil && !u.ClearDate && u.Excerpt == nil &&
		u.Content == nil && u.CoverImage == nil && u.Published == nil
}

// ActiveStatus classifies how many events are flagged active.
type ActiveStatus string

const (
	ActiveNone     ActiveStatus = "none"
	ActiveOne      ActiveStatus = "one"
	ActiveMultiple ActiveStatus = "multiple"
)

// ActiveStateReport is the result of the active-event health check.
type ActiveStateReport struct {
	Status    ActiveStatus `json:"status"`
	Count     int64        `json:"count"`
	ActiveIDs []string     `json:"active_ids"`
	CheckedAt time.Time    `json:"checked_at"`
}

// Healthy is true when exactly one event is active.
func (r ActiveStateReport) Healthy() bool {
	return r.Status == ActiveOne
}
