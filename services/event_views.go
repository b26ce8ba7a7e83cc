// File: /services/event_views.go
package services

import (
	"convoy-api/models"
	"convoy-api/utils"
)

var longDateOptions = utils.DateFormatOptions{Weekday: "long", Year: "numeric", Month: "long", Day: "numeric"}

// EventView is an event plus its pre-rendered dates.
type EventView struct {
	models.Event
	DisplayDate  string `json:"display_date"`
	LongDate     string `json:"long_date"`
	InputDate    string `json:"input_date"`
	RelativeDate string `json:"relative_date"`
	IsPast       bool   `json:"is_past"`
	CreatedAtFmt string `json:"created_at_display"`
}

func NewEventView(event models.Event, dates *utils.DateFormatter) EventView {
	date := event.DateValue()
	return EventView{
		Event:        event,
		DisplayDate:  dates.FormatForDisplay(date),
		LongDate:     dates.FormatCustom(date, longDateOptions),
		InputDate:    dates.FormatForInput(date),
		RelativeDate: dates.RelativeDescription(date),
		IsPast:       dates.IsInPast(date),
		CreatedAtFmt: dates.FormatTimeForDisplay(event.CreatedAt),
	}
}

func NewEventViews(events []models.Event, dates *utils.DateFormatter) []EventView {
	views := make([]EventView, 0, len(events))
	for _, event := range events {
		views = append(views, NewEventView(event, dates))
	}
	return views
}

// RegistrationView adds the display form of created_at.
type RegistrationView struct {
	models.Registration
	CreatedAtDisplay string `json:"created_at_display"`
}

func NewRegistrationView(reg models.Registration, dates *utils.DateFormatter) RegistrationView {
	return RegistrationView{
		Registration:     reg,
		CreatedAtDisplay: dates.FormatTimeForDisplay(reg.CreatedAt),
	}
}

func NewRegistrationViews(regs []models.Registration, dates *utils.DateFormatter) []RegistrationView {
	views := make([]RegistrationView, 0, len(regs))
	for _, reg := range regs {
		views = append(views, NewRegistrationView(reg, dates))
	}
	return views
}
