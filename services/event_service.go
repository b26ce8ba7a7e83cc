// File: /services/event_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"convoy-api/models"
	"convoy-api/observability"
	"convoy-api/repositories"
	"convoy-api/utils"
)

// EventStore is the subset of the event repository the services use.
type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, id string, upd models.EventUpdate) (*models.Event, error)
	List(ctx context.Context, opts repositories.ListEventsOptions) ([]models.Event, error)
	ListSlugs(ctx context.Context) ([]string, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Event, error)
	GetActive(ctx context.Context) (*models.Event, error)
	SetActive(ctx context.Context, id string) error
	SetInactive(ctx context.Context, id string) error
	ActiveState(ctx context.Context) (models.ActiveStateReport, error)
}

// EventMutationResult answers every admin write: the affected event, the
// list as re-read from the store, and the notice to show.
type EventMutationResult struct {
	Event  *EventView    `json:"event,omitempty"`
	Events []EventView   `json:"events"`
	Notice models.Notice `json:"notice"`
	// RefreshNotice is set when the write succeeded but the list could not
	// be re-read; Events is then empty.
	RefreshNotice *models.Notice `json:"refresh_notice,omitempty"`
}

type EventService struct {
	events        EventStore
	uploads       *UploadService
	confirmations *ConfirmationService
	dates         *utils.DateFormatter
	coverBucket   string
}

func NewEventService(events EventStore, uploads *UploadService, confirmations *ConfirmationService, dates *utils.DateFormatter, coverBucket string) *EventService {
	return &EventService{
		events:        events,
		uploads:       uploads,
		confirmations: confirmations,
		dates:         dates,
		coverBucket:   coverBucket,
	}
}

// ListPublished returns the public event list.
func (s *EventService) ListPublished(ctx context.Context) ([]EventView, error) {
	events, err := s.events.List(ctx, repositories.ListEventsOptions{PublishedOnly: true})
	if err != nil {
		return nil, models.NewUserFacingError("Unable to load events", err)
	}
	return NewEventViews(events, s.dates), nil
}

func (s *EventService) GetPublished(ctx context.Context, slug string) (*EventView, error) {
	event, err := s.events.GetBySlug(ctx, slug, true)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, models.NewNotFoundError("Event", slug)
		}
		return nil, models.NewUserFacingError("Unable to load event", err)
	}
	view := NewEventView(*event, s.dates)
	return &view, nil
}

// GetActive distinguishes "no active event" (404) from a failed lookup (500).
func (s *EventService) GetActive(ctx context.Context) (*EventView, error) {
	event, err := s.events.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNoActiveEvent) {
			return nil, models.NewAppError(models.CodeNotFound, "No active event")
		}
		return nil, models.NewUserFacingError("Unable to load the active event", err)
	}
	view := NewEventView(*event, s.dates)
	return &view, nil
}

// ListEvents returns every event for the admin screen.
func (s *EventService) ListEvents(ctx context.Context) ([]EventView, error) {
	events, err := s.events.List(ctx, repositories.ListEventsOptions{})
	if err != nil {
		return nil, models.NewUserFacingError("Failed to load events", err)
	}
	return NewEventViews(events, s.dates), nil
}

func validateEventFields(title, date, coverImage *string) error {
	if title != nil && strings.TrimSpace(*title) == "" {
		return models.NewValidationError("Title is required")
	}
	if date != nil && *date != "" && !utils.IsCalendarDate(*date) {
		return models.NewValidationError("Date must be in YYYY-MM-DD format")
	}
	if coverImage != nil && *coverImage != "" && !utils.IsValidHTTPURL(*coverImage) {
		return models.NewValidationError("Cover image must be an http(s) URL")
	}
	return nil
}

// mutationResult is built after a write has committed, so a failed list
// re-read never turns the success into an error.
func (s *EventService) mutationResult(ctx context.Context, event *models.Event, message string) *EventMutationResult {
	result := &EventMutationResult{Notice: models.SuccessNotice(message), Events: []EventView{}}
	if event != nil {
		view := NewEventView(*event, s.dates)
		result.Event = &view
	}

	// the list is always re-read so the screen shows what the store holds
	events, err := s.ListEvents(ctx)
	if err != nil {
		utils.Logger.WarnContext(ctx, "event list refresh failed after write", "error", err)
		notice := models.InfoNotice("Saved, but the event list could not be refreshed. Reload the page to see the latest events.")
		result.RefreshNotice = &notice
		return result
	}
	result.Events = events
	return result
}

func (s *EventService) CreateEvent(ctx context.Context, input models.EventInput) (*EventMutationResult, error) {
	if err := validateEventFields(&input.Title, input.Date, &input.CoverImage); err != nil {
		return nil, err
	}

	event := &models.Event{
		Title:      strings.TrimSpace(input.Title),
		Date:       input.Date,
		Excerpt:    input.Excerpt,
		Content:    input.Content,
		CoverImage: input.CoverImage,
		Published:  input.Published,
	}

	if err := s.events.Create(ctx, event); err != nil {
		switch {
		case errors.Is(err, repositories.ErrSlugTaken):
			return nil, models.NewConflictError("An event with this title already exists")
		case errors.Is(err, repositories.ErrEmptySlug):
			return nil, models.NewValidationError("Title must contain at least one letter or digit")
		}
		return nil, models.NewUserFacingError("Failed to create event", err)
	}

	utils.Logger.InfoContext(ctx, "event created", "event_id", event.ID, "slug", event.Slug)
	return s.mutationResult(ctx, event, "Event created successfully"), nil
}

func (s *EventService) UpdateEvent(ctx context.Context, id string, upd models.EventUpdate) (*EventMutationResult, error) {
	if upd.Empty() {
		return nil, models.NewValidationError("No changes supplied")
	}
	if err := validateEventFields(upd.Title, upd.Date, upd.CoverImage); err != nil {
		return nil, err
	}

	event, err := s.events.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, models.NewNotFoundError("Event", id)
		}
		return nil, models.NewUserFacingError("Failed to update event", err)
	}

	utils.Logger.InfoContext(ctx, "event updated", "event_id", id)
	return s.mutationResult(ctx, event, "Event updated successfully"), nil
}

// UploadCover stores a cover image and returns its public URL.
func (s *EventService) UploadCover(ctx context.Context, file UploadFile) (string, error) {
	url, err := s.uploads.UploadWithValidation(ctx, file, s.coverBucket, UploadOptions{})
	if err != nil {
		if _, ok := models.AsAppError(err); ok {
			return "", err
		}
		return "", models.NewUserFacingError("Failed to upload cover image", err)
	}
	return url, nil
}

// RequestActivation holds an activation until an admin confirms it.
func (s *EventService) RequestActivation(ctx context.Context, id string) (*PendingConfirmation, error) {
	event, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	prompt := Prompt{
		Title:                  "Activate event",
		Message:                fmt.Sprintf("Make \"%s\" the active event? The currently active event will be deactivated and registrations will default to this one.", event.Title),
		ConfirmText:            "Activate",
		CancelText:             "Cancel",
		Variant:                VariantWarning,
		DisableBackdropDismiss: true,
	}
	pending := s.confirmations.Request(prompt,
		func(ctx context.Context) (*ActionResult, error) { return s.activate(ctx, event) },
		func(via CancelVia) { observability.EventActivations.WithLabelValues("cancelled").Inc() },
	)
	return &pending, nil
}

func (s *EventService) RequestDeactivation(ctx context.Context, id string) (*PendingConfirmation, error) {
	event, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	prompt := Prompt{
		Title:       "Deactivate event",
		Message:     fmt.Sprintf("Deactivate \"%s\"? No event will be active until another one is activated.", event.Title),
		ConfirmText: "Deactivate",
		CancelText:  "Cancel",
		Variant:     VariantDanger,
	}
	pending := s.confirmations.Request(prompt,
		func(ctx context.Context) (*ActionResult, error) { return s.deactivate(ctx, event) },
		func(via CancelVia) { observability.EventActivations.WithLabelValues("cancelled").Inc() },
	)
	return &pending, nil
}

func (s *EventService) lookup(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, models.NewNotFoundError("Event", id)
		}
		return nil, models.NewUserFacingError("Failed to load event", err)
	}
	return event, nil
}

func (s *EventService) activate(ctx context.Context, event *models.Event) (*ActionResult, error) {
	if err := s.events.SetActive(ctx, event.ID); err != nil {
		var partial *repositories.PartialActivationError
		switch {
		case errors.As(err, &partial):
			observability.EventActivations.WithLabelValues("partial").Inc()
			utils.Logger.ErrorContext(ctx, "activation left no active event", "event_id", event.ID, "error", err)
			return nil, &models.AppError{
				Code:    models.CodePartialActivation,
				Message: fmt.Sprintf("All events were deactivated but \"%s\" could not be activated. No event is active; activate it again to repair.", event.Title),
				Err:     err,
			}
		case errors.Is(err, repositories.ErrEventNotFound):
			observability.EventActivations.WithLabelValues("failed").Inc()
			return nil, models.NewNotFoundError("Event", event.ID)
		}
		observability.EventActivations.WithLabelValues("failed").Inc()
		return nil, models.NewUserFacingError("Failed to activate event", err)
	}

	observability.EventActivations.WithLabelValues("activated").Inc()
	utils.Logger.InfoContext(ctx, "event activated", "event_id", event.ID)

	event.Active = true
	result := s.mutationResult(ctx, event, fmt.Sprintf("\"%s\" is now the active event", event.Title))
	return &ActionResult{Notice: result.Notice, Data: result}, nil
}

func (s *EventService) deactivate(ctx context.Context, event *models.Event) (*ActionResult, error) {
	if err := s.events.SetInactive(ctx, event.ID); err != nil {
		observability.EventActivations.WithLabelValues("failed").Inc()
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, models.NewNotFoundError("Event", event.ID)
		}
		return nil, models.NewUserFacingError("Failed to deactivate event", err)
	}

	observability.EventActivations.WithLabelValues("deactivated").Inc()
	utils.Logger.InfoContext(ctx, "event deactivated", "event_id", event.ID)

	event.Active = false
	result := s.mutationResult(ctx, event, fmt.Sprintf("\"%s\" has been deactivated", event.Title))
	return &ActionResult{Notice: result.Notice, Data: result}, nil
}

// ActiveState reports whether exactly one event is active.
func (s *EventService) ActiveState(ctx context.Context) (models.ActiveStateReport, error) {
	report, err := s.events.ActiveState(ctx)
	if err != nil {
		return models.ActiveStateReport{}, models.NewUserFacingError("Failed to check active events", err)
	}
	return report, nil
}
