// File: /services/registration_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"convoy-api/models"
	"convoy-api/observability"
	"convoy-api/repositories"
	"convoy-api/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MaxCarPhotos is the number of photos a registration can carry.
const MaxCarPhotos = 3

// IntakeState is where the public registration form is.
type IntakeState string

const (
	IntakeEditing    IntakeState = "editing"
	IntakeSubmitting IntakeState = "submitting"
	IntakeSubmitted  IntakeState = "submitted"
	IntakeError      IntakeState = "error"
)

// Next returns the state after an attempt finished with err. Error hands
// control back to editing.
func (s IntakeState) Next(err error) IntakeState {
	switch s {
	case IntakeEditing:
		return IntakeSubmitting
	case IntakeSubmitting:
		if err != nil {
			return IntakeError
		}
		return IntakeSubmitted
	case IntakeError:
		return IntakeEditing
	}
	return s
}

type RegistrationStore interface {
	Create(ctx context.Context, reg *models.Registration) error
	SetStatus(ctx context.Context, id string, status models.RegistrationStatus) error
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, error)
	GetByID(ctx context.Context, id string) (*models.Registration, error)
	CountByStatus(ctx context.Context) (map[models.RegistrationStatus]int64, error)
}

// RegistrationNotifier sends the registrant e-mails. Failures are logged only.
type RegistrationNotifier interface {
	SendRegistrationReceived(reg *models.Registration, eventTitle string) error
	SendStatusUpdate(reg *models.Registration) error
}

// RegistrationInput is the complete set of fields the form may post.
type RegistrationInput struct {
	EventID            string `form:"event_id" json:"event_id"`
	FullName           string `form:"full_name" json:"full_name"`
	Email              string `form:"email" json:"email"`
	Phone              string `form:"phone" json:"phone"`
	City               string `form:"city" json:"city"`
	State              string `form:"state" json:"state"`
	Instagram          string `form:"instagram" json:"instagram"`
	Website            string `form:"website" json:"website"`
	CarYear            string `form:"car_year" json:"car_year"`
	CarMake            string `form:"car_make" json:"car_make"`
	CarModel           string `form:"car_model" json:"car_model"`
	CarColor           string `form:"car_color" json:"car_color"`
	HasRallyExperience string `form:"has_rally_experience" json:"has_rally_experience"`
	PreviousRallies    string `form:"previous_rallies" json:"previous_rallies"`
	WhyJoin            string `form:"why_join" json:"why_join"`
	// Status is accepted so it can be logged; it never reaches the store.
	Status string `form:"status" json:"status"`
}

// RegistrationFormFields lists every field name RegistrationInput accepts.
var RegistrationFormFields = []string{
	"event_id", "full_name", "email", "phone", "city", "state", "instagram", "website",
	"car_year", "car_make", "car_model", "car_color", "has_rally_experience",
	"previous_rallies", "why_join", "status",
}

type EventOption struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	DisplayDate string `json:"display_date"`
	LongDate    string `json:"long_date"`
}

// IntakeForm is what the public form needs to render.
type IntakeForm struct {
	State           IntakeState   `json:"state"`
	Available       bool          `json:"available"`
	Message         string        `json:"message,omitempty"`
	Events          []EventOption `json:"events"`
	SelectedEventID string        `json:"selected_event_id,omitempty"`
	ActiveEventID   string        `json:"active_event_id,omitempty"`
	MaxPhotos       int           `json:"max_photos"`
	MaxPhotoSizeMB  float64       `json:"max_photo_size_mb"`
	AllowedTypes    []string      `json:"allowed_types"`
}

type SubmissionResult struct {
	State        IntakeState          `json:"state"`
	Message      string               `json:"message"`
	EventTitle   string               `json:"event_title"`
	Registration *models.Registration `json:"registration,omitempty"`
}

type RegistrationServiceConfig struct {
	PhotoBucket       string
	DefaultEventSlug  string
	SubmissionTimeout time.Duration
}

type RegistrationService struct {
	events        EventStore
	registrations RegistrationStore
	uploads       *UploadService
	guard         SubmissionGuard
	notifier      RegistrationNotifier
	dates         *utils.DateFormatter
	cfg           RegistrationServiceConfig

	// dispatch runs best-effort side work such as e-mail.
	dispatch func(func())
	newKey   func(name string) string
}

func NewRegistrationService(
	events EventStore,
	registrations RegistrationStore,
	uploads *UploadService,
	guard SubmissionGuard,
	notifier RegistrationNotifier,
	dates *utils.DateFormatter,
	cfg RegistrationServiceConfig,
) *RegistrationService {
	if cfg.SubmissionTimeout <= 0 {
		cfg.SubmissionTimeout = time.Minute
	}
	return &RegistrationService{
		events:        events,
		registrations: registrations,
		uploads:       uploads,
		guard:         guard,
		notifier:      notifier,
		dates:         dates,
		cfg:           cfg,
		dispatch:      func(fn func()) { go fn() },
		newKey: func(name string) string {
			return fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString()[:8], baseName(name))
		},
	}
}

// AttachPhotos returns a new slice of existing followed by added, silently
// dropping anything past MaxCarPhotos. Neither argument is modified.
func AttachPhotos(existing []UploadFile, added ...UploadFile) []UploadFile {
	out := make([]UploadFile, 0, MaxCarPhotos)
	for _, photos := range [][]UploadFile{existing, added} {
		for _, p := range photos {
			if len(out) == MaxCarPhotos {
				return out
			}
			out = append(out, p)
		}
	}
	return out
}

// UpcomingEvents returns published events that are not in the past, soonest
// first with TBD events last.
func (s *RegistrationService) UpcomingEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.events.List(ctx, repositories.ListEventsOptions{PublishedOnly: true})
	if err != nil {
		return nil, err
	}

	upcoming := make([]models.Event, 0, len(events))
	for _, event := range events {
		if !s.dates.IsInPast(event.DateValue()) {
			upcoming = append(upcoming, event)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		a, b := upcoming[i].DateValue(), upcoming[j].DateValue()
		switch {
		case a == "":
			return false
		case b == "":
			return true
		default:
			return a < b
		}
	})
	return upcoming, nil
}

func (s *RegistrationService) eventOption(event models.Event) EventOption {
	date := event.DateValue()
	return EventOption{
		ID:          event.ID,
		Slug:        event.Slug,
		Title:       event.Title,
		Date:        s.dates.FormatForInput(date),
		DisplayDate: s.dates.FormatForDisplay(date),
		LongDate:    s.dates.FormatCustom(date, longDateOptions),
	}
}

// LoadForm picks the registerable events and the default selection: the
// active event when it is among them, otherwise the first.
func (s *RegistrationService) LoadForm(ctx context.Context) (*IntakeForm, error) {
	upcoming, err := s.UpcomingEvents(ctx)
	if err != nil {
		return nil, models.NewUserFacingError("Unable to load events. Please try again.", err)
	}

	form := &IntakeForm{
		State:          IntakeEditing,
		Events:         make([]EventOption, 0, len(upcoming)),
		MaxPhotos:      MaxCarPhotos,
		MaxPhotoSizeMB: DefaultMaxUploadMB,
		AllowedTypes:   DefaultAllowedImageTypes,
	}
	if len(upcoming) == 0 {
		form.Message = "No events available"
		return form, nil
	}

	for _, event := range upcoming {
		form.Events = append(form.Events, s.eventOption(event))
	}
	form.Available = true
	form.SelectedEventID = upcoming[0].ID

	active, err := s.events.GetActive(ctx)
	switch {
	case err == nil:
		form.ActiveEventID = active.ID
		for _, event := range upcoming {
			if event.ID == active.ID {
				form.SelectedEventID = active.ID
				break
			}
		}
	case errors.Is(err, repositories.ErrNoActiveEvent):
	default:
		// the form still works without a default selection
		utils.Logger.WarnContext(ctx, "active event lookup failed", "error", err)
	}

	return form, nil
}

type validatedRegistration struct {
	event           models.Event
	year            int
	hasExperience   bool
	previousRallies *string
	photos          []UploadFile
}

// validate runs every local check. Only the upcoming-event lookup reads the store.
func (s *RegistrationService) validate(ctx context.Context, input RegistrationInput, photos []UploadFile) (*validatedRegistration, error) {
	if strings.TrimSpace(input.EventID) == "" {
		return nil, models.NewAppError(models.CodeNoEventSelected, "Please select an event")
	}

	photos = AttachPhotos(nil, photos...)
	if len(photos) == 0 {
		return nil, models.NewAppError(models.CodeNoPhotoUploaded, "Please upload at least one photo of your car")
	}

	required := []struct{ name, value string }{
		{"full_name", input.FullName},
		{"email", input.Email},
		{"phone", input.Phone},
		{"city", input.City},
		{"state", input.State},
		{"car_year", input.CarYear},
		{"car_make", input.CarMake},
		{"car_model", input.CarModel},
		{"car_color", input.CarColor},
		{"has_rally_experience", input.HasRallyExperience},
		{"why_join", input.WhyJoin},
	}
	var missing []string
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return nil, models.NewMissingFieldsError(missing)
	}

	year, ok := utils.ParseCarYear(input.CarYear)
	if !ok {
		return nil, models.NewAppError(models.CodeInvalidYear, "Car year must be a whole number")
	}
	if !utils.IsValidEmail(strings.TrimSpace(input.Email)) {
		return nil, models.NewValidationError("Please enter a valid email address")
	}

	var hasExperience bool
	switch strings.ToLower(strings.TrimSpace(input.HasRallyExperience)) {
	case "yes":
		hasExperience = true
	case "no":
	default:
		return nil, models.NewValidationError("has_rally_experience must be yes or no")
	}

	var previousRallies *string
	if hasExperience {
		if text := strings.TrimSpace(input.PreviousRallies); text != "" {
			previousRallies = &text
		}
	}

	for _, photo := range photos {
		if err := s.uploads.Validate(photo, UploadOptions{}); err != nil {
			return nil, err
		}
	}

	upcoming, err := s.UpcomingEvents(ctx)
	if err != nil {
		return nil, models.NewUserFacingError("Unable to load events. Please try again.", err)
	}
	for _, event := range upcoming {
		if event.ID == input.EventID {
			return &validatedRegistration{
				event:           event,
				year:            year,
				hasExperience:   hasExperience,
				previousRallies: previousRallies,
				photos:          photos,
			}, nil
		}
	}
	return nil, models.NewAppError(models.CodeNoEventSelected, "Please select an upcoming event")
}

// Submit validates, uploads the photos in parallel, and creates the
// registration with status pending. No record is written if any upload fails.
func (s *RegistrationService) Submit(ctx context.Context, input RegistrationInput, photos []UploadFile) (*SubmissionResult, error) {
	if input.Status != "" && input.Status != string(models.StatusPending) {
		utils.Logger.WarnContext(ctx, "ignoring status supplied on public registration", "status", input.Status)
	}

	valid, err := s.validate(ctx, input, photos)
	if err != nil {
		observability.RegistrationsSubmitted.WithLabelValues("invalid").Inc()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SubmissionTimeout)
	defer cancel()

	release, err := s.guard.Acquire(ctx, SubmissionKey(input.Email, valid.event.ID))
	if err != nil {
		if errors.Is(err, ErrSubmissionInFlight) {
			observability.RegistrationsSubmitted.WithLabelValues("duplicate").Inc()
			return nil, models.NewAppError(models.CodeDuplicateSubmission, "This registration is already being submitted. Please wait.")
		}
		return nil, s.failure(ctx, "Failed to submit registration. Please try again.", err)
	}
	defer release()

	urls, err := s.uploadPhotos(ctx, valid.photos)
	if err != nil {
		return nil, s.failure(ctx, "Failed to upload photos. Please try again.", err)
	}

	reg := &models.Registration{
		EventSlug:          s.resolveSlug(ctx, valid.event.ID),
		FullName:           strings.TrimSpace(input.FullName),
		Email:              strings.TrimSpace(input.Email),
		Phone:              strings.TrimSpace(input.Phone),
		City:               strings.TrimSpace(input.City),
		State:              strings.TrimSpace(input.State),
		Instagram:          strings.TrimSpace(input.Instagram),
		Website:            strings.TrimSpace(input.Website),
		CarYear:            valid.year,
		CarMake:            strings.TrimSpace(input.CarMake),
		CarModel:           strings.TrimSpace(input.CarModel),
		CarColor:           strings.TrimSpace(input.CarColor),
		HasRallyExperience: &valid.hasExperience,
		PreviousRallies:    valid.previousRallies,
		WhyJoin:            strings.TrimSpace(input.WhyJoin),
		CarPhotos:          models.StringSlice(urls),
		Status:             models.StatusPending,
	}

	if err := s.registrations.Create(ctx, reg); err != nil {
		s.removePhotos(urls)
		return nil, s.failure(ctx, "Failed to submit registration. Please try again.", err)
	}

	observability.RegistrationsSubmitted.WithLabelValues("submitted").Inc()
	utils.Logger.InfoContext(ctx, "registration submitted", "registration_id", reg.ID, "event_slug", reg.EventSlug)

	title := valid.event.Title
	s.dispatch(func() {
		if err := s.notifier.SendRegistrationReceived(reg, title); err != nil {
			utils.Logger.Warn("failed to send registration email", "registration_id", reg.ID, "error", err)
		}
	})

	return &SubmissionResult{
		State:        IntakeSubmitted,
		EventTitle:   title,
		Message:      fmt.Sprintf("Thank you for registering for %s. We'll review your application and get back to you within 2-3 business days.", title),
		Registration: reg,
	}, nil
}

func (s *RegistrationService) failure(ctx context.Context, message string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		observability.RegistrationsSubmitted.WithLabelValues("timeout").Inc()
		return models.NewTimeoutError("Submitting took too long. Please try again.", err)
	}
	observability.RegistrationsSubmitted.WithLabelValues("failed").Inc()
	utils.Logger.ErrorContext(ctx, "registration submission failed", "error", err)
	return models.NewUserFacingError(message, err)
}

// uploadPhotos uploads concurrently and returns URLs in attachment order.
func (s *RegistrationService) uploadPhotos(ctx context.Context, photos []UploadFile) ([]string, error) {
	urls := make([]string, len(photos))
	g, gctx := errgroup.WithContext(ctx)

	for i, photo := range photos {
		g.Go(func() error {
			url, err := s.uploads.UploadWithValidation(gctx, photo, s.cfg.PhotoBucket, UploadOptions{Path: s.newKey(photo.Name)})
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var uploaded []string
		for _, url := range urls {
			if url != "" {
				uploaded = append(uploaded, url)
			}
		}
		s.removePhotos(uploaded)
		return nil, err
	}
	return urls, nil
}

// removePhotos deletes orphaned uploads; failures are only logged.
func (s *RegistrationService) removePhotos(urls []string) {
	if len(urls) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, url := range urls {
		if err := s.uploads.Remove(ctx, s.cfg.PhotoBucket, url); err != nil {
			utils.Logger.Warn("failed to remove orphaned photo", "url", url, "error", err)
		}
	}
}

// resolveSlug reads the event's slug, falling back to the configured default.
func (s *RegistrationService) resolveSlug(ctx context.Context, eventID string) string {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil || event.Slug == "" {
		utils.Logger.WarnContext(ctx, "falling back to default event slug", "event_id", eventID, "error", err)
		return s.cfg.DefaultEventSlug
	}
	return event.Slug
}
