// File: /repositories/event_repository.go
package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"convoy-api/models"
	"convoy-api/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNoActiveEvent means the query succeeded and no published event is active.
	ErrNoActiveEvent = errors.New("no active event")
	ErrEventNotFound = errors.New("event not found")
	ErrSlugTaken     = errors.New("an event with this slug already exists")
	ErrEmptySlug     = errors.New("title must contain at least one letter or digit")
)

// PartialActivationError is returned when every event was deactivated but the
// target could not be activated. The store is left with zero active events.
type PartialActivationError struct {
	EventID string
	Err     error
}

func (e *PartialActivationError) Error() string {
	return fmt.Sprintf("events were deactivated but event %s could not be activated: %v", e.EventID, e.Err)
}

func (e *PartialActivationError) Unwrap() error {
	return e.Err
}

type ListEventsOptions struct {
	PublishedOnly bool
}

type EventRepository struct {
	db     *gorm.DB
	atomic bool
}

// NewEventRepository builds the repository. With atomicActivation the two
// activation writes share a transaction; without it they are issued in order
// and a failure between them leaves no event active.
func NewEventRepository(db *gorm.DB, atomicActivation bool) *EventRepository {
	return &EventRepository{db: db, atomic: atomicActivation}
}

// Create derives the slug from the title and inserts the event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	event.Slug = utils.Slugify(event.Title)
	if event.Slug == "" {
		return ErrEmptySlug
	}
	if event.Date != nil && strings.TrimSpace(*event.Date) == "" {
		event.Date = nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Event{}).Where("slug = ?", event.Slug).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	if count > 0 {
		return ErrSlugTaken
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	// New events start inactive; activation always goes through SetActive.
	activate := event.Active
	event.Active = false

	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to create event: %w", err)
	}

	if activate {
		if err := r.SetActive(ctx, event.ID); err != nil {
			return err
		}
		event.Active = true
	}
	return nil
}

// Update applies a partial edit. Slug and active are never touched here.
func (r *EventRepository) Update(ctx context.Context, id string, upd models.EventUpdate) (*models.Event, error) {
	updates := map[string]interface{}{}
	if upd.Title != nil {
		updates["title"] = strings.TrimSpace(*upd.Title)
	}
	if upd.ClearDate {
		updates["date"] = nil
	} else if upd.Date != nil {
		if strings.TrimSpace(*upd.Date) == "" {
			updates["date"] = nil
		} else {
			updates["date"] = strings.TrimSpace(*upd.Date)
		}
	}
	if upd.Excerpt != nil {
		updates["excerpt"] = *upd.Excerpt
	}
	if upd.Content != nil {
		updates["content"] = *upd.Content
	}
	if upd.CoverImage != nil {
		updates["cover_image"] = *upd.CoverImage
	}
	if upd.Published != nil {
		updates["published"] = *upd.Published
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&models.Event{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update event: %w", result.Error)
		}
	}

	return r.GetByID(ctx, id)
}

// List returns events newest date first.
func (r *EventRepository) List(ctx context.Context, opts ListEventsOptions) ([]models.Event, error) {
	var events []models.Event
	query := r.db.WithContext(ctx).Order("date DESC").Order("created_at DESC")
	if opts.PublishedOnly {
		query = query.Where("published = ?", true)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// ListSlugs returns every event slug, used for the registration filter.
func (r *EventRepository) ListSlugs(ctx context.Context) ([]string, error) {
	var slugs []string
	err := r.db.WithContext(ctx).Model(&models.Event{}).
		Order("date DESC").
		Order("created_at DESC").
		Pluck("slug", &slugs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list event slugs: %w", err)
	}
	return slugs, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (r *EventRepository) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Event, error) {
	var event models.Event
	query := r.db.WithContext(ctx).Where("slug = ?", slug)
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	if err := query.First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event by slug: %w", err)
	}
	return &event, nil
}

// GetActive returns the published active event. ErrNoActiveEvent is returned
// when there is none; any other error is a query failure.
func (r *EventRepository) GetActive(ctx context.Context) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Where("active = ? AND published = ?", true, true).
		Order("updated_at DESC").
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveEvent
		}
		return nil, fmt.Errorf("failed to get active event: %w", err)
	}
	return &event, nil
}

// SetActive makes id the only active event: every row is deactivated first,
// then the target is activated. The order keeps a failure between the two
// writes at zero active events rather than two.
func (r *EventRepository) SetActive(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}

	if r.atomic {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := deactivateAll(tx); err != nil {
				return err
			}
			return activateOne(tx, id)
		})
	}

	db := r.db.WithContext(ctx)
	if err := deactivateAll(db); err != nil {
		return err
	}
	if err := activateOne(db, id); err != nil {
		return &PartialActivationError{EventID: id, Err: err}
	}
	return nil
}

func deactivateAll(db *gorm.DB) error {
	err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&models.Event{}).
		UpdateColumn("active", false).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate events: %w", err)
	}
	return nil
}

func activateOne(db *gorm.DB, id string) error {
	result := db.Model(&models.Event{}).Where("id = ?", id).UpdateColumn("active", true)
	if result.Error != nil {
		return fmt.Errorf("failed to activate event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// SetInactive clears the active flag on a single event.
func (r *EventRepository) SetInactive(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Model(&models.Event{}).Where("id = ?", id).UpdateColumn("active", false).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate event: %w", err)
	}
	return nil
}

// ActiveState counts active rows so a half-finished activation can be seen.
func (r *EventRepository) ActiveState(ctx context.Context) (models.ActiveStateReport, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("active = ?", true).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return models.ActiveStateReport{}, fmt.Errorf("failed to check active events: %w", err)
	}

	report := models.ActiveStateReport{
		Count:     int64(len(ids)),
		ActiveIDs: ids,
		CheckedAt: time.Now(),
	}
	switch len(ids) {
	case 0:
		report.Status = models.ActiveNone
		report.ActiveIDs = []string{}
	case 1:
		report.Status = models.ActiveOne
	default:
		report.Status = models.ActiveMultiple
	}
	return report, nil
}
