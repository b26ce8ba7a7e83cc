// File: /services/registration_admin_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"convoy-api/models"
	"convoy-api/repositories"
	"convoy-api/utils"
)

// RegistrationListResult is the filtered list plus the open detail record,
// if any, with its status already patched.
type RegistrationListResult struct {
	Registrations []RegistrationView       `json:"registrations"`
	Filter        models.RegistrationFilter `json:"filter"`
	Detail        *RegistrationView        `json:"detail,omitempty"`
	Notice        *models.Notice           `json:"notice,omitempty"`
}

type RegistrationAdminService struct {
	registrations RegistrationStore
	events        EventStore
	notifier      RegistrationNotifier
	dates         *utils.DateFormatter
	dispatch      func(func())
}

func NewRegistrationAdminService(registrations RegistrationStore, events EventStore, notifier RegistrationNotifier, dates *utils.DateFormatter) *RegistrationAdminService {
	return &RegistrationAdminService{
		registrations: registrations,
		events:        events,
		notifier:      notifier,
		dates:         dates,
		dispatch:      func(fn func()) { go fn() },
	}
}

func normalizeFilter(filter models.RegistrationFilter) (models.RegistrationFilter, error) {
	if filter.EventSlug == "" {
		filter.EventSlug = models.FilterAll
	}
	if filter.Status == "" {
		filter.Status = models.FilterAll
	}
	if filter.Status != models.FilterAll && !models.RegistrationStatus(filter.Status).Valid() {
		return filter, models.NewAppError(models.CodeInvalidStatus, "Status must be one of all, pending, approved, rejected")
	}
	return filter, nil
}

// List re-queries the store for the given filter.
func (s *RegistrationAdminService) List(ctx context.Context, filter models.RegistrationFilter) (*RegistrationListResult, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	regs, err := s.registrations.List(ctx, filter)
	if err != nil {
		return nil, models.NewUserFacingError("Failed to load registrations", err)
	}
	return &RegistrationListResult{
		Registrations: NewRegistrationViews(regs, s.dates),
		Filter:        filter,
	}, nil
}

func (s *RegistrationAdminService) Get(ctx context.Context, id string) (*RegistrationView, error) {
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, models.NewNotFoundError("Registration", id)
		}
		return nil, models.NewUserFacingError("Failed to load registration", err)
	}
	view := NewRegistrationView(*reg, s.dates)
	return &view, nil
}

// StatusCounts returns how many registrations are in each status; every
// status is present, zero when unused.
func (s *RegistrationAdminService) StatusCounts(ctx context.Context) (map[models.RegistrationStatus]int64, error) {
	counts, err := s.registrations.CountByStatus(ctx)
	if err != nil {
		return nil, models.NewUserFacingError("Failed to count registrations", err)
	}
	return counts, nil
}

// FilterOptions returns the event slug choices, "all" first.
func (s *RegistrationAdminService) FilterOptions(ctx context.Context) ([]string, error) {
	slugs, err := s.events.ListSlugs(ctx)
	if err != nil {
		return nil, models.NewUserFacingError("Failed to load events", err)
	}
	return append([]string{models.FilterAll}, slugs...), nil
}

// SetStatus changes one registration's status, then re-reads the filtered
// list. When detailID names the same record, the detail view comes back
// with the new status.
func (s *RegistrationAdminService) SetStatus(ctx context.Context, id string, status models.RegistrationStatus, filter models.RegistrationFilter, detailID string) (*RegistrationListResult, error) {
	if !status.Valid() {
		return nil, models.NewAppError(models.CodeInvalidStatus, "Status must be one of pending, approved, rejected")
	}

	if err := s.registrations.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, models.NewNotFoundError("Registration", id)
		}
		return nil, models.NewUserFacingError("Failed to update registration status", err)
	}
	utils.Logger.InfoContext(ctx, "registration status changed", "registration_id", id, "status", status)

	result, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if detailID != "" && detailID == id {
		detail, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		detail.Status = status
		result.Detail = detail
	}

	notice := models.SuccessNotice(fmt.Sprintf("Registration marked as %s", status))
	result.Notice = &notice

	if status != models.StatusPending {
		s.dispatch(func() {
			reg, err := s.registrations.GetByID(context.Background(), id)
			if err != nil {
				utils.Logger.Warn("failed to load registration for status email", "registration_id", id, "error", err)
				return
			}
			if err := s.notifier.SendStatusUpdate(reg); err != nil {
				utils.Logger.Warn("failed to send status email", "registration_id", id, "error", err)
			}
		})
	}

	return result, nil
}
