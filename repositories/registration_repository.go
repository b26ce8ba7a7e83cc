// File: /repositories/registration_repository.go
package repositories

import (
	"context"
	"errors"
	"fmt"

	"convoy-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrInvalidStatus        = errors.New("invalid registration status")
)

type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create inserts a new registration. Status is always pending on the way in.
func (r *RegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	reg.Status = models.StatusPending
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.CarPhotos == nil {
		reg.CarPhotos = models.StringSlice{}
	}

	if err := r.db.WithContext(ctx).Create(reg).Error; err != nil {
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *RegistrationRepository) SetStatus(ctx context.Context, id string, status models.RegistrationStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	result := r.db.WithContext(ctx).Model(&models.Registration{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update registration status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// mysql reports zero rows when the value did not change
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// List returns registrations newest first. Filters are AND-combined; "all"
// or empty disables a filter.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, error) {
	query := r.db.WithContext(ctx).Model(&models.Registration{})

	if slug, ok := filter.SlugFilter(); ok {
		query = query.Where("event_slug = ?", slug)
	}
	if status, ok := filter.StatusFilter(); ok {
		if !models.RegistrationStatus(status).Valid() {
			return nil, ErrInvalidStatus
		}
		query = query.Where("status = ?", status)
	}

	registrations := []models.Registration{}
	if err := query.Order("created_at DESC").Find(&registrations).Error; err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return registrations, nil
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*models.Registration, error) {
	var reg models.Registration
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&reg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &reg, nil
}

// CountByStatus feeds the admin dashboard counters.
func (r *RegistrationRepository) CountByStatus(ctx context.Context) (map[models.RegistrationStatus]int64, error) {
	type row struct {
		Status models.RegistrationStatus
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Registration{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}

	counts := make(map[models.RegistrationStatus]int64, len(models.RegistrationStatuses))
	for _, status := range models.RegistrationStatuses {
		counts[status] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}
