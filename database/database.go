// File: /database/database.go
package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"convoy-api/models"
	"convoy-api/utils"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultEventID is the id of the rally seeded into an empty store.
const DefaultEventID = "monterey-car-week-2025"

func dialector(driver, databaseURL string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(databaseURL), nil
	case "postgres":
		return postgres.Open(databaseURL), nil
	case "sqlite":
		return sqlite.Open(databaseURL), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// Initialize opens the store. Duplicate-key errors are translated to
// gorm.ErrDuplicatedKey so repositories can detect slug collisions.
func Initialize(driver, databaseURL string) (*gorm.DB, error) {
	dial, err := dialector(driver, databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if driver == "sqlite" {
		// sqlite allows one writer; in-memory databases are per connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Event{}, &models.Registration{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := addCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to add custom indexes: %w", err)
	}

	addDatabaseConstraints(db)
	return nil
}

func addCustomIndexes(db *gorm.DB) error {
	// admin list filtered by event, newest first
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_registrations_slug_created ON registrations(event_slug, created_at)").Error; err != nil {
		// mysql has no IF NOT EXISTS for indexes
		if db.Dialector.Name() != "mysql" {
			return err
		}
		utils.Logger.Warn("could not create registrations index", "error", err)
	}
	return nil
}

// addDatabaseConstraints adds the status CHECK where the dialect can alter
// tables in place. A constraint that already exists is reported and skipped.
func addDatabaseConstraints(db *gorm.DB) {
	if db.Dialector.Name() == "sqlite" {
		return
	}

	statuses := make([]string, 0, len(models.RegistrationStatuses))
	for _, status := range models.RegistrationStatuses {
		statuses = append(statuses, "'"+string(status)+"'")
	}
	stmt := fmt.Sprintf(
		"ALTER TABLE registrations ADD CONSTRAINT chk_registrations_status CHECK (status IN (%s))",
		strings.Join(statuses, ", "),
	)
	if err := db.Exec(stmt).Error; err != nil {
		utils.Logger.Warn("could not add registration status constraint", "error", err)
	}
}

// SeedData inserts the default rally when the posts table is empty.
func SeedData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Event{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count events: %w", err)
	}
	if count > 0 {
		return nil
	}

	date := "2025-08-15"
	event := models.Event{
		ID:        DefaultEventID,
		Slug:      DefaultEventID,
		Title:     "Monterey Car Week 2025",
		Date:      &date,
		Excerpt:   "Join the convoy up the coast for Monterey Car Week.",
		Published: true,
	}
	if err := db.Create(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("failed to seed default event: %w", err)
	}
	// the seeded rally is the active one
	if err := db.Model(&event).UpdateColumn("active", true).Error; err != nil {
		return fmt.Errorf("failed to activate default event: %w", err)
	}

	utils.Logger.Info("seeded default event", "slug", event.Slug)
	return nil
}
