package repositories

import (
	"testing"
	"time"

	"convoy-api/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection would otherwise get its own empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Event{}, &models.Registration{}))
	return db
}

func strPtr(s string) *string { return &s }

func seedEvent(t *testing.T, db *gorm.DB, id, title string, active, published bool, date *string) models.Event {
	t.Helper()
	event := models.Event{
		ID:        id,
		Slug:      id,
		Title:     title,
		Date:      date,
		Active:    active,
		Published: published,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(&event).Error)
	// gorm skips zero-valued fields that carry a default tag
	require.NoError(t, db.Model(&event).UpdateColumns(map[string]interface{}{
		"active":    active,
		"published": published,
	}).Error)
	return event
}

func activeIDs(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var ids []string
	require.NoError(t, db.Model(&models.Event{}).Where("active = ?", true).Order("id").Pluck("id", &ids).Error)
	return ids
}
