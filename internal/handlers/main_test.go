package handlers

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"FasoLink/internal/database"
	"FasoLink/internal/models"
)

// setupTestDB swaps the global connection for an in-memory database and
// restores it when the test finishes.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.PendingUser{},
		&models.Job{},
		&models.Quote{},
		&models.Contract{},
		&models.Transaction{},
		&models.EscrowAccount{},
		&models.MomoAccount{},
		&models.PortfolioPhoto{},
		&models.Message{},
		&models.Notification{},
		&models.PaymentWebhookEvent{},
	))

	old := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = old })

	return db
}
