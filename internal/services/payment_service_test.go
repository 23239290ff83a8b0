package services

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"FasoLink/internal/database"
	"FasoLink/internal/models"
)

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
		&models.Job{},
		&models.Quote{},
		&models.Contract{},
		&models.Transaction{},
		&models.EscrowAccount{},
		&models.Notification{},
		&models.PaymentWebhookEvent{},
	))

	old := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = old })

	return db
}

// seedContract creates a client, an artisan, a contract between them and its
// escrow account, plus one pending transaction of the given type.
func seedContract(t *testing.T, db *gorm.DB, txType models.TransactionType, providerTxID string) (models.Contract, models.Transaction) {
	t.Helper()

	client := models.User{FullName: "Awa Ouédraogo", Email: providerTxID + "-client@test.bf", Phone: "70000001", Password: "x", UserTag: providerTxID + "-c", Role: models.RoleClient}
	require.NoError(t, db.Create(&client).Error)

	artisan := models.User{FullName: "Issouf Kaboré", Email: providerTxID + "-artisan@test.bf", Phone: "70000002", Password: "x", UserTag: providerTxID + "-a", Role: models.RoleArtisan, Trade: "plomberie", City: "Ouagadougou"}
	require.NoError(t, db.Create(&artisan).Error)

	job := models.Job{ClientID: client.ID, Title: "Réparation fuite", Description: "Fuite sous l'évier de la cuisine", Category: "plomberie", City: "Ouagadougou", Budget: 25000}
	require.NoError(t, db.Create(&job).Error)

	quote := models.Quote{JobID: job.ID, ArtisanID: artisan.ID, Amount: 20000, Status: models.QuoteAccepte}
	require.NoError(t, db.Create(&quote).Error)

	contract := models.Contract{JobID: job.ID, QuoteID: quote.ID, ClientID: client.ID, ArtisanID: artisan.ID, Amount: 20000, Status: models.ContractActif}
	require.NoError(t, db.Create(&contract).Error)

	escrow := models.EscrowAccount{ContractID: contract.ID, Status: models.EscrowEnAttente}
	require.NoError(t, db.Create(&escrow).Error)

	txn := models.Transaction{
		ContractID:            contract.ID,
		ClientID:              client.ID,
		Type:                  txType,
		Amount:                10000,
		Status:                models.TransactionEnAttente,
		Provider:              "orange_money",
		ProviderTransactionID: providerTxID,
	}
	require.NoError(t, db.Create(&txn).Error)

	return contract, txn
}

func TestApplyPaymentCallbackCompletesAcompteAndFundsEscrow(t *testing.T) {
	db := setupTestDB(t)
	contract, txn := seedContract(t, db, models.TransactionAcompte, "pay-1")

	err := ApplyPaymentCallback("orange_money", NormalizedCallback{
		TransactionID:     "pay-1",
		Status:            models.TransactionComplete,
		ProviderReference: "tok-55",
	})
	require.NoError(t, err)

	var got models.Transaction
	require.NoError(t, db.First(&got, txn.ID).Error)
	assert.Equal(t, models.TransactionComplete, got.Status)
	assert.Equal(t, "tok-55", got.ProviderReference)
	require.NotNil(t, got.ProcessedAt)

	var escrow models.EscrowAccount
	require.NoError(t, db.Where("contract_id = ?", contract.ID).First(&escrow).Error)
	assert.Equal(t, 10000.0, escrow.AmountDeposited)
	assert.Equal(t, models.EscrowAlimente, escrow.Status)
	require.NotNil(t, escrow.FundedAt)

	// Both parties got a deposit notification
	var notifCount int64
	db.Model(&models.Notification{}).Where("type = ?", models.NotificationDepositReceived).Count(&notifCount)
	assert.EqualValues(t, 2, notifCount)
}

func TestApplyPaymentCallbackIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	contract, txn := seedContract(t, db, models.TransactionAcompte, "pay-2")

	cb := NormalizedCallback{TransactionID: "pay-2", Status: models.TransactionComplete}
	require.NoError(t, ApplyPaymentCallback("orange_money", cb))
	require.NoError(t, ApplyPaymentCallback("orange_money", cb))
	require.NoError(t, ApplyPaymentCallback("orange_money", cb))

	// The escrow is credited exactly once
	var escrow models.EscrowAccount
	require.NoError(t, db.Where("contract_id = ?", contract.ID).First(&escrow).Error)
	assert.Equal(t, 10000.0, escrow.AmountDeposited)

	var got models.Transaction
	require.NoError(t, db.First(&got, txn.ID).Error)
	first := *got.ProcessedAt

	require.NoError(t, ApplyPaymentCallback("orange_money", cb))
	require.NoError(t, db.First(&got, txn.ID).Error)
	assert.Equal(t, first, *got.ProcessedAt, "processed_at must keep its first value")
}

func TestApplyPaymentCallbackSoldeDoesNotFundEscrow(t *testing.T) {
	db := setupTestDB(t)
	contract, _ := seedContract(t, db, models.TransactionSolde, "pay-3")

	require.NoError(t, ApplyPaymentCallback("orange_money", NormalizedCallback{
		TransactionID: "pay-3",
		Status:        models.TransactionComplete,
	}))

	var escrow models.EscrowAccount
	require.NoError(t, db.Where("contract_id = ?", contract.ID).First(&escrow).Error)
	assert.Equal(t, 0.0, escrow.AmountDeposited)
	assert.Equal(t, models.EscrowEnAttente, escrow.Status)
}

func TestApplyPaymentCallbackTerminalStatusNeverRegresses(t *testing.T) {
	db := setupTestDB(t)
	_, txn := seedContract(t, db, models.TransactionAcompte, "pay-4")

	require.NoError(t, ApplyPaymentCallback("orange_money", NormalizedCallback{
		TransactionID: "pay-4",
		Status:        models.TransactionComplete,
	}))

	// A stale pending callback arrives after completion
	require.NoError(t, ApplyPaymentCallback("orange_money", NormalizedCallback{
		TransactionID: "pay-4",
		Status:        models.TransactionTraitement,
	}))

	var got models.Transaction
	require.NoError(t, db.First(&got, txn.ID).Error)
	assert.Equal(t, models.TransactionComplete, got.Status)
}

func TestApplyPaymentCallbackFailureIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	contract, txn := seedContract(t, db, models.TransactionAcompte, "pay-5")

	require.NoError(t, ApplyPaymentCallback("orange_money", NormalizedCallback{
		TransactionID: "pay-5",
		Status:        models.TransactionEchoue,
	}))

	var got models.Transaction
	require.NoError(t, db.First(&got, txn.ID).Error)
	assert.Equal(t, models.TransactionEchoue, got.Status)
	assert.Nil(t, got.ProcessedAt)

	// A failed deposit funds nothing
	var escrow models.EscrowAccount
	require.NoError(t, db.Where("contract_id = ?", contract.ID).First(&escrow).Error)
	assert.Equal(t, 0.0, escrow.AmountDeposited)

	// And the stale pending update afterwards is ignored
	require.NoError(t, ApplyPaymentCallback("orange_money", NormalizedCallback{
		TransactionID: "pay-5",
		Status:        models.TransactionEnAttente,
	}))
	require.NoError(t, db.First(&got, txn.ID).Error)
	assert.Equal(t, models.TransactionEchoue, got.Status)
}

func TestApplyPaymentCallbackAccumulatesDeposits(t *testing.T) {
	db := setupTestDB(t)
	contract, txn := seedContract(t, db, models.TransactionAcompte, "pay-6a")

	// Second acompte on the same contract
	second := models.Transaction{
		ContractID:            contract.ID,
		ClientID:              txn.ClientID,
		Type:                  models.TransactionAcompte,
		Amount:                5000,
		Status:                models.TransactionEnAttente,
		Provider:              "wave",
		ProviderTransactionID: "pay-6b",
	}
	require.NoError(t, db.Create(&second).Error)

	require.NoError(t, ApplyPaymentCallback("orange_money", NormalizedCallback{
		TransactionID: "pay-6a", Status: models.TransactionComplete,
	}))
	require.NoError(t, ApplyPaymentCallback("wave", NormalizedCallback{
		TransactionID: "pay-6b", Status: models.TransactionComplete,
	}))

	var escrow models.EscrowAccount
	require.NoError(t, db.Where("contract_id = ?", contract.ID).First(&escrow).Error)
	assert.Equal(t, 15000.0, escrow.AmountDeposited)

	// funded_at keeps the timestamp of the first deposit
	require.NotNil(t, escrow.FundedAt)
}

func TestApplyPaymentCallbackUnknownTransactionIsAcknowledged(t *testing.T) {
	db := setupTestDB(t)

	err := ApplyPaymentCallback("moov_money", NormalizedCallback{
		TransactionID: "never-initiated",
		Status:        models.TransactionComplete,
	})
	require.NoError(t, err)

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestRecordFailedCallback(t *testing.T) {
	db := setupTestDB(t)

	cb := NormalizedCallback{TransactionID: "dead-1", Status: models.TransactionComplete}
	payload := map[string]interface{}{"txnid": "dead-1", "status": "SUCCESS"}

	RecordFailedCallback("orange_money", cb, payload, errors.New("database is down"))

	var event models.PaymentWebhookEvent
	require.NoError(t, db.Where("provider_transaction_id = ?", "dead-1").First(&event).Error)
	assert.Equal(t, "orange_money", event.Provider)
	assert.Equal(t, "complete", event.Status)
	assert.Contains(t, event.Payload, "SUCCESS")
	assert.Equal(t, "database is down", event.Error)
	assert.False(t, event.Resolved)
}
