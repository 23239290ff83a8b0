package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"FasoLink/internal/models"
)

func setupWebhookApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)

	app := fiber.New()
	app.Options("/api/payments/webhook", MobileMoneyWebhook)
	app.Post("/api/payments/webhook", MobileMoneyWebhook)
	app.Get("/api/payments/webhook", MobileMoneyWebhook)

	return app, db
}

func seedPendingDeposit(t *testing.T, db *gorm.DB, provider, providerTxID string) models.Contract {
	t.Helper()

	client := models.User{FullName: "Awa Ouédraogo", Email: providerTxID + "-client@test.bf", Phone: "70000001", Password: "x", UserTag: providerTxID + "-c", Role: models.RoleClient}
	require.NoError(t, db.Create(&client).Error)

	artisan := models.User{FullName: "Issouf Kaboré", Email: providerTxID + "-artisan@test.bf", Phone: "70000002", Password: "x", UserTag: providerTxID + "-a", Role: models.RoleArtisan}
	require.NoError(t, db.Create(&artisan).Error)

	job := models.Job{ClientID: client.ID, Title: "Pose de carrelage", Description: "Carrelage du salon, 20m2", Category: "maconnerie", City: "Bobo-Dioulasso", Budget: 150000}
	require.NoError(t, db.Create(&job).Error)

	quote := models.Quote{JobID: job.ID, ArtisanID: artisan.ID, Amount: 120000, Status: models.QuoteAccepte}
	require.NoError(t, db.Create(&quote).Error)

	contract := models.Contract{JobID: job.ID, QuoteID: quote.ID, ClientID: client.ID, ArtisanID: artisan.ID, Amount: 120000, Status: models.ContractActif}
	require.NoError(t, db.Create(&contract).Error)

	escrow := models.EscrowAccount{ContractID: contract.ID, Status: models.EscrowEnAttente}
	require.NoError(t, db.Create(&escrow).Error)

	txn := models.Transaction{
		ContractID:            contract.ID,
		ClientID:              client.ID,
		Type:                  models.TransactionAcompte,
		Amount:                40000,
		Status:                models.TransactionEnAttente,
		Provider:              provider,
		ProviderTransactionID: providerTxID,
	}
	require.NoError(t, db.Create(&txn).Error)

	return contract
}

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestWebhookOptionsPreflight(t *testing.T) {
	app, _ := setupWebhookApp(t)

	req := httptest.NewRequest(fiber.MethodOptions, "/api/payments/webhook?provider=orange_money", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, GET, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", resp.Header.Get("Access-Control-Allow-Headers"))
}

func TestWebhookUnknownProvider(t *testing.T) {
	app, _ := setupWebhookApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/payments/webhook?provider=paypal",
		strings.NewReader(`{"transaction_id":"x","status":"success"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Provider unknown", body["error"])
	// CORS headers are present even on the error branch
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestWebhookMalformedBody(t *testing.T) {
	app, db := setupWebhookApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/payments/webhook?provider=orange_money",
		strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, false, body["success"])

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestWebhookPostCompletesDeposit(t *testing.T) {
	app, db := setupWebhookApp(t)
	contract := seedPendingDeposit(t, db, "orange_money", "om-777")

	payload, _ := json.Marshal(map[string]interface{}{
		"txnid":     "om-777",
		"status":    "SUCCESS",
		"pay_token": "tok-1",
	})
	req := httptest.NewRequest(fiber.MethodPost, "/api/payments/webhook?provider=orange_money",
		bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "complete", body["status"])
	assert.Equal(t, "om-777", body["transactionId"])

	var txn models.Transaction
	require.NoError(t, db.Where("provider_transaction_id = ?", "om-777").First(&txn).Error)
	assert.Equal(t, models.TransactionComplete, txn.Status)
	assert.Equal(t, "tok-1", txn.ProviderReference)
	require.NotNil(t, txn.ProcessedAt)

	var escrow models.EscrowAccount
	require.NoError(t, db.Where("contract_id = ?", contract.ID).First(&escrow).Error)
	assert.Equal(t, 40000.0, escrow.AmountDeposited)
	assert.Equal(t, models.EscrowAlimente, escrow.Status)
}

func TestWebhookGetQueryParameters(t *testing.T) {
	app, db := setupWebhookApp(t)
	seedPendingDeposit(t, db, "wave", "wv-321")

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet,
		"/api/payments/webhook?provider=wave&id=wv-321&payment_status=succeeded", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "complete", body["status"])
	assert.Equal(t, "wv-321", body["transactionId"])

	var txn models.Transaction
	require.NoError(t, db.Where("provider_transaction_id = ?", "wv-321").First(&txn).Error)
	assert.Equal(t, models.TransactionComplete, txn.Status)
}

func TestWebhookMissingTransactionIDIsAcknowledged(t *testing.T) {
	app, db := setupWebhookApp(t)
	seedPendingDeposit(t, db, "orange_money", "om-888")

	// A payload with no usable id: acknowledged, nothing written
	req := httptest.NewRequest(fiber.MethodPost, "/api/payments/webhook?provider=orange_money",
		strings.NewReader(`{"status":"SUCCESS"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, true, body["success"])
	_, hasID := body["transactionId"]
	assert.False(t, hasID)

	var txn models.Transaction
	require.NoError(t, db.Where("provider_transaction_id = ?", "om-888").First(&txn).Error)
	assert.Equal(t, models.TransactionEnAttente, txn.Status, "the seeded transaction must stay untouched")
}

func TestWebhookCallbackForUnknownTransaction(t *testing.T) {
	app, db := setupWebhookApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/payments/webhook?provider=moov_money",
		strings.NewReader(`{"transaction_id":"ghost-1","status":"success"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "operators must not retry on callbacks we cannot match")

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestWebhookStaleCallbackAfterCompletion(t *testing.T) {
	app, db := setupWebhookApp(t)
	seedPendingDeposit(t, db, "telecel_money", "tc-555")

	complete := httptest.NewRequest(fiber.MethodPost, "/api/payments/webhook?provider=telecel_money",
		strings.NewReader(`{"transaction_id":"tc-555","status":"confirmed"}`))
	complete.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(complete)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	stale := httptest.NewRequest(fiber.MethodPost, "/api/payments/webhook?provider=telecel_money",
		strings.NewReader(`{"transaction_id":"tc-555","status":"pending"}`))
	stale.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(stale)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var txn models.Transaction
	require.NoError(t, db.Where("provider_transaction_id = ?", "tc-555").First(&txn).Error)
	assert.Equal(t, models.TransactionComplete, txn.Status)
}
