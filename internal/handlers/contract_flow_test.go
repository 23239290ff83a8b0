package handlers

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"FasoLink/internal/models"
)

// newFlowApp builds an app covering the quote/contract/webhook endpoints.
// The acting user is switched per request through the actAs pointer instead
// of real JWTs.
func newFlowApp(actAs *uint, role *models.UserRole) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", *actAs)
		c.Locals("role", string(*role))
		return c.Next()
	})

	app.Post("/api/quotes/:id/accept", AcceptQuote)
	app.Post("/api/contracts/:id/complete", CompleteWork)
	app.Post("/api/contracts/:id/release", ReleaseEscrow)
	app.Post("/api/payments/webhook", MobileMoneyWebhook)

	return app
}

func seedOpenJobWithQuote(t *testing.T, db *gorm.DB) (client, artisan models.User, job models.Job, quote models.Quote) {
	t.Helper()

	client = models.User{FullName: "Awa Ouédraogo", Email: "awa@test.bf", Phone: "70000001", Password: "x", UserTag: "awa1", Role: models.RoleClient}
	require.NoError(t, db.Create(&client).Error)

	artisan = models.User{FullName: "Issouf Kaboré", Email: "issouf@test.bf", Phone: "70000002", Password: "x", UserTag: "issouf1", Role: models.RoleArtisan, Trade: "electricite", City: "Ouagadougou"}
	require.NoError(t, db.Create(&artisan).Error)

	job = models.Job{ClientID: client.ID, Title: "Installation électrique", Description: "Câblage complet d'une maison neuve de 4 pièces", Category: "electricite", City: "Ouagadougou", Budget: 300000, Status: models.JobOuvert}
	require.NoError(t, db.Create(&job).Error)

	quote = models.Quote{JobID: job.ID, ArtisanID: artisan.ID, Amount: 250000, Message: "Disponible dès lundi", DelayDays: 10, Status: models.QuoteEnAttente}
	require.NoError(t, db.Create(&quote).Error)

	return client, artisan, job, quote
}

func TestMarketplaceEscrowFlow(t *testing.T) {
	db := setupTestDB(t)
	client, artisan, job, quote := seedOpenJobWithQuote(t, db)

	actAs := client.ID
	role := models.RoleClient
	app := newFlowApp(&actAs, &role)

	// Client accepts the quote: contract and escrow account appear
	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost,
		fmt.Sprintf("/api/quotes/%d/accept", quote.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var contract models.Contract
	require.NoError(t, db.Where("quote_id = ?", quote.ID).First(&contract).Error)
	assert.Equal(t, models.ContractActif, contract.Status)
	assert.Equal(t, 250000.0, contract.Amount)

	var escrow models.EscrowAccount
	require.NoError(t, db.Where("contract_id = ?", contract.ID).First(&escrow).Error)
	assert.Equal(t, models.EscrowEnAttente, escrow.Status)

	var gotJob models.Job
	require.NoError(t, db.First(&gotJob, job.ID).Error)
	assert.Equal(t, models.JobAttribue, gotJob.Status)

	// Client pays the acompte; the operator's callback funds the escrow
	deposit := models.Transaction{
		ContractID:            contract.ID,
		ClientID:              client.ID,
		Type:                  models.TransactionAcompte,
		Amount:                100000,
		Status:                models.TransactionEnAttente,
		Provider:              "orange_money",
		ProviderTransactionID: "flow-dep-1",
	}
	require.NoError(t, db.Create(&deposit).Error)

	req := httptest.NewRequest(fiber.MethodPost, "/api/payments/webhook?provider=orange_money",
		strings.NewReader(`{"txnid":"flow-dep-1","status":"SUCCESS"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.Where("contract_id = ?", contract.ID).First(&escrow).Error)
	assert.Equal(t, 100000.0, escrow.AmountDeposited)
	assert.Equal(t, models.EscrowAlimente, escrow.Status)

	// Release before the work is done is refused
	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost,
		fmt.Sprintf("/api/contracts/%d/release", contract.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Artisan marks the work done
	actAs, role = artisan.ID, models.RoleArtisan
	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost,
		fmt.Sprintf("/api/contracts/%d/complete", contract.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&contract, contract.ID).Error)
	assert.Equal(t, models.ContractTermine, contract.Status)
	require.NotNil(t, contract.CompletedAt)

	// Client releases the funds
	actAs, role = client.ID, models.RoleClient
	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost,
		fmt.Sprintf("/api/contracts/%d/release", contract.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var released struct {
		AmountReleased float64 `json:"amount_released"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&released))
	assert.Equal(t, 100000.0, released.AmountReleased)

	require.NoError(t, db.Where("contract_id = ?", contract.ID).First(&escrow).Error)
	assert.Equal(t, models.EscrowLibere, escrow.Status)
	assert.Equal(t, escrow.AmountDeposited, escrow.AmountReleased)
	require.NotNil(t, escrow.ReleasedAt)

	var paidArtisan models.User
	require.NoError(t, db.First(&paidArtisan, artisan.ID).Error)
	assert.Equal(t, 100000.0, paidArtisan.Balance)

	require.NoError(t, db.First(&contract, contract.ID).Error)
	assert.Equal(t, models.ContractSolde, contract.Status)

	require.NoError(t, db.First(&gotJob, job.ID).Error)
	assert.Equal(t, models.JobTermine, gotJob.Status)

	// A second release finds nothing left
	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost,
		fmt.Sprintf("/api/contracts/%d/release", contract.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAcceptQuoteRejectsCompetingQuotes(t *testing.T) {
	db := setupTestDB(t)
	client, _, job, quote := seedOpenJobWithQuote(t, db)

	other := models.User{FullName: "Salif Traoré", Email: "salif@test.bf", Phone: "70000003", Password: "x", UserTag: "salif1", Role: models.RoleArtisan, Trade: "electricite", City: "Ouagadougou"}
	require.NoError(t, db.Create(&other).Error)
	competing := models.Quote{JobID: job.ID, ArtisanID: other.ID, Amount: 280000, Status: models.QuoteEnAttente}
	require.NoError(t, db.Create(&competing).Error)

	actAs := client.ID
	role := models.RoleClient
	app := newFlowApp(&actAs, &role)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost,
		fmt.Sprintf("/api/quotes/%d/accept", quote.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var gotCompeting models.Quote
	require.NoError(t, db.First(&gotCompeting, competing.ID).Error)
	assert.Equal(t, models.QuoteRefuse, gotCompeting.Status)

	// The losing artisan was notified
	var notif models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", other.ID, models.NotificationQuoteRejected).First(&notif).Error)

	// Accepting the same quote again fails
	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost,
		fmt.Sprintf("/api/quotes/%d/accept", quote.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAcceptQuoteRequiresJobOwnership(t *testing.T) {
	db := setupTestDB(t)
	_, _, _, quote := seedOpenJobWithQuote(t, db)

	intruder := models.User{FullName: "Moussa Sawadogo", Email: "moussa@test.bf", Phone: "70000004", Password: "x", UserTag: "moussa1", Role: models.RoleClient}
	require.NoError(t, db.Create(&intruder).Error)

	actAs := intruder.ID
	role := models.RoleClient
	app := newFlowApp(&actAs, &role)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost,
		fmt.Sprintf("/api/quotes/%d/accept", quote.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// No contract was created
	var count int64
	db.Model(&models.Contract{}).Count(&count)
	assert.EqualValues(t, 0, count)
}
