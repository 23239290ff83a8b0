package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// MobileMoneyService initiates payment collections with the mobile money
// operators. Each operator exposes its own HTTP API; base URLs and keys come
// from the environment so staging endpoints can be swapped in.
type MobileMoneyService struct {
	BaseURLs        map[string]string
	APIKeys         map[string]string
	CallbackBaseURL string
}

type InitiatePaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		PaymentURL string `json:"payment_url"`
		USSDCode   string `json:"ussd_code"`
		Reference  string `json:"reference"`
	} `json:"data"`
}

// PaymentInstruction is what the client app needs to let the user approve
// the payment (a redirect URL for Wave, a USSD prompt for the others).
type PaymentInstruction struct {
	Provider   string `json:"provider"`
	Reference  string `json:"reference"`
	PaymentURL string `json:"payment_url,omitempty"`
	USSDCode   string `json:"ussd_code,omitempty"`
}

// NewMobileMoneyService creates a new mobile money service instance
func NewMobileMoneyService() *MobileMoneyService {
	return &MobileMoneyService{
		BaseURLs: map[string]string{
			"orange_money":  envOrDefault("ORANGE_MONEY_API_URL", "https://api.orange.com/orange-money-webpay/bf/v1"),
			"moov_money":    envOrDefault("MOOV_MONEY_API_URL", "https://api.moov-africa.bf/merchant/v1"),
			"wave":          envOrDefault("WAVE_API_URL", "https://api.wave.com/v1"),
			"telecel_money": envOrDefault("TELECEL_MONEY_API_URL", "https://api.telecel.bf/tmoney/v1"),
		},
		APIKeys: map[string]string{
			"orange_money":  os.Getenv("ORANGE_MONEY_API_KEY"),
			"moov_money":    os.Getenv("MOOV_MONEY_API_KEY"),
			"wave":          os.Getenv("WAVE_API_KEY"),
			"telecel_money": os.Getenv("TELECEL_MONEY_API_KEY"),
		},
		CallbackBaseURL: os.Getenv("WEBHOOK_BASE_URL"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// makeRequest makes an HTTP request to an operator API
func (ms *MobileMoneyService) makeRequest(provider, method, endpoint string, payload interface{}) (*http.Response, error) {
	baseURL, ok := ms.BaseURLs[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+ms.APIKeys[provider])
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	return client.Do(req)
}

// InitiatePayment asks an operator to collect amount FCFA from phone. The
// reference we pass is echoed back in the operator's webhook callback and is
// how the two are correlated.
func (ms *MobileMoneyService) InitiatePayment(provider, phone string, amount float64, reference string) (*PaymentInstruction, error) {
	callbackURL := strings.TrimRight(ms.CallbackBaseURL, "/") + "/api/payments/webhook?provider=" + provider

	payload := map[string]interface{}{
		"amount":       amount,
		"currency":     "XOF",
		"phone_number": phone,
		"reference":    reference,
		"callback_url": callbackURL,
	}

	resp, err := ms.makeRequest(provider, "POST", "/payments", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result InitiatePaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("%s error: %s", provider, result.Message)
	}

	return &PaymentInstruction{
		Provider:   provider,
		Reference:  reference,
		PaymentURL: result.Data.PaymentURL,
		USSDCode:   result.Data.USSDCode,
	}, nil
}
