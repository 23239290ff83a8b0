package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FasoLink/internal/models"
)

func TestNormalizeCallbackUnknownProvider(t *testing.T) {
	_, ok := NormalizeCallback("paypal", map[string]interface{}{"id": "x"})
	assert.False(t, ok)

	_, ok = NormalizeCallback("", map[string]interface{}{})
	assert.False(t, ok)
}

func TestNormalizeCallbackStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		payload  map[string]interface{}
		want     NormalizedCallback
	}{
		{
			name:     "orange money success",
			provider: "orange_money",
			payload:  map[string]interface{}{"txnid": "OM-1", "status": "SUCCESS", "pay_token": "tok-9"},
			want:     NormalizedCallback{TransactionID: "OM-1", Status: models.TransactionComplete, ProviderReference: "tok-9"},
		},
		{
			name:     "orange money cancelled",
			provider: "orange_money",
			payload:  map[string]interface{}{"transaction_id": "OM-2", "txnstatus": "CANCELLED"},
			want:     NormalizedCallback{TransactionID: "OM-2", Status: models.TransactionEchoue},
		},
		{
			name:     "orange money is case sensitive",
			provider: "orange_money",
			payload:  map[string]interface{}{"txnid": "OM-3", "status": "success"},
			want:     NormalizedCallback{TransactionID: "OM-3", Status: models.TransactionEnAttente},
		},
		{
			name:     "moov money completed",
			provider: "moov_money",
			payload:  map[string]interface{}{"trans_id": "MV-1", "status": "completed", "reference": "ref-1"},
			want:     NormalizedCallback{TransactionID: "MV-1", Status: models.TransactionComplete, ProviderReference: "ref-1"},
		},
		{
			name:     "moov money rejected",
			provider: "moov_money",
			payload:  map[string]interface{}{"referenceid": "MV-2", "trans_status": "rejected"},
			want:     NormalizedCallback{TransactionID: "MV-2", Status: models.TransactionEchoue},
		},
		{
			name:     "wave succeeded via payment_status",
			provider: "wave",
			payload:  map[string]interface{}{"id": "WV-1", "payment_status": "succeeded", "wave_id": "w-77"},
			want:     NormalizedCallback{TransactionID: "WV-1", Status: models.TransactionComplete, ProviderReference: "w-77"},
		},
		{
			name:     "wave pending",
			provider: "wave",
			payload:  map[string]interface{}{"client_reference": "WV-2", "status": "pending"},
			want:     NormalizedCallback{TransactionID: "WV-2", Status: models.TransactionTraitement},
		},
		{
			name:     "telecel confirmed",
			provider: "telecel_money",
			payload:  map[string]interface{}{"transaction_id": "TC-1", "state": "confirmed"},
			want:     NormalizedCallback{TransactionID: "TC-1", Status: models.TransactionComplete},
		},
		{
			name:     "telecel initiated",
			provider: "telecel_money",
			payload:  map[string]interface{}{"id": "TC-2", "status": "initiated"},
			want:     NormalizedCallback{TransactionID: "TC-2", Status: models.TransactionTraitement},
		},
		{
			name:     "unknown raw status stays pending",
			provider: "telecel_money",
			payload:  map[string]interface{}{"transaction_id": "TC-3", "status": "weird"},
			want:     NormalizedCallback{TransactionID: "TC-3", Status: models.TransactionEnAttente},
		},
		{
			name:     "missing status stays pending",
			provider: "moov_money",
			payload:  map[string]interface{}{"transaction_id": "MV-3"},
			want:     NormalizedCallback{TransactionID: "MV-3", Status: models.TransactionEnAttente},
		},
		{
			name:     "missing id yields empty TransactionID",
			provider: "orange_money",
			payload:  map[string]interface{}{"status": "SUCCESS"},
			want:     NormalizedCallback{Status: models.TransactionComplete},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeCallback(tt.provider, tt.payload)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeCallbackIDAliasOrder(t *testing.T) {
	// Wave prefers its own "id" over the client reference
	cb, ok := NormalizeCallback("wave", map[string]interface{}{
		"id":               "wave-native",
		"client_reference": "our-ref",
		"status":           "complete",
	})
	require.True(t, ok)
	assert.Equal(t, "wave-native", cb.TransactionID)

	// Our reference echoed in client_reference is equivalent when "id" is absent
	cb, ok = NormalizeCallback("wave", map[string]interface{}{
		"client_reference": "our-ref",
		"status":           "complete",
	})
	require.True(t, ok)
	assert.Equal(t, "our-ref", cb.TransactionID)

	// Later aliases are used when the preferred ones are absent
	cb, ok = NormalizeCallback("wave", map[string]interface{}{
		"transaction_id": "fallback-id",
		"status":         "complete",
	})
	require.True(t, ok)
	assert.Equal(t, "fallback-id", cb.TransactionID)
}

func TestNormalizeCallbackNumericID(t *testing.T) {
	// JSON numbers decode as float64; Moov sends numeric transaction ids
	cb, ok := NormalizeCallback("moov_money", map[string]interface{}{
		"transaction_id": float64(483920),
		"status":         "success",
	})
	require.True(t, ok)
	assert.Equal(t, "483920", cb.TransactionID)
	assert.Equal(t, models.TransactionComplete, cb.Status)
}

func TestStatusClassificationTotality(t *testing.T) {
	// Every documented raw status maps onto one of the four canonical values
	canonical := map[models.TransactionStatus]bool{
		models.TransactionEnAttente:  true,
		models.TransactionTraitement: true,
		models.TransactionComplete:   true,
		models.TransactionEchoue:     true,
	}

	for provider, spec := range providerSpecs {
		for raw, mapped := range spec.statuses {
			assert.Truef(t, canonical[mapped], "%s status %q maps to unexpected value %q", provider, raw, mapped)
		}
	}
}

func TestKnownProvider(t *testing.T) {
	for _, name := range []string{"orange_money", "moov_money", "wave", "telecel_money"} {
		assert.True(t, KnownProvider(name))
	}
	assert.False(t, KnownProvider("mtn_momo"))

	assert.Len(t, Providers(), 4)
}
