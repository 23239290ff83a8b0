package services

import (
	"strconv"

	"FasoLink/internal/models"
)

// NormalizedCallback is the provider-independent view of a payment callback.
type NormalizedCallback struct {
	TransactionID     string
	Status            models.TransactionStatus
	ProviderReference string
}

// providerSpec describes one mobile money operator's callback dialect: which
// field carries the correlation id (operators are inconsistent, so aliases
// are tried in order), which field carries the raw status, and how that raw
// vocabulary maps onto the canonical statuses. Adding an operator means
// adding an entry here, not new code.
type providerSpec struct {
	idFields        []string
	statusFields    []string
	referenceFields []string
	statuses        map[string]models.TransactionStatus
}

var providerSpecs = map[string]providerSpec{
	"orange_money": {
		idFields:        []string{"txnid", "transaction_id", "order_id"},
		statusFields:    []string{"status", "txnstatus"},
		referenceFields: []string{"pay_token", "reference"},
		statuses: map[string]models.TransactionStatus{
			"SUCCESS":    models.TransactionComplete,
			"SUCCESSFUL": models.TransactionComplete,
			"FAILED":     models.TransactionEchoue,
			"CANCELLED":  models.TransactionEchoue,
			"PENDING":    models.TransactionTraitement,
		},
	},
	"moov_money": {
		idFields:        []string{"transaction_id", "trans_id", "referenceid"},
		statusFields:    []string{"status", "trans_status"},
		referenceFields: []string{"reference", "moov_reference"},
		statuses: map[string]models.TransactionStatus{
			"success":   models.TransactionComplete,
			"completed": models.TransactionComplete,
			"failed":    models.TransactionEchoue,
			"rejected":  models.TransactionEchoue,
			"pending":   models.TransactionTraitement,
		},
	},
	"wave": {
		idFields:        []string{"id", "client_reference", "transaction_id"},
		statusFields:    []string{"payment_status", "status"},
		referenceFields: []string{"wave_id", "reference"},
		statuses: map[string]models.TransactionStatus{
			"complete":  models.TransactionComplete,
			"succeeded": models.TransactionComplete,
			"failed":    models.TransactionEchoue,
			"cancelled": models.TransactionEchoue,
			"pending":   models.TransactionTraitement,
		},
	},
	"telecel_money": {
		idFields:        []string{"transaction_id", "trans_id", "id"},
		statusFields:    []string{"status", "state"},
		referenceFields: []string{"reference", "external_ref"},
		statuses: map[string]models.TransactionStatus{
			"success":   models.TransactionComplete,
			"completed": models.TransactionComplete,
			"confirmed": models.TransactionComplete,
			"failed":    models.TransactionEchoue,
			"declined":  models.TransactionEchoue,
			"cancelled": models.TransactionEchoue,
			"pending":   models.TransactionTraitement,
			"initiated": models.TransactionTraitement,
		},
	},
}

// KnownProvider reports whether name is a supported mobile money operator.
func KnownProvider(name string) bool {
	_, ok := providerSpecs[name]
	return ok
}

// Providers returns the supported operator names.
func Providers() []string {
	names := make([]string, 0, len(providerSpecs))
	for name := range providerSpecs {
		names = append(names, name)
	}
	return names
}

// NormalizeCallback maps a raw provider payload onto the canonical callback
// shape. Status matching is case-sensitive against the operator's documented
// vocabulary; anything outside it classifies as en_attente so an ambiguous
// callback stays tracked as pending instead of being marked failed or
// complete by accident. Returns ok=false for an unknown provider.
func NormalizeCallback(provider string, payload map[string]interface{}) (NormalizedCallback, bool) {
	spec, ok := providerSpecs[provider]
	if !ok {
		return NormalizedCallback{}, false
	}

	cb := NormalizedCallback{
		TransactionID:     firstValue(payload, spec.idFields),
		ProviderReference: firstValue(payload, spec.referenceFields),
		Status:            models.TransactionEnAttente,
	}

	if raw := firstValue(payload, spec.statusFields); raw != "" {
		if mapped, found := spec.statuses[raw]; found {
			cb.Status = mapped
		}
	}

	return cb, true
}

// firstValue returns the first non-empty value among the field aliases.
// JSON numbers decode as float64; some operators send numeric ids.
func firstValue(payload map[string]interface{}, fields []string) string {
	for _, field := range fields {
		switch v := payload[field].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
