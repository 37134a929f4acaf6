package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFlatShape(t *testing.T) {
	raw := json.RawMessage(`{"status":"failed","errorMsg":"External Equipment Cancellation","receipt":"r"}`)

	got := NormalizeStatus(raw)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "External Equipment Cancellation", got.ErrorMsg)
	assert.Equal(t, "r", got.Receipt)
}

func TestNormalizeNestedTransactionShape(t *testing.T) {
	raw := json.RawMessage(`{"status":"ok","transaction":{"status":"success","receipt":"Receipt data..."}}`)

	got := NormalizeStatus(raw)
	assert.Equal(t, StatusSuccess, got.Status)
	assert.Equal(t, "Receipt data...", got.Receipt)
}

func TestNormalizeNestedDataShape(t *testing.T) {
	raw := json.RawMessage(`{"data":{"status":"failed"}}`)

	got := NormalizeStatus(raw)
	assert.Equal(t, StatusFailed, got.Status)
}

func TestNormalizeTransactionWinsOverDataAndFlat(t *testing.T) {
	// The flat status describes the API call, not the payment; the nested
	// transaction object must always win.
	raw := json.RawMessage(`{"status":"ok","data":{"status":"failed"},"transaction":{"status":"success"}}`)

	got := NormalizeStatus(raw)
	assert.Equal(t, StatusSuccess, got.Status)
}

func TestNormalizeDataWinsOverFlat(t *testing.T) {
	raw := json.RawMessage(`{"status":"ok","data":{"status":"failed"}}`)

	got := NormalizeStatus(raw)
	assert.Equal(t, StatusFailed, got.Status)
}

func TestNormalizeUnknownBecomesStarted(t *testing.T) {
	got := NormalizeStatus(json.RawMessage(`{"transaction":{"status":"unknown"}}`))
	assert.Equal(t, StatusStarted, got.Status)

	got = NormalizeStatus(json.RawMessage(`{"status":"unknown"}`))
	assert.Equal(t, StatusStarted, got.Status)
}

func TestNormalizeEmptyStatusBecomesStarted(t *testing.T) {
	got := NormalizeStatus(json.RawMessage(`{}`))
	assert.Equal(t, StatusStarted, got.Status)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	raw := json.RawMessage(`{"status":"success","receipt":"r"}`)

	once := NormalizeStatus(raw)
	recoded, err := json.Marshal(map[string]string{
		"status":  once.Status,
		"receipt": once.Receipt,
	})
	assert.NoError(t, err)

	twice := NormalizeStatus(recoded)
	assert.Equal(t, once.Status, twice.Status)
	assert.Equal(t, once.Receipt, twice.Receipt)
}

func TestNormalizeOpaqueStatusPassesThrough(t *testing.T) {
	// Unrecognized statuses are kept visible, never rejected.
	got := NormalizeStatus(json.RawMessage(`{"status":"waiting"}`))
	assert.Equal(t, "waiting", got.Status)
}

func TestNormalizeSnakeCaseErrorMsg(t *testing.T) {
	raw := json.RawMessage(`{"transaction":{"status":"failed","error_msg":"Kaart geweigerd"}}`)

	got := NormalizeStatus(raw)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "Kaart geweigerd", got.ErrorMsg)
}
