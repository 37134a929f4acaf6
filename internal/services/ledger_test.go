package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/posbridge/internal/models"
)

func TestRecordStartCreatesStartedRow(t *testing.T) {
	store := newFakeStore()
	ledger := NewTransactionLedger(store)

	terminal := link("acme.myshopify.com", "T1")
	txn, err := ledger.RecordStart(context.Background(), StartRecord{
		TransactionID: "2405102",
		Link:          &terminal,
		Amount:        1500,
		ShopDomain:    "acme.myshopify.com",
		LocationID:    "loc-1",
		StaffMemberID: "staff-1",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusStarted, txn.Status)
	assert.Equal(t, int64(1500), txn.Amount)
	assert.Equal(t, "acme.myshopify.com", txn.ShopDomain)
	assert.Equal(t, "loc-1", txn.LocationID)
	assert.Equal(t, "staff-1", txn.StaffMemberID)
	require.Len(t, store.created, 1)
}

func TestApplyStatusOverwritesRow(t *testing.T) {
	store := newFakeStore()
	store.transactions["2405102"] = &models.Transaction{
		TransactionID: "2405102",
		Status:        StatusStarted,
		Amount:        1500,
	}
	ledger := NewTransactionLedger(store)

	txn, err := ledger.ApplyStatus(context.Background(), "2405102", PaymentStatus{
		Status:  StatusSuccess,
		Receipt: "Receipt data...",
	})
	require.NoError(t, err)
	require.NotNil(t, txn)

	assert.Equal(t, StatusSuccess, txn.Status)
	assert.Equal(t, "Receipt data...", txn.Receipt)
	require.Len(t, store.saved, 1)
}

func TestApplyStatusUnknownTransactionIsNoOp(t *testing.T) {
	store := newFakeStore()
	ledger := NewTransactionLedger(store)

	txn, err := ledger.ApplyStatus(context.Background(), "missing", PaymentStatus{Status: StatusSuccess})
	require.NoError(t, err)
	assert.Nil(t, txn)
	assert.Empty(t, store.saved)
}

func TestApplyStatusIdempotentReapply(t *testing.T) {
	store := newFakeStore()
	store.transactions["2405102"] = &models.Transaction{
		TransactionID: "2405102",
		Status:        StatusSuccess,
		Receipt:       "Receipt data...",
	}
	ledger := NewTransactionLedger(store)

	// Re-polling a finished transaction re-applies the same terminal state.
	txn, err := ledger.ApplyStatus(context.Background(), "2405102", PaymentStatus{
		Status:  StatusSuccess,
		Receipt: "Receipt data...",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, txn.Status)
}
