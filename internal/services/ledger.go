package services

import (
	"context"
	"log"

	"github.com/example/posbridge/internal/models"
	"github.com/example/posbridge/internal/storage"
)

// TransactionLedger maintains the local record of each payment attempt.
// The remote terminal stays the source of truth for payment outcome; the
// ledger exists for reconciliation and audit.
type TransactionLedger struct {
	store storage.TransactionStore
}

// NewTransactionLedger constructs a TransactionLedger.
func NewTransactionLedger(store storage.TransactionStore) *TransactionLedger {
	return &TransactionLedger{store: store}
}

// StartRecord captures everything worth persisting when a transaction is
// started. Shop routing fields are copied onto the row so history survives
// later terminal link edits.
type StartRecord struct {
	TransactionID string
	Link          *models.TerminalLink
	Amount        int64
	ShopDomain    string
	LocationID    string
	StaffMemberID string
}

// RecordStart creates the transaction row with status started.
func (l *TransactionLedger) RecordStart(ctx context.Context, rec StartRecord) (*models.Transaction, error) {
	txn := &models.Transaction{
		TransactionID: rec.TransactionID,
		Amount:        rec.Amount,
		Status:        StatusStarted,
		ShopDomain:    rec.ShopDomain,
		LocationID:    rec.LocationID,
		StaffMemberID: rec.StaffMemberID,
	}
	if rec.Link != nil {
		id := rec.Link.ID
		txn.TerminalLinkID = &id
	}

	if err := l.store.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}

	log.Printf("[Ledger] Transaction created: %s", txn.TransactionID)
	return txn, nil
}

// ApplyStatus overwrites the local row with the gateway-reported state.
// A transaction id with no local row is a warning, not an error: the
// caller still gets the remote truth, bookkeeping or not.
func (l *TransactionLedger) ApplyStatus(ctx context.Context, transactionID string, status PaymentStatus) (*models.Transaction, error) {
	txn, err := l.store.TransactionByGatewayID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		log.Printf("[Ledger] Transaction %s not found in database", transactionID)
		return nil, nil
	}

	txn.Status = status.Status
	txn.ErrorMsg = status.ErrorMsg
	txn.Receipt = status.Receipt

	if err := l.store.SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}

	log.Printf("[Ledger] Transaction updated: %s -> %s", transactionID, txn.Status)
	return txn, nil
}
