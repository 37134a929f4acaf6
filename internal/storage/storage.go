package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/posbridge/internal/models"
)

// TerminalStore provides read access to terminal link bindings.
type TerminalStore interface {
	// TerminalLinksByShopDomain returns all links for a shop domain in
	// creation order. An empty slice means the shop has no terminals.
	TerminalLinksByShopDomain(ctx context.Context, shopDomain string) ([]models.TerminalLink, error)
}

// TransactionStore persists transaction lifecycle records.
type TransactionStore interface {
	// TransactionByGatewayID looks a transaction up by its gateway-assigned
	// id. Returns nil, nil when no local record exists.
	TransactionByGatewayID(ctx context.Context, transactionID string) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	SaveTransaction(ctx context.Context, txn *models.Transaction) error
	TransactionsByShopDomain(ctx context.Context, shopDomain string, limit, offset int) ([]models.Transaction, int64, error)
}

// Store is the full storage port the handlers are wired against.
type Store interface {
	TerminalStore
	TransactionStore
}

// GormStore implements Store against the configured gorm database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore constructs a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) TerminalLinksByShopDomain(ctx context.Context, shopDomain string) ([]models.TerminalLink, error) {
	var links []models.TerminalLink
	if err := s.db.WithContext(ctx).
		Where("shop_domain = ?", shopDomain).
		Order("created_at asc, id asc").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (s *GormStore) TransactionByGatewayID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (s *GormStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return s.db.WithContext(ctx).Create(txn).Error
}

func (s *GormStore) SaveTransaction(ctx context.Context, txn *models.Transaction) error {
	return s.db.WithContext(ctx).Save(txn).Error
}

func (s *GormStore) TransactionsByShopDomain(ctx context.Context, shopDomain string, limit, offset int) ([]models.Transaction, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("shop_domain = ?", shopDomain)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []models.Transaction
	if err := query.
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&txns).Error; err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}
