package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/posbridge/internal/models"
)

// fakeStore is an in-memory storage port used across the service tests.
type fakeStore struct {
	links        []models.TerminalLink
	transactions map[string]*models.Transaction
	created      []*models.Transaction
	saved        []*models.Transaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{transactions: make(map[string]*models.Transaction)}
}

func (s *fakeStore) TerminalLinksByShopDomain(_ context.Context, shopDomain string) ([]models.TerminalLink, error) {
	var out []models.TerminalLink
	for _, l := range s.links {
		if l.ShopDomain == shopDomain {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *fakeStore) TransactionByGatewayID(_ context.Context, transactionID string) (*models.Transaction, error) {
	txn, ok := s.transactions[transactionID]
	if !ok {
		return nil, nil
	}
	copied := *txn
	return &copied, nil
}

func (s *fakeStore) CreateTransaction(_ context.Context, txn *models.Transaction) error {
	s.created = append(s.created, txn)
	s.transactions[txn.TransactionID] = txn
	return nil
}

func (s *fakeStore) SaveTransaction(_ context.Context, txn *models.Transaction) error {
	s.saved = append(s.saved, txn)
	s.transactions[txn.TransactionID] = txn
	return nil
}

func (s *fakeStore) TransactionsByShopDomain(_ context.Context, shopDomain string, limit, offset int) ([]models.Transaction, int64, error) {
	var out []models.Transaction
	for _, txn := range s.transactions {
		if txn.ShopDomain == shopDomain {
			out = append(out, *txn)
		}
	}
	return out, int64(len(out)), nil
}

func link(shopDomain, terminalID string, mutate ...func(*models.TerminalLink)) models.TerminalLink {
	l := models.TerminalLink{
		ShopDomain: shopDomain,
		TerminalID: terminalID,
		APIKey:     "key-" + terminalID,
	}
	for _, m := range mutate {
		m(&l)
	}
	return l
}

func TestResolveNoTerminalForShop(t *testing.T) {
	resolver := NewTerminalResolver(newFakeStore())

	_, err := resolver.Resolve(context.Background(), TerminalQuery{ShopDomain: "nonexistent.myshopify.com"})
	assert.ErrorIs(t, err, ErrNoTerminalForShop)
}

func TestResolveSingleLinkIgnoresHints(t *testing.T) {
	store := newFakeStore()
	store.links = []models.TerminalLink{link("test.myshopify.com", "12345")}
	resolver := NewTerminalResolver(store)

	// A lone link serves the shop even when no hint matches it.
	found, err := resolver.Resolve(context.Background(), TerminalQuery{
		ShopDomain:    "test.myshopify.com",
		LocationID:    "loc-999",
		StaffMemberID: "staff-999",
		UserID:        "user-999",
		ShopID:        "shop-999",
	})
	require.NoError(t, err)
	assert.Equal(t, "12345", found.TerminalID)
}

func TestResolveByLocation(t *testing.T) {
	store := newFakeStore()
	store.links = []models.TerminalLink{
		link("test.myshopify.com", "11111", func(l *models.TerminalLink) { l.LocationID = "loc-1" }),
		link("test.myshopify.com", "22222", func(l *models.TerminalLink) { l.LocationID = "loc-2" }),
	}
	resolver := NewTerminalResolver(store)

	found, err := resolver.Resolve(context.Background(), TerminalQuery{
		ShopDomain: "test.myshopify.com",
		LocationID: "loc-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "22222", found.TerminalID)
}

func TestResolveByStaffMember(t *testing.T) {
	store := newFakeStore()
	store.links = []models.TerminalLink{
		link("test.myshopify.com", "11111", func(l *models.TerminalLink) { l.StaffMemberID = "staff-1" }),
		link("test.myshopify.com", "22222", func(l *models.TerminalLink) { l.StaffMemberID = "staff-2" }),
	}
	resolver := NewTerminalResolver(store)

	found, err := resolver.Resolve(context.Background(), TerminalQuery{
		ShopDomain:    "test.myshopify.com",
		StaffMemberID: "staff-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "11111", found.TerminalID)
}

func TestResolveUnmatchedHintKeepsWiderSet(t *testing.T) {
	store := newFakeStore()
	store.links = []models.TerminalLink{
		link("test.myshopify.com", "11111"),
		link("test.myshopify.com", "22222", func(l *models.TerminalLink) { l.LocationID = "loc-1" }),
	}
	resolver := NewTerminalResolver(store)

	// Matching hint narrows to the specific link.
	found, err := resolver.Resolve(context.Background(), TerminalQuery{
		ShopDomain: "test.myshopify.com",
		LocationID: "loc-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "22222", found.TerminalID)

	// A hint matching nothing falls back to the full set, first link wins.
	found, err = resolver.Resolve(context.Background(), TerminalQuery{
		ShopDomain: "test.myshopify.com",
		LocationID: "loc-999",
	})
	require.NoError(t, err)
	assert.Equal(t, "11111", found.TerminalID)
}

func TestResolveHintPrecedence(t *testing.T) {
	store := newFakeStore()
	store.links = []models.TerminalLink{
		link("test.myshopify.com", "11111", func(l *models.TerminalLink) {
			l.LocationID = "loc-1"
			l.StaffMemberID = "staff-1"
		}),
		link("test.myshopify.com", "22222", func(l *models.TerminalLink) {
			l.LocationID = "loc-2"
			l.StaffMemberID = "staff-2"
		}),
	}
	resolver := NewTerminalResolver(store)

	// Location is applied before staff member: once loc-1 narrows the set
	// to a single link, the conflicting staff hint cannot change it.
	found, err := resolver.Resolve(context.Background(), TerminalQuery{
		ShopDomain:    "test.myshopify.com",
		LocationID:    "loc-1",
		StaffMemberID: "staff-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "11111", found.TerminalID)
}

func TestResolveAllHints(t *testing.T) {
	store := newFakeStore()
	store.links = []models.TerminalLink{
		link("test.myshopify.com", "12345", func(l *models.TerminalLink) {
			l.LocationID = "loc-1"
			l.StaffMemberID = "staff-1"
			l.UserID = "user-1"
			l.ShopID = "shop-1"
		}),
		link("test.myshopify.com", "99999"),
	}
	resolver := NewTerminalResolver(store)

	found, err := resolver.Resolve(context.Background(), TerminalQuery{
		ShopDomain:    "test.myshopify.com",
		LocationID:    "loc-1",
		StaffMemberID: "staff-1",
		UserID:        "user-1",
		ShopID:        "shop-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "12345", found.TerminalID)
}

func TestResolveTieBreakIsStable(t *testing.T) {
	store := newFakeStore()
	store.links = []models.TerminalLink{
		link("test.myshopify.com", "first"),
		link("test.myshopify.com", "second"),
	}
	resolver := NewTerminalResolver(store)

	for i := 0; i < 5; i++ {
		found, err := resolver.Resolve(context.Background(), TerminalQuery{ShopDomain: "test.myshopify.com"})
		require.NoError(t, err)
		assert.Equal(t, "first", found.TerminalID)
	}
}
