package services

import (
	"context"
	"errors"
	"log"

	"github.com/example/posbridge/internal/models"
	"github.com/example/posbridge/internal/storage"
)

// ErrNoTerminalForShop is returned when a shop domain has no terminal links.
var ErrNoTerminalForShop = errors.New("no terminal linked for shop domain")

// TerminalQuery carries the shop domain and the optional routing hints a
// POS request may supply, from most to least specific.
type TerminalQuery struct {
	ShopDomain    string
	LocationID    string
	StaffMemberID string
	UserID        string
	ShopID        string
}

// TerminalResolver picks the terminal link that should process a request.
type TerminalResolver struct {
	store storage.TerminalStore
}

// NewTerminalResolver constructs a TerminalResolver.
func NewTerminalResolver(store storage.TerminalStore) *TerminalResolver {
	return &TerminalResolver{store: store}
}

// Resolve narrows the shop's terminal links by each hint in fixed order:
// location, staff member, user, shop id. A hint that matches none of the
// current candidates is treated as not provided, so a shop with a single
// generic link keeps working no matter which hints the POS sends. Once the
// set is down to one candidate, later hints cannot widen or change it.
func (r *TerminalResolver) Resolve(ctx context.Context, q TerminalQuery) (*models.TerminalLink, error) {
	candidates, err := r.store.TerminalLinksByShopDomain(ctx, q.ShopDomain)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		log.Printf("[Resolver] No terminal found for shop_domain=%s", q.ShopDomain)
		return nil, ErrNoTerminalForShop
	}

	hints := []struct {
		value string
		field func(models.TerminalLink) string
	}{
		{q.LocationID, func(l models.TerminalLink) string { return l.LocationID }},
		{q.StaffMemberID, func(l models.TerminalLink) string { return l.StaffMemberID }},
		{q.UserID, func(l models.TerminalLink) string { return l.UserID }},
		{q.ShopID, func(l models.TerminalLink) string { return l.ShopID }},
	}

	for _, hint := range hints {
		candidates = narrow(candidates, hint.value, hint.field)
	}

	link := candidates[0]
	log.Printf("[Resolver] Resolved %s -> terminal %s", q.ShopDomain, link.TerminalID)
	return &link, nil
}

// narrow applies one hint to the candidate set. It never empties the set:
// a filter with no matches keeps the wider set, and a set already narrowed
// to a single candidate is left alone.
func narrow(candidates []models.TerminalLink, value string, field func(models.TerminalLink) string) []models.TerminalLink {
	if len(candidates) <= 1 || value == "" {
		return candidates
	}

	var matched []models.TerminalLink
	for _, link := range candidates {
		if field(link) == value {
			matched = append(matched, link)
		}
	}

	if len(matched) == 0 {
		return candidates
	}
	return matched
}
