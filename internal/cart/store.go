// Package cart holds a user's pre-checkout line items and keeps them
// durable in a key-value storage after every mutation.
package cart

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/model"
)

// Storage persists cart documents keyed by user.
type Storage interface {
	// Load returns the persisted items, or an empty slice when none exist.
	Load(ctx context.Context, userID string) ([]model.CartLineItem, error)

	// Save replaces the persisted items.
	Save(ctx context.Context, userID string, items []model.CartLineItem) error

	// Delete removes the persisted representation.
	Delete(ctx context.Context, userID string) error
}

// Store is one user's cart. Every mutation is written to storage before it
// becomes visible, so a failed write leaves the cart unchanged.
type Store struct {
	mu      sync.Mutex
	storage Storage
	userID  string
	items   []model.CartLineItem
}

// NewStore loads the user's cart from storage.
func NewStore(ctx context.Context, storage Storage, userID string) (*Store, error) {
	items, err := storage.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &Store{
		storage: storage,
		userID:  userID,
		items:   items,
	}, nil
}

// AddItem appends item with qty, or sums qty into the existing line for the
// same item ID. qty below 1 is treated as 1. A line that would exceed
// model.MaxQuantity is refused with model.ErrInvalidQuantity and the cart
// is left unchanged.
func (s *Store) AddItem(ctx context.Context, item model.CartLineItem, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	qty = clampQuantity(qty)
	if qty > model.MaxQuantity {
		return model.ErrInvalidQuantity
	}
	next := s.snapshot()

	found := false
	for i := range next {
		if next[i].ItemID == item.ItemID {
			if next[i].Quantity > model.MaxQuantity-qty {
				return model.ErrInvalidQuantity
			}
			next[i].Quantity += qty
			found = true
			break
		}
	}
	if !found {
		item.Quantity = qty
		next = append(next, item)
	}

	return s.commit(ctx, next)
}

// SetQuantity overwrites the quantity of an existing line. Absent items are
// ignored. Quantities above model.MaxQuantity are refused.
func (s *Store) SetQuantity(ctx context.Context, itemID string, qty int) error {
	if qty > model.MaxQuantity {
		return model.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot()
	for i := range next {
		if next[i].ItemID == itemID {
			next[i].Quantity = clampQuantity(qty)
			return s.commit(ctx, next)
		}
	}
	return nil
}

// RemoveItem drops the line for itemID. Removing an absent item is a no-op.
func (s *Store) RemoveItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.CartLineItem, 0, len(s.items))
	for _, it := range s.items {
		if it.ItemID != itemID {
			next = append(next, it)
		}
	}
	if len(next) == len(s.items) {
		return nil
	}
	return s.commit(ctx, next)
}

// Clear empties the cart and deletes its persisted representation.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, s.userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	s.items = nil
	return nil
}

// Items returns a copy of the current line items.
func (s *Store) Items() []model.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Len returns the number of distinct line items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Total returns the sum of unit price times quantity over all lines.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Total(s.items)
}

// Total sums the line totals of items.
func Total(items []model.CartLineItem) int64 {
	var total int64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}

func (s *Store) snapshot() []model.CartLineItem {
	out := make([]model.CartLineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) commit(ctx context.Context, next []model.CartLineItem) error {
	if err := s.storage.Save(ctx, s.userID, next); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	s.items = next
	return nil
}

func clampQuantity(qty int) int {
	if qty < 1 {
		return 1
	}
	return qty
}
