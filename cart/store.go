package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"storefront/apperrors"
	"storefront/models"
)

// Persister is the durable side of the cart. The Redis implementation
// lives in the database package.
type Persister interface {
	Load(ctx context.Context) ([]models.CartItem, error)
	Save(ctx context.Context, items []models.CartItem) error
	Delete(ctx context.Context) error
}

// Store owns the mutable shopping list. Every mutation persists the
// resulting list synchronously; persistence is best-effort and never
// surfaces to the shopper.
type Store struct {
	mu     sync.Mutex
	items  []models.CartItem
	repo   Persister
	logger *zap.Logger
}

func NewStore(repo Persister, logger *zap.Logger) *Store {
	return &Store{
		repo:   repo,
		logger: logger,
	}
}

// Hydrate fills the store from persisted state. An unreadable or
// stale-format cart starts empty rather than failing startup.
func (s *Store) Hydrate(ctx context.Context) {
	items, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load persisted cart, starting empty", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

// persist writes the current list through. Callers hold the lock.
func (s *Store) persist(ctx context.Context) {
	items := make([]models.CartItem, len(s.items))
	copy(items, s.items)

	if err := s.repo.Save(ctx, items); err != nil {
		s.logger.Warn("Failed to persist cart", zap.Error(err))
	}
}

// AddItem inserts the product or, when it is already in the cart,
// accumulates the quantity onto the existing line.
func (s *Store) AddItem(ctx context.Context, product models.Product, quantity int64) error {
	if quantity < 1 {
		return apperrors.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product.ID == product.ID {
			s.items[i].Quantity += quantity
			s.persist(ctx)
			return nil
		}
	}

	s.items = append(s.items, models.CartItem{
		Product:  product,
		Quantity: quantity,
	})
	s.persist(ctx)
	return nil
}

// SetQuantity overwrites a line's quantity. Values below 1 leave the
// prior quantity unchanged.
func (s *Store) SetQuantity(ctx context.Context, productID, quantity int64) {
	if quantity < 1 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items[i].Quantity = quantity
			s.persist(ctx)
			return
		}
	}
}

// RemoveItem drops one line from the cart.
func (s *Store) RemoveItem(ctx context.Context, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, item := range s.items {
		if item.Product.ID != productID {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.persist(ctx)
}

// Clear empties the cart and the persisted copy.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if err := s.repo.Delete(ctx); err != nil {
		s.logger.Warn("Failed to delete persisted cart", zap.Error(err))
	}
}

// ToggleChecked flips one line's selection flag.
func (s *Store) ToggleChecked(ctx context.Context, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items[i].Checked = !s.items[i].Checked
			s.persist(ctx)
			return
		}
	}
}

// ToggleAllChecked sets every line to the negation of "all currently
// checked": a mixed cart checks everything first.
func (s *Store) ToggleAllChecked(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allChecked := len(s.items) > 0
	for _, item := range s.items {
		if !item.Checked {
			allChecked = false
			break
		}
	}

	for i := range s.items {
		s.items[i].Checked = !allChecked
	}
	s.persist(ctx)
}

// RemoveChecked drops the selected lines, used after a completed
// purchase so bought items leave the cart.
func (s *Store) RemoveChecked(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, item := range s.items {
		if !item.Checked {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.persist(ctx)
}

// Items returns a copy of the current lines.
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

// TotalPrice sums quantity times unit price over every line,
// regardless of selection.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, item := range s.items {
		total += item.Subtotal()
	}
	return total
}

// Snapshot copies the checked lines into an order draft. The draft is
// detached: mutating the cart afterwards does not reach it.
func (s *Store) Snapshot() models.OrderDraft {
	s.mu.Lock()
	defer s.mu.Unlock()

	var draft models.OrderDraft
	for _, item := range s.items {
		if item.Checked {
			draft.Items = append(draft.Items, item)
			draft.TotalAmount += item.Subtotal()
		}
	}
	return draft
}
