package cart

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
)

// Observer receives every committed cart change. It runs synchronously on the
// mutating goroutine and must not call back into the store's mutations.
type Observer func(Change)

// Change describes the cart right after a mutation.
type Change struct {
	Op        enum.CartOperation
	Items     []models.CartItem
	Total     float64
	Count     int
	Revision  int64
	Remote    bool
	Persisted bool
}

type subscription struct {
	id       uint64
	observer Observer
}

// Store owns the cart line items. Mutations are serialized: each one updates
// memory, writes the snapshot, then notifies observers, before the next starts.
type Store struct {
	writeMu sync.Mutex

	mu       sync.RWMutex
	items    []models.CartItem
	index    map[uint64]int
	revision int64

	observerMu sync.Mutex
	observers  []subscription
	nextID     uint64

	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewStore restores the cart from repo. A missing or unreadable snapshot
// yields an empty cart.
func NewStore(ctx context.Context, repo Repository, logger *zap.Logger) *Store {
	s := &Store{
		repo:   repo,
		now:    time.Now,
		logger: logger,
	}

	items, err := repo.Load(ctx)
	if err != nil {
		logger.Warn("Failed to restore cart, starting empty", zap.Error(err))
		items = nil
	}
	s.items, s.index = normalize(items)

	if len(items) != len(s.items) {
		logger.Warn("Cart snapshot normalized",
			zap.Int("records", len(items)),
			zap.Int("lines", len(s.items)))
	}
	logger.Debug("Cart restored", zap.Int("items", len(s.items)), zap.Int("count", s.Count()))

	return s
}

func (s *Store) AddToCart(ctx context.Context, product models.Product, quantity int) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	if quantity < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}

	var err error
	s.commit(ctx, enum.CartOperationAdd, 0, func() bool {
		if i, ok := s.index[product.ID]; ok {
			if quantity > math.MaxInt-s.items[i].Quantity {
				err = fmt.Errorf("%w: %d more of product %d overflows", ErrInvalidQuantity, quantity, product.ID)
				return false
			}
			s.items[i].Quantity += quantity
			return true
		}
		s.index[product.ID] = len(s.items)
		s.items = append(s.items, models.NewCartItem(product, quantity))
		return true
	})
	return err
}

// RemoveFromCart deletes the line for id. An absent id changes nothing.
func (s *Store) RemoveFromCart(ctx context.Context, id uint64) {
	s.commit(ctx, enum.CartOperationRemove, 0, func() bool {
		return s.removeLocked(id)
	})
}

// UpdateQuantity sets the line quantity exactly. A quantity of zero or less
// removes the line, so no stored item ever has a non-positive quantity.
func (s *Store) UpdateQuantity(ctx context.Context, id uint64, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(ctx, id)
		return
	}

	s.commit(ctx, enum.CartOperationUpdate, 0, func() bool {
		i, ok := s.index[id]
		if !ok || s.items[i].Quantity == quantity {
			return false
		}
		s.items[i].Quantity = quantity
		return true
	})
}

// UpdateQuantityInput applies text typed into a quantity field.
func (s *Store) UpdateQuantityInput(ctx context.Context, id uint64, raw string) {
	s.UpdateQuantity(ctx, id, ParseQuantity(raw))
}

func (s *Store) ClearCart(ctx context.Context) {
	s.commit(ctx, enum.CartOperationClear, 0, func() bool {
		s.items = []models.CartItem{}
		s.index = make(map[uint64]int)
		return true
	})
}

// Drain empties the cart and returns the lines it held, as one mutation, so
// nothing committed in between can be lost. An empty cart is left untouched.
func (s *Store) Drain(ctx context.Context) []models.CartItem {
	var drained []models.CartItem
	s.commit(ctx, enum.CartOperationClear, 0, func() bool {
		if len(s.items) == 0 {
			return false
		}
		drained = s.items
		s.items = []models.CartItem{}
		s.index = make(map[uint64]int)
		return true
	})
	return models.CloneCartItems(drained)
}

// Replace installs a snapshot produced elsewhere if its revision is newer than
// the current one (last writer wins). It reports whether it was applied.
func (s *Store) Replace(ctx context.Context, items []models.CartItem, revision int64) bool {
	applied := false
	s.commit(ctx, enum.CartOperationReplace, revision, func() bool {
		if revision <= s.revision {
			return false
		}
		s.items, s.index = normalize(items)
		applied = true
		return true
	})
	return applied
}

func (s *Store) Items() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.CloneCartItems(s.items)
}

// Total returns Σ price × quantity over the current items.
func (s *Store) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return totalOf(s.items)
}

// Count returns Σ quantity over the current items, capped at math.MaxInt.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return countOf(s.items)
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

func (s *Store) Revision() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.revision
}

// Subscribe registers observer and returns a function that removes it.
func (s *Store) Subscribe(observer Observer) (unsubscribe func()) {
	s.observerMu.Lock()
	defer s.observerMu.Unlock()

	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, subscription{id: id, observer: observer})

	return func() {
		s.observerMu.Lock()
		defer s.observerMu.Unlock()

		s.observers = slices.DeleteFunc(s.observers, func(sub subscription) bool {
			return sub.id == id
		})
	}
}

// commit runs mutate under the state lock. When mutate reports a change the
// snapshot is written and observers are told, in that order. A non-zero
// remoteRevision marks the change as coming from another process.
func (s *Store) commit(ctx context.Context, op enum.CartOperation, remoteRevision int64, mutate func() bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if !mutate() {
		s.mu.Unlock()
		return
	}
	if remoteRevision != 0 {
		s.revision = remoteRevision
	} else {
		s.revision = s.nextRevisionLocked()
	}
	change := Change{
		Op:       op,
		Items:    models.CloneCartItems(s.items),
		Total:    totalOf(s.items),
		Count:    countOf(s.items),
		Revision: s.revision,
		Remote:   remoteRevision != 0,
	}
	s.mu.Unlock()

	change.Persisted = s.persist(ctx, change.Items)

	s.logger.Debug("Cart changed",
		zap.String("op", string(op)),
		zap.Int("items", len(change.Items)),
		zap.Int("count", change.Count),
		zap.Int64("revision", change.Revision),
		zap.Bool("remote", change.Remote))

	s.notify(change)
}

func (s *Store) persist(ctx context.Context, items []models.CartItem) bool {
	if err := s.repo.Save(ctx, items); err != nil {
		// the in-memory cart stays authoritative
		s.logger.Warn("Failed to persist cart snapshot", zap.Error(err))
		return false
	}
	return true
}

func (s *Store) notify(change Change) {
	s.observerMu.Lock()
	observers := slices.Clone(s.observers)
	s.observerMu.Unlock()

	for _, sub := range observers {
		c := change
		c.Items = models.CloneCartItems(change.Items)
		sub.observer(c)
	}
}

func (s *Store) nextRevisionLocked() int64 {
	return max(s.revision+1, s.now().UnixNano())
}

func (s *Store) removeLocked(id uint64) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
	return true
}

func validateProduct(product models.Product) error {
	if product.ID == 0 {
		return fmt.Errorf("%w: missing id", ErrInvalidProduct)
	}
	if math.IsNaN(product.Price) || math.IsInf(product.Price, 0) || product.Price < 0 {
		return fmt.Errorf("%w: product %d has price %v", ErrInvalidProduct, product.ID, product.Price)
	}
	return nil
}

// normalize enforces the cart invariants on items from outside the store:
// invalid records and non-positive quantities are dropped, repeated ids are
// folded into their first occurrence with the sum capped at math.MaxInt.
func normalize(items []models.CartItem) ([]models.CartItem, map[uint64]int) {
	out := make([]models.CartItem, 0, len(items))
	index := make(map[uint64]int, len(items))

	for _, item := range items {
		if validateProduct(item.Product) != nil || item.Quantity <= 0 {
			continue
		}
		if i, ok := index[item.ID]; ok {
			out[i].Quantity = addCapped(out[i].Quantity, item.Quantity)
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}

	return out, index
}

// addCapped adds two positive quantities, saturating at math.MaxInt.
func addCapped(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}

func totalOf(items []models.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

func countOf(items []models.CartItem) int {
	var count int
	for _, item := range items {
		count = addCapped(count, item.Quantity)
	}
	return count
}
