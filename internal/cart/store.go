package cart

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/greenkart/storefront/internal/domain"
)

// ErrInvalidQuantity rejects Add calls with a non-positive quantity instead
// of silently creating a dead line.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// Persister saves and restores cart snapshots. Save runs synchronously on
// every mutation: a Load immediately after a Save observes the new state.
// Consumers define this interface, not the storage implementation.
type Persister interface {
	Save(ctx context.Context, userID string, lines []domain.CartLine) error
	Load(ctx context.Context, userID string) ([]domain.CartLine, error)
}

// Store owns the cart state for one user. It is the single source of truth
// for cart contents: every mutation goes through the pure Apply transition,
// is persisted before it is visible, and is then announced to subscribers.
// There is no ambient global cart; anything needing the cart gets a *Store.
type Store struct {
	userID    string
	persister Persister

	mu      sync.Mutex
	lines   []domain.CartLine
	subs    map[int]func([]domain.CartLine)
	nextSub int
}

func NewStore(userID string, persister Persister) *Store {
	return &Store{
		userID:    userID,
		persister: persister,
		subs:      make(map[int]func([]domain.CartLine)),
	}
}

// Load rehydrates the cart from durable storage. A missing or malformed
// snapshot degrades to the empty cart; Load never fails.
func (s *Store) Load(ctx context.Context) {
	lines, err := s.persister.Load(ctx, s.userID)
	if err != nil {
		log.Printf("cart load for user %s failed, starting empty: %v", s.userID, err)
		lines = nil
	}

	s.mu.Lock()
	s.lines = Apply(nil, Load{Lines: lines})
	snapshot := copyLines(s.lines)
	s.mu.Unlock()

	s.notify(snapshot)
}

// Add merges quantity into the existing line for the product or appends a
// new one.
func (s *Store) Add(ctx context.Context, product domain.Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return s.dispatch(ctx, Add{Product: product, Quantity: quantity})
}

// Remove deletes the product's line. Removing an absent id is a no-op.
func (s *Store) Remove(ctx context.Context, productID string) error {
	return s.dispatch(ctx, Remove{ProductID: productID})
}

// SetQuantity sets a line's quantity exactly; a quantity <= 0 removes the line.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) error {
	return s.dispatch(ctx, SetQuantity{ProductID: productID, Quantity: quantity})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	return s.dispatch(ctx, Clear{})
}

// Lines returns a snapshot of the current cart contents.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.lines)
}

// Subscribe registers fn to run after every applied mutation, with a
// snapshot of the new state. The returned function unsubscribes.
func (s *Store) Subscribe(fn func([]domain.CartLine)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// dispatch applies the action, persists the result, and only then makes the
// new state observable. A failed persist leaves the state untouched.
func (s *Store) dispatch(ctx context.Context, action Action) error {
	s.mu.Lock()
	next := Apply(s.lines, action)
	if err := s.persister.Save(ctx, s.userID, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.lines = next
	snapshot := copyLines(next)
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

func (s *Store) notify(snapshot []domain.CartLine) {
	s.mu.Lock()
	fns := make([]func([]domain.CartLine), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
