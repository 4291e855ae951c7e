package checkout

import (
	"context"
	"sync"

	"github.com/greenkart/storefront/internal/cart"
	"github.com/greenkart/storefront/internal/domain"
)

// UserSubmitter posts a draft on behalf of a specific user. The gateway
// client implements it.
type UserSubmitter interface {
	SubmitFor(ctx context.Context, userID string, draft *domain.OrderDraft) (string, error)
}

// boundSubmitter fixes the user so a Controller only ever sees Submitter.
type boundSubmitter struct {
	userID    string
	submitter UserSubmitter
}

func (b boundSubmitter) Submit(ctx context.Context, draft *domain.OrderDraft) (string, error) {
	return b.submitter.SubmitFor(ctx, b.userID, draft)
}

// Manager keeps at most one live checkout attempt per user.
type Manager struct {
	submitter UserSubmitter

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewManager(submitter UserSubmitter) *Manager {
	return &Manager{
		submitter:   submitter,
		controllers: make(map[string]*Controller),
	}
}

// ForUser returns the user's active checkout, starting one over the given
// cart store if none exists. A finished attempt is replaced by a fresh one.
func (m *Manager) ForUser(userID string, store *cart.Store) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.controllers[userID]; ok {
		if !c.Step().IsTerminal() {
			return c
		}
		c.Close()
	}

	c := NewController(store, boundSubmitter{userID: userID, submitter: m.submitter})
	m.controllers[userID] = c
	return c
}
