package repository

import (
	"context"
	"errors"

	"github.com/greenkart/storefront/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	// ErrCartCorrupt marks a persisted snapshot that no longer decodes.
	// Callers recover by treating the cart as empty.
	ErrCartCorrupt = errors.New("persisted cart is malformed")
)

// CartRepository defines the interface for durable cart storage.
// Consumers define this interface, not the MongoDB implementation.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) ([]domain.CartLine, error)
	SaveCart(ctx context.Context, userID string, lines []domain.CartLine) error
	DeleteCart(ctx context.Context, userID string) error
}
