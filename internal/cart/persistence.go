package cart

import (
	"context"
	"errors"
	"log"

	"github.com/greenkart/storefront/internal/cache"
	"github.com/greenkart/storefront/internal/domain"
	"github.com/greenkart/storefront/internal/repository"
	"golang.org/x/sync/singleflight"
)

// Persistence implements Persister over the durable repository with a
// read-through cache in front. Saves write the repository synchronously and
// invalidate the cache; loads consult the cache first, collapsing concurrent
// misses for the same user through singleflight.
type Persistence struct {
	repo  repository.CartRepository
	cache cache.CartCache
	sfg   singleflight.Group
}

func NewPersistence(repo repository.CartRepository, cache cache.CartCache) *Persistence {
	return &Persistence{
		repo:  repo,
		cache: cache,
	}
}

func (p *Persistence) Save(ctx context.Context, userID string, lines []domain.CartLine) error {
	if err := p.repo.SaveCart(ctx, userID, lines); err != nil {
		return err
	}

	// The snapshot changed; drop the stale cache entry. A failed delete only
	// shortens the cache's usefulness, the repository already holds the truth.
	if err := p.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate for user %s failed: %v", userID, err)
	}
	return nil
}

func (p *Persistence) Load(ctx context.Context, userID string) ([]domain.CartLine, error) {
	v, err, _ := p.sfg.Do(userID, func() (interface{}, error) {
		lines, err := p.cache.Get(ctx, userID)
		if err == nil {
			return lines, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get for user %s failed: %v", userID, err)
		}

		lines, err = p.repo.GetCart(ctx, userID)
		if errors.Is(err, repository.ErrCartNotFound) {
			return []domain.CartLine(nil), nil
		}
		if errors.Is(err, repository.ErrCartCorrupt) {
			// Malformed persisted state is recovered locally, never surfaced.
			log.Printf("persisted cart for user %s is corrupt, resetting to empty", userID)
			return []domain.CartLine(nil), nil
		}
		if err != nil {
			return nil, err
		}

		if errSet := p.cache.Set(ctx, userID, lines); errSet != nil {
			log.Printf("cache set for user %s failed: %v", userID, errSet)
		}
		return lines, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.CartLine), nil
}
