package repository

import (
	"context"
	"testing"

	"github.com/greenkart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func setupTestDB(t *testing.T) (CartRepository, *mongo.Database, func()) {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := Connect(ctx, uri, "testdb")
	require.NoError(t, err)

	repo := NewMongoRepository(db)
	require.NoError(t, repo.(*mongoRepository).CreateIndexes(ctx))

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, db, cleanup
}

func TestGetCart_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	lines, err := repo.GetCart(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, lines)
}

func TestSaveCart_RoundTrip(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := "user123"
	lines := []domain.CartLine{
		{ProductID: "p1", Name: "Monstera", UnitPrice: 300, Quantity: 2, ImageRef: "monstera.jpg"},
		{ProductID: "p2", Name: "Fern", UnitPrice: 120, Quantity: 1, StockLimit: 4},
	}

	require.NoError(t, repo.SaveCart(ctx, userID, lines))

	got, err := repo.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, lines, got)
}

func TestSaveCart_OverwritesSnapshot(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := "user123"

	require.NoError(t, repo.SaveCart(ctx, userID, []domain.CartLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	}))
	require.NoError(t, repo.SaveCart(ctx, userID, []domain.CartLine{
		{ProductID: "p1", Quantity: 5},
	}))

	got, err := repo.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Quantity)
}

func TestSaveCart_EmptySnapshot(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := "user123"

	require.NoError(t, repo.SaveCart(ctx, userID, []domain.CartLine{{ProductID: "p1", Quantity: 2}}))
	require.NoError(t, repo.SaveCart(ctx, userID, nil))

	got, err := repo.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteCart(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := "user123"

	require.NoError(t, repo.SaveCart(ctx, userID, []domain.CartLine{{ProductID: "p1", Quantity: 2}}))
	require.NoError(t, repo.DeleteCart(ctx, userID))

	_, err := repo.GetCart(ctx, userID)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestDeleteCart_Missing_NoError(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	assert.NoError(t, repo.DeleteCart(context.Background(), "nonexistent"))
}

func TestGetCart_CorruptDocument(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	// Write a document whose items no longer match the line schema.
	_, err := db.Collection("carts").InsertOne(ctx, bson.M{
		"user_id": "user123",
		"items": bson.A{
			bson.M{"product_id": bson.M{"nested": true}, "quantity": "two"},
		},
	})
	require.NoError(t, err)

	_, err = repo.GetCart(ctx, "user123")
	assert.ErrorIs(t, err, ErrCartCorrupt)
}
