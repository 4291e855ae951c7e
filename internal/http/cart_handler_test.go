package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/greenkart/storefront/internal/cart"
	"github.com/greenkart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPersister struct {
	m     sync.Mutex
	lines map[string][]domain.CartLine
}

func newMemPersister() *memPersister {
	return &memPersister{lines: make(map[string][]domain.CartLine)}
}

func (m *memPersister) Save(_ context.Context, userID string, lines []domain.CartLine) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.lines[userID] = lines
	return nil
}

func (m *memPersister) Load(_ context.Context, userID string) ([]domain.CartLine, error) {
	m.m.Lock()
	defer m.m.Unlock()
	return m.lines[userID], nil
}

func newCartHandler() (*CartHandler, *cart.Manager) {
	carts := cart.NewManager(newMemPersister())
	return NewCartHandler(carts, 5*time.Second), carts
}

func authedRequest(method, target string, body []byte) *http.Request {
	var request *http.Request
	if body != nil {
		request = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		request = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(request.Context(), "user_id", "u1")
	return request.WithContext(ctx)
}

func decodeCartView(t *testing.T, recorder *httptest.ResponseRecorder) CartViewDTO {
	t.Helper()
	var view CartViewDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&view))
	return view
}

func TestGetCart_EmptyForNewUser(t *testing.T) {
	handler, _ := newCartHandler()
	recorder := httptest.NewRecorder()

	handler.GetCart(recorder, authedRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	view := decodeCartView(t, recorder)
	assert.Empty(t, view.Items)
	assert.Equal(t, float64(0), view.Pricing.Subtotal)
}

func TestGetCart_Unauthenticated(t *testing.T) {
	handler, _ := newCartHandler()
	recorder := httptest.NewRecorder()

	handler.GetCart(recorder, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAddItem_Success(t *testing.T) {
	handler, _ := newCartHandler()
	recorder := httptest.NewRecorder()

	body, _ := json.Marshal(AddItemRequestDTO{
		Product:  domain.Product{ProductID: "p1", Name: "Monstera", UnitPrice: 300},
		Quantity: 2,
	})
	handler.AddItem(recorder, authedRequest("POST", "/", body))

	require.Equal(t, http.StatusCreated, recorder.Code)
	view := decodeCartView(t, recorder)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, float64(600), view.Pricing.Subtotal)
	assert.Equal(t, float64(758), view.Pricing.Total)
}

func TestAddItem_DefaultsQuantityToOne(t *testing.T) {
	handler, _ := newCartHandler()
	recorder := httptest.NewRecorder()

	body, _ := json.Marshal(AddItemRequestDTO{
		Product: domain.Product{ProductID: "p1", Name: "Monstera", UnitPrice: 300},
	})
	handler.AddItem(recorder, authedRequest("POST", "/", body))

	require.Equal(t, http.StatusCreated, recorder.Code)
	view := decodeCartView(t, recorder)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Items[0].Quantity)
}

func TestAddItem_NegativeQuantity(t *testing.T) {
	handler, _ := newCartHandler()
	recorder := httptest.NewRecorder()

	body, _ := json.Marshal(AddItemRequestDTO{
		Product:  domain.Product{ProductID: "p1", UnitPrice: 300},
		Quantity: -2,
	})
	handler.AddItem(recorder, authedRequest("POST", "/", body))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAddItem_MissingProductID(t *testing.T) {
	handler, _ := newCartHandler()
	recorder := httptest.NewRecorder()

	body, _ := json.Marshal(AddItemRequestDTO{Quantity: 1})
	handler.AddItem(recorder, authedRequest("POST", "/", body))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAddItem_InvalidJSON(t *testing.T) {
	handler, _ := newCartHandler()
	recorder := httptest.NewRecorder()

	handler.AddItem(recorder, authedRequest("POST", "/", []byte("{not json")))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestUpdateQuantity_SetsExactValue(t *testing.T) {
	handler, carts := newCartHandler()
	store := carts.ForUser(context.Background(), "u1")
	require.NoError(t, store.Add(context.Background(), domain.Product{ProductID: "p1", UnitPrice: 300}, 5))

	body, _ := json.Marshal(UpdateQuantityRequestDTO{Quantity: 2})
	recorder := httptest.NewRecorder()
	request := withURLParam(authedRequest("PUT", "/", body), "productID", "p1")

	handler.UpdateQuantity(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	view := decodeCartView(t, recorder)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	handler, carts := newCartHandler()
	store := carts.ForUser(context.Background(), "u1")
	require.NoError(t, store.Add(context.Background(), domain.Product{ProductID: "p1", UnitPrice: 300}, 5))

	body, _ := json.Marshal(UpdateQuantityRequestDTO{Quantity: 0})
	recorder := httptest.NewRecorder()
	request := withURLParam(authedRequest("PUT", "/", body), "productID", "p1")

	handler.UpdateQuantity(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, decodeCartView(t, recorder).Items)
}

func TestRemoveItem(t *testing.T) {
	handler, carts := newCartHandler()
	store := carts.ForUser(context.Background(), "u1")
	require.NoError(t, store.Add(context.Background(), domain.Product{ProductID: "p1", UnitPrice: 300}, 1))

	recorder := httptest.NewRecorder()
	request := withURLParam(authedRequest("DELETE", "/", nil), "productID", "p1")

	handler.RemoveItem(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, decodeCartView(t, recorder).Items)
}

func TestClearCart(t *testing.T) {
	handler, carts := newCartHandler()
	store := carts.ForUser(context.Background(), "u1")
	require.NoError(t, store.Add(context.Background(), domain.Product{ProductID: "p1", UnitPrice: 300}, 1))
	require.NoError(t, store.Add(context.Background(), domain.Product{ProductID: "p2", UnitPrice: 120}, 2))

	recorder := httptest.NewRecorder()
	handler.ClearCart(recorder, authedRequest("DELETE", "/", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, decodeCartView(t, recorder).Items)
	assert.Empty(t, store.Lines())
}
