// Package gateway submits assembled orders to the remote order API. It is
// the only component here that talks to the network.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/greenkart/storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrSubmitInFlight rejects a second submit while one is pending. The
	// duplicate never reaches the network.
	ErrSubmitInFlight = errors.New("an order submission is already in flight")

	// ErrNotAuthenticated means no credential was available at submission
	// time. Callers redirect to sign-in instead of showing a network error.
	ErrNotAuthenticated = errors.New("not signed in")
)

// TokenSource supplies the bearer credential for a user. Consumers define
// this interface; the session store implements it.
type TokenSource interface {
	Token(ctx context.Context, userID string) (string, error)
}

type orderItemDTO struct {
	Name    string  `json:"name"`
	Qty     int     `json:"qty"`
	Price   float64 `json:"price"`
	Product string  `json:"product"`
	Image   string  `json:"image"`
}

type orderRequestDTO struct {
	OrderItems      []orderItemDTO         `json:"orderItems"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   domain.PaymentMethod   `json:"paymentMethod"`
	ItemsPrice      float64                `json:"itemsPrice"`
	TaxPrice        float64                `json:"taxPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TotalPrice      float64                `json:"totalPrice"`
}

type orderResponseDTO struct {
	Success     bool   `json:"success"`
	OrderNumber string `json:"orderNumber"`
	Message     string `json:"message"`
}

// Client posts orders to the remote API. At most one submission per user is
// in flight at a time; the breaker sits between that guard and the wire so a
// flapping order API fails fast instead of hanging every attempt.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*orderResponseDTO]

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[*orderResponseDTO](gobreaker.Settings{
			Name:    "order-api",
			Timeout: 30 * time.Second,
		}),
		inFlight: make(map[string]bool),
	}
}

// SubmitFor serializes the draft and posts it for the given user, returning
// the server-assigned order number. Failure messages from the API are
// returned verbatim so the UI can surface them unchanged.
func (c *Client) SubmitFor(ctx context.Context, userID string, draft *domain.OrderDraft) (string, error) {
	if !c.acquire(userID) {
		return "", ErrSubmitInFlight
	}
	defer c.release(userID)

	token, err := c.tokens.Token(ctx, userID)
	if err != nil || token == "" {
		return "", ErrNotAuthenticated
	}

	body, err := json.Marshal(buildRequest(draft))
	if err != nil {
		return "", fmt.Errorf("marshal order failed: %w", err)
	}

	resp, err := c.breaker.Execute(func() (*orderResponseDTO, error) {
		return c.post(ctx, token, body)
	})
	if err != nil {
		return "", err
	}

	if !resp.Success {
		return "", errors.New(resp.Message)
	}
	return resp.OrderNumber, nil
}

func (c *Client) acquire(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight[userID] {
		return false
	}
	c.inFlight[userID] = true
	return true
}

func (c *Client) release(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, userID)
}

func (c *Client) post(ctx context.Context, token string, body []byte) (*orderResponseDTO, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order submission failed: %w", err)
	}
	defer httpResp.Body.Close()

	var resp orderResponseDTO
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("order API returned status %d", httpResp.StatusCode)
	}

	// The API reports failures in the body; a decoded envelope wins over the
	// status code so its message reaches the user unchanged.
	return &resp, nil
}

func buildRequest(draft *domain.OrderDraft) orderRequestDTO {
	items := make([]orderItemDTO, 0, len(draft.Lines))
	for _, line := range draft.Lines {
		items = append(items, orderItemDTO{
			Name:    line.Name,
			Qty:     line.Quantity,
			Price:   line.UnitPrice,
			Product: line.ProductID,
			Image:   line.ImageRef,
		})
	}

	return orderRequestDTO{
		OrderItems:      items,
		ShippingAddress: draft.ShippingAddress,
		PaymentMethod:   draft.PaymentMethod,
		ItemsPrice:      draft.ItemsPrice,
		TaxPrice:        draft.TaxPrice,
		ShippingPrice:   draft.ShippingPrice,
		TotalPrice:      draft.TotalPrice,
	}
}
