package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/greenkart/storefront/internal/cart"
	"github.com/greenkart/storefront/internal/checkout"
	"github.com/greenkart/storefront/internal/domain"
	"github.com/greenkart/storefront/internal/gateway"
	"github.com/greenkart/storefront/internal/pricing"
)

type CheckoutHandler struct {
	carts     *cart.Manager
	checkouts *checkout.Manager
	timeout   time.Duration
}

func NewCheckoutHandler(carts *cart.Manager, checkouts *checkout.Manager, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		carts:     carts,
		checkouts: checkouts,
		timeout:   timeout,
	}
}

type SelectPaymentRequestDTO struct {
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
}

type CheckoutStateDTO struct {
	Step          checkout.Step          `json:"step"`
	Address       domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod domain.PaymentMethod   `json:"paymentMethod,omitempty"`
	Items         []domain.CartLine      `json:"items"`
	Pricing       pricing.Breakdown      `json:"pricing"`
}

type SubmitResponseDTO struct {
	OrderNumber string `json:"orderNumber"`
}

func (h *CheckoutHandler) controller(ctx context.Context, r *http.Request) (*checkout.Controller, string) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		return nil, ""
	}
	store := h.carts.ForUser(ctx, userID)
	return h.checkouts.ForUser(userID, store), userID
}

func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, userID := h.controller(ctx, r)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	respondJSON(w, http.StatusOK, stateView(c))
}

func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, userID := h.controller(ctx, r)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var address domain.ShippingAddress
	if err := json.NewDecoder(r.Body).Decode(&address); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := c.SubmitShipping(address); err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stateView(c))
}

func (h *CheckoutHandler) SelectPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, userID := h.controller(ctx, r)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req SelectPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := c.SelectPayment(req.PaymentMethod); err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stateView(c))
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, userID := h.controller(ctx, r)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := c.Back(); err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stateView(c))
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, userID := h.controller(ctx, r)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderNumber, err := c.Submit(ctx)
	if err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, SubmitResponseDTO{OrderNumber: orderNumber})
}

func stateView(c *checkout.Controller) CheckoutStateDTO {
	lines, address, breakdown := c.Summary()
	return CheckoutStateDTO{
		Step:          c.Step(),
		Address:       address,
		PaymentMethod: c.Payment(),
		Items:         lines,
		Pricing:       breakdown,
	}
}

// respondCheckoutError maps the error taxonomy onto status codes. Remote
// failure messages pass through verbatim for the UI to display.
func respondCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, domain.ErrMissingField):
		respondError(w, http.StatusBadRequest, "invalid_shipping_address", err.Error())
	case errors.Is(err, checkout.ErrNoPaymentMethod):
		respondError(w, http.StatusBadRequest, "invalid_payment_method", err.Error())
	case errors.Is(err, gateway.ErrNotAuthenticated):
		respondError(w, http.StatusUnauthorized, "not_signed_in", err.Error())
	case errors.Is(err, gateway.ErrSubmitInFlight):
		respondError(w, http.StatusConflict, "submit_in_flight", err.Error())
	default:
		respondError(w, http.StatusBadGateway, "submission_failed", err.Error())
	}
}
