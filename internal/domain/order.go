package domain

import (
	"errors"
	"fmt"
)

// ErrMissingField marks a required shipping field left empty. It blocks the
// step transition locally and never reaches the network.
var ErrMissingField = errors.New("missing required field")

// ShippingAddress collects the delivery details gathered during checkout.
// All fields are required before the checkout flow may advance past the
// shipping step.
type ShippingAddress struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// Validate reports the first missing field, if any.
func (a ShippingAddress) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"address", a.Address},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
		{"phone", a.Phone},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	return nil
}

type PaymentMethod string

// PaymentCashOnDelivery is the only payment method the order API accepts today.
const PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"

func (m PaymentMethod) Valid() bool {
	return m == PaymentCashOnDelivery
}

// OrderDraft is the fully assembled, submission-ready order. It is built at
// the moment of submission and never persisted on its own: discarded together
// with the cart on success, retained by the checkout flow for resubmission on
// failure.
type OrderDraft struct {
	Lines           []CartLine
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	ItemsPrice      float64
	TaxPrice        float64
	ShippingPrice   float64
	TotalPrice      float64
}
