package checkout

import "errors"

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrNoPaymentMethod   = errors.New("no payment method selected")
	ErrIllegalTransition = errors.New("illegal checkout step transition")
)
