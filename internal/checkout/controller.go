// Package checkout drives the Shipping -> Payment -> Review -> Submitted
// flow for one cart. Steps cannot be skipped forward; going back from
// Payment or Review is always allowed.
package checkout

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/greenkart/storefront/internal/cart"
	"github.com/greenkart/storefront/internal/domain"
	"github.com/greenkart/storefront/internal/pricing"
)

// Submitter posts an assembled order draft and reports exactly one of a
// server-assigned order number or an error. Consumers define this interface;
// the gateway implements it.
type Submitter interface {
	Submit(ctx context.Context, draft *domain.OrderDraft) (string, error)
}

// Controller is the state machine for one user's checkout attempt. Its step,
// address and payment selection live only for the duration of the attempt:
// they are discarded when checkout completes or the cart empties under it.
type Controller struct {
	store     *cart.Store
	submitter Submitter
	unsub     func()

	mu        sync.Mutex
	attemptID string
	step      Step
	address   domain.ShippingAddress
	payment   domain.PaymentMethod
}

func NewController(store *cart.Store, submitter Submitter) *Controller {
	c := &Controller{
		store:     store,
		submitter: submitter,
		attemptID: uuid.NewString(),
		step:      StepShipping,
	}
	// External cart mutations can empty the cart mid-checkout; the attempt
	// must not survive that.
	c.unsub = store.Subscribe(c.onCartChange)
	return c
}

// Close detaches the controller from the cart store.
func (c *Controller) Close() {
	if c.unsub != nil {
		c.unsub()
	}
}

// Step returns the current checkout step.
func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Address returns the shipping address collected so far.
func (c *Controller) Address() domain.ShippingAddress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.address
}

// Payment returns the selected payment method, empty until one is chosen.
func (c *Controller) Payment() domain.PaymentMethod {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payment
}

// SubmitShipping stores the address and advances to Payment. Every address
// field must be present; a validation failure keeps the flow on Shipping and
// never reaches the network.
func (c *Controller) SubmitShipping(address domain.ShippingAddress) error {
	if len(c.store.Lines()) == 0 {
		return ErrEmptyCart
	}
	if err := address.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepShipping && c.step != StepPayment {
		return ErrIllegalTransition
	}
	c.address = address
	c.step = StepPayment
	return nil
}

// SelectPayment records the method and advances to Review.
func (c *Controller) SelectPayment(method domain.PaymentMethod) error {
	if len(c.store.Lines()) == 0 {
		return ErrEmptyCart
	}
	if !method.Valid() {
		return ErrNoPaymentMethod
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepPayment && c.step != StepReview {
		return ErrIllegalTransition
	}
	c.payment = method
	c.step = StepReview
	return nil
}

// Back steps from Payment to Shipping or from Review to Payment. Collected
// data is kept so the user does not re-enter it.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.step {
	case StepPayment:
		c.step = StepShipping
	case StepReview:
		c.step = StepPayment
	default:
		return ErrIllegalTransition
	}
	return nil
}

// Summary is the read-only Review content: lines, address, and the price
// breakdown recomputed from the current cart.
func (c *Controller) Summary() ([]domain.CartLine, domain.ShippingAddress, pricing.Breakdown) {
	lines := c.store.Lines()
	c.mu.Lock()
	address := c.address
	c.mu.Unlock()
	return lines, address, pricing.Compute(lines)
}

// Submit assembles the order draft and hands it to the submitter. On success
// the cart is cleared exactly once and the attempt ends in Submitted. On
// failure the flow stays in Review with all collected data intact, so the
// user can retry; no automatic retry happens here.
func (c *Controller) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.step != StepReview {
		c.mu.Unlock()
		return "", ErrIllegalTransition
	}
	address := c.address
	payment := c.payment
	c.mu.Unlock()

	lines := c.store.Lines()
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}

	breakdown := pricing.Compute(lines)
	draft := &domain.OrderDraft{
		Lines:           lines,
		ShippingAddress: address,
		PaymentMethod:   payment,
		ItemsPrice:      breakdown.Subtotal,
		TaxPrice:        breakdown.Tax,
		ShippingPrice:   breakdown.ShippingFee,
		TotalPrice:      breakdown.Total,
	}

	orderNumber, err := c.submitter.Submit(ctx, draft)
	if err != nil {
		return "", err
	}

	// Mark the attempt finished before clearing, so the cart-change callback
	// sees a terminal step and leaves the state alone.
	c.mu.Lock()
	c.step = StepSubmitted
	c.mu.Unlock()

	if errClear := c.store.Clear(ctx); errClear != nil {
		log.Printf("checkout %s: clearing cart after submission failed: %v", c.attemptID, errClear)
	}

	return orderNumber, nil
}

// Reset discards the attempt and returns to Shipping with a fresh attempt id.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Controller) reset() {
	c.attemptID = uuid.NewString()
	c.step = StepShipping
	c.address = domain.ShippingAddress{}
	c.payment = ""
}

// onCartChange aborts an in-flight attempt when the cart empties under it.
func (c *Controller) onCartChange(lines []domain.CartLine) {
	if len(lines) > 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step == StepShipping || c.step.IsTerminal() {
		return
	}
	log.Printf("checkout %s: cart emptied during %s, aborting", c.attemptID, c.step)
	c.reset()
}
