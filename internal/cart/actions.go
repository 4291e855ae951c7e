package cart

import "github.com/greenkart/storefront/internal/domain"

// Action is one cart operation. The transition function Apply is pure, so
// every state change can be tested without a store, storage, or transport.
type Action interface {
	isAction()
}

// Load replaces the whole state, typically from durable storage.
type Load struct {
	Lines []domain.CartLine
}

// Add merges quantity into an existing line for the same product, or appends
// a new line. Other fields of an existing line are left untouched.
type Add struct {
	Product  domain.Product
	Quantity int
}

// Remove deletes the line for a product; unknown ids are a no-op.
type Remove struct {
	ProductID string
}

// SetQuantity sets a line's quantity exactly. A quantity <= 0 removes the line.
type SetQuantity struct {
	ProductID string
	Quantity  int
}

// Clear empties the cart.
type Clear struct{}

func (Load) isAction()        {}
func (Add) isAction()         {}
func (Remove) isAction()      {}
func (SetQuantity) isAction() {}
func (Clear) isAction()       {}

// Apply returns the state after the action. The input slice is never
// mutated. Invariants held on every output: at most one line per product id,
// no line with quantity <= 0, insertion order preserved.
func Apply(state []domain.CartLine, action Action) []domain.CartLine {
	switch a := action.(type) {
	case Load:
		return sanitize(a.Lines)

	case Add:
		if a.Quantity <= 0 || a.Product.ProductID == "" {
			return state
		}
		for i, line := range state {
			if line.ProductID == a.Product.ProductID {
				next := copyLines(state)
				next[i].Quantity = line.Quantity + a.Quantity
				return next
			}
		}
		return append(copyLines(state), a.Product.Line(a.Quantity))

	case Remove:
		return filterOut(state, a.ProductID)

	case SetQuantity:
		if a.Quantity <= 0 {
			return filterOut(state, a.ProductID)
		}
		for i, line := range state {
			if line.ProductID == a.ProductID {
				next := copyLines(state)
				next[i].Quantity = a.Quantity
				return next
			}
		}
		return state

	case Clear:
		return nil
	}

	return state
}

// sanitize drops unusable persisted lines and collapses duplicate product
// ids by summing their quantities, so a loaded state always holds the same
// invariants as one built through Apply.
func sanitize(lines []domain.CartLine) []domain.CartLine {
	var out []domain.CartLine
	index := make(map[string]int)
	for _, line := range lines {
		if line.ProductID == "" || line.Quantity <= 0 {
			continue
		}
		if i, ok := index[line.ProductID]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(out)
		out = append(out, line)
	}
	return out
}

func filterOut(state []domain.CartLine, productID string) []domain.CartLine {
	var out []domain.CartLine
	for _, line := range state {
		if line.ProductID != productID {
			out = append(out, line)
		}
	}
	return out
}

func copyLines(state []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(state))
	copy(out, state)
	return out
}
