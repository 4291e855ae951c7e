package domain

import "time"

// Product is the catalog-facing shape handed to the cart when a line is added.
// The catalog itself lives behind the remote API; only these fields matter here.
type Product struct {
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unitPrice"`
	StockLimit int     `json:"stockLimit,omitempty"`
	ImageRef   string  `json:"imageRef,omitempty"`
}

// CartLine is one product's presence in the cart, unique by ProductID.
// A line with quantity <= 0 does not exist; it is removed instead.
type CartLine struct {
	ProductID  string  `json:"productId" bson:"product_id"`
	Name       string  `json:"name" bson:"name"`
	UnitPrice  float64 `json:"unitPrice" bson:"unit_price"`
	Quantity   int     `json:"quantity" bson:"quantity"`
	StockLimit int     `json:"stockLimit,omitempty" bson:"stock_limit,omitempty"`
	ImageRef   string  `json:"imageRef,omitempty" bson:"image_ref,omitempty"`
}

// Line builds the cart line for a product at the given quantity.
func (p Product) Line(quantity int) CartLine {
	return CartLine{
		ProductID:  p.ProductID,
		Name:       p.Name,
		UnitPrice:  p.UnitPrice,
		Quantity:   quantity,
		StockLimit: p.StockLimit,
		ImageRef:   p.ImageRef,
	}
}

// Cart is the persisted cart document, one per user.
type Cart struct {
	ID        string     `bson:"_id,omitempty"`
	UserID    string     `bson:"user_id"`
	Lines     []CartLine `bson:"items"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}
