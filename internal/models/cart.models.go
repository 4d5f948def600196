package models

// CartItem is a single line item from the checkout cart payload.
// Built per request; never persisted.
type CartItem struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	ProductID string `json:"product_id,omitempty"`
}
