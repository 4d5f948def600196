package models

// ShippingRate is one rate option returned to the storefront checkout.
// Field names follow the carrier-calculated-shipping callback contract,
// so the JSON tags must not change.
type ShippingRate struct {
	ServiceName string `json:"service_name"`
	ServiceCode string `json:"service_code"`
	TotalPrice  string `json:"total_price"` // price in cents, string encoded
	Description string `json:"description"`
	Currency    string `json:"currency"`
}

// WarehouseGroup is a set of cart items assigned to one location,
// carrying that location's configured cost and delivery window.
// Derived per rate calculation; never persisted.
type WarehouseGroup struct {
	LocationID   string
	LocationName string
	Items        []CartItem
	ShippingCost float64
	EtaMin       int
	EtaMax       int
}

// ItemCount returns the total quantity across the group's items.
func (g WarehouseGroup) ItemCount() int {
	count := 0
	for _, item := range g.Items {
		count += item.Quantity
	}
	return count
}
