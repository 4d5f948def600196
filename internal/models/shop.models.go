package models

import "time"

// Shop is one installed store. AccessToken is the offline Admin API token;
// encryption at rest is handled outside this service.
type Shop struct {
	ID                  string
	ShopDomain          string
	AccessToken         string
	Scopes              string
	IsActive            bool
	IsPlus              bool
	ShowBreakdown       bool
	EnableSplitShipping bool
	NeedsReauth         bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// LocationSetting is the merchant configuration for one Shopify location.
// Lower priority numbers are preferred during warehouse assignment.
type LocationSetting struct {
	ID                string
	ShopID            string
	ShopifyLocationID string
	LocationName      string
	ShippingCost      float64
	EtaMin            int
	EtaMax            int
	Priority          int
	IsActive          bool
	UpdatedAt         time.Time
}
