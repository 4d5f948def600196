package store

import (
	"context"
	"errors"

	"github.com/Jalwan0x/backend-cloud/internal/models"
)

// ErrShopNotFound is returned when no shop record exists for a domain.
var ErrShopNotFound = errors.New("shop not found")

// ShopStore defines the storage operations for installed shops.
type ShopStore interface {
	// GetShop looks up a shop by its myshopify domain.
	GetShop(ctx context.Context, shopDomain string) (models.Shop, error)

	// UpsertShop creates or updates a shop record, returning it with its ID set.
	UpsertShop(ctx context.Context, shop models.Shop) (models.Shop, error)

	// SetActive flips the installed/uninstalled flag for a shop.
	SetActive(ctx context.Context, shopDomain string, active bool) error

	// SetNeedsReauth flags a shop whose token can no longer be used.
	SetNeedsReauth(ctx context.Context, shopDomain string, needsReauth bool) error
}

// LocationSettingStore defines the storage operations for per-location
// shipping configuration.
type LocationSettingStore interface {
	// GetActiveSettings returns a shop's active settings ordered by
	// ascending priority.
	GetActiveSettings(ctx context.Context, shopID string) ([]models.LocationSetting, error)

	// GetSettings returns all settings for a shop ordered by ascending priority.
	GetSettings(ctx context.Context, shopID string) ([]models.LocationSetting, error)

	// UpsertSetting creates or updates the setting keyed by
	// (shopID, shopifyLocationID), returning it with its ID set.
	UpsertSetting(ctx context.Context, setting models.LocationSetting) (models.LocationSetting, error)

	// DeleteSettingsForShop removes every setting owned by a shop.
	// Used on app uninstall.
	DeleteSettingsForShop(ctx context.Context, shopID string) error
}
