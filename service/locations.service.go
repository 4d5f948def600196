package service

import (
	"context"
	"fmt"
	"log"

	"github.com/Jalwan0x/backend-cloud/internal/kafka"
	"github.com/Jalwan0x/backend-cloud/internal/models"
	"github.com/Jalwan0x/backend-cloud/shopify"
)

// SyncLocations fetches the shop's locations from Shopify and lazily upserts
// a setting row for each, so newly added warehouses show up in the dashboard
// without manual setup. Existing cost, ETA and priority values are preserved;
// only the name and active flag track Shopify.
func (s *ShippingService) SyncLocations(ctx context.Context, shopDomain string) ([]shopify.Location, error) {
	shop, err := s.shops.GetShop(ctx, shopDomain)
	if err != nil || !shop.IsActive {
		return nil, ErrShopNotActive
	}

	session, err := s.sessionFor(shop)
	if err != nil {
		return nil, err
	}
	if !session.HasScope("read_locations") {
		return nil, ErrMissingScope
	}

	locations, err := s.admin.FetchLocations(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch locations: %w", err)
	}

	existing, err := s.settings.GetSettings(ctx, shop.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch location settings: %w", err)
	}
	existingByLocation := make(map[string]models.LocationSetting, len(existing))
	for _, setting := range existing {
		existingByLocation[setting.ShopifyLocationID] = setting
	}

	for _, loc := range locations {
		setting, ok := existingByLocation[loc.ID]
		if ok {
			setting.LocationName = loc.Name
			setting.IsActive = loc.Active
		} else {
			setting = models.LocationSetting{
				ShopID:            shop.ID,
				ShopifyLocationID: loc.ID,
				LocationName:      loc.Name,
				ShippingCost:      0,
				EtaMin:            1,
				EtaMax:            2,
				Priority:          0,
				IsActive:          loc.Active,
			}
		}
		if _, err := s.settings.UpsertSetting(ctx, setting); err != nil {
			// Sync is best effort; the dashboard can still render what Shopify returned.
			log.Printf("lazy location sync failed for shop %s location %s: %v", shopDomain, loc.ID, err)
		}
	}
	return locations, nil
}

// ListSettings returns a shop's location settings ordered by priority.
func (s *ShippingService) ListSettings(ctx context.Context, shopDomain string) ([]models.LocationSetting, error) {
	shop, err := s.shops.GetShop(ctx, shopDomain)
	if err != nil || !shop.IsActive {
		return nil, ErrShopNotActive
	}
	return s.settings.GetSettings(ctx, shop.ID)
}

// SaveSetting creates or updates one location setting for a shop.
func (s *ShippingService) SaveSetting(ctx context.Context, shopDomain string, setting models.LocationSetting) (models.LocationSetting, error) {
	shop, err := s.shops.GetShop(ctx, shopDomain)
	if err != nil || !shop.IsActive {
		return models.LocationSetting{}, ErrShopNotActive
	}
	setting.ShopID = shop.ID
	return s.settings.UpsertSetting(ctx, setting)
}

// Uninstall marks the shop inactive and removes its settings. Called from
// the app/uninstalled webhook; the access token is already revoked by then,
// so no Admin API cleanup happens here.
func (s *ShippingService) Uninstall(ctx context.Context, shopDomain string) error {
	shop, err := s.shops.GetShop(ctx, shopDomain)
	if err != nil {
		return err
	}
	if err := s.shops.SetActive(ctx, shopDomain, false); err != nil {
		return err
	}
	if err := s.settings.DeleteSettingsForShop(ctx, shop.ID); err != nil {
		return err
	}
	s.publish(ctx, shopDomain, kafka.EventShopUninstalled, nil)
	return nil
}
