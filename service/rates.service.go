package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Jalwan0x/backend-cloud/internal/kafka"
	"github.com/Jalwan0x/backend-cloud/internal/models"
	"github.com/Jalwan0x/backend-cloud/shopify"
	"github.com/Jalwan0x/backend-cloud/store"
)

// unconfiguredPriority sorts locations without a setting after every
// configured one.
const unconfiguredPriority = 999

// AdminClient is the subset of the Shopify Admin API the rates service uses.
type AdminClient interface {
	FetchInventoryLevels(ctx context.Context, session shopify.Session, variantIDs []string) (shopify.InventoryLevels, error)
	FetchLocations(ctx context.Context, session shopify.Session) ([]shopify.Location, error)
}

// ShippingService assigns cart items to warehouses and synthesizes the
// shipping rates returned to checkout.
type ShippingService struct {
	shops    store.ShopStore
	settings store.LocationSettingStore
	admin    AdminClient
	producer kafka.Publisher
}

// NewShippingService wires the service with its stores, Admin API client and
// event producer. producer may be nil when events are disabled.
func NewShippingService(shops store.ShopStore, settings store.LocationSettingStore, admin AdminClient, producer kafka.Publisher) *ShippingService {
	return &ShippingService{
		shops:    shops,
		settings: settings,
		admin:    admin,
		producer: producer,
	}
}

// sessionFor resolves an offline Admin API session for an active shop.
func (s *ShippingService) sessionFor(shop models.Shop) (shopify.Session, error) {
	if shop.NeedsReauth || shop.AccessToken == "" {
		return shopify.Session{}, ErrSessionUnavailable
	}
	return shopify.Session{
		Shop:        shop.ShopDomain,
		AccessToken: shop.AccessToken,
		Scopes:      shop.Scopes,
	}, nil
}

// GroupItemsByWarehouse partitions cart items into warehouse groups using
// live inventory and the shop's configured location priorities.
//
// Assignment is best effort per item: an item that cannot be matched to
// inventory falls back to the highest-priority active location instead of
// failing the whole request. Inventory API failure aborts the call.
func (s *ShippingService) GroupItemsByWarehouse(ctx context.Context, shopDomain string, items []models.CartItem) ([]models.WarehouseGroup, error) {
	if len(items) == 0 {
		return []models.WarehouseGroup{}, nil
	}

	shop, err := s.shops.GetShop(ctx, shopDomain)
	if err != nil || !shop.IsActive {
		return nil, ErrShopNotActive
	}

	session, err := s.sessionFor(shop)
	if err != nil {
		return nil, err
	}

	variantIDs := distinctVariantIDs(items)
	levels, err := s.admin.FetchInventoryLevels(ctx, session, variantIDs)
	if err != nil {
		log.Printf("failed to fetch inventory levels for shop %s: %v", shopDomain, err)
		return nil, fmt.Errorf("%w: %v", ErrInventoryLookupFailed, err)
	}
	if len(levels) == 0 {
		// No variants resolved. Degrade to no groups rather than erroring;
		// checkout then simply shows no rates from us.
		log.Printf("no variants found for shop %s", shopDomain)
		return []models.WarehouseGroup{}, nil
	}

	settings, err := s.settings.GetActiveSettings(ctx, shop.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch location settings: %w", err)
	}

	settingByLocation := make(map[string]models.LocationSetting, len(settings))
	for _, setting := range settings {
		settingByLocation[setting.ShopifyLocationID] = setting
	}

	type bucket struct {
		locationName string
		items        []models.CartItem
	}
	buckets := make(map[string]*bucket)
	var order []string

	assign := func(locationID, locationName string, item models.CartItem) {
		b, ok := buckets[locationID]
		if !ok {
			b = &bucket{locationName: locationName}
			buckets[locationID] = b
			order = append(order, locationID)
		}
		b.items = append(b.items, item)
	}

	for _, item := range items {
		candidates := availableLocations(levels[item.VariantID])
		sort.SliceStable(candidates, func(i, j int) bool {
			return locationPriority(settingByLocation, candidates[i].LocationID) <
				locationPriority(settingByLocation, candidates[j].LocationID)
		})

		if len(candidates) > 0 {
			selected := candidates[0]
			assign(selected.LocationID, selected.LocationName, item)
			continue
		}

		// No inventory match: fall back to the highest-priority configured
		// location so the item still ships from somewhere.
		if len(settings) > 0 {
			first := settings[0]
			assign(first.ShopifyLocationID, first.LocationName, item)
			s.publishFallback(ctx, shopDomain, item.VariantID, first.ShopifyLocationID, "no inventory match")
		} else {
			log.Printf("item %s for shop %s has no inventory and no configured locations, dropping", item.VariantID, shopDomain)
		}
	}

	groups := make([]models.WarehouseGroup, 0, len(order))
	for _, locationID := range order {
		b := buckets[locationID]
		group := models.WarehouseGroup{
			LocationID:   locationID,
			LocationName: b.locationName,
			Items:        b.items,
			ShippingCost: 0,
			EtaMin:       1,
			EtaMax:       2,
		}
		if setting, ok := settingByLocation[locationID]; ok {
			group.ShippingCost = setting.ShippingCost
			group.EtaMin = setting.EtaMin
			group.EtaMax = setting.EtaMax
		}
		groups = append(groups, group)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return locationPriority(settingByLocation, groups[i].LocationID) <
			locationPriority(settingByLocation, groups[j].LocationID)
	})
	return groups, nil
}

// ComputeShippingRates runs warehouse assignment then rate synthesis for one
// checkout request. It never fails: any lookup error degrades to an empty
// rate list because the carrier callback protocol has no error channel.
func (s *ShippingService) ComputeShippingRates(ctx context.Context, shopDomain string, items []models.CartItem, currency string) []models.ShippingRate {
	if len(items) == 0 {
		return []models.ShippingRate{}
	}

	shop, err := s.shops.GetShop(ctx, shopDomain)
	if err != nil || !shop.IsActive {
		log.Printf("shop %s is not active, returning empty rates", shopDomain)
		return []models.ShippingRate{}
	}

	groups, err := s.GroupItemsByWarehouse(ctx, shopDomain, items)
	if err != nil {
		log.Printf("failed to group items for shop %s: %v", shopDomain, err)
		return []models.ShippingRate{}
	}
	if len(groups) == 0 {
		return []models.ShippingRate{}
	}

	rates := CalculateShippingRates(groups, shop.IsPlus, shop.ShowBreakdown, shop.EnableSplitShipping, currency)

	s.publish(ctx, shopDomain, kafka.EventRateComputed, kafka.RateComputedPayload{
		ItemCount:  len(items),
		GroupCount: len(groups),
		RateCount:  len(rates),
		Currency:   currency,
	})
	return rates
}

func (s *ShippingService) publishFallback(ctx context.Context, shopDomain, variantID, locationID, reason string) {
	log.Printf("item %s for shop %s assigned to default location %s (%s)", variantID, shopDomain, locationID, reason)
	s.publish(ctx, shopDomain, kafka.EventAssignmentFallback, kafka.FallbackPayload{
		VariantID:  variantID,
		LocationID: locationID,
		Reason:     reason,
	})
}

func (s *ShippingService) publish(ctx context.Context, shopDomain, eventType string, payload interface{}) {
	if s.producer == nil {
		return
	}
	event := kafka.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ShopDomain: shopDomain,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	if err := s.producer.Publish(ctx, shopDomain, event); err != nil {
		log.Printf("failed to publish %s event for shop %s: %v", eventType, shopDomain, err)
	}
}

func distinctVariantIDs(items []models.CartItem) []string {
	seen := make(map[string]bool, len(items))
	var ids []string
	for _, item := range items {
		if !seen[item.VariantID] {
			seen[item.VariantID] = true
			ids = append(ids, item.VariantID)
		}
	}
	return ids
}

func availableLocations(levels []shopify.InventoryLevel) []shopify.InventoryLevel {
	var available []shopify.InventoryLevel
	for _, level := range levels {
		if level.Available > 0 {
			available = append(available, level)
		}
	}
	return available
}

func locationPriority(settings map[string]models.LocationSetting, locationID string) int {
	if setting, ok := settings[locationID]; ok {
		return setting.Priority
	}
	return unconfiguredPriority
}
