package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Jalwan0x/backend-cloud/internal/models"
)

// MemoryStore is an in-memory implementation of ShopStore and
// LocationSettingStore, used in tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	shops    map[string]models.Shop            // keyed by shop domain
	settings map[string]models.LocationSetting // keyed by shopID + "/" + shopifyLocationID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shops:    make(map[string]models.Shop),
		settings: make(map[string]models.LocationSetting),
	}
}

func (s *MemoryStore) GetShop(ctx context.Context, shopDomain string) (models.Shop, error) {
	select {
	case <-ctx.Done():
		return models.Shop{}, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	shop, ok := s.shops[shopDomain]
	if !ok {
		return models.Shop{}, ErrShopNotFound
	}
	return shop, nil
}

func (s *MemoryStore) UpsertShop(ctx context.Context, shop models.Shop) (models.Shop, error) {
	select {
	case <-ctx.Done():
		return models.Shop{}, ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.shops[shop.ShopDomain]; ok {
		shop.ID = existing.ID
		shop.CreatedAt = existing.CreatedAt
	} else {
		shop.ID = uuid.NewString()
		shop.CreatedAt = time.Now()
	}
	shop.UpdatedAt = time.Now()
	s.shops[shop.ShopDomain] = shop
	return shop, nil
}

func (s *MemoryStore) SetActive(ctx context.Context, shopDomain string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	shop, ok := s.shops[shopDomain]
	if !ok {
		return ErrShopNotFound
	}
	shop.IsActive = active
	shop.UpdatedAt = time.Now()
	s.shops[shopDomain] = shop
	return nil
}

func (s *MemoryStore) SetNeedsReauth(ctx context.Context, shopDomain string, needsReauth bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	shop, ok := s.shops[shopDomain]
	if !ok {
		return ErrShopNotFound
	}
	shop.NeedsReauth = needsReauth
	shop.UpdatedAt = time.Now()
	s.shops[shopDomain] = shop
	return nil
}

func (s *MemoryStore) GetActiveSettings(ctx context.Context, shopID string) ([]models.LocationSetting, error) {
	settings, err := s.GetSettings(ctx, shopID)
	if err != nil {
		return nil, err
	}
	active := settings[:0]
	for _, setting := range settings {
		if setting.IsActive {
			active = append(active, setting)
		}
	}
	return active, nil
}

func (s *MemoryStore) GetSettings(ctx context.Context, shopID string) ([]models.LocationSetting, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []models.LocationSetting
	for _, setting := range s.settings {
		if setting.ShopID == shopID {
			result = append(result, setting)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority < result[j].Priority
	})
	return result, nil
}

func (s *MemoryStore) UpsertSetting(ctx context.Context, setting models.LocationSetting) (models.LocationSetting, error) {
	select {
	case <-ctx.Done():
		return models.LocationSetting{}, ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := setting.ShopID + "/" + setting.ShopifyLocationID
	if existing, ok := s.settings[key]; ok {
		setting.ID = existing.ID
	} else {
		setting.ID = uuid.NewString()
	}
	setting.UpdatedAt = time.Now()
	s.settings[key] = setting
	return setting, nil
}

func (s *MemoryStore) DeleteSettingsForShop(ctx context.Context, shopID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, setting := range s.settings {
		if setting.ShopID == shopID {
			delete(s.settings, key)
		}
	}
	return nil
}
