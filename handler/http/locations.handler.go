package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Jalwan0x/backend-cloud/internal/models"
	"github.com/Jalwan0x/backend-cloud/service"
)

type locationResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type settingPayload struct {
	ShopifyLocationID string  `json:"shopifyLocationId"`
	LocationName      string  `json:"locationName"`
	ShippingCost      float64 `json:"shippingCost"`
	EtaMin            int     `json:"etaMin"`
	EtaMax            int     `json:"etaMax"`
	Priority          int     `json:"priority"`
	IsActive          bool    `json:"isActive"`
}

// normalizeShopDomain accepts either "my-store" or "my-store.myshopify.com".
func normalizeShopDomain(shop string) string {
	shop = strings.ToLower(strings.TrimSpace(shop))
	if shop != "" && !strings.Contains(shop, ".myshopify.com") {
		shop += ".myshopify.com"
	}
	return shop
}

// handleLocations lists the shop's Shopify locations and lazily syncs them
// into the settings table.
func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	shop := normalizeShopDomain(r.URL.Query().Get("shop"))
	if shop == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "shop parameter is required"})
		return
	}

	locations, err := s.svc.SyncLocations(r.Context(), shop)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	out := make([]locationResponse, 0, len(locations))
	for _, loc := range locations {
		out = append(out, locationResponse{ID: loc.ID, Name: loc.Name, Active: loc.Active})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"locations": out})
}

// handleLocationSettings reads and writes per-location shipping settings.
func (s *Server) handleLocationSettings(w http.ResponseWriter, r *http.Request) {
	shop := normalizeShopDomain(r.URL.Query().Get("shop"))
	if shop == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "shop parameter is required"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		settings, err := s.svc.ListSettings(r.Context(), shop)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"settings": settings})

	case http.MethodPost, http.MethodPut:
		var payload settingPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if payload.ShopifyLocationID == "" || payload.LocationName == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "shopifyLocationId and locationName are required"})
			return
		}
		if payload.EtaMin < 1 {
			payload.EtaMin = 1
		}
		if payload.EtaMax < payload.EtaMin {
			payload.EtaMax = payload.EtaMin + 1
		}
		if payload.ShippingCost < 0 {
			payload.ShippingCost = 0
		}

		setting, err := s.svc.SaveSetting(r.Context(), shop, models.LocationSetting{
			ShopifyLocationID: payload.ShopifyLocationID,
			LocationName:      payload.LocationName,
			ShippingCost:      payload.ShippingCost,
			EtaMin:            payload.EtaMin,
			EtaMax:            payload.EtaMax,
			Priority:          payload.Priority,
			IsActive:          true,
		})
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"setting": setting})

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrShopNotActive):
		writeJSON(w, http.StatusForbidden, map[string]interface{}{
			"error": "App is uninstalled. Please reinstall.", "uninstalled": true,
		})
	case errors.Is(err, service.ErrSessionUnavailable):
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"error": "Shop not authenticated", "reauth": true,
		})
	case errors.Is(err, service.ErrMissingScope):
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"error": "Missing permission: read_locations", "reauth": true,
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
