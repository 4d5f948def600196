package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/Jalwan0x/backend-cloud/internal/models"
	"github.com/Jalwan0x/backend-cloud/shopify"
)

// rateRequest is the carrier-calculated shipping callback payload Shopify
// POSTs at checkout time.
type rateRequest struct {
	Rate struct {
		Origin struct {
			Country string `json:"country"`
		} `json:"origin"`
		Destination struct {
			Country string `json:"country"`
		} `json:"destination"`
		Items []struct {
			Name             string `json:"name"`
			SKU              string `json:"sku"`
			Quantity         int    `json:"quantity"`
			Grams            int    `json:"grams"`
			RequiresShipping bool   `json:"requires_shipping"`
			ProductID        int64  `json:"product_id"`
			VariantID        int64  `json:"variant_id"`
		} `json:"items"`
		Currency string `json:"currency"`
	} `json:"rate"`
}

// rateResponse is the exact wire shape the checkout consumes. The field
// names are fixed by the carrier service protocol.
type rateResponse struct {
	Rates []models.ShippingRate `json:"rates"`
}

// handleShippingRates computes rates for one checkout. The protocol has no
// error channel, so every failure path answers 200 with empty rates; a
// broken response here would break the merchant's checkout.
func (s *Server) handleShippingRates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	emptyRates := rateResponse{Rates: []models.ShippingRate{}}

	if !shopify.VerifyAppProxyRequest(r.URL.Query(), s.apiSecret) {
		log.Printf("unauthorized shipping rate request from %s", r.RemoteAddr)
		writeJSON(w, http.StatusOK, emptyRates)
		return
	}

	shop := r.URL.Query().Get("shop")
	if shop == "" {
		log.Println("missing shop parameter in shipping rate request")
		writeJSON(w, http.StatusOK, emptyRates)
		return
	}

	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("failed to parse rate request body for shop %s: %v", shop, err)
		writeJSON(w, http.StatusOK, emptyRates)
		return
	}

	var items []models.CartItem
	for _, item := range req.Rate.Items {
		if item.VariantID == 0 || !item.RequiresShipping {
			continue
		}
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		cartItem := models.CartItem{
			VariantID: strconv.FormatInt(item.VariantID, 10),
			Quantity:  quantity,
		}
		if item.ProductID != 0 {
			cartItem.ProductID = strconv.FormatInt(item.ProductID, 10)
		}
		items = append(items, cartItem)
	}
	if len(items) == 0 {
		writeJSON(w, http.StatusOK, emptyRates)
		return
	}

	currency := req.Rate.Currency
	if len(currency) != 3 {
		currency = "USD"
	}

	rates := s.svc.ComputeShippingRates(r.Context(), shop, items, currency)
	writeJSON(w, http.StatusOK, rateResponse{Rates: rates})
}
