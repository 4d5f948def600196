package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/Jalwan0x/backend-cloud/shopify"
	"github.com/Jalwan0x/backend-cloud/store"
)

// handleAppUninstalled processes the app/uninstalled webhook: verify the
// HMAC, flip the shop to inactive and drop its settings. Shopify retries
// webhooks on non-200 responses, so transient failures return 500.
func (s *Server) handleAppUninstalled(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read body"})
		return
	}

	if !shopify.VerifyWebhook(body, r.Header.Get("X-Shopify-Hmac-Sha256"), s.apiSecret) {
		log.Printf("webhook HMAC verification failed from %s", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid hmac"})
		return
	}

	shop := r.Header.Get("X-Shopify-Shop-Domain")
	if shop == "" {
		var payload struct {
			MyshopifyDomain string `json:"myshopify_domain"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			shop = payload.MyshopifyDomain
		}
	}
	if shop == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing shop domain"})
		return
	}

	if err := s.svc.Uninstall(r.Context(), shop); err != nil {
		if errors.Is(err, store.ErrShopNotFound) {
			// Already gone; acknowledge so Shopify stops retrying.
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		log.Printf("failed to process uninstall for shop %s: %v", shop, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to process uninstall"})
		return
	}

	log.Printf("shop %s uninstalled, settings removed", shop)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
