// Package http exposes the service over HTTP: the carrier-calculated
// shipping callback, the merchant location/settings endpoints and the
// Shopify webhooks.
package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/Jalwan0x/backend-cloud/internal/ratelimit"
	"github.com/Jalwan0x/backend-cloud/service"
)

// Server bundles the HTTP handlers with their dependencies.
type Server struct {
	svc       *service.ShippingService
	apiSecret string
	limiter   *ratelimit.Limiter
}

// NewServer creates the handler set. apiSecret is the Shopify app secret used
// for webhook and app-proxy verification; limiter guards the admin endpoints.
func NewServer(svc *service.ShippingService, apiSecret string, limiter *ratelimit.Limiter) *Server {
	return &Server{
		svc:       svc,
		apiSecret: apiSecret,
		limiter:   limiter,
	}
}

// Routes registers all endpoints on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/shipping-rates", s.handleShippingRates)
	mux.HandleFunc("/api/locations", s.withRateLimit(s.handleLocations))
	mux.HandleFunc("/api/locations/settings", s.withRateLimit(s.handleLocationSettings))
	mux.HandleFunc("/api/webhooks/app/uninstalled", s.handleAppUninstalled)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withRateLimit rejects callers that exceed the admin endpoint budget.
func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil {
			identifier := r.URL.Query().Get("shop")
			if identifier == "" {
				identifier = r.RemoteAddr
			}
			result := s.limiter.Allow(identifier)
			if !result.Allowed {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}
