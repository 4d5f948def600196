package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Jalwan0x/backend-cloud/internal/models"
)

func signWebhookBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestHandleAppUninstalled(t *testing.T) {
	server, mem, shop := newTestServer(t, &fakeAdminClient{})
	_, err := mem.UpsertSetting(context.Background(), models.LocationSetting{
		ShopID:            shop.ID,
		ShopifyLocationID: "loc-a",
		LocationName:      "Main",
		IsActive:          true,
	})
	if err != nil {
		t.Fatalf("failed to seed setting: %v", err)
	}

	body := []byte(`{"myshopify_domain":"demo.myshopify.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/app/uninstalled", bytes.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-Sha256", signWebhookBody(body))
	req.Header.Set("X-Shopify-Shop-Domain", "demo.myshopify.com")
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	got, err := mem.GetShop(context.Background(), "demo.myshopify.com")
	if err != nil {
		t.Fatalf("shop should still exist: %v", err)
	}
	if got.IsActive {
		t.Error("shop should be inactive after uninstall")
	}

	settings, err := mem.GetSettings(context.Background(), shop.ID)
	if err != nil {
		t.Fatalf("failed to list settings: %v", err)
	}
	if len(settings) != 0 {
		t.Errorf("settings should be deleted on uninstall, found %d", len(settings))
	}
}

func TestHandleAppUninstalled_BadHmac(t *testing.T) {
	server, mem, _ := newTestServer(t, &fakeAdminClient{})

	body := []byte(`{"myshopify_domain":"demo.myshopify.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/app/uninstalled", bytes.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-Sha256", "bogus")
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	got, err := mem.GetShop(context.Background(), "demo.myshopify.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsActive {
		t.Error("unverified webhook must not deactivate the shop")
	}
}

func TestHandleAppUninstalled_ShopDomainFromBody(t *testing.T) {
	server, mem, _ := newTestServer(t, &fakeAdminClient{})

	// No X-Shopify-Shop-Domain header; the payload carries the domain.
	body := []byte(`{"myshopify_domain":"demo.myshopify.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/app/uninstalled", bytes.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-Sha256", signWebhookBody(body))
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	got, _ := mem.GetShop(context.Background(), "demo.myshopify.com")
	if got.IsActive {
		t.Error("shop should be inactive")
	}
}

func TestHandleAppUninstalled_UnknownShopAcknowledged(t *testing.T) {
	server, _, _ := newTestServer(t, &fakeAdminClient{})

	body := []byte(`{"myshopify_domain":"gone.myshopify.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/app/uninstalled", bytes.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-Sha256", signWebhookBody(body))
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	// Unknown shop is acknowledged so Shopify stops retrying.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
