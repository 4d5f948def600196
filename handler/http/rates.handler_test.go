package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Jalwan0x/backend-cloud/internal/models"
	"github.com/Jalwan0x/backend-cloud/internal/ratelimit"
	"github.com/Jalwan0x/backend-cloud/service"
	"github.com/Jalwan0x/backend-cloud/shopify"
	"github.com/Jalwan0x/backend-cloud/store"
)

const testSecret = "shpss_handler_secret"

type fakeAdminClient struct {
	levels    shopify.InventoryLevels
	locations []shopify.Location
}

func (f *fakeAdminClient) FetchInventoryLevels(ctx context.Context, session shopify.Session, variantIDs []string) (shopify.InventoryLevels, error) {
	return f.levels, nil
}

func (f *fakeAdminClient) FetchLocations(ctx context.Context, session shopify.Session) ([]shopify.Location, error) {
	return f.locations, nil
}

// signProxyQuery signs query values the way Shopify signs app proxy requests.
func signProxyQuery(query url.Values) string {
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	// Only single-key queries are signed in these tests.
	message := ""
	for i, key := range keys {
		if i > 0 {
			message += "&"
		}
		message += key + "=" + query.Get(key)
	}
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func newTestServer(t *testing.T, admin service.AdminClient) (*Server, *store.MemoryStore, models.Shop) {
	t.Helper()
	mem := store.NewMemoryStore()
	shop, err := mem.UpsertShop(context.Background(), models.Shop{
		ShopDomain:    "demo.myshopify.com",
		AccessToken:   "shpat_test",
		Scopes:        "read_inventory,read_locations",
		IsActive:      true,
		ShowBreakdown: true,
	})
	if err != nil {
		t.Fatalf("failed to seed shop: %v", err)
	}
	svc := service.NewShippingService(mem, mem, admin, nil)
	return NewServer(svc, testSecret, ratelimit.NewLimiter(time.Minute, 30)), mem, shop
}

func ratesRequestBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body := map[string]interface{}{
		"rate": map[string]interface{}{
			"origin":      map[string]string{"country": "US"},
			"destination": map[string]string{"country": "US"},
			"currency":    "USD",
			"items": []map[string]interface{}{
				{
					"name":              "T-Shirt",
					"quantity":          2,
					"grams":             500,
					"requires_shipping": true,
					"variant_id":        1001,
					"product_id":        42,
				},
				{
					"name":              "Gift Card",
					"quantity":          1,
					"requires_shipping": false,
					"variant_id":        1002,
				},
			},
		},
	}
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}
	return buf
}

func TestHandleShippingRates_HappyPath(t *testing.T) {
	admin := &fakeAdminClient{levels: shopify.InventoryLevels{
		"1001": {{LocationID: "loc-a", LocationName: "Main", Available: 5}},
	}}
	server, mem, shop := newTestServer(t, admin)
	_, err := mem.UpsertSetting(context.Background(), models.LocationSetting{
		ShopID:            shop.ID,
		ShopifyLocationID: "loc-a",
		LocationName:      "Main",
		ShippingCost:      12.50,
		EtaMin:            2,
		EtaMax:            2,
		Priority:          1,
		IsActive:          true,
	})
	if err != nil {
		t.Fatalf("failed to seed setting: %v", err)
	}

	query := url.Values{}
	query.Set("shop", "demo.myshopify.com")
	query.Set("hmac", signProxyQuery(url.Values{"shop": {"demo.myshopify.com"}}))

	req := httptest.NewRequest(http.MethodPost, "/api/shipping-rates?"+query.Encode(), ratesRequestBody(t))
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Decode into a raw map to pin the wire field names.
	var resp map[string][]map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	rates, ok := resp["rates"]
	if !ok {
		t.Fatal(`response must have a "rates" field`)
	}
	if len(rates) != 1 {
		t.Fatalf("expected 1 rate, got %d", len(rates))
	}
	rate := rates[0]
	if rate["service_name"] != "Standard Shipping" {
		t.Errorf("wrong service_name: %s", rate["service_name"])
	}
	if rate["service_code"] != "cloudship_combined" {
		t.Errorf("wrong service_code: %s", rate["service_code"])
	}
	if rate["total_price"] != "1250" {
		t.Errorf("wrong total_price: %s", rate["total_price"])
	}
	if rate["description"] != "Delivery in 2-2 days" {
		t.Errorf("wrong description: %s", rate["description"])
	}
	if rate["currency"] != "USD" {
		t.Errorf("wrong currency: %s", rate["currency"])
	}
}

func TestHandleShippingRates_BadSignatureEmptyRates(t *testing.T) {
	server, _, _ := newTestServer(t, &fakeAdminClient{})

	req := httptest.NewRequest(http.MethodPost,
		"/api/shipping-rates?shop=demo.myshopify.com&hmac=deadbeef", ratesRequestBody(t))
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	// Checkout has no error channel: still 200, just no rates.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp rateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(resp.Rates) != 0 {
		t.Fatalf("expected empty rates, got %d", len(resp.Rates))
	}
}

func TestHandleShippingRates_InactiveShopEmptyRates(t *testing.T) {
	server, mem, _ := newTestServer(t, &fakeAdminClient{})
	if err := mem.SetActive(context.Background(), "demo.myshopify.com", false); err != nil {
		t.Fatalf("failed to deactivate shop: %v", err)
	}

	query := url.Values{}
	query.Set("shop", "demo.myshopify.com")
	query.Set("hmac", signProxyQuery(url.Values{"shop": {"demo.myshopify.com"}}))

	req := httptest.NewRequest(http.MethodPost, "/api/shipping-rates?"+query.Encode(), ratesRequestBody(t))
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp rateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(resp.Rates) != 0 {
		t.Fatalf("expected empty rates for uninstalled shop, got %d", len(resp.Rates))
	}
}

func TestHandleShippingRates_MethodNotAllowed(t *testing.T) {
	server, _, _ := newTestServer(t, &fakeAdminClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/shipping-rates", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
