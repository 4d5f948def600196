package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// CarrierServiceName is the display name registered with Shopify checkout.
const CarrierServiceName = "Cloudship Shipping"

type carrierService struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CallbackURL string `json:"callback_url"`
}

// RegisterCarrierService registers the rate callback with the shop, skipping
// registration when a service with the same callback URL already exists.
func (c *Client) RegisterCarrierService(ctx context.Context, session Session, callbackURL string) error {
	existing, err := c.listCarrierServices(ctx, session)
	if err != nil {
		return err
	}
	for _, svc := range existing {
		if svc.CallbackURL == callbackURL {
			return nil
		}
	}

	body, err := json.Marshal(map[string]interface{}{
		"carrier_service": map[string]interface{}{
			"name":              CarrierServiceName,
			"callback_url":      callbackURL,
			"service_discovery": false,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal carrier service request: %w", err)
	}

	url := fmt.Sprintf("https://%s/admin/api/%s/carrier_services.json", session.Shop, c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create carrier service request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", session.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call carrier service API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("carrier service API error: status %s", resp.Status)
	}
	return nil
}

// UnregisterCarrierService removes the rate callback registration. After an
// uninstall the token is usually revoked already, so callers treat errors as
// non-fatal.
func (c *Client) UnregisterCarrierService(ctx context.Context, session Session, callbackURL string) error {
	existing, err := c.listCarrierServices(ctx, session)
	if err != nil {
		return err
	}

	for _, svc := range existing {
		if svc.CallbackURL != callbackURL {
			continue
		}
		url := fmt.Sprintf("https://%s/admin/api/%s/carrier_services/%d.json", session.Shop, c.apiVersion, svc.ID)
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create carrier service delete request: %w", err)
		}
		req.Header.Set("X-Shopify-Access-Token", session.AccessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to call carrier service delete API: %w", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("carrier service delete API error: status %s", resp.Status)
		}
		return nil
	}
	return nil
}

func (c *Client) listCarrierServices(ctx context.Context, session Session) ([]carrierService, error) {
	url := fmt.Sprintf("https://%s/admin/api/%s/carrier_services.json", session.Shop, c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create carrier services request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", session.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list carrier services: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("carrier services API error: status %s", resp.Status)
	}

	var listResp struct {
		CarrierServices []carrierService `json:"carrier_services"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, fmt.Errorf("failed to parse carrier services response: %w", err)
	}
	return listResp.CarrierServices, nil
}
