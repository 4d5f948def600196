// Package shopify is a minimal Admin API client covering the calls the
// shipping service needs: inventory lookup, location listing and carrier
// service registration. It talks raw HTTP rather than pulling in a full SDK.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIVersion is the Admin API version used unless overridden.
const DefaultAPIVersion = "2024-10"

// maxLocationsPerQuery caps how many inventory levels we request per variant.
// Shops with more locations than this only have their first page considered.
const maxLocationsPerQuery = 250

// Session carries the credentials needed to call the Admin API for one shop.
type Session struct {
	Shop        string
	AccessToken string
	Scopes      string
}

// HasScope reports whether the session's granted scopes include the given one.
func (s Session) HasScope(scope string) bool {
	for _, granted := range strings.Split(s.Scopes, ",") {
		if strings.TrimSpace(granted) == scope {
			return true
		}
	}
	return false
}

// Client calls the Shopify Admin API.
type Client struct {
	apiVersion string
	httpClient *http.Client
}

// NewClient creates a client with a request timeout so checkout callbacks
// never hang on a slow Admin API.
func NewClient(apiVersion string) *Client {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	return &Client{
		apiVersion: apiVersion,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// InventoryLevels maps variant id -> per-location availability.
type InventoryLevels map[string][]InventoryLevel

// InventoryLevel is one location's stock for a variant.
type InventoryLevel struct {
	LocationID   string
	LocationName string
	Available    int
}

const inventoryQuery = `
query getInventoryLevels($first: Int!, $ids: [ID!]!) {
  nodes(ids: $ids) {
    ... on ProductVariant {
      id
      inventoryItem {
        id
        inventoryLevels(first: $first) {
          edges {
            node {
              quantities(names: ["available"]) {
                quantity
              }
              location {
                id
                name
              }
            }
          }
        }
      }
    }
  }
}`

// FetchInventoryLevels runs a bulk inventory query for the given variant ids
// and returns availability per location. Variant ids are plain numeric ids;
// gid wrapping and unwrapping happens here.
func (c *Client) FetchInventoryLevels(ctx context.Context, session Session, variantIDs []string) (InventoryLevels, error) {
	gids := make([]interface{}, len(variantIDs))
	for i, id := range variantIDs {
		gids[i] = "gid://shopify/ProductVariant/" + id
	}

	body, err := json.Marshal(gqlRequest{
		Query: inventoryQuery,
		Variables: map[string]interface{}{
			"first": maxLocationsPerQuery,
			"ids":   gids,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inventory query: %w", err)
	}

	url := fmt.Sprintf("https://%s/admin/api/%s/graphql.json", session.Shop, c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", session.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call inventory API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inventory API error: status %s", resp.Status)
	}

	var gqlResp struct {
		Data struct {
			Nodes []struct {
				ID            string `json:"id"`
				InventoryItem struct {
					InventoryLevels struct {
						Edges []struct {
							Node struct {
								Quantities []struct {
									Quantity int `json:"quantity"`
								} `json:"quantities"`
								Location struct {
									ID   string `json:"id"`
									Name string `json:"name"`
								} `json:"location"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"inventoryLevels"`
				} `json:"inventoryItem"`
			} `json:"nodes"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return nil, fmt.Errorf("failed to parse inventory response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("inventory API error: %s", gqlResp.Errors[0].Message)
	}

	levels := make(InventoryLevels)
	for _, node := range gqlResp.Data.Nodes {
		if node.ID == "" {
			continue
		}
		variantID := strings.TrimPrefix(node.ID, "gid://shopify/ProductVariant/")
		for _, edge := range node.InventoryItem.InventoryLevels.Edges {
			available := 0
			if len(edge.Node.Quantities) > 0 {
				available = edge.Node.Quantities[0].Quantity
			}
			levels[variantID] = append(levels[variantID], InventoryLevel{
				LocationID:   strings.TrimPrefix(edge.Node.Location.ID, "gid://shopify/Location/"),
				LocationName: edge.Node.Location.Name,
				Available:    available,
			})
		}
	}
	return levels, nil
}

// Location is a Shopify inventory location.
type Location struct {
	ID     string
	Name   string
	Active bool
}

// FetchLocations lists the shop's locations via the Admin REST API.
func (c *Client) FetchLocations(ctx context.Context, session Session) ([]Location, error) {
	url := fmt.Sprintf("https://%s/admin/api/%s/locations.json", session.Shop, c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create locations request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", session.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call locations API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("locations API error: status %s", resp.Status)
	}

	var restResp struct {
		Locations []struct {
			ID     int64  `json:"id"`
			Name   string `json:"name"`
			Active bool   `json:"active"`
		} `json:"locations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&restResp); err != nil {
		return nil, fmt.Errorf("failed to parse locations response: %w", err)
	}

	locations := make([]Location, 0, len(restResp.Locations))
	for _, loc := range restResp.Locations {
		locations = append(locations, Location{
			ID:     fmt.Sprintf("%d", loc.ID),
			Name:   loc.Name,
			Active: loc.Active,
		})
	}
	return locations, nil
}
