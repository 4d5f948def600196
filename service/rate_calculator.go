package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Jalwan0x/backend-cloud/internal/models"
)

// Service codes returned to checkout. Split rates get a per-group suffix so
// every option stays independently selectable.
const combinedServiceCode = "cloudship_combined"

// CalculateShippingRates turns warehouse groups into the rate options shown
// at checkout. It is a pure function: same inputs, same output.
//
// Plus shops with split shipping enabled get one selectable rate per
// warehouse, even when there is only one. Everyone else gets a single
// combined rate, optionally with a per-warehouse cost breakdown in the
// description.
func CalculateShippingRates(groups []models.WarehouseGroup, isPlus, showBreakdown, enableSplitShipping bool, currency string) []models.ShippingRate {
	if len(groups) == 0 {
		return []models.ShippingRate{}
	}
	if currency == "" {
		currency = "USD"
	}

	if isPlus && enableSplitShipping {
		rates := make([]models.ShippingRate, 0, len(groups))
		for i, group := range groups {
			itemCount := group.ItemCount()
			plural := ""
			if itemCount > 1 {
				plural = "s"
			}
			rates = append(rates, models.ShippingRate{
				ServiceName: fmt.Sprintf("%s - %d item%s", group.LocationName, itemCount, plural),
				ServiceCode: fmt.Sprintf("cloudship_%s_opt%d", group.LocationID, i),
				TotalPrice:  priceCents(group.ShippingCost),
				Description: formatDeliveryTime(group.EtaMin, group.EtaMax),
				Currency:    currency,
			})
		}
		return rates
	}

	totalCost := 0.0
	for _, group := range groups {
		totalCost += group.ShippingCost
	}

	if len(groups) == 1 {
		group := groups[0]
		return []models.ShippingRate{{
			ServiceName: "Standard Shipping",
			ServiceCode: combinedServiceCode,
			TotalPrice:  priceCents(totalCost),
			Description: formatDeliveryTime(group.EtaMin, group.EtaMax),
			Currency:    currency,
		}}
	}

	if showBreakdown {
		lines := make([]string, 0, len(groups))
		minEta := groups[0].EtaMin
		maxEta := groups[0].EtaMax
		for _, group := range groups {
			lines = append(lines, fmt.Sprintf("• %s (%d-%d days): $%.2f",
				group.LocationName, group.EtaMin, group.EtaMax, group.ShippingCost))
			if group.EtaMin < minEta {
				minEta = group.EtaMin
			}
			if group.EtaMax > maxEta {
				maxEta = group.EtaMax
			}
		}
		return []models.ShippingRate{{
			ServiceName: "Multi-Warehouse Shipping",
			ServiceCode: combinedServiceCode,
			TotalPrice:  priceCents(totalCost),
			Description: formatDeliveryTime(minEta, maxEta) + "\n" + strings.Join(lines, "\n"),
			Currency:    currency,
		}}
	}

	return []models.ShippingRate{{
		ServiceName: "Standard Shipping",
		ServiceCode: combinedServiceCode,
		TotalPrice:  priceCents(totalCost),
		Description: "Fast delivery",
		Currency:    currency,
	}}
}

// priceCents converts a dollar amount to an integer-cent string. Rates cross
// the wire as strings, never floats.
func priceCents(cost float64) string {
	return strconv.Itoa(int(math.Round(cost * 100)))
}

// formatDeliveryTime renders the human-readable delivery window.
func formatDeliveryTime(etaMin, etaMax int) string {
	switch {
	case etaMin <= 0:
		return "Fast delivery"
	case etaMin == 1 && etaMax == 1:
		return "Arrives tomorrow"
	case etaMin == 1:
		return fmt.Sprintf("Arrives in 1-%d days", etaMax)
	default:
		return fmt.Sprintf("Delivery in %d-%d days", etaMin, etaMax)
	}
}
