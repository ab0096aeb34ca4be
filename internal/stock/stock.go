// Package stock computes cart-aware purchasable quantities and validates cart
// lines against a catalog snapshot. Everything here is pure: no I/O, no
// mutation of the inputs, no assumption about snapshot freshness beyond "as of
// when the caller fetched it".
package stock

import (
	"math"
	"strconv"

	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/entity"
)

// MaxAvailable is the sentinel quantity reported for unlimited-stock products.
const MaxAvailable = math.MaxInt32

// WeightAttributeID marks the grams-per-package attribute that switches a
// variation into weight-divisible accounting.
const WeightAttributeID = "WEIGHT_G"

// AvailableQuantity returns how many units of the given product/variation pair
// can still be added to the cart. It is pessimistic and cart-aware: quantities
// already held by matching cart lines are subtracted from the raw stock. When
// excludeCurrent is set, lines for the exact same product+variation pair are
// treated as the line being re-validated and are not counted against it.
//
// The result is always >= 0. Missing variations, missing weight attributes and
// malformed stock values all read as 0, never as an error.
func AvailableQuantity(product *entity.Product, variationID int, cart []entity.CartItem, excludeCurrent bool) int {
	if product == nil {
		return 0
	}
	if product.UnlimitedStock {
		return MaxAvailable
	}

	if product.Weight != "" && variationID != 0 {
		return weightModeAvailable(product, variationID, cart, excludeCurrent)
	}

	raw := product.Stock
	if variationID != 0 {
		variation := product.Variation(variationID)
		if variation == nil {
			return 0
		}
		raw = variation.Stock
	}

	reserved := 0
	for _, line := range cart {
		if line.ProductID != product.ID || line.VariationID != variationID {
			continue
		}
		// A product without a variation is a distinct bucket from any
		// variation of the same product, so only exact pair matches count.
		if excludeCurrent {
			continue
		}
		reserved += line.Quantity
	}

	return clampNonNegative(raw - reserved)
}

// weightModeAvailable divides the product's shared weight budget across all of
// its variations: available = floor((total - committed by other lines) / this
// variation's grams per package).
func weightModeAvailable(product *entity.Product, variationID int, cart []entity.CartItem, excludeCurrent bool) int {
	variation := product.Variation(variationID)
	if variation == nil {
		return 0
	}
	unitWeight, ok := variationWeight(variation)
	if !ok || unitWeight <= 0 {
		return 0
	}
	totalWeight, err := strconv.Atoi(product.Weight)
	if err != nil || totalWeight <= 0 {
		return 0
	}

	committed := 0
	for _, line := range cart {
		if line.ProductID != product.ID {
			continue
		}
		if excludeCurrent && line.VariationID == variationID {
			continue
		}
		committed += lineWeight(product, line) * line.Quantity
	}

	remaining := totalWeight - committed
	if remaining <= 0 {
		return 0
	}
	return remaining / unitWeight
}

// lineWeight resolves the grams per package of one cart line, preferring the
// catalog variation over the line's own attribute snapshot.
func lineWeight(product *entity.Product, line entity.CartItem) int {
	if v := product.Variation(line.VariationID); v != nil {
		if grams, ok := variationWeight(v); ok {
			return grams
		}
	}
	if raw, ok := line.Attributes[WeightAttributeID]; ok {
		if grams, err := strconv.Atoi(raw); err == nil && grams > 0 {
			return grams
		}
	}
	return 0
}

func variationWeight(v *entity.ProductVariation) (int, bool) {
	for _, attr := range v.Attributes {
		if attr.AttributeID != WeightAttributeID {
			continue
		}
		grams, err := strconv.Atoi(attr.Value)
		if err != nil {
			return 0, false
		}
		return grams, true
	}
	return 0, false
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
