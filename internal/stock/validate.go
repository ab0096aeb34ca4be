package stock

import (
	"fmt"

	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/entity"
)

// Check is the verdict of a stock validation. Expected failures such as
// insufficient stock are reported in Error, not returned as a Go error.
type Check struct {
	IsAvailable    bool   `json:"isAvailable"`
	AvailableStock int    `json:"availableStock"`
	UnlimitedStock bool   `json:"unlimitedStock"`
	Error          string `json:"error,omitempty"`
}

// VariationCheck is the verdict of a variation structure validation.
type VariationCheck struct {
	IsValid bool   `json:"isValid"`
	Error   string `json:"error,omitempty"`
}

// ValidateVariation checks that a requested variation matches the product's
// variation mode. It is purely structural; stock is not involved.
func ValidateVariation(product *entity.Product, variationID int) VariationCheck {
	switch {
	case product.HasVariations && variationID == 0:
		return VariationCheck{Error: fmt.Sprintf("Variation required for product: %s", product.Name)}
	case !product.HasVariations && variationID != 0:
		return VariationCheck{Error: fmt.Sprintf("Product does not support variations: %s", product.Name)}
	case variationID != 0 && product.Variation(variationID) == nil:
		return VariationCheck{Error: fmt.Sprintf("Variation not found for product: %s", product.Name)}
	}
	return VariationCheck{IsValid: true}
}

// ValidateStock checks whether the requested quantity of a product/variation
// pair is purchasable given the current cart. isExistingCartItem tells the
// reader that the line being validated is itself already counted in cart, so
// its own quantity must not be double-subtracted.
func ValidateStock(products []entity.Product, cart []entity.CartItem, productID, requestedQuantity, variationID int, isExistingCartItem bool) Check {
	var product *entity.Product
	for i := range products {
		if products[i].ID == productID {
			product = &products[i]
			break
		}
	}
	if product == nil {
		return Check{Error: fmt.Sprintf("Product not found: %d", productID)}
	}

	if product.UnlimitedStock {
		return Check{IsAvailable: true, AvailableStock: MaxAvailable, UnlimitedStock: true}
	}

	available := AvailableQuantity(product, variationID, cart, isExistingCartItem)
	if available < requestedQuantity {
		return Check{
			AvailableStock: available,
			Error:          fmt.Sprintf("Insufficient stock. Available: %d, Requested: %d", available, requestedQuantity),
		}
	}
	return Check{IsAvailable: true, AvailableStock: available}
}
