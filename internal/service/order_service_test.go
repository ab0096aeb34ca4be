package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/entity"
	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/repository"
	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/stock"
)

func intPtr(n int) *int { return &n }

func testCatalog() []entity.Product {
	return []entity.Product{
		{
			ID:    1,
			Name:  "Yunnan Black",
			Slug:  "yunnan-black",
			Price: 18,
			Stock: 5,
		},
		{
			ID:            2,
			Name:          "Gaiwan",
			Slug:          "gaiwan",
			HasVariations: true,
			Variations: []entity.ProductVariation{
				{ID: 21, SKU: "GAIWAN-S", Price: 35, Stock: 4},
				{ID: 22, SKU: "GAIWAN-L", Price: 49, Stock: 1},
			},
		},
		{
			ID:            3,
			Name:          "Shu Puer",
			Slug:          "shu-puer",
			HasVariations: true,
			Weight:        "1000",
			Variations: []entity.ProductVariation{
				{ID: 31, SKU: "PUER-250", Price: 30, Attributes: []entity.VariationAttribute{{AttributeID: stock.WeightAttributeID, Value: "250"}}},
				{ID: 32, SKU: "PUER-100", Price: 14, Attributes: []entity.VariationAttribute{{AttributeID: stock.WeightAttributeID, Value: "100"}}},
			},
		},
		{
			ID:       4,
			Name:     "Discounted Cup",
			Slug:     "discounted-cup",
			Price:    100,
			Stock:    10,
			Discount: intPtr(20),
		},
	}
}

func testCustomerInfo() entity.CustomerInfo {
	return entity.CustomerInfo{
		ShippingAddress: entity.AddressInput{
			FirstName:     "Anna",
			LastName:      "Petrova",
			Email:         "anna@example.com",
			Phone:         "+1 604 555 0101",
			StreetAddress: "12 Main St",
			City:          "Vancouver",
			State:         "BC",
			Country:       "Canada",
			ZipCode:       "V5K 0A1",
		},
		ShippingMethod: "standard",
	}
}

func newTestOrderService(t *testing.T) (*OrderService, *repository.MemoryOrderRepository) {
	t.Helper()
	repo := repository.NewMemoryOrderRepository()
	return NewOrderService(repo, nil, nil), repo
}

func checkoutRequest(items ...entity.CartItem) *entity.CheckoutRequest {
	return &entity.CheckoutRequest{
		CustomerInfo: testCustomerInfo(),
		Items:        items,
		Products:     testCatalog(),
	}
}

func TestCreateOrderSuccess(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestOrderService(t)

	order, err := svc.CreateOrder(ctx, checkoutRequest(
		entity.CartItem{ProductID: 1, ProductName: "Yunnan Black", Quantity: 2, Price: 18},
		entity.CartItem{ProductID: 2, ProductName: "Gaiwan", VariationID: 21, Quantity: 1, Price: 35, Attributes: map[string]string{"SIZE": "small"}},
	))
	require.NoError(t, err)

	assert.NotEmpty(t, order.OrderRef)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, entity.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, entity.OrderCurrency, order.Currency)
	assert.Equal(t, 71.0, order.SubtotalAmount)
	assert.Equal(t, 0.0, order.DiscountAmount)
	assert.Equal(t, 0.0, order.ShippingAmount)
	assert.Equal(t, 71.0, order.TotalAmount)
	assert.Nil(t, order.CompletedAt)

	require.Len(t, order.Items, 2)
	assert.Equal(t, 18.0, order.Items[0].UnitAmount)
	assert.Equal(t, 36.0, order.Items[0].FinalAmount)
	assert.Equal(t, "{}", order.Items[0].Attributes)
	assert.Equal(t, 21, order.Items[1].ProductVariationID)
	assert.Equal(t, `{"SIZE":"small"}`, order.Items[1].Attributes)

	require.Len(t, order.Addresses, 1)
	assert.Equal(t, entity.AddressTypeShipping, order.Addresses[0].AddressType)
	assert.Equal(t, "anna@example.com", order.Addresses[0].Email)

	persisted, err := repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TotalAmount, persisted.TotalAmount)
	assert.Len(t, persisted.Items, 2)
}

func TestCreateOrderDiscountTotals(t *testing.T) {
	svc, _ := newTestOrderService(t)

	order, err := svc.CreateOrder(context.Background(), checkoutRequest(
		entity.CartItem{ProductID: 4, ProductName: "Discounted Cup", Quantity: 1, Price: 100},
	))
	require.NoError(t, err)

	assert.Equal(t, 100.0, order.SubtotalAmount)
	assert.Equal(t, 20.0, order.DiscountAmount)
	assert.Equal(t, 80.0, order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 20, order.Items[0].DiscountPercentage)
	assert.Equal(t, 80.0, order.Items[0].FinalAmount)
}

func TestCreateOrderBillingAddress(t *testing.T) {
	svc, _ := newTestOrderService(t)

	req := checkoutRequest(entity.CartItem{ProductID: 1, ProductName: "Yunnan Black", Quantity: 1, Price: 18})
	req.CustomerInfo.BillingAddress = &entity.AddressInput{
		FirstName: "Boris", LastName: "Petrov", Email: "boris@example.com",
		StreetAddress: "99 Billing Rd", City: "Toronto", State: "ON", Country: "Canada", ZipCode: "M5H 2N2",
	}

	order, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, order.Addresses, 2)
	// The primary row is literally "shipping" even though it doubles as the
	// billing address when none is given; "both" is never written.
	assert.Equal(t, entity.AddressTypeShipping, order.Addresses[0].AddressType)
	assert.Equal(t, entity.AddressTypeBilling, order.Addresses[1].AddressType)
	assert.Equal(t, "boris@example.com", order.Addresses[1].Email)
}

func TestCreateOrderCustomerValidation(t *testing.T) {
	svc, _ := newTestOrderService(t)
	line := entity.CartItem{ProductID: 1, ProductName: "Yunnan Black", Quantity: 1, Price: 18}

	req := checkoutRequest(line)
	req.CustomerInfo.ShippingAddress.Email = "not-an-email"
	_, err := svc.CreateOrder(context.Background(), req)
	assert.EqualError(t, err, "Invalid email format")

	req = checkoutRequest(line)
	req.CustomerInfo.ShippingAddress.FirstName = ""
	_, err = svc.CreateOrder(context.Background(), req)
	assert.EqualError(t, err, "Missing required customer information")
}

func TestCreateOrderEmptyCartAndCatalog(t *testing.T) {
	svc, _ := newTestOrderService(t)

	_, err := svc.CreateOrder(context.Background(), checkoutRequest())
	assert.EqualError(t, err, "Cart is empty")

	req := checkoutRequest(entity.CartItem{ProductID: 1, ProductName: "Yunnan Black", Quantity: 1, Price: 18})
	req.Products = nil
	_, err = svc.CreateOrder(context.Background(), req)
	assert.EqualError(t, err, "Missing product catalog")
}

func TestCreateOrderLineValidation(t *testing.T) {
	tests := []struct {
		name      string
		item      entity.CartItem
		wantError string
	}{
		{
			name:      "product missing from catalog",
			item:      entity.CartItem{ProductID: 77, ProductName: "Ghost Teapot", Quantity: 1, Price: 10},
			wantError: "Product not found: Ghost Teapot",
		},
		{
			name:      "variation required",
			item:      entity.CartItem{ProductID: 2, ProductName: "Gaiwan", Quantity: 1, Price: 35},
			wantError: "Variation required for product: Gaiwan",
		},
		{
			name:      "variations not supported",
			item:      entity.CartItem{ProductID: 1, ProductName: "Yunnan Black", VariationID: 21, Quantity: 1, Price: 18},
			wantError: "Product does not support variations: Yunnan Black",
		},
		{
			name:      "variation unknown",
			item:      entity.CartItem{ProductID: 2, ProductName: "Gaiwan", VariationID: 999, Quantity: 1, Price: 35},
			wantError: "Variation not found for product: Gaiwan",
		},
		{
			name:      "price tampering",
			item:      entity.CartItem{ProductID: 2, ProductName: "Gaiwan", VariationID: 21, Quantity: 1, Price: 25},
			wantError: "Price mismatch for Gaiwan: Expected 35, got 25",
		},
		{
			name:      "insufficient stock",
			item:      entity.CartItem{ProductID: 2, ProductName: "Gaiwan", VariationID: 22, Quantity: 3, Price: 49},
			wantError: "Insufficient stock. Available: 1, Requested: 3",
		},
		{
			name:      "zero quantity",
			item:      entity.CartItem{ProductID: 1, ProductName: "Yunnan Black", Quantity: 0, Price: 18},
			wantError: "Invalid price or quantity for Yunnan Black",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestOrderService(t)
			_, err := svc.CreateOrder(context.Background(), checkoutRequest(tt.item))
			assert.EqualError(t, err, tt.wantError)
		})
	}
}

func TestCreateOrderPriceMismatchFractional(t *testing.T) {
	svc, _ := newTestOrderService(t)

	req := checkoutRequest(entity.CartItem{ProductID: 1, ProductName: "Yunnan Black", Quantity: 1, Price: 18})
	req.Products[0].Price = 27.5
	req.Items[0].Price = 25

	_, err := svc.CreateOrder(context.Background(), req)
	assert.EqualError(t, err, "Price mismatch for Yunnan Black: Expected 27.5, got 25")
}

func TestCreateOrderWeightBudget(t *testing.T) {
	svc, _ := newTestOrderService(t)

	// 2x250g + 5x100g = 1000g fits exactly.
	order, err := svc.CreateOrder(context.Background(), checkoutRequest(
		entity.CartItem{ProductID: 3, ProductName: "Shu Puer", VariationID: 31, Quantity: 2, Price: 30},
		entity.CartItem{ProductID: 3, ProductName: "Shu Puer", VariationID: 32, Quantity: 5, Price: 14},
	))
	require.NoError(t, err)
	assert.Equal(t, 130.0, order.TotalAmount)

	// 2x250g + 6x100g = 1100g exceeds the 1000g budget. The first line
	// already sees it: the 600g held by the other line leaves 400g, one
	// 250g package.
	svc2, _ := newTestOrderService(t)
	_, err = svc2.CreateOrder(context.Background(), checkoutRequest(
		entity.CartItem{ProductID: 3, ProductName: "Shu Puer", VariationID: 31, Quantity: 2, Price: 30},
		entity.CartItem{ProductID: 3, ProductName: "Shu Puer", VariationID: 32, Quantity: 6, Price: 14},
	))
	assert.EqualError(t, err, "Insufficient stock. Available: 1, Requested: 2")
}

func TestCreateOrderFailFast(t *testing.T) {
	svc, repo := newTestOrderService(t)

	_, err := svc.CreateOrder(context.Background(), checkoutRequest(
		entity.CartItem{ProductID: 2, ProductName: "Gaiwan", Quantity: 1, Price: 35},
		entity.CartItem{ProductID: 1, ProductName: "Yunnan Black", Quantity: 1, Price: 18},
	))
	assert.EqualError(t, err, "Variation required for product: Gaiwan")

	// Nothing was written.
	_, err = repo.GetOrderByID(context.Background(), 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestOrderService(t)

	order, err := svc.CreateOrder(ctx, checkoutRequest(
		entity.CartItem{ProductID: 1, ProductName: "Yunnan Black", Quantity: 1, Price: 18},
	))
	require.NoError(t, err)

	require.NoError(t, svc.UpdateOrderStatus(ctx, order.ID, entity.OrderStatusProcessed))
	updated, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusProcessed, updated.Status)

	assert.Error(t, svc.UpdateOrderStatus(ctx, order.ID, "shipped"))

	require.NoError(t, svc.UpdatePaymentStatus(ctx, order.ID, entity.PaymentStatusPaid))
	updated, err = svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, updated.PaymentStatus)

	assert.Error(t, svc.UpdatePaymentStatus(ctx, order.ID, "refunded"))
}
