package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/entity"
)

func sampleOrder() *entity.Order {
	return &entity.Order{
		OrderRef:       "ref-123",
		Status:         entity.OrderStatusPending,
		SubtotalAmount: 50,
		TotalAmount:    50,
		Currency:       entity.OrderCurrency,
		PaymentStatus:  entity.PaymentStatusPending,
		CreatedAt:      time.Now(),
		Addresses: []entity.Address{
			{AddressType: entity.AddressTypeShipping, FirstName: "Anna", LastName: "Petrova", Email: "anna@example.com"},
		},
		Items: []entity.OrderItem{
			{ProductID: 1, Quantity: 2, UnitAmount: 25, FinalAmount: 50, Attributes: "{}"},
		},
	}
}

func TestMemoryOrderRepositoryRoundtrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()

	created, err := repo.CreateOrder(ctx, sampleOrder())
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, 1, created.Addresses[0].OrderID)
	assert.Equal(t, 1, created.Items[0].OrderID)

	got, err := repo.GetOrderByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ref-123", got.OrderRef)
	assert.Len(t, got.Addresses, 1)
	assert.Len(t, got.Items, 1)

	_, err = repo.GetOrderByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryOrderRepositoryStatusUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()

	created, err := repo.CreateOrder(ctx, sampleOrder())
	require.NoError(t, err)

	require.NoError(t, repo.UpdateOrderStatus(ctx, created.ID, entity.OrderStatusProcessed))
	require.NoError(t, repo.UpdatePaymentStatus(ctx, created.ID, entity.PaymentStatusPaid))

	got, err := repo.GetOrderByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusProcessed, got.Status)
	assert.Equal(t, entity.PaymentStatusPaid, got.PaymentStatus)

	assert.ErrorIs(t, repo.UpdateOrderStatus(ctx, 99, entity.OrderStatusProcessed), ErrNotFound)
	assert.ErrorIs(t, repo.UpdatePaymentStatus(ctx, 99, entity.PaymentStatusPaid), ErrNotFound)
}

func TestMemoryCatalogRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCatalogRepository([]entity.Product{
		{ID: 1, Name: "Yunnan Black", Slug: "yunnan-black", Price: 18, Stock: 5},
	})

	products, err := repo.GetProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	p, err := repo.GetProductByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "yunnan-black", p.Slug)

	_, err = repo.GetProductByID(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}
