package repository

import (
	"context"
	"errors"

	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/entity"
)

// ErrNotFound is returned when an entity does not exist.
var ErrNotFound = errors.New("not found")

// OrderRepository persists orders together with their addresses and items.
type OrderRepository interface {
	// CreateOrder writes the order, its addresses and its items atomically:
	// either every row commits or none do.
	CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error)
	GetOrderByID(ctx context.Context, id int) (*entity.Order, error)
	UpdateOrderStatus(ctx context.Context, id int, status string) error
	UpdatePaymentStatus(ctx context.Context, id int, paymentStatus string) error
}

// CatalogRepository reads the product catalog used to build validation
// snapshots.
type CatalogRepository interface {
	GetProducts(ctx context.Context) ([]entity.Product, error)
	GetProductByID(ctx context.Context, id int) (*entity.Product, error)
}
