package repository

import (
	"context"
	"sync"

	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/entity"
)

// MemoryOrderRepository is an in-memory OrderRepository used in tests and
// local development.
type MemoryOrderRepository struct {
	mu         sync.RWMutex
	nextID     int
	ordersByID map[int]entity.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		nextID:     1,
		ordersByID: make(map[int]entity.Order),
	}
}

var _ OrderRepository = (*MemoryOrderRepository)(nil)

func (m *MemoryOrderRepository) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order.ID = m.nextID
	m.nextID++
	for i := range order.Addresses {
		order.Addresses[i].ID = i + 1
		order.Addresses[i].OrderID = order.ID
	}
	for i := range order.Items {
		order.Items[i].ID = i + 1
		order.Items[i].OrderID = order.ID
	}
	m.ordersByID[order.ID] = *order
	return order, nil
}

func (m *MemoryOrderRepository) GetOrderByID(ctx context.Context, id int) (*entity.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.ordersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := o
	return &cp, nil
}

func (m *MemoryOrderRepository) UpdateOrderStatus(ctx context.Context, id int, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.ordersByID[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	m.ordersByID[id] = o
	return nil
}

func (m *MemoryOrderRepository) UpdatePaymentStatus(ctx context.Context, id int, paymentStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.ordersByID[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentStatus = paymentStatus
	m.ordersByID[id] = o
	return nil
}

// MemoryCatalogRepository serves a fixed catalog snapshot.
type MemoryCatalogRepository struct {
	mu       sync.RWMutex
	products []entity.Product
}

func NewMemoryCatalogRepository(products []entity.Product) *MemoryCatalogRepository {
	return &MemoryCatalogRepository{products: products}
}

var _ CatalogRepository = (*MemoryCatalogRepository)(nil)

func (m *MemoryCatalogRepository) GetProducts(ctx context.Context) ([]entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entity.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *MemoryCatalogRepository) GetProductByID(ctx context.Context, id int) (*entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.products {
		if m.products[i].ID == id {
			cp := m.products[i]
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryCatalogRepository) SetProducts(products []entity.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = products
}
