package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/entity"
	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/repository"
	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/stock"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// OrderService re-validates every cart line against the catalog snapshot,
// recomputes authoritative totals from server-trusted prices and persists the
// order. Validation is fail-fast: the first invalid line aborts the whole
// checkout and nothing is written.
type OrderService struct {
	orderRepo   repository.OrderRepository
	kafkaWriter *kafka.Writer
	rdb         *redis.Client
}

// NewOrderService creates a new OrderService. The Kafka writer and the Redis
// client may be nil, which disables event publishing and the idempotency
// check respectively.
func NewOrderService(orderRepo repository.OrderRepository, kafkaWriter *kafka.Writer, rdb *redis.Client) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		kafkaWriter: kafkaWriter,
		rdb:         rdb,
	}
}

// CreateOrder validates the checkout request and persists the order, its
// addresses and its items in a single transaction. The catalog snapshot in
// req.Products is the only source of truth for prices and stock; client-cached
// prices are rejected on any mismatch.
func (s *OrderService) CreateOrder(ctx context.Context, req *entity.CheckoutRequest) (*entity.Order, error) {
	if err := validateCustomerInfo(&req.CustomerInfo); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, errors.New("Cart is empty")
	}
	if len(req.Products) == 0 {
		return nil, errors.New("Missing product catalog")
	}

	ok, err := s.validateIdempotentKey(ctx, req.IdempotentKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("idempotent key already exists")
	}

	productsByID := make(map[int]*entity.Product, len(req.Products))
	for i := range req.Products {
		productsByID[req.Products[i].ID] = &req.Products[i]
	}

	now := time.Now()
	var subtotal, discountTotal float64
	items := make([]entity.OrderItem, 0, len(req.Items))

	for _, line := range req.Items {
		product, found := productsByID[line.ProductID]
		if !found {
			return nil, fmt.Errorf("Product not found: %s", line.ProductName)
		}

		if vc := stock.ValidateVariation(product, line.VariationID); !vc.IsValid {
			return nil, errors.New(vc.Error)
		}

		// Server-trusted price: the variation's when the product has
		// variations, otherwise the product's.
		expectedPrice := product.Price
		if product.HasVariations && line.VariationID != 0 {
			expectedPrice = product.Variation(line.VariationID).Price
		}
		if expectedPrice != line.Price {
			return nil, fmt.Errorf("Price mismatch for %s: Expected %v, got %v", product.Name, expectedPrice, line.Price)
		}

		// Every line of the final cart is "already in the cart" relative to
		// itself, so the reader must not count it against its own request.
		sc := stock.ValidateStock(req.Products, req.Items, line.ProductID, line.Quantity, line.VariationID, true)
		if !sc.IsAvailable {
			if sc.Error != "" {
				return nil, errors.New(sc.Error)
			}
			return nil, fmt.Errorf("Insufficient stock for %s", product.Name)
		}

		if expectedPrice < 0 || line.Quantity <= 0 {
			return nil, fmt.Errorf("Invalid price or quantity for %s", product.Name)
		}

		discount := effectiveDiscount(product, line.VariationID)
		itemSubtotal := expectedPrice * float64(line.Quantity)
		subtotal += itemSubtotal
		finalAmount := itemSubtotal
		if discount > 0 && discount <= 100 {
			discountTotal += itemSubtotal * float64(discount) / 100
			finalAmount = expectedPrice * (1 - float64(discount)/100) * float64(line.Quantity)
		}

		items = append(items, entity.OrderItem{
			ProductID:          line.ProductID,
			ProductVariationID: line.VariationID,
			Quantity:           line.Quantity,
			UnitAmount:         expectedPrice,
			DiscountPercentage: discount,
			FinalAmount:        finalAmount,
			Attributes:         serializeAttributes(line.Attributes),
			CreatedAt:          now,
		})
	}

	// Shipping is determined later out-of-band; always 0 at creation.
	shipping := 0.0
	total := subtotal - discountTotal + shipping
	if total < 0 {
		return nil, fmt.Errorf("Invalid total amount: %v", total)
	}

	order := &entity.Order{
		OrderRef:       uuid.NewString(),
		Status:         entity.OrderStatusPending,
		SubtotalAmount: subtotal,
		DiscountAmount: discountTotal,
		ShippingAmount: shipping,
		TotalAmount:    total,
		Currency:       entity.OrderCurrency,
		PaymentStatus:  entity.PaymentStatusPending,
		ShippingMethod: req.CustomerInfo.ShippingMethod,
		Notes:          req.CustomerInfo.Notes,
		IdempotentKey:  req.IdempotentKey,
		CreatedAt:      now,
		Addresses:      buildAddresses(&req.CustomerInfo),
		Items:          items,
	}

	createdOrder, err := s.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating order")
		return nil, err
	}

	if err := s.publishOrderEvent(ctx, createdOrder, "created"); err != nil {
		// The order is committed; a lost event must not fail the checkout.
		logger.Error().Err(err).Int("order_id", createdOrder.ID).Msg("Error publishing order event")
	}

	return createdOrder, nil
}

// GetOrder returns an order with its addresses and items.
func (s *OrderService) GetOrder(ctx context.Context, id int) (*entity.Order, error) {
	return s.orderRepo.GetOrderByID(ctx, id)
}

// UpdateOrderStatus flips the fulfillment status between pending and
// processed. Admin action; order contents are never touched.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int, status string) error {
	if status != entity.OrderStatusPending && status != entity.OrderStatusProcessed {
		return fmt.Errorf("invalid order status: %s", status)
	}
	if err := s.orderRepo.UpdateOrderStatus(ctx, id, status); err != nil {
		return err
	}
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.publishOrderEvent(ctx, order, "updated"); err != nil {
		logger.Error().Err(err).Int("order_id", id).Msg("Error publishing order event")
	}
	return nil
}

// UpdatePaymentStatus moves the payment lifecycle, e.g. pending -> paid.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id int, paymentStatus string) error {
	if paymentStatus != entity.PaymentStatusPending && paymentStatus != entity.PaymentStatusPaid {
		return fmt.Errorf("invalid payment status: %s", paymentStatus)
	}
	return s.orderRepo.UpdatePaymentStatus(ctx, id, paymentStatus)
}

func validateCustomerInfo(info *entity.CustomerInfo) error {
	shipping := info.ShippingAddress
	if shipping.Email == "" || shipping.FirstName == "" || shipping.LastName == "" {
		return errors.New("Missing required customer information")
	}
	if !emailPattern.MatchString(shipping.Email) {
		return errors.New("Invalid email format")
	}
	return nil
}

// buildAddresses converts the customer info into address rows. The primary
// row is always written as "shipping", even when it also serves for billing;
// the schema's "both" value is never produced here.
func buildAddresses(info *entity.CustomerInfo) []entity.Address {
	addresses := []entity.Address{addressFromInput(&info.ShippingAddress, entity.AddressTypeShipping)}
	if info.BillingAddress != nil {
		addresses = append(addresses, addressFromInput(info.BillingAddress, entity.AddressTypeBilling))
	}
	return addresses
}

func addressFromInput(in *entity.AddressInput, addressType string) entity.Address {
	return entity.Address{
		AddressType:   addressType,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		Phone:         in.Phone,
		StreetAddress: in.StreetAddress,
		City:          in.City,
		State:         in.State,
		Country:       in.Country,
		ZipCode:       in.ZipCode,
	}
}

// effectiveDiscount resolves the discount percentage for a line: the
// variation's override when present, otherwise the product's.
func effectiveDiscount(product *entity.Product, variationID int) int {
	if v := product.Variation(variationID); v != nil && v.Discount != nil {
		return *v.Discount
	}
	if product.Discount != nil {
		return *product.Discount
	}
	return 0
}

func serializeAttributes(attributes map[string]string) string {
	if len(attributes) == 0 {
		return "{}"
	}
	data, err := json.Marshal(attributes)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func (s *OrderService) publishOrderEvent(ctx context.Context, order *entity.Order, key string) error {
	if s.kafkaWriter == nil {
		return nil
	}

	orderJSON, err := json.Marshal(order)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order.%s.%d", key, order.ID)),
		Value: orderJSON,
	}
	return s.kafkaWriter.WriteMessages(ctx, msg)
}

func (s *OrderService) validateIdempotentKey(ctx context.Context, key string) (bool, error) {
	if s.rdb == nil || key == "" {
		return true, nil
	}

	redisKey := fmt.Sprintf("idempotent-key:%s", key)
	val, err := s.rdb.Get(ctx, redisKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	if val != "" {
		return false, nil
	}

	if err := s.rdb.Set(ctx, redisKey, "exists", 24*time.Hour).Err(); err != nil {
		return false, err
	}
	return true, nil
}
