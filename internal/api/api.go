package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/entity"
	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/repository"
	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/service"
	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/stock"
)

type Handler struct {
	orderService   *service.OrderService
	catalogService *service.CatalogService
}

func NewHandler(orderService *service.OrderService, catalogService *service.CatalogService) *Handler {
	return &Handler{orderService: orderService, catalogService: catalogService}
}

// Checkout validates the cart against the supplied catalog snapshot and
// creates the order. When the request carries no snapshot, the current
// catalog is fetched on the caller's behalf.
func (h *Handler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	req := entity.CheckoutRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}
	req.IdempotentKey = c.Request().Header.Get("Idempotent-Key")

	if len(req.Products) == 0 {
		products, err := h.catalogService.Products(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		req.Products = products
	}

	order, err := h.orderService.CreateOrder(ctx, &req)
	if err != nil {
		return c.JSON(statusForError(err), map[string]string{"error": clientMessage(err)})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"order_id":        order.ID,
		"order_ref":       order.OrderRef,
		"subtotal_amount": order.SubtotalAmount,
		"discount_amount": order.DiscountAmount,
		"shipping_amount": order.ShippingAmount,
		"total_amount":    order.TotalAmount,
		"currency":        order.Currency,
	})
}

type cartValidationRequest struct {
	Items    []entity.CartItem `json:"items"`
	Products []entity.Product  `json:"products,omitempty"`
}

type cartLineVerdict struct {
	ProductID   int                  `json:"product_id"`
	VariationID int                  `json:"variation_id,omitempty"`
	Variation   stock.VariationCheck `json:"variation"`
	Stock       stock.Check          `json:"stock"`
}

// ValidateCart runs the variation and stock validators on every cart line and
// reports per-line verdicts without persisting anything.
func (h *Handler) ValidateCart(c echo.Context) error {
	ctx := c.Request().Context()

	req := cartValidationRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}
	if len(req.Products) == 0 {
		products, err := h.catalogService.Products(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		req.Products = products
	}

	byID := make(map[int]*entity.Product, len(req.Products))
	for i := range req.Products {
		byID[req.Products[i].ID] = &req.Products[i]
	}

	verdicts := make([]cartLineVerdict, 0, len(req.Items))
	valid := true
	for _, line := range req.Items {
		v := cartLineVerdict{ProductID: line.ProductID, VariationID: line.VariationID}
		if product, ok := byID[line.ProductID]; ok {
			v.Variation = stock.ValidateVariation(product, line.VariationID)
		} else {
			v.Variation = stock.VariationCheck{Error: "Product not found: " + line.ProductName}
		}
		v.Stock = stock.ValidateStock(req.Products, req.Items, line.ProductID, line.Quantity, line.VariationID, true)
		if !v.Variation.IsValid || !v.Stock.IsAvailable {
			valid = false
		}
		verdicts = append(verdicts, v)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"valid": valid, "items": verdicts})
}

func (h *Handler) ListProducts(c echo.Context) error {
	products, err := h.catalogService.Products(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, products)
}

// ProductAvailability reports the purchasable quantity for one
// product/variation pair, with an empty cart.
func (h *Handler) ProductAvailability(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}
	variationID := 0
	if raw := c.QueryParam("variation_id"); raw != "" {
		variationID, err = strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid variation ID"})
		}
	}
	quantity := 1
	if raw := c.QueryParam("quantity"); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil || quantity <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid quantity"})
		}
	}

	product, err := h.catalogService.Product(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	check := stock.ValidateStock([]entity.Product{*product}, nil, id, quantity, variationID, false)
	return c.JSON(http.StatusOK, check)
}

func (h *Handler) GetOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, order)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus is the admin toggle between pending and processed.
// Requires an authenticated admin token.
func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "admin role required"})
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}
	req := statusUpdateRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	if err := h.orderService.UpdateOrderStatus(c.Request().Context(), id, req.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
		}
		return c.JSON(statusForError(err), map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}

// UpdatePaymentStatus is the admin toggle for the payment lifecycle.
func (h *Handler) UpdatePaymentStatus(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "admin role required"})
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}
	req := struct {
		PaymentStatus string `json:"payment_status"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	if err := h.orderService.UpdatePaymentStatus(c.Request().Context(), id, req.PaymentStatus); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
		}
		return c.JSON(statusForError(err), map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"payment_status": req.PaymentStatus})
}

// requireAdmin checks the "role" claim of the JWT the middleware attached to
// the context.
func requireAdmin(c echo.Context) error {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return errors.New("missing token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return errors.New("invalid claims")
	}
	if role, _ := claims["role"].(string); role != "admin" {
		return errors.New("admin role required")
	}
	return nil
}

// clientErrorPatterns are the validation failures of the checkout flow. They
// indicate a stale or malformed cart and map to 400.
var clientErrorPatterns = []string{
	"Missing required customer information",
	"Invalid email format",
	"Cart is empty",
	"Missing product catalog",
	"Product not found",
	"Variation required for product",
	"Product does not support variations",
	"Variation not found",
	"Price mismatch",
	"Insufficient stock",
	"Invalid price or quantity",
	"invalid order status",
	"invalid payment status",
}

func statusForError(err error) int {
	msg := err.Error()
	for _, pattern := range clientErrorPatterns {
		if strings.Contains(msg, pattern) {
			return http.StatusBadRequest
		}
	}
	if strings.Contains(msg, "idempotent key already exists") {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// clientMessage rewrites stale-catalog failures into a friendlier string.
// Presentation only; the service error text is unchanged underneath.
func clientMessage(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "Variation not found") {
		return "Some items in your cart are no longer available. Please refresh your cart and try again."
	}
	return msg
}
