package entity

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusProcessed = "processed"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"

	AddressTypeShipping = "shipping"
	AddressTypeBilling  = "billing"
	// AddressTypeBoth exists in the schema but order creation never writes it;
	// the primary address row is always "shipping".
	AddressTypeBoth = "both"

	OrderCurrency = "CAD"
)

// Order is the persisted result of a successful checkout. Items and Addresses
// are written once at creation and never mutated afterward; only Status and
// PaymentStatus are toggled later by admin action.
type Order struct {
	ID             int         `json:"id"`
	OrderRef       string      `json:"order_ref"`
	Status         string      `json:"status"`
	SubtotalAmount float64     `json:"subtotal_amount"`
	DiscountAmount float64     `json:"discount_amount"`
	ShippingAmount float64     `json:"shipping_amount"`
	TotalAmount    float64     `json:"total_amount"`
	Currency       string      `json:"currency"`
	PaymentStatus  string      `json:"payment_status"`
	PaymentMethod  string      `json:"payment_method,omitempty"`
	ShippingMethod string      `json:"shipping_method,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	IdempotentKey  string      `json:"idempotent_key,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	Addresses      []Address   `json:"addresses,omitempty"`
	Items          []OrderItem `json:"items,omitempty"`
}

type Address struct {
	ID            int    `json:"id"`
	OrderID       int    `json:"order_id"`
	AddressType   string `json:"address_type"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	ZipCode       string `json:"zip_code"`
}

// OrderItem freezes one cart line at purchase time. UnitAmount is the
// server-trusted unit price, FinalAmount the discounted line total, and
// Attributes a JSON snapshot of the variation attributes for display.
type OrderItem struct {
	ID                 int       `json:"id"`
	OrderID            int       `json:"order_id"`
	ProductID          int       `json:"product_id"`
	ProductVariationID int       `json:"product_variation_id,omitempty"`
	Quantity           int       `json:"quantity"`
	UnitAmount         float64   `json:"unit_amount"`
	DiscountPercentage int       `json:"discount_percentage"`
	FinalAmount        float64   `json:"final_amount"`
	Attributes         string    `json:"attributes"`
	CreatedAt          time.Time `json:"created_at"`
}

/*
MySQL schema:

CREATE TABLE orders (
	id INT AUTO_INCREMENT PRIMARY KEY,
	order_ref VARCHAR(36) NOT NULL UNIQUE,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	subtotal_amount DOUBLE NOT NULL,
	discount_amount DOUBLE NOT NULL,
	shipping_amount DOUBLE NOT NULL,
	total_amount DOUBLE NOT NULL,
	currency VARCHAR(3) NOT NULL,
	payment_status VARCHAR(20) NOT NULL,
	payment_method VARCHAR(64),
	shipping_method VARCHAR(64),
	notes TEXT,
	idempotent_key VARCHAR(255) UNIQUE,
	created_at DATETIME NOT NULL,
	completed_at DATETIME NULL
);

CREATE TABLE addresses (
	id INT AUTO_INCREMENT PRIMARY KEY,
	order_id INT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	address_type VARCHAR(10) NOT NULL,
	first_name VARCHAR(255) NOT NULL,
	last_name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(64),
	street_address VARCHAR(255),
	city VARCHAR(128),
	state VARCHAR(128),
	country VARCHAR(128),
	zip_code VARCHAR(32)
);

CREATE TABLE order_items (
	id INT AUTO_INCREMENT PRIMARY KEY,
	order_id INT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id INT NOT NULL,
	product_variation_id INT NULL,
	quantity INT NOT NULL,
	unit_amount DOUBLE NOT NULL,
	discount_percentage INT NOT NULL DEFAULT 0,
	final_amount DOUBLE NOT NULL,
	attributes TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
*/
