package entity

// CartItem is a requested purchase line. It is not persisted until order
// placement. Price and Discount are client-side caches used only as a
// consistency check against the catalog; the server never trusts them as the
// authoritative price. A zero VariationID means the line has no variation.
type CartItem struct {
	ProductID      int               `json:"product_id"`
	ProductName    string            `json:"product_name"`
	VariationID    int               `json:"variation_id,omitempty"`
	Quantity       int               `json:"quantity"`
	Price          float64           `json:"price"`
	Discount       *int              `json:"discount,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	MaxStock       int               `json:"max_stock,omitempty"`
	UnlimitedStock bool              `json:"unlimited_stock,omitempty"`
}

// AddressInput is the address shape supplied by the client at checkout.
type AddressInput struct {
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

type CustomerInfo struct {
	ShippingAddress AddressInput  `json:"shipping_address"`
	BillingAddress  *AddressInput `json:"billing_address,omitempty"`
	ShippingMethod  string        `json:"shipping_method,omitempty"`
	Notes           string        `json:"notes,omitempty"`
}

// CheckoutRequest is the order-creation payload. Products is the catalog
// snapshot the caller fetched moments earlier; validation runs against it and
// nothing else.
type CheckoutRequest struct {
	CustomerInfo CustomerInfo `json:"customer_info"`
	Items        []CartItem   `json:"items"`
	Products     []Product    `json:"products"`

	IdempotentKey string `json:"-"`
}
