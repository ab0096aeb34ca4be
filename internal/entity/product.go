package entity

// Product is one row of the catalog snapshot, with its variations attached.
// When HasVariations is true the product-level Price and Stock are ignored for
// purchase validation; the matched variation's own fields govern.
type Product struct {
	ID             int                `json:"id"`
	Name           string             `json:"name"`
	Slug           string             `json:"slug"`
	Price          float64            `json:"price"`
	Stock          int                `json:"stock"`
	UnlimitedStock bool               `json:"unlimited_stock"`
	HasVariations  bool               `json:"has_variations"`
	Weight         string             `json:"weight,omitempty"` // total grams available; non-empty switches the product into weight-divisible mode
	Discount       *int               `json:"discount,omitempty"`
	Variations     []ProductVariation `json:"variations,omitempty"`
}

type ProductVariation struct {
	ID           int                  `json:"id"`
	SKU          string               `json:"sku"`
	Price        float64              `json:"price"`
	Stock        int                  `json:"stock"`
	Discount     *int                 `json:"discount,omitempty"`
	Sort         int                  `json:"sort"`
	ShippingFrom string               `json:"shipping_from,omitempty"`
	Attributes   []VariationAttribute `json:"attributes,omitempty"`
}

// VariationAttribute is a name/value pair attached to a variation, e.g.
// {AttributeID: "WEIGHT_G", Value: "100"}. Attribute IDs are unique per
// variation.
type VariationAttribute struct {
	AttributeID string `json:"attribute_id"`
	Value       string `json:"value"`
}

// Variation returns the variation with the given id, or nil. A zero id means
// "no variation".
func (p *Product) Variation(id int) *ProductVariation {
	if id == 0 {
		return nil
	}
	for i := range p.Variations {
		if p.Variations[i].ID == id {
			return &p.Variations[i]
		}
	}
	return nil
}

/*
MySQL schema:

CREATE TABLE products (
	id INT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	slug VARCHAR(255) NOT NULL UNIQUE,
	price DOUBLE NOT NULL,
	stock INT NOT NULL,
	unlimited_stock BOOLEAN NOT NULL DEFAULT FALSE,
	has_variations BOOLEAN NOT NULL DEFAULT FALSE,
	weight VARCHAR(32),
	discount INT
);

CREATE TABLE product_variations (
	id INT AUTO_INCREMENT PRIMARY KEY,
	product_id INT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	sku VARCHAR(255) NOT NULL UNIQUE,
	price DOUBLE NOT NULL,
	stock INT NOT NULL,
	discount INT,
	sort INT NOT NULL DEFAULT 0,
	shipping_from VARCHAR(64)
);

CREATE TABLE variation_attributes (
	id INT AUTO_INCREMENT PRIMARY KEY,
	product_variation_id INT NOT NULL REFERENCES product_variations(id) ON DELETE CASCADE,
	attribute_id VARCHAR(64) NOT NULL,
	value VARCHAR(255) NOT NULL
);
*/
