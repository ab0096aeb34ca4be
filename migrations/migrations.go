package migrations

import (
	"database/sql"
	"time"
)

var tables = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(255) NOT NULL UNIQUE,
		price DOUBLE NOT NULL,
		stock INT NOT NULL DEFAULT 0,
		unlimited_stock BOOLEAN NOT NULL DEFAULT FALSE,
		has_variations BOOLEAN NOT NULL DEFAULT FALSE,
		weight VARCHAR(32),
		discount INT
	);`,
	`CREATE TABLE IF NOT EXISTS product_variations (
		id INT AUTO_INCREMENT PRIMARY KEY,
		product_id INT NOT NULL,
		sku VARCHAR(255) NOT NULL UNIQUE,
		price DOUBLE NOT NULL,
		stock INT NOT NULL DEFAULT 0,
		discount INT,
		sort INT NOT NULL DEFAULT 0,
		shipping_from VARCHAR(64),
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS variation_attributes (
		id INT AUTO_INCREMENT PRIMARY KEY,
		product_variation_id INT NOT NULL,
		attribute_id VARCHAR(64) NOT NULL,
		value VARCHAR(255) NOT NULL,
		FOREIGN KEY (product_variation_id) REFERENCES product_variations(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS orders (
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
	);`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id INT AUTO_INCREMENT PRIMARY KEY,
		order_id INT NOT NULL,
		address_type VARCHAR(10) NOT NULL,
		first_name VARCHAR(255) NOT NULL,
		last_name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(64),
		street_address VARCHAR(255),
		city VARCHAR(128),
		state VARCHAR(128),
		country VARCHAR(128),
		zip_code VARCHAR(32),
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id INT AUTO_INCREMENT PRIMARY KEY,
		order_id INT NOT NULL,
		product_id INT NOT NULL,
		product_variation_id INT NULL,
		quantity INT NOT NULL,
		unit_amount DOUBLE NOT NULL,
		discount_percentage INT NOT NULL DEFAULT 0,
		final_amount DOUBLE NOT NULL,
		attributes TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	);`,
}

// AutoMigrate creates every table the service needs, in dependency order.
// Each statement is retried, the database may still be warming up.
func AutoMigrate(db *sql.DB, retries int) error {
	for _, query := range tables {
		var err error
		for i := 0; i <= retries; i++ {
			_, err = db.Exec(query)
			if err == nil {
				break
			}
			time.Sleep(1 * time.Second)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
