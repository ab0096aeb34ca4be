package repository

import (
	"context"
	"database/sql"

	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/entity"
)

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

var _ OrderRepository = (*MySQLOrderRepository)(nil)

func (r *MySQLOrderRepository) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	orderQuery := `
		INSERT INTO orders (order_ref, status, subtotal_amount, discount_amount, shipping_amount, total_amount,
			currency, payment_status, payment_method, shipping_method, notes, idempotent_key, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`
	res, err := tx.ExecContext(ctx, orderQuery,
		order.OrderRef, order.Status, order.SubtotalAmount, order.DiscountAmount, order.ShippingAmount,
		order.TotalAmount, order.Currency, order.PaymentStatus, order.PaymentMethod, order.ShippingMethod,
		order.Notes, nullString(order.IdempotentKey), order.CreatedAt)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	addressQuery := `
		INSERT INTO addresses (order_id, address_type, first_name, last_name, email, phone, street_address, city, state, country, zip_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i := range order.Addresses {
		a := &order.Addresses[i]
		res, err := tx.ExecContext(ctx, addressQuery, orderID, a.AddressType, a.FirstName, a.LastName,
			a.Email, a.Phone, a.StreetAddress, a.City, a.State, a.Country, a.ZipCode)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		addressID, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		a.ID = int(addressID)
		a.OrderID = int(orderID)
	}

	if len(order.Items) > 0 {
		// Batch insert the line items in a single statement.
		itemQuery := `
			INSERT INTO order_items (order_id, product_id, product_variation_id, quantity, unit_amount, discount_percentage, final_amount, attributes, created_at)
			VALUES `
		var values []interface{}
		for _, item := range order.Items {
			itemQuery += "(?, ?, ?, ?, ?, ?, ?, ?, ?),"
			values = append(values, orderID, item.ProductID, nullInt(item.ProductVariationID), item.Quantity,
				item.UnitAmount, item.DiscountPercentage, item.FinalAmount, item.Attributes, item.CreatedAt)
		}
		itemQuery = itemQuery[:len(itemQuery)-1]

		_, err = tx.ExecContext(ctx, itemQuery, values...)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	order.ID = int(orderID)
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	return order, nil
}

func (r *MySQLOrderRepository) GetOrderByID(ctx context.Context, id int) (*entity.Order, error) {
	orderQuery := `
		SELECT id, order_ref, status, subtotal_amount, discount_amount, shipping_amount, total_amount,
			currency, payment_status, payment_method, shipping_method, notes, created_at, completed_at
		FROM orders WHERE id = ?`

	order := &entity.Order{}
	var paymentMethod, shippingMethod, notes sql.NullString
	var completedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, orderQuery, id).Scan(&order.ID, &order.OrderRef, &order.Status,
		&order.SubtotalAmount, &order.DiscountAmount, &order.ShippingAmount, &order.TotalAmount,
		&order.Currency, &order.PaymentStatus, &paymentMethod, &shippingMethod, &notes,
		&order.CreatedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	order.PaymentMethod = paymentMethod.String
	order.ShippingMethod = shippingMethod.String
	order.Notes = notes.String
	if completedAt.Valid {
		order.CompletedAt = &completedAt.Time
	}

	addressQuery := `
		SELECT id, order_id, address_type, first_name, last_name, email, phone, street_address, city, state, country, zip_code
		FROM addresses WHERE order_id = ?`
	rows, err := r.db.QueryContext(ctx, addressQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		a := entity.Address{}
		err := rows.Scan(&a.ID, &a.OrderID, &a.AddressType, &a.FirstName, &a.LastName, &a.Email,
			&a.Phone, &a.StreetAddress, &a.City, &a.State, &a.Country, &a.ZipCode)
		if err != nil {
			return nil, err
		}
		order.Addresses = append(order.Addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemQuery := `
		SELECT id, order_id, product_id, product_variation_id, quantity, unit_amount, discount_percentage, final_amount, attributes, created_at
		FROM order_items WHERE order_id = ?`
	itemRows, err := r.db.QueryContext(ctx, itemQuery, id)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		item := entity.OrderItem{}
		var variationID sql.NullInt64
		err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &variationID, &item.Quantity,
			&item.UnitAmount, &item.DiscountPercentage, &item.FinalAmount, &item.Attributes, &item.CreatedAt)
		if err != nil {
			return nil, err
		}
		item.ProductVariationID = int(variationID.Int64)
		order.Items = append(order.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *MySQLOrderRepository) UpdateOrderStatus(ctx context.Context, id int, status string) error {
	query := `UPDATE orders SET status = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MySQLOrderRepository) UpdatePaymentStatus(ctx context.Context, id int, paymentStatus string) error {
	query := `UPDATE orders SET payment_status = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, paymentStatus, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type MySQLCatalogRepository struct {
	db *sql.DB
}

func NewMySQLCatalogRepository(db *sql.DB) *MySQLCatalogRepository {
	return &MySQLCatalogRepository{db: db}
}

var _ CatalogRepository = (*MySQLCatalogRepository)(nil)

func (r *MySQLCatalogRepository) GetProducts(ctx context.Context) ([]entity.Product, error) {
	query := `SELECT id, name, slug, price, stock, unlimited_stock, has_variations, weight, discount FROM products`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []entity.Product
	index := map[int]int{}
	for rows.Next() {
		p := entity.Product{}
		var weight sql.NullString
		var discount sql.NullInt64
		err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Price, &p.Stock, &p.UnlimitedStock, &p.HasVariations, &weight, &discount)
		if err != nil {
			return nil, err
		}
		p.Weight = weight.String
		if discount.Valid {
			d := int(discount.Int64)
			p.Discount = &d
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachVariations(ctx, products, index); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *MySQLCatalogRepository) GetProductByID(ctx context.Context, id int) (*entity.Product, error) {
	query := `SELECT id, name, slug, price, stock, unlimited_stock, has_variations, weight, discount FROM products WHERE id = ?`

	p := entity.Product{}
	var weight sql.NullString
	var discount sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Slug, &p.Price, &p.Stock,
		&p.UnlimitedStock, &p.HasVariations, &weight, &discount)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Weight = weight.String
	if discount.Valid {
		d := int(discount.Int64)
		p.Discount = &d
	}

	products := []entity.Product{p}
	if err := r.attachVariations(ctx, products, map[int]int{p.ID: 0}); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// attachVariations loads variations and their attributes for the given
// products in two queries and wires them onto the slice in place.
func (r *MySQLCatalogRepository) attachVariations(ctx context.Context, products []entity.Product, index map[int]int) error {
	if len(products) == 0 {
		return nil
	}

	query := `
		SELECT v.id, v.product_id, v.sku, v.price, v.stock, v.discount, v.sort, v.shipping_from
		FROM product_variations v
		ORDER BY v.product_id, v.sort`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	variationOwner := map[int]int{} // variation id -> product index
	for rows.Next() {
		v := entity.ProductVariation{}
		var productID int
		var discount sql.NullInt64
		var shippingFrom sql.NullString
		err := rows.Scan(&v.ID, &productID, &v.SKU, &v.Price, &v.Stock, &discount, &v.Sort, &shippingFrom)
		if err != nil {
			return err
		}
		if discount.Valid {
			d := int(discount.Int64)
			v.Discount = &d
		}
		v.ShippingFrom = shippingFrom.String
		i, ok := index[productID]
		if !ok {
			continue
		}
		variationOwner[v.ID] = i
		products[i].Variations = append(products[i].Variations, v)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	attrQuery := `SELECT product_variation_id, attribute_id, value FROM variation_attributes`
	attrRows, err := r.db.QueryContext(ctx, attrQuery)
	if err != nil {
		return err
	}
	defer attrRows.Close()
	for attrRows.Next() {
		var variationID int
		attr := entity.VariationAttribute{}
		if err := attrRows.Scan(&variationID, &attr.AttributeID, &attr.Value); err != nil {
			return err
		}
		i, ok := variationOwner[variationID]
		if !ok {
			continue
		}
		if v := products[i].Variation(variationID); v != nil {
			v.Attributes = append(v.Attributes, attr)
		}
	}
	return attrRows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
