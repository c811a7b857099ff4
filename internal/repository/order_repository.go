package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"crm-service/internal/models"
)

type orderRepo struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &orderRepo{db: db}
}

// Create inserts the order and its product associations in one transaction.
// The customer must exist, the product set must be non-empty, and every
// product ID must resolve; total_amount is computed from the resolved
// product prices, never taken from the caller.
func (r *orderRepo) Create(ctx context.Context, order *models.Order, productIDs []uuid.UUID) error {
	if order == nil {
		return fmt.Errorf("%w: order cannot be nil", ErrInvalidInput)
	}
	if order.CustomerID == uuid.Nil {
		return fmt.Errorf("%w: customer ID required", ErrInvalidInput)
	}
	if len(productIDs) == 0 {
		return fmt.Errorf("%w: at least one product must be selected", ErrInvalidInput)
	}

	// A repeated ID is one association; collapsing here keeps the total in
	// step with the join rows.
	productIDs = distinctIDs(productIDs)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)`, order.CustomerID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check customer: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: customer does not exist", ErrNotFound)
	}

	products, err := resolveProducts(ctx, tx, productIDs)
	if err != nil {
		return err
	}

	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}
	order.TotalAmount = total
	order.Products = products

	now := time.Now()
	if order.OrderDate.IsZero() {
		order.OrderDate = now
	}
	order.CreatedAt = now
	order.UpdatedAt = now

	insert := `INSERT INTO orders (
	customer_id,
	total_amount,
	order_date,
	created_at,
	updated_at
	) VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`

	err = tx.QueryRow(ctx, insert,
		order.CustomerID,
		order.TotalAmount,
		order.OrderDate,
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&order.OrderID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for _, id := range productIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_products (order_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			order.OrderID, id,
		)
		if err != nil {
			return fmt.Errorf("failed to associate product %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// distinctIDs drops repeated identifiers, keeping first occurrences in order.
func distinctIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// resolveProducts loads every requested product, reporting the IDs that did
// not resolve so the caller can surface them.
func resolveProducts(ctx context.Context, tx pgx.Tx, productIDs []uuid.UUID) ([]models.Product, error) {
	rows, err := tx.Query(ctx, `
	SELECT
	id,
	name,
	price,
	stock,
	created_at,
	updated_at
	FROM products WHERE id = ANY($1)
	`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	defer rows.Close()

	found := make(map[uuid.UUID]models.Product, len(productIDs))
	for rows.Next() {
		var p models.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		found[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	var missing []string
	products := make([]models.Product, 0, len(productIDs))
	for _, id := range productIDs {
		p, ok := found[id]
		if !ok {
			missing = append(missing, id.String())
			continue
		}
		products = append(products, p)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: invalid product IDs: %s", ErrInvalidInput, strings.Join(missing, ", "))
	}

	return products, nil
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	sql := `
	SELECT
	id,
	customer_id,
	total_amount,
	order_date,
	created_at,
	updated_at
	FROM orders
	WHERE id = $1
	`

	var order models.Order

	err := r.db.QueryRow(ctx, sql, id).Scan(
		&order.OrderID,
		&order.CustomerID,
		&order.TotalAmount,
		&order.OrderDate,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}

	products, err := r.orderProducts(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Products = products

	return &order, nil
}

func (r *orderRepo) orderProducts(ctx context.Context, orderID uuid.UUID) ([]models.Product, error) {
	rows, err := r.db.Query(ctx, `
	SELECT
	p.id,
	p.name,
	p.price,
	p.stock,
	p.created_at,
	p.updated_at
	FROM products p
	JOIN order_products op ON op.product_id = p.id
	WHERE op.order_id = $1
	ORDER BY p.name
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order products: %w", err)
	}

	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return products, nil
}

func (r *orderRepo) GetAll(ctx context.Context) ([]models.Order, error) {
	return r.queryMany(ctx, `
	SELECT
	id,
	customer_id,
	total_amount,
	order_date,
	created_at,
	updated_at
	FROM orders
	ORDER BY order_date DESC`)
}

func (r *orderRepo) GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	return r.queryMany(ctx, `
	SELECT
	id,
	customer_id,
	total_amount,
	order_date,
	created_at,
	updated_at
	FROM orders
	WHERE customer_id = $1
	ORDER BY order_date DESC`, customerID)
}

func (r *orderRepo) queryMany(ctx context.Context, sql string, args ...any) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	defer rows.Close()

	var orders []models.Order

	for rows.Next() {
		var o models.Order

		err := rows.Scan(&o.OrderID,
			&o.CustomerID,
			&o.TotalAmount,
			&o.OrderDate,
			&o.CreatedAt,
			&o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan orders: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return orders, nil
}

// SetProducts replaces the order's product set and recomputes total_amount
// from the new set, in one transaction. The set must stay non-empty.
func (r *orderRepo) SetProducts(ctx context.Context, orderID uuid.UUID, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return fmt.Errorf("%w: an order must keep at least one product", ErrInvalidInput)
	}

	productIDs = distinctIDs(productIDs)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	products, err := resolveProducts(ctx, tx, productIDs)
	if err != nil {
		return err
	}

	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}

	// Updating the total first doubles as the existence check, so a missing
	// order surfaces as ErrNotFound instead of a join-table FK failure.
	result, err := tx.Exec(ctx,
		`UPDATE orders SET total_amount = $1, updated_at = $2 WHERE id = $3`,
		total, time.Now(), orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order total: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_products WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("failed to clear order products: %w", err)
	}
	for _, id := range productIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_products (order_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			orderID, id,
		)
		if err != nil {
			return fmt.Errorf("failed to associate product %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
