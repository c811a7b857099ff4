package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crm-service/internal/engine"
	"crm-service/internal/models"
)

// snapshotLoader feeds the filter engine. Every load runs inside one
// repeatable-read transaction so the aggregate pre-pass and the predicate
// evaluation see the same state even while writers are active.
type snapshotLoader struct {
	db *pgxpool.Pool
}

func NewSnapshotLoader(db *pgxpool.Pool) engine.SnapshotSource {
	return &snapshotLoader{db: db}
}

func (l *snapshotLoader) Snapshot(ctx context.Context) (*engine.Snapshot, error) {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	snap := &engine.Snapshot{}

	if snap.Customers, err = loadCustomers(ctx, tx); err != nil {
		return nil, err
	}
	if snap.Products, err = loadProducts(ctx, tx); err != nil {
		return nil, err
	}
	if snap.Orders, err = loadOrders(ctx, tx, snap.Customers, snap.Products); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot transaction: %w", err)
	}

	return snap, nil
}

func loadCustomers(ctx context.Context, tx pgx.Tx) ([]models.Customer, error) {
	rows, err := tx.Query(ctx, `
	SELECT
	id,
	name,
	email,
	COALESCE(phone, ''),
	created_at,
	updated_at
	FROM customers
	ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}

	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return customers, nil
}

func loadProducts(ctx context.Context, tx pgx.Tx) ([]models.Product, error) {
	rows, err := tx.Query(ctx, `
	SELECT
	id,
	name,
	price,
	stock,
	created_at,
	updated_at
	FROM products
	ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return products, nil
}

// loadOrders attaches each order's customer and product set from the
// already-loaded snapshot slices, so the three reads plus the join read
// stay within the same transaction.
func loadOrders(ctx context.Context, tx pgx.Tx, customers []models.Customer, products []models.Product) ([]models.Order, error) {
	rows, err := tx.Query(ctx, `
	SELECT
	id,
	customer_id,
	total_amount,
	order_date,
	created_at,
	updated_at
	FROM orders
	ORDER BY order_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		err := rows.Scan(&o.OrderID, &o.CustomerID, &o.TotalAmount, &o.OrderDate, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	joins, err := tx.Query(ctx, `SELECT order_id, product_id FROM order_products`)
	if err != nil {
		return nil, fmt.Errorf("failed to load order products: %w", err)
	}

	defer joins.Close()

	productsByID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}
	orderIndex := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		orderIndex[o.OrderID] = i
	}

	for joins.Next() {
		var orderID, productID uuid.UUID
		if err := joins.Scan(&orderID, &productID); err != nil {
			return nil, fmt.Errorf("failed to scan order product: %w", err)
		}
		i, ok := orderIndex[orderID]
		if !ok {
			continue
		}
		if p, ok := productsByID[productID]; ok {
			orders[i].Products = append(orders[i].Products, p)
		}
	}
	if err := joins.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	customersByID := make(map[uuid.UUID]*models.Customer, len(customers))
	for i := range customers {
		customersByID[customers[i].ID] = &customers[i]
	}
	for i := range orders {
		orders[i].Customer = customersByID[orders[i].CustomerID]
	}

	return orders, nil
}
