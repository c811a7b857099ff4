package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crm-service/internal/models"
)

type productRepo struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &productRepo{db: db}
}

func validateProduct(p *models.Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name required", ErrInvalidInput)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("%w: product price must be positive", ErrInvalidInput)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: product stock cannot be negative", ErrInvalidInput)
	}
	return nil
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	sql := `
		INSERT INTO products (
			name,
			price,
			stock,
			created_at,
			updated_at
	) VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	err := r.db.QueryRow(ctx, sql,
		p.Name,
		p.Price,
		p.Stock,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	sql := `
		SELECT
		id,
		name,
		price,
		stock,
		created_at,
		updated_at
		FROM products WHERE id = $1
	`

	var p models.Product

	err := r.db.QueryRow(ctx, sql, id).Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}

	return &p, nil
}

func (r *productRepo) GetAll(ctx context.Context) ([]models.Product, error) {
	sql := `
	SELECT
	id,
	name,
	price,
	stock,
	created_at,
	updated_at
	FROM products
	ORDER BY name`

	return r.queryMany(ctx, sql)
}

// LowStock returns products whose stock is strictly below the threshold.
func (r *productRepo) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	sql := `
	SELECT
	id,
	name,
	price,
	stock,
	created_at,
	updated_at
	FROM products
	WHERE stock < $1
	ORDER BY name`

	return r.queryMany(ctx, sql, threshold)
}

func (r *productRepo) queryMany(ctx context.Context, sql string, args ...any) ([]models.Product, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	defer rows.Close()

	var products []models.Product

	for rows.Next() {
		var p models.Product

		err := rows.Scan(&p.ID,
			&p.Name,
			&p.Price,
			&p.Stock,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return products, nil
}

func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	sql := `UPDATE products
		SET name = $1, price = $2, stock = $3, updated_at = $4
		WHERE id = $5`

	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx, sql, p.Name, p.Price, p.Stock, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update product %s: %w", p.ID, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateStock adjusts stock by change, refusing adjustments that would take
// it negative.
func (r *productRepo) UpdateStock(ctx context.Context, id uuid.UUID, change int) error {
	sql := `UPDATE products
		SET stock = stock + $1, updated_at = $2
		WHERE id = $3 AND stock + $1 >= 0`

	result, err := r.db.Exec(ctx, sql, change, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update stock for product %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		// Either the product is missing or the adjustment would go negative.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: stock cannot go negative", ErrInvalidInput)
	}

	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
