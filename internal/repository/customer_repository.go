package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"crm-service/internal/models"
)

type customerRepo struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) CustomerRepository {
	return &customerRepo{db: db}
}

func validateCustomer(c *models.Customer) error {
	if err := validate.Struct(c); err != nil {
		var validationErr validator.ValidationErrors
		if errors.As(err, &validationErr) {
			switch validationErr[0].Field() {
			case "Email":
				return fmt.Errorf("%w: invalid email format", ErrInvalidInput)
			case "Phone":
				return fmt.Errorf("%w: phone must be +999999999 (up to 15 digits) or 999-999-9999", ErrInvalidInput)
			case "Name":
				return fmt.Errorf("%w: name must be 2-255 characters", ErrInvalidInput)
			}
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func (r *customerRepo) Create(ctx context.Context, c *models.Customer) error {
	if err := validateCustomer(c); err != nil {
		return err
	}

	sql := `
		INSERT INTO customers (
			name,
			email,
			phone,
			created_at,
			updated_at
	) VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	err := r.db.QueryRow(ctx, sql,
		c.Name,
		c.Email,
		nullIfEmpty(c.Phone),
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return fmt.Errorf("%w: email already exists", ErrDuplicate)
			}
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		}
		return fmt.Errorf("create customer: %w", err)
	}

	return nil
}

// BulkCreate inserts customers one by one so a rejected row does not abort
// the batch; rejected rows come back as BulkErrors keyed by input index.
func (r *customerRepo) BulkCreate(ctx context.Context, customers []models.Customer) ([]models.Customer, []BulkError) {
	var created []models.Customer
	var bulkErrs []BulkError

	for i := range customers {
		c := customers[i]
		if err := r.Create(ctx, &c); err != nil {
			field := "general"
			switch {
			case errors.Is(err, ErrDuplicate):
				field = "email"
			case errors.Is(err, ErrInvalidInput):
				field = "input"
			}
			bulkErrs = append(bulkErrs, BulkError{Index: i, Field: field, Message: err.Error()})
			continue
		}
		created = append(created, c)
	}

	return created, bulkErrs
}

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *customerRepo) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email cannot be empty", ErrInvalidInput)
	}
	return r.getOne(ctx, "lower(email) = lower($1)", email)
}

func (r *customerRepo) getOne(ctx context.Context, where string, arg any) (*models.Customer, error) {
	sql := `
		SELECT
		id,
		name,
		email,
		COALESCE(phone, ''),
		created_at,
		updated_at
		FROM customers WHERE ` + where

	var customer models.Customer

	err := r.db.QueryRow(ctx, sql, arg).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.Phone,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	return &customer, nil
}

func (r *customerRepo) GetAll(ctx context.Context) ([]models.Customer, error) {
	sql := `
	SELECT
	id,
	name,
	email,
	COALESCE(phone, ''),
	created_at,
	updated_at
	FROM customers
	ORDER BY name`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to get all customers: %w", err)
	}

	defer rows.Close()

	var customers []models.Customer

	for rows.Next() {
		var c models.Customer

		err := rows.Scan(&c.ID,
			&c.Name,
			&c.Email,
			&c.Phone,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customers: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return customers, nil
}

func (r *customerRepo) Update(ctx context.Context, c *models.Customer) error {
	if err := validateCustomer(c); err != nil {
		return err
	}

	sql := `UPDATE customers
		SET name = $1, email = $2, phone = $3, updated_at = $4
		WHERE id = $5`

	c.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx, sql, c.Name, c.Email, nullIfEmpty(c.Phone), c.UpdatedAt, c.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: email already exists", ErrDuplicate)
		}
		return fmt.Errorf("update customer %s: %w", c.ID, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the customer; owned orders go with it via the cascading
// foreign key.
func (r *customerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
