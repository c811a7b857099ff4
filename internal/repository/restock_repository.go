package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"crm-service/internal/models"
)

type restockRepo struct {
	db *pgxpool.Pool
}

func NewRestockRepository(db *pgxpool.Pool) RestockRepository {
	return &restockRepo{db: db}
}

func (r *restockRepo) Create(ctx context.Context, event *models.RestockEvent) error {
	if event == nil {
		return fmt.Errorf("%w: event cannot be nil", ErrInvalidInput)
	}
	if event.ProductID == uuid.Nil {
		return fmt.Errorf("%w: product ID required", ErrInvalidInput)
	}
	if event.Change <= 0 {
		return fmt.Errorf("%w: restock change must be positive", ErrInvalidInput)
	}

	sql := `INSERT INTO restock_events (
		product_id,
		change,
		created_at
		) VALUES ($1, $2, $3)
		RETURNING id
	`

	event.CreatedAt = time.Now()

	err := r.db.QueryRow(ctx, sql,
		event.ProductID,
		event.Change,
		event.CreatedAt,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("failed to create restock event: %w", err)
	}
	return nil
}

func (r *restockRepo) GetByProductID(ctx context.Context, productID uuid.UUID) ([]models.RestockEvent, error) {
	sql := `SELECT
		id,
		product_id,
		change,
		created_at
		FROM restock_events
		WHERE product_id = $1
		ORDER BY created_at DESC
		`

	rows, err := r.db.Query(ctx, sql, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get restock events for product %s: %w", productID, err)
	}

	defer rows.Close()

	var events []models.RestockEvent

	for rows.Next() {
		var e models.RestockEvent

		err := rows.Scan(&e.ID,
			&e.ProductID,
			&e.Change,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan restock events: %w", err)
		}

		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return events, nil
}
