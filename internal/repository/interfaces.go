package repository

import (
	"context"

	"github.com/google/uuid"

	"crm-service/internal/models"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	BulkCreate(ctx context.Context, customers []models.Customer) ([]models.Customer, []BulkError)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	GetAll(ctx context.Context) ([]models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	UpdateStock(ctx context.Context, id uuid.UUID, change int) error
	LowStock(ctx context.Context, threshold int) ([]models.Product, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order, productIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]models.Order, error)

	// SetProducts replaces the order's product set and recomputes
	// total_amount from the new set inside one transaction.
	SetProducts(ctx context.Context, orderID uuid.UUID, productIDs []uuid.UUID) error
}

// RestockRepository records the stock top-ups made by the low-stock job.
type RestockRepository interface {
	Create(ctx context.Context, event *models.RestockEvent) error
	GetByProductID(ctx context.Context, productID uuid.UUID) ([]models.RestockEvent, error)
}

// BulkError reports a rejected row in a bulk create without aborting the
// rest of the batch.
type BulkError struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}
