package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PhoneRE is the accepted phone format: "+" followed by up to 15 digits,
// or the dashed form 999-999-9999.
var PhoneRE = regexp.MustCompile(`^\+\d{1,15}$|^\d{3}-\d{3}-\d{4}$`)

type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name" validate:"required,min=2,max=255"`
	Email     string    `json:"email" validate:"required,email"`
	Phone     string    `json:"phone,omitempty" validate:"omitempty,crm_phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name" validate:"required,max=255"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock" validate:"gte=0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Order carries its customer and product set when loaded through the
// snapshot loader or GetByID; list queries that do not traverse the
// relationships leave Customer nil and Products empty.
type Order struct {
	OrderID     uuid.UUID       `json:"id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OrderDate   time.Time       `json:"order_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Customer *Customer `json:"customer,omitempty"`
	Products []Product `json:"products,omitempty"`
}

// RestockEvent is one stock top-up recorded by the low-stock job.
type RestockEvent struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Change    int       `json:"change"`
	CreatedAt time.Time `json:"created_at"`
}

// ComputeTotal sums the prices of the associated products. The stored
// total_amount is always this value, recomputed whenever the product set
// changes; it is never settable on its own.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range o.Products {
		total = total.Add(p.Price)
	}
	return total
}

// DistinctProductCount counts distinct products on the order. Orders with an
// empty product set count as zero.
func (o *Order) DistinctProductCount() int {
	seen := make(map[uuid.UUID]struct{}, len(o.Products))
	for _, p := range o.Products {
		seen[p.ID] = struct{}{}
	}
	return len(seen)
}
