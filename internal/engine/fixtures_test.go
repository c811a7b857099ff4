package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"crm-service/internal/models"
)

// memSource serves a fixed snapshot and counts materializations.
type memSource struct {
	snap  Snapshot
	err   error
	calls int
}

func (m *memSource) Snapshot(ctx context.Context) (*Snapshot, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	// Hand out copies of the slices so callers cannot share backing arrays.
	snap := Snapshot{
		Customers: append([]models.Customer(nil), m.snap.Customers...),
		Products:  append([]models.Product(nil), m.snap.Products...),
		Orders:    append([]models.Order(nil), m.snap.Orders...),
	}
	return &snap, nil
}

var fixtureEpoch = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newCustomer(name, email, phone string) models.Customer {
	return models.Customer{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: fixtureEpoch,
		UpdatedAt: fixtureEpoch,
	}
}

func newProduct(name string, price float64, stock int) models.Product {
	return models.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.NewFromFloat(price),
		Stock:     stock,
		CreatedAt: fixtureEpoch,
		UpdatedAt: fixtureEpoch,
	}
}

func newOrder(c models.Customer, date time.Time, products ...models.Product) models.Order {
	o := models.Order{
		OrderID:    uuid.New(),
		CustomerID: c.ID,
		OrderDate:  date,
		CreatedAt:  date,
		UpdatedAt:  date,
		Customer:   &c,
		Products:   products,
	}
	o.TotalAmount = o.ComputeTotal()
	return o
}

func customerNames(customers []models.Customer) []string {
	names := make([]string, 0, len(customers))
	for _, c := range customers {
		names = append(names, c.Name)
	}
	return names
}

func productNames(products []models.Product) []string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return names
}

func orderIDs(orders []models.Order) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.OrderID)
	}
	return ids
}
