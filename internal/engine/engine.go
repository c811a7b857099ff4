// Package engine compiles flat criteria maps into composed predicates over
// the customer/product/order graph and executes them against point-in-time
// snapshots. It is read-only and stateless per call: concurrent queries over
// the same source never interfere.
package engine

import (
	"context"

	"github.com/google/uuid"

	"crm-service/internal/models"
)

// OrderingKey is the criteria key consumed by the ordering resolver instead
// of the filter registry.
const OrderingKey = "ordering"

// Snapshot is one consistent view of the entity graph. Orders arrive with
// their customer and product set attached so predicates can traverse the
// relations in memory.
type Snapshot struct {
	Customers []models.Customer
	Products  []models.Product
	Orders    []models.Order
}

// SnapshotSource loads a fresh snapshot. Implementations that read from a
// mutable store must produce each snapshot under one consistent read.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

type Engine struct {
	src SnapshotSource
}

func New(src SnapshotSource) *Engine {
	return &Engine{src: src}
}

// Customers builds a query over customers from a criteria map. Unrecognized
// keys are ignored; the "ordering" key selects the sort.
func (e *Engine) Customers(criteria map[string]any) *Query[models.Customer] {
	source := func(ctx context.Context) ([]models.Customer, error) {
		snap, err := e.src.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return snap.Customers, nil
	}
	q := NewQuery(source, func(c models.Customer) uuid.UUID { return c.ID })
	return q.Filter(Compile(CustomerFilters, criteria)).
		OrderBy(CustomerOrdering, sortKey(criteria))
}

func (e *Engine) Products(criteria map[string]any) *Query[models.Product] {
	source := func(ctx context.Context) ([]models.Product, error) {
		snap, err := e.src.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return snap.Products, nil
	}
	q := NewQuery(source, func(p models.Product) uuid.UUID { return p.ID })
	return q.Filter(Compile(ProductFilters, criteria)).
		OrderBy(ProductOrdering, sortKey(criteria))
}

func (e *Engine) Orders(criteria map[string]any) *Query[models.Order] {
	source := func(ctx context.Context) ([]models.Order, error) {
		snap, err := e.src.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return snap.Orders, nil
	}
	q := NewQuery(source, func(o models.Order) uuid.UUID { return o.OrderID })
	return q.Filter(Compile(OrderFilters, criteria)).
		OrderBy(OrderOrdering, sortKey(criteria))
}

func sortKey(criteria map[string]any) string {
	if s, ok := criteria[OrderingKey].(string); ok {
		return s
	}
	return ""
}
