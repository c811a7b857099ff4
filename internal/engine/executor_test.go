package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-service/internal/models"
)

func TestQueryRestartsFromSource(t *testing.T) {
	src := &memSource{snap: Snapshot{Customers: []models.Customer{
		newCustomer("Alice", "alice@example.com", ""),
	}}}
	e := New(src)

	q := e.Customers(nil)
	ctx := context.Background()

	first, err := q.All(ctx)
	require.NoError(t, err)

	// Mutate the store between materializations: the second run sees the
	// new state because every call re-reads the source.
	src.snap.Customers = append(src.snap.Customers, newCustomer("Bob", "bob@example.com", ""))

	second, err := q.All(ctx)
	require.NoError(t, err)

	assert.Len(t, first, 1)
	assert.Len(t, second, 2)
	assert.Equal(t, 2, src.calls)
}

func TestQueryIndependentCallsShareNoState(t *testing.T) {
	src := &memSource{snap: Snapshot{Customers: []models.Customer{
		newCustomer("Alice", "alice@example.com", ""),
		newCustomer("Bob", "bob@example.com", ""),
	}}}
	e := New(src)
	ctx := context.Background()

	a, err := e.Customers(nil).All(ctx)
	require.NoError(t, err)

	// Mutating one result must not leak into the other.
	a[0].Name = "mutated"

	b, err := e.Customers(nil).All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice", b[0].Name)
}

func TestQueryStorageErrorsPropagate(t *testing.T) {
	want := errors.New("connection refused")
	e := New(&memSource{err: want})

	_, err := e.Customers(nil).All(context.Background())
	assert.ErrorIs(t, err, want)

	err = e.Orders(nil).Each(context.Background(), func(models.Order) bool { return true })
	assert.ErrorIs(t, err, want)
}

func TestQueryEachStopsEarly(t *testing.T) {
	src := &memSource{snap: Snapshot{Customers: []models.Customer{
		newCustomer("Alice", "a@example.com", ""),
		newCustomer("Bob", "b@example.com", ""),
		newCustomer("Carol", "c@example.com", ""),
	}}}
	e := New(src)

	var seen int
	err := e.Customers(nil).Each(context.Background(), func(models.Customer) bool {
		seen++
		return seen < 2
	})
	require.NoError(t, err)
	assert.Equal(t, 2, seen)
}

func TestQueryCount(t *testing.T) {
	e := productEngine()

	n, err := e.Products(map[string]any{"in_stock": true}).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestDedupByIDKeepsFirstOccurrence(t *testing.T) {
	a := newCustomer("A", "a@example.com", "")
	b := newCustomer("B", "b@example.com", "")

	out := dedupByID([]models.Customer{a, b, a, b, a}, func(c models.Customer) uuid.UUID { return c.ID })
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Name)
	assert.Equal(t, "B", out[1].Name)
}
