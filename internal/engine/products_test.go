package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-service/internal/models"
)

func productEngine() *Engine {
	return New(&memSource{snap: Snapshot{Products: []models.Product{
		newProduct("Budget Mouse", 19.99, 100),
		newProduct("Mechanical Keyboard", 89.50, 8),
		newProduct("Gaming Laptop", 1299.00, 3),
		newProduct("Monitor Stand", 49.99, 0),
		newProduct("Webcam Pro", 200.00, 25),
		newProduct("Headset", 499.99, 12),
	}}})
}

func queryProductNames(t *testing.T, e *Engine, criteria map[string]any) []string {
	t.Helper()
	got, err := e.Products(criteria).All(context.Background())
	require.NoError(t, err)
	return productNames(got)
}

func TestProductsLowStock(t *testing.T) {
	e := productEngine()

	// Default threshold is 10: stock < 10.
	assert.Equal(t, []string{"Gaming Laptop", "Mechanical Keyboard", "Monitor Stand"},
		queryProductNames(t, e, map[string]any{"low_stock": nil}))

	// Explicit threshold, strict comparison.
	assert.Equal(t, []string{"Gaming Laptop", "Monitor Stand"},
		queryProductNames(t, e, map[string]any{"low_stock": 5}))
	assert.Empty(t, queryProductNames(t, e, map[string]any{"low_stock": 0}))

	// Non-numeric threshold selects nothing, not everything.
	assert.Empty(t, queryProductNames(t, e, map[string]any{"low_stock": "abc"}))
}

func TestProductsStockAvailability(t *testing.T) {
	e := productEngine()

	assert.Equal(t, []string{"Monitor Stand"},
		queryProductNames(t, e, map[string]any{"out_of_stock": true}))
	assert.Len(t, queryProductNames(t, e, map[string]any{"out_of_stock": false}), 5)
	assert.Len(t, queryProductNames(t, e, map[string]any{"in_stock": true}), 5)
	assert.Equal(t, []string{"Monitor Stand"},
		queryProductNames(t, e, map[string]any{"in_stock": "false"}))
}

func TestProductsPriceCategoryBuckets(t *testing.T) {
	e := productEngine()

	tests := []struct {
		category string
		want     []string
	}{
		{"budget", []string{"Budget Mouse", "Monitor Stand"}},
		{"mid-range", []string{"Mechanical Keyboard"}},
		{"premium", []string{"Headset", "Webcam Pro"}},
		{"luxury", []string{"Gaming Laptop"}},
	}
	for _, tc := range tests {
		t.Run(tc.category, func(t *testing.T) {
			assert.Equal(t, tc.want, queryProductNames(t, e, map[string]any{"price_category": tc.category}))
		})
	}

	// An unknown category passes everything through.
	assert.Len(t, queryProductNames(t, e, map[string]any{"price_category": "mythic"}), 6)
}

func TestProductsPriceCategoryPartitions(t *testing.T) {
	e := productEngine()
	ctx := context.Background()

	// The four buckets partition all products with non-negative prices:
	// no overlap, no gaps.
	seen := map[string]int{}
	for _, category := range []string{"budget", "mid-range", "premium", "luxury"} {
		got, err := e.Products(map[string]any{"price_category": category}).All(ctx)
		require.NoError(t, err)
		for _, p := range got {
			seen[p.Name]++
		}
	}
	assert.Len(t, seen, 6)
	for name, count := range seen {
		assert.Equal(t, 1, count, "product %s in %d buckets", name, count)
	}
}

func TestProductsPriceBounds(t *testing.T) {
	e := productEngine()

	assert.Equal(t, []string{"Gaming Laptop", "Headset", "Webcam Pro"},
		queryProductNames(t, e, map[string]any{"price_gte": 200}))
	assert.Equal(t, []string{"Budget Mouse", "Monitor Stand"},
		queryProductNames(t, e, map[string]any{"price_lte": "49.99"}))
	assert.Equal(t, []string{"Mechanical Keyboard", "Webcam Pro"},
		queryProductNames(t, e, map[string]any{"price_range": "50,200"}))

	// One-sided bounds combine independently.
	assert.Equal(t, []string{"Headset", "Webcam Pro"},
		queryProductNames(t, e, map[string]any{"price_gte": 200, "price_lte": 500}))

	// The boundary itself: exactly 200.00 sits in the premium bucket and
	// satisfies gte 200.
	assert.Contains(t, queryProductNames(t, e, map[string]any{"price_gte": "200"}), "Webcam Pro")
}

func TestProductsStockBounds(t *testing.T) {
	e := productEngine()

	assert.Equal(t, []string{"Monitor Stand"},
		queryProductNames(t, e, map[string]any{"stock": 0}))
	assert.Equal(t, []string{"Budget Mouse", "Headset", "Webcam Pro"},
		queryProductNames(t, e, map[string]any{"stock_gte": 12}))
	assert.Equal(t, []string{"Gaming Laptop", "Mechanical Keyboard", "Monitor Stand"},
		queryProductNames(t, e, map[string]any{"stock_range": "0,10"}))
	assert.Empty(t, queryProductNames(t, e, map[string]any{"stock_gte": "many"}))
}

func TestProductsSearch(t *testing.T) {
	e := productEngine()

	assert.Equal(t, []string{"Gaming Laptop"},
		queryProductNames(t, e, map[string]any{"search": "laptop"}))
	assert.Len(t, queryProductNames(t, e, map[string]any{"search": "  "}), 6)
}

func TestProductsOrdering(t *testing.T) {
	e := productEngine()

	byPrice := queryProductNames(t, e, map[string]any{"ordering": "price"})
	assert.Equal(t, []string{"Budget Mouse", "Monitor Stand", "Mechanical Keyboard", "Webcam Pro", "Headset", "Gaming Laptop"}, byPrice)

	byStockDesc := queryProductNames(t, e, map[string]any{"ordering": "-stock"})
	assert.Equal(t, "Budget Mouse", byStockDesc[0])
	assert.Equal(t, "Monitor Stand", byStockDesc[len(byStockDesc)-1])

	// Unrecognized ordering keys keep the default name-ascending order.
	assert.Equal(t, []string{"Budget Mouse", "Gaming Laptop", "Headset", "Mechanical Keyboard", "Monitor Stand", "Webcam Pro"},
		queryProductNames(t, e, map[string]any{"ordering": "popularity"}))
}
