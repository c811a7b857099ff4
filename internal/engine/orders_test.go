package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-service/internal/models"
)

// orderFixture builds the fixture graph the order tests share:
//
//	John Doe: order A (laptop + mouse), order B (mouse)
//	Jane Roe: order C (John's Laptop product), order D (no products)
type orderFixture struct {
	john, jane             models.Customer
	laptop, mouse, johnsPC models.Product
	a, b, c, d             models.Order
}

func newOrderFixture() (*orderFixture, *Engine) {
	f := &orderFixture{
		john:    newCustomer("John Doe", "john@gmail.com", "+1234567890"),
		jane:    newCustomer("Jane Roe", "jane@example.org", ""),
		laptop:  newProduct("Gaming Laptop", 1299.00, 3),
		mouse:   newProduct("Budget Mouse", 19.99, 100),
		johnsPC: newProduct("John's Laptop", 650.00, 5),
	}
	f.a = newOrder(f.john, fixtureEpoch.AddDate(0, -2, 0), f.laptop, f.mouse)
	f.b = newOrder(f.john, fixtureEpoch.AddDate(0, -1, 0), f.mouse)
	f.c = newOrder(f.jane, fixtureEpoch, f.johnsPC)
	f.d = newOrder(f.jane, fixtureEpoch.AddDate(0, 0, 1))

	e := New(&memSource{snap: Snapshot{
		Customers: []models.Customer{f.john, f.jane},
		Products:  []models.Product{f.laptop, f.mouse, f.johnsPC},
		Orders:    []models.Order{f.a, f.b, f.c, f.d},
	}})
	return f, e
}

func queryOrders(t *testing.T, e *Engine, criteria map[string]any) []models.Order {
	t.Helper()
	got, err := e.Orders(criteria).All(context.Background())
	require.NoError(t, err)
	return got
}

func TestOrdersDefaultOrderIsNewestFirst(t *testing.T) {
	f, e := newOrderFixture()

	got := queryOrders(t, e, nil)
	assert.Equal(t, []uuid.UUID{f.d.OrderID, f.c.OrderID, f.b.OrderID, f.a.OrderID}, orderIDs(got))
}

func TestOrdersContainsProductByID(t *testing.T) {
	f, e := newOrderFixture()

	got := queryOrders(t, e, map[string]any{"contains_product": f.mouse.ID.String()})
	assert.Equal(t, []uuid.UUID{f.b.OrderID, f.a.OrderID}, orderIDs(got))
}

func TestOrdersContainsProductNameFallback(t *testing.T) {
	f, e := newOrderFixture()

	// Not a parseable identifier, so it matches product names instead.
	got := queryOrders(t, e, map[string]any{"contains_product": "laptop"})
	assert.Equal(t, []uuid.UUID{f.c.OrderID, f.a.OrderID}, orderIDs(got))
}

func TestOrdersProductIDs(t *testing.T) {
	f, e := newOrderFixture()

	value := f.laptop.ID.String() + "," + f.johnsPC.ID.String()
	got := queryOrders(t, e, map[string]any{"product_ids": value})
	assert.Equal(t, []uuid.UUID{f.c.OrderID, f.a.OrderID}, orderIDs(got))

	// Invalid tokens are skipped silently.
	got = queryOrders(t, e, map[string]any{"product_ids": "bad-1," + f.mouse.ID.String()})
	assert.Equal(t, []uuid.UUID{f.b.OrderID, f.a.OrderID}, orderIDs(got))

	// Zero valid identifiers selects the empty set, not the unfiltered set.
	assert.Empty(t, queryOrders(t, e, map[string]any{"product_ids": "bad-1,bad-2"}))
}

func TestOrdersMinProducts(t *testing.T) {
	f, e := newOrderFixture()

	got := queryOrders(t, e, map[string]any{"min_products": 2})
	assert.Equal(t, []uuid.UUID{f.a.OrderID}, orderIDs(got))

	got = queryOrders(t, e, map[string]any{"min_products": 1})
	assert.Len(t, got, 3)

	// Orders with an empty product set count as zero, not as an error.
	got = queryOrders(t, e, map[string]any{"min_products": 0})
	assert.Len(t, got, 4)

	assert.Empty(t, queryOrders(t, e, map[string]any{"min_products": "two"}))
}

func TestOrdersCustomerRelationFilters(t *testing.T) {
	f, e := newOrderFixture()

	got := queryOrders(t, e, map[string]any{"customer_name": "jane"})
	assert.Equal(t, []uuid.UUID{f.d.OrderID, f.c.OrderID}, orderIDs(got))

	got = queryOrders(t, e, map[string]any{"customer_email": "gmail"})
	assert.Equal(t, []uuid.UUID{f.b.OrderID, f.a.OrderID}, orderIDs(got))

	got = queryOrders(t, e, map[string]any{"customer_id": f.jane.ID.String()})
	assert.Len(t, got, 2)
}

func TestOrdersSearchAcrossRelationsDeduplicates(t *testing.T) {
	f, e := newOrderFixture()

	// "john" hits order A and B via the customer name, and order C via the
	// product "John's Laptop" owned by a different customer. Order A also
	// matches on both customer name and email but must appear once.
	got := queryOrders(t, e, map[string]any{"search": "john"})
	assert.Equal(t, []uuid.UUID{f.c.OrderID, f.b.OrderID, f.a.OrderID}, orderIDs(got))
}

func TestOrdersHighValue(t *testing.T) {
	f, e := newOrderFixture()

	// A totals 1318.99, C totals 650; B (19.99) and D (0) are not high value.
	got := queryOrders(t, e, map[string]any{"high_value": true})
	assert.Equal(t, []uuid.UUID{f.c.OrderID, f.a.OrderID}, orderIDs(got))

	got = queryOrders(t, e, map[string]any{"high_value": false})
	assert.Equal(t, []uuid.UUID{f.d.OrderID, f.b.OrderID}, orderIDs(got))
}

func TestOrdersRecentWindow(t *testing.T) {
	john := newCustomer("John Doe", "john@gmail.com", "")
	mouse := newProduct("Budget Mouse", 19.99, 100)
	old := newOrder(john, time.Now().AddDate(0, 0, -45), mouse)
	fresh := newOrder(john, time.Now().AddDate(0, 0, -5), mouse)
	e := New(&memSource{snap: Snapshot{Orders: []models.Order{old, fresh}}})

	got := queryOrders(t, e, map[string]any{"recent": true})
	assert.Equal(t, []uuid.UUID{fresh.OrderID}, orderIDs(got))

	got = queryOrders(t, e, map[string]any{"recent": false})
	assert.Equal(t, []uuid.UUID{old.OrderID}, orderIDs(got))
}

func TestOrdersValueCategoryBuckets(t *testing.T) {
	f, e := newOrderFixture()

	// D=0 (small), B=19.99 (small), C=650 (large), A=1318.99 (enterprise).
	assert.Equal(t, []uuid.UUID{f.d.OrderID, f.b.OrderID},
		orderIDs(queryOrders(t, e, map[string]any{"order_value_category": "small"})))
	assert.Empty(t, queryOrders(t, e, map[string]any{"order_value_category": "medium"}))
	assert.Equal(t, []uuid.UUID{f.c.OrderID},
		orderIDs(queryOrders(t, e, map[string]any{"order_value_category": "large"})))
	assert.Equal(t, []uuid.UUID{f.a.OrderID},
		orderIDs(queryOrders(t, e, map[string]any{"order_value_category": "enterprise"})))

	// Unknown categories pass through.
	assert.Len(t, queryOrders(t, e, map[string]any{"order_value_category": "negative"}), 4)
}

func TestOrdersTotalAmountBounds(t *testing.T) {
	f, e := newOrderFixture()

	got := queryOrders(t, e, map[string]any{"total_amount_gte": 600, "total_amount_lte": 700})
	assert.Equal(t, []uuid.UUID{f.c.OrderID}, orderIDs(got))

	got = queryOrders(t, e, map[string]any{"total_amount_range": "0,20"})
	assert.Equal(t, []uuid.UUID{f.d.OrderID, f.b.OrderID}, orderIDs(got))
}

func TestOrdersOrderingKeys(t *testing.T) {
	f, e := newOrderFixture()

	got := queryOrders(t, e, map[string]any{"ordering": "-order_date"})
	assert.Equal(t, []uuid.UUID{f.d.OrderID, f.c.OrderID, f.b.OrderID, f.a.OrderID}, orderIDs(got))

	got = queryOrders(t, e, map[string]any{"ordering": "total_amount"})
	assert.Equal(t, []uuid.UUID{f.d.OrderID, f.b.OrderID, f.c.OrderID, f.a.OrderID}, orderIDs(got))

	got = queryOrders(t, e, map[string]any{"ordering": "customer_name"})
	// Jane's orders first, stable within ties.
	assert.Equal(t, f.jane.ID, got[0].CustomerID)

	// Unrecognized keys fall back to newest-first.
	got = queryOrders(t, e, map[string]any{"ordering": "priority"})
	assert.Equal(t, []uuid.UUID{f.d.OrderID, f.c.OrderID, f.b.OrderID, f.a.OrderID}, orderIDs(got))
}

func TestOrdersCombinedCriteria(t *testing.T) {
	f, e := newOrderFixture()

	// AND across keys: John's orders that contain the mouse and total under 100.
	got := queryOrders(t, e, map[string]any{
		"customer_name":    "john",
		"contains_product": "mouse",
		"total_amount_lte": 100,
	})
	assert.Equal(t, []uuid.UUID{f.b.OrderID}, orderIDs(got))
}
