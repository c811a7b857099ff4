package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"crm-service/internal/models"
)

// OrderFilters is the enumerated filter table for orders. Several keys
// traverse the customer relation or the many-to-many product set; the
// many-valued ones mark their clauses so the executor deduplicates.
var OrderFilters = Registry[models.Order]{
	"total_amount":         decimalExact(orderTotal),
	"total_amount_gte":     decimalGTE(orderTotal),
	"total_amount_lte":     decimalLTE(orderTotal),
	"total_amount_range":   decimalRange(orderTotal),
	"order_date_gte":       timeGTE(orderDate),
	"order_date_lte":       timeLTE(orderDate),
	"order_date_range":     timeRange(orderDate),
	"created_at_gte":       timeGTE(orderCreatedAt),
	"created_at_lte":       timeLTE(orderCreatedAt),
	"customer_id":          uuidExact(func(o models.Order) uuid.UUID { return o.CustomerID }),
	"customer_name":        stringContains(orderCustomerName),
	"customer_email":       stringContains(orderCustomerEmail),
	"product_name":         productNameRule,
	"product_id":           productIDRule,
	"contains_product":     containsProduct,
	"product_ids":          productIDs,
	"min_products":         minProducts,
	"high_value":           highValue,
	"recent":               recentOrders,
	"order_value_category": orderValueCategory,
	"search":               orderSearch,
}

// OrderOrdering: default order is order_date descending, newest first.
var OrderOrdering = NewOrdering(
	func(a, b models.Order) int { return b.OrderDate.Compare(a.OrderDate) },
	map[string]func(a, b models.Order) int{
		"order_date":   func(a, b models.Order) int { return a.OrderDate.Compare(b.OrderDate) },
		"total_amount": func(a, b models.Order) int { return a.TotalAmount.Cmp(b.TotalAmount) },
		"created_at":   func(a, b models.Order) int { return a.CreatedAt.Compare(b.CreatedAt) },
		"updated_at":   func(a, b models.Order) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
		"customer_name": func(a, b models.Order) int {
			return strings.Compare(orderCustomerName(a), orderCustomerName(b))
		},
	},
)

func orderTotal(o models.Order) decimal.Decimal { return o.TotalAmount }
func orderDate(o models.Order) time.Time        { return o.OrderDate }
func orderCreatedAt(o models.Order) time.Time   { return o.CreatedAt }

// Customer accessors tolerate an unloaded relation.
func orderCustomerName(o models.Order) string {
	if o.Customer == nil {
		return ""
	}
	return o.Customer.Name
}

func orderCustomerEmail(o models.Order) string {
	if o.Customer == nil {
		return ""
	}
	return o.Customer.Email
}

func productNameRule(value any) Clause[models.Order] {
	s, ok := toString(value)
	if !ok {
		return noneClause[models.Order]()
	}
	term := strings.TrimSpace(s)
	if term == "" {
		return Clause[models.Order]{}
	}
	return Clause[models.Order]{
		Traverses: true,
		Pred:      anyProduct(func(p models.Product) bool { return containsFold(p.Name, term) }),
	}
}

func productIDRule(value any) Clause[models.Order] {
	s, ok := toString(value)
	if !ok {
		return noneClause[models.Order]()
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return noneClause[models.Order]()
	}
	return Clause[models.Order]{
		Traverses: true,
		Pred:      anyProduct(func(p models.Product) bool { return p.ID == id }),
	}
}

// containsProduct matches by product identifier when the value parses as
// one, falling back to a case-insensitive product-name substring match.
func containsProduct(value any) Clause[models.Order] {
	s, ok := toString(value)
	if !ok {
		return noneClause[models.Order]()
	}
	term := strings.TrimSpace(s)
	if term == "" {
		return Clause[models.Order]{}
	}
	if id, err := uuid.Parse(term); err == nil {
		return Clause[models.Order]{
			Traverses: true,
			Pred:      anyProduct(func(p models.Product) bool { return p.ID == id }),
		}
	}
	return Clause[models.Order]{
		Traverses: true,
		Pred:      anyProduct(func(p models.Product) bool { return containsFold(p.Name, term) }),
	}
}

// productIDs accepts a comma-separated identifier list. Tokens that fail to
// parse are skipped; a list with zero valid identifiers selects nothing,
// which distinguishes "no valid filter value" from "filter absent".
func productIDs(value any) Clause[models.Order] {
	s, ok := toString(value)
	if !ok {
		return noneClause[models.Order]()
	}
	if strings.TrimSpace(s) == "" {
		return Clause[models.Order]{}
	}

	wanted := make(map[uuid.UUID]struct{})
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		id, err := uuid.Parse(token)
		if err != nil {
			continue
		}
		wanted[id] = struct{}{}
	}
	if len(wanted) == 0 {
		return noneClause[models.Order]()
	}
	return Clause[models.Order]{
		Traverses: true,
		Pred: anyProduct(func(p models.Product) bool {
			_, ok := wanted[p.ID]
			return ok
		}),
	}
}

// minProducts annotates every order with its distinct product count in a
// pre-pass, then keeps orders at or above the threshold.
func minProducts(value any) Clause[models.Order] {
	if isBlank(value) {
		return Clause[models.Order]{}
	}
	minCount, ok := toInt(value)
	if !ok {
		return noneClause[models.Order]()
	}
	return Clause[models.Order]{
		Prepass: func(ev *Eval, orders []models.Order) {
			if ev.ProductCounts == nil {
				ev.ProductCounts = make(map[uuid.UUID]int, len(orders))
			}
			for _, o := range orders {
				ev.ProductCounts[o.OrderID] = o.DistinctProductCount()
			}
		},
		Pred: func(ev *Eval, o models.Order) bool {
			return ev.ProductCounts[o.OrderID] >= minCount
		},
	}
}

var highValueThreshold = decimal.NewFromInt(500)

// highValue: true keeps orders over 500, false keeps the complement.
func highValue(value any) Clause[models.Order] {
	if isBlank(value) {
		return Clause[models.Order]{}
	}
	want, ok := toBool(value)
	if !ok {
		return noneClause[models.Order]()
	}
	return Clause[models.Order]{Pred: func(_ *Eval, o models.Order) bool {
		return (o.TotalAmount.Cmp(highValueThreshold) > 0) == want
	}}
}

const recentWindow = 30 * 24 * time.Hour

// recentOrders: true keeps orders from the last 30 days, false keeps older
// ones. The cutoff derives from the execution's Now, captured once.
func recentOrders(value any) Clause[models.Order] {
	if isBlank(value) {
		return Clause[models.Order]{}
	}
	want, ok := toBool(value)
	if !ok {
		return noneClause[models.Order]()
	}
	return Clause[models.Order]{Pred: func(ev *Eval, o models.Order) bool {
		cutoff := ev.Now.Add(-recentWindow)
		return !o.OrderDate.Before(cutoff) == want
	}}
}

// Order value buckets are half-open: small < 100, medium [100, 500),
// large [500, 1000), enterprise >= 1000.
var (
	orderSmallMax  = decimal.NewFromInt(100)
	orderMediumMax = decimal.NewFromInt(500)
	orderLargeMax  = decimal.NewFromInt(1000)
)

func orderValueCategory(value any) Clause[models.Order] {
	s, ok := toString(value)
	if !ok {
		return noneClause[models.Order]()
	}
	switch strings.TrimSpace(s) {
	case "small":
		return totalPred(func(t decimal.Decimal) bool { return t.Cmp(orderSmallMax) < 0 })
	case "medium":
		return totalPred(func(t decimal.Decimal) bool {
			return t.Cmp(orderSmallMax) >= 0 && t.Cmp(orderMediumMax) < 0
		})
	case "large":
		return totalPred(func(t decimal.Decimal) bool {
			return t.Cmp(orderMediumMax) >= 0 && t.Cmp(orderLargeMax) < 0
		})
	case "enterprise":
		return totalPred(func(t decimal.Decimal) bool { return t.Cmp(orderLargeMax) >= 0 })
	}
	return Clause[models.Order]{}
}

func totalPred(match func(decimal.Decimal) bool) Clause[models.Order] {
	return Clause[models.Order]{Pred: func(_ *Eval, o models.Order) bool {
		return match(o.TotalAmount)
	}}
}

// orderSearch is the cross-field search: an OR over customer name, customer
// email, and product names. It crosses the many-to-many boundary, so the
// result is deduplicated by order ID.
func orderSearch(value any) Clause[models.Order] {
	s, ok := toString(value)
	if !ok {
		return noneClause[models.Order]()
	}
	term := strings.TrimSpace(s)
	if term == "" {
		return Clause[models.Order]{}
	}
	return Clause[models.Order]{
		Traverses: true,
		Pred: Or(
			func(_ *Eval, o models.Order) bool { return containsFold(orderCustomerName(o), term) },
			func(_ *Eval, o models.Order) bool { return containsFold(orderCustomerEmail(o), term) },
			anyProduct(func(p models.Product) bool { return containsFold(p.Name, term) }),
		),
	}
}

func anyProduct(match func(models.Product) bool) Predicate[models.Order] {
	return func(_ *Eval, o models.Order) bool {
		for _, p := range o.Products {
			if match(p) {
				return true
			}
		}
		return false
	}
}
