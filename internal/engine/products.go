package engine

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"crm-service/internal/models"
)

// ProductFilters is the enumerated filter table for products.
var ProductFilters = Registry[models.Product]{
	"name":             stringContains(productName),
	"name_exact":       stringExact(productName),
	"name_startswith":  stringPrefix(productName),
	"price":            decimalExact(productPrice),
	"price_gte":        decimalGTE(productPrice),
	"price_lte":        decimalLTE(productPrice),
	"price_range":      decimalRange(productPrice),
	"stock":            intExact(productStock),
	"stock_gte":        intGTE(productStock),
	"stock_lte":        intLTE(productStock),
	"stock_range":      intRange(productStock),
	"created_at_gte":   timeGTE(productCreatedAt),
	"created_at_lte":   timeLTE(productCreatedAt),
	"created_at_range": timeRange(productCreatedAt),
	"low_stock":        lowStock,
	"out_of_stock":     outOfStock,
	"in_stock":         inStock,
	"price_category":   priceCategory,
	"search":           productSearch,
}

// ProductOrdering: default order is name ascending.
var ProductOrdering = NewOrdering(
	func(a, b models.Product) int { return strings.Compare(a.Name, b.Name) },
	map[string]func(a, b models.Product) int{
		"name":       func(a, b models.Product) int { return strings.Compare(a.Name, b.Name) },
		"price":      func(a, b models.Product) int { return a.Price.Cmp(b.Price) },
		"stock":      func(a, b models.Product) int { return a.Stock - b.Stock },
		"created_at": func(a, b models.Product) int { return a.CreatedAt.Compare(b.CreatedAt) },
		"updated_at": func(a, b models.Product) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	},
)

func productName(p models.Product) string             { return p.Name }
func productPrice(p models.Product) decimal.Decimal   { return p.Price }
func productStock(p models.Product) int               { return p.Stock }
func productCreatedAt(p models.Product) time.Time     { return p.CreatedAt }

// defaultLowStockThreshold applies when the low_stock filter is requested
// with no threshold.
const defaultLowStockThreshold = 10

// lowStock keeps products whose stock is strictly below the threshold.
func lowStock(value any) Clause[models.Product] {
	threshold := defaultLowStockThreshold
	if !isBlank(value) {
		n, ok := toInt(value)
		if !ok {
			return noneClause[models.Product]()
		}
		threshold = n
	}
	return Clause[models.Product]{Pred: func(_ *Eval, p models.Product) bool {
		return p.Stock < threshold
	}}
}

func outOfStock(value any) Clause[models.Product] {
	return stockFlag(value, func(p models.Product) bool { return p.Stock == 0 })
}

func inStock(value any) Clause[models.Product] {
	return stockFlag(value, func(p models.Product) bool { return p.Stock > 0 })
}

// stockFlag: true keeps the matching products, false keeps the complement,
// no value filters nothing.
func stockFlag(value any, match func(models.Product) bool) Clause[models.Product] {
	if isBlank(value) {
		return Clause[models.Product]{}
	}
	want, ok := toBool(value)
	if !ok {
		return noneClause[models.Product]()
	}
	return Clause[models.Product]{Pred: func(_ *Eval, p models.Product) bool {
		return match(p) == want
	}}
}

// Price category buckets are half-open: budget < 50, mid-range [50, 200),
// premium [200, 500), luxury >= 500. Together they partition all
// non-negative prices.
var (
	priceBudgetMax  = decimal.NewFromInt(50)
	priceMidMax     = decimal.NewFromInt(200)
	pricePremiumMax = decimal.NewFromInt(500)
)

func priceCategory(value any) Clause[models.Product] {
	s, ok := toString(value)
	if !ok {
		return noneClause[models.Product]()
	}
	switch strings.TrimSpace(s) {
	case "budget":
		return pricePred(func(p decimal.Decimal) bool { return p.Cmp(priceBudgetMax) < 0 })
	case "mid-range":
		return pricePred(func(p decimal.Decimal) bool {
			return p.Cmp(priceBudgetMax) >= 0 && p.Cmp(priceMidMax) < 0
		})
	case "premium":
		return pricePred(func(p decimal.Decimal) bool {
			return p.Cmp(priceMidMax) >= 0 && p.Cmp(pricePremiumMax) < 0
		})
	case "luxury":
		return pricePred(func(p decimal.Decimal) bool { return p.Cmp(pricePremiumMax) >= 0 })
	}
	// Values outside the enumerated categories filter nothing.
	return Clause[models.Product]{}
}

func pricePred(match func(decimal.Decimal) bool) Clause[models.Product] {
	return Clause[models.Product]{Pred: func(_ *Eval, p models.Product) bool {
		return match(p.Price)
	}}
}

// productSearch is the product-side cross-field search; only the name field
// is searchable today.
func productSearch(value any) Clause[models.Product] {
	s, ok := toString(value)
	if !ok {
		return noneClause[models.Product]()
	}
	term := strings.TrimSpace(s)
	if term == "" {
		return Clause[models.Product]{}
	}
	return Clause[models.Product]{Pred: func(_ *Eval, p models.Product) bool {
		return containsFold(p.Name, term)
	}}
}
