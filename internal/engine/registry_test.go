package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crm-service/internal/models"
)

func TestCompileIgnoresUnknownKeys(t *testing.T) {
	compiled := Compile(CustomerFilters, map[string]any{
		"page":     1,
		"ordering": "-name",
		"whatever": true,
	})

	ev := NewEval()
	assert.True(t, compiled.Match(ev, newCustomer("Anyone", "a@example.com", "")))
	assert.False(t, compiled.traverses)
	assert.Empty(t, compiled.prepasses)
}

func TestCompileBlankValuesPassThrough(t *testing.T) {
	compiled := Compile(CustomerFilters, map[string]any{
		"name":          "   ",
		"email_domain":  "",
		"phone_pattern": "\t",
	})

	ev := NewEval()
	assert.True(t, compiled.Match(ev, newCustomer("Anyone", "a@example.com", "")))
}

func TestCompileCoercionFailureSelectsNothing(t *testing.T) {
	compiled := Compile(ProductFilters, map[string]any{"stock_gte": "plenty"})

	ev := NewEval()
	assert.False(t, compiled.Match(ev, newProduct("Anything", 1, 1000)))
}

func TestCompileOneBadKeyDoesNotDisableGoodKeys(t *testing.T) {
	// The malformed clause selects nothing; the valid clause still compiled,
	// so the AND of both is empty rather than an error.
	compiled := Compile(ProductFilters, map[string]any{
		"name":      "mouse",
		"stock_gte": "plenty",
	})

	ev := NewEval()
	assert.False(t, compiled.Match(ev, newProduct("Budget Mouse", 20, 5)))
}

func TestCompileMarksTraversalAndPrepass(t *testing.T) {
	compiled := Compile(OrderFilters, map[string]any{
		"search":       "john",
		"min_products": 1,
	})

	assert.True(t, compiled.traverses)
	assert.Len(t, compiled.prepasses, 1)
}

func TestCoercions(t *testing.T) {
	t.Run("int", func(t *testing.T) {
		for _, value := range []any{7, int64(7), 7.0, " 7 "} {
			n, ok := toInt(value)
			assert.True(t, ok, "%v", value)
			assert.Equal(t, 7, n)
		}
		for _, value := range []any{"7.5", 7.5, "abc", true, nil} {
			_, ok := toInt(value)
			assert.False(t, ok, "%v", value)
		}
	})

	t.Run("decimal", func(t *testing.T) {
		d, ok := toDecimal("49.99")
		assert.True(t, ok)
		assert.Equal(t, "49.99", d.String())
		_, ok = toDecimal("cheap")
		assert.False(t, ok)
	})

	t.Run("time", func(t *testing.T) {
		for _, value := range []any{"2026-03-01", "2026-03-01 12:00:00", "2026-03-01T12:00:00Z", fixtureEpoch} {
			_, ok := toTime(value)
			assert.True(t, ok, "%v", value)
		}
		_, ok := toTime("yesterday")
		assert.False(t, ok)
	})

	t.Run("bool", func(t *testing.T) {
		b, ok := toBool("true")
		assert.True(t, ok)
		assert.True(t, b)
		b, ok = toBool(false)
		assert.True(t, ok)
		assert.False(t, b)
		_, ok = toBool("yes")
		assert.False(t, ok)
	})

	t.Run("pair", func(t *testing.T) {
		lo, hi, ok := toPair("10, 20")
		assert.True(t, ok)
		assert.Equal(t, "10", lo)
		assert.Equal(t, "20", hi)

		lo, hi, ok = toPair([]any{nil, 20})
		assert.True(t, ok)
		assert.Empty(t, lo)
		assert.Equal(t, "20", hi)

		_, _, ok = toPair("10")
		assert.False(t, ok)
	})
}

func TestPredicateCombinators(t *testing.T) {
	ev := NewEval()
	yes := func(*Eval, int) bool { return true }
	no := func(*Eval, int) bool { return false }

	assert.True(t, And[int]()(ev, 0))
	assert.True(t, And(yes, yes)(ev, 0))
	assert.False(t, And(yes, no)(ev, 0))
	assert.False(t, Or[int]()(ev, 0))
	assert.True(t, Or(no, yes)(ev, 0))
	assert.False(t, None[int]()(ev, 0))
}

func TestEvalNowIsPerExecution(t *testing.T) {
	a := NewEval()
	time.Sleep(time.Millisecond)
	b := NewEval()
	assert.True(t, b.Now.After(a.Now))
}

func TestOrderingIgnoresUnknownKey(t *testing.T) {
	products := []models.Product{
		newProduct("B", 2, 0),
		newProduct("A", 1, 0),
	}
	ProductOrdering.Sort(products, "bogus")
	assert.Equal(t, []string{"A", "B"}, productNames(products))

	ProductOrdering.Sort(products, "-name")
	assert.Equal(t, []string{"B", "A"}, productNames(products))
}
