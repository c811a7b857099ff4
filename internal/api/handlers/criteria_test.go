package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCriteriaFromQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/orders?min_products=2&ordering=-total_amount", nil)

	criteria := criteriaFromQuery(r)

	assert.Equal(t, "2", criteria["min_products"])
	assert.Equal(t, "-total_amount", criteria["ordering"])
}

func TestCriteriaFromQueryRepeatedParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/customers?created_at_range=2026-01-01&created_at_range=2026-02-01", nil)

	criteria := criteriaFromQuery(r)

	assert.Equal(t, []string{"2026-01-01", "2026-02-01"}, criteria["created_at_range"])
}

func TestCriteriaFromQueryEmpty(t *testing.T) {
	r := httptest.NewRequest("GET", "/products", nil)

	assert.Empty(t, criteriaFromQuery(r))
}
