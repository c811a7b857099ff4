package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPhoneRE(t *testing.T) {
	valid := []string{
		"+12025550101",
		"+1",
		"+447911123456",
		"+123456789012345",
		"123-456-7890",
	}
	for _, phone := range valid {
		assert.True(t, PhoneRE.MatchString(phone), "expected %q to be valid", phone)
	}

	invalid := []string{
		"",
		"555",
		"12025550101",
		"+1234567890123456",
		"+1-202-555",
		"123-45-67890",
		"phone",
	}
	for _, phone := range invalid {
		assert.False(t, PhoneRE.MatchString(phone), "expected %q to be invalid", phone)
	}
}

func TestOrderComputeTotal(t *testing.T) {
	o := Order{
		Products: []Product{
			{ID: uuid.New(), Price: decimal.NewFromFloat(29.99)},
			{ID: uuid.New(), Price: decimal.NewFromFloat(1299.00)},
		},
	}

	assert.True(t, o.ComputeTotal().Equal(decimal.NewFromFloat(1328.99)))
}

func TestOrderComputeTotalEmpty(t *testing.T) {
	var o Order
	assert.True(t, o.ComputeTotal().IsZero())
}

func TestDistinctProductCount(t *testing.T) {
	a := Product{ID: uuid.New()}
	b := Product{ID: uuid.New()}

	o := Order{Products: []Product{a, b, a}}
	assert.Equal(t, 2, o.DistinctProductCount())

	assert.Equal(t, 0, (&Order{}).DistinctProductCount())
}
