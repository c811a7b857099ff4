package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDistinctIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	assert.Equal(t, []uuid.UUID{a, b}, distinctIDs([]uuid.UUID{a, a, b, a, b}))
}

func TestDistinctIDsKeepsFirstOccurrenceOrder(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	assert.Equal(t, []uuid.UUID{c, a, b}, distinctIDs([]uuid.UUID{c, a, c, b, a}))
}

func TestDistinctIDsEmpty(t *testing.T) {
	assert.Empty(t, distinctIDs(nil))
}
