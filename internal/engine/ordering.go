package engine

import (
	"slices"
	"strings"
)

// Ordering validates a sort instruction against an enumerated allow-list and
// applies it as the final step of query execution. A leading "-" requests
// descending order. Unrecognized (or empty) keys fall back to the entity's
// default order.
type Ordering[T any] struct {
	fields map[string]func(a, b T) int
	def    func(a, b T) int
}

func NewOrdering[T any](def func(a, b T) int, fields map[string]func(a, b T) int) Ordering[T] {
	return Ordering[T]{fields: fields, def: def}
}

// Sort orders items in place. Sorts are stable so ties keep their snapshot
// order.
func (o Ordering[T]) Sort(items []T, key string) {
	key = strings.TrimSpace(key)
	desc := strings.HasPrefix(key, "-")
	name := strings.TrimPrefix(key, "-")

	cmp, ok := o.fields[name]
	if !ok || name == "" {
		cmp = o.def
		desc = false
	}
	if cmp == nil {
		return
	}
	if desc {
		inner := cmp
		cmp = func(a, b T) int { return -inner(a, b) }
	}
	slices.SortStableFunc(items, cmp)
}
