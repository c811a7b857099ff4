package engine

import (
	"time"

	"github.com/google/uuid"
)

// Predicate is a boolean test over a single entity. Predicates receive an
// Eval carrying per-execution state (the query's notion of "now", aggregate
// annotations) so the same compiled predicate can be re-run against a fresh
// snapshot without recompiling.
type Predicate[T any] func(ev *Eval, item T) bool

// Eval holds state scoped to one materialization of a query. A new Eval is
// created every time a query executes, so restarted sequences never share
// mutable state.
type Eval struct {
	// Now is captured once per execution, not per record.
	Now time.Time

	// ProductCounts maps order ID to its distinct-product count. Filled by
	// the aggregate pre-pass when a clause requires it.
	ProductCounts map[uuid.UUID]int
}

func NewEval() *Eval {
	return &Eval{Now: time.Now()}
}

// And combines predicates so that every one must hold. No predicates means
// everything matches.
func And[T any](preds ...Predicate[T]) Predicate[T] {
	if len(preds) == 1 {
		return preds[0]
	}
	return func(ev *Eval, item T) bool {
		for _, p := range preds {
			if !p(ev, item) {
				return false
			}
		}
		return true
	}
}

// Or combines predicates so that at least one must hold. No predicates means
// nothing matches.
func Or[T any](preds ...Predicate[T]) Predicate[T] {
	if len(preds) == 1 {
		return preds[0]
	}
	return func(ev *Eval, item T) bool {
		for _, p := range preds {
			if p(ev, item) {
				return true
			}
		}
		return false
	}
}

// None matches nothing. It is the compiled form of a malformed filter value:
// a bad criterion degrades to an empty result instead of an error.
func None[T any]() Predicate[T] {
	return func(*Eval, T) bool { return false }
}
