package engine

import (
	"context"

	"github.com/google/uuid"
)

// Source produces a fresh point-in-time slice of entities. The executor
// re-invokes it on every materialization, which is what makes a Query
// restartable: two calls never share cached state.
type Source[T any] func(ctx context.Context) ([]T, error)

// Query applies a compiled predicate and an ordering to a source. It holds
// no mutable state between materializations.
type Query[T any] struct {
	source   Source[T]
	id       func(T) uuid.UUID
	compiled Compiled[T]
	ordering Ordering[T]
	sortKey  string
	sorted   bool
}

func NewQuery[T any](source Source[T], id func(T) uuid.UUID) *Query[T] {
	return &Query[T]{source: source, id: id}
}

func (q *Query[T]) Filter(c Compiled[T]) *Query[T] {
	q.compiled = c
	return q
}

func (q *Query[T]) OrderBy(ord Ordering[T], key string) *Query[T] {
	q.ordering = ord
	q.sortKey = key
	q.sorted = true
	return q
}

// All materializes the query: fetch a snapshot, run aggregate pre-passes,
// filter, deduplicate if any clause traversed a many-valued relationship,
// then sort. Storage errors propagate unmodified.
func (q *Query[T]) All(ctx context.Context) ([]T, error) {
	items, err := q.source(ctx)
	if err != nil {
		return nil, err
	}

	ev := NewEval()
	q.compiled.annotate(ev, items)

	out := make([]T, 0, len(items))
	for _, item := range items {
		if q.compiled.Match(ev, item) {
			out = append(out, item)
		}
	}

	if q.compiled.traverses {
		out = dedupByID(out, q.id)
	}
	if q.sorted {
		q.ordering.Sort(out, q.sortKey)
	}
	return out, nil
}

// Each iterates the materialized result in order, stopping early when fn
// returns false. Restart by calling Each (or All) again; every call
// recomputes from the source.
func (q *Query[T]) Each(ctx context.Context, fn func(T) bool) error {
	items, err := q.All(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		if !fn(item) {
			return nil
		}
	}
	return nil
}

func (q *Query[T]) Count(ctx context.Context) (int, error) {
	items, err := q.All(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// dedupByID drops repeated records by primary identity, keeping first
// occurrences in order. Relationship fan-out must not repeat a record.
func dedupByID[T any](items []T, id func(T) uuid.UUID) []T {
	seen := make(map[uuid.UUID]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		key := id(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
