package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Clause is the contribution of one recognized filter key: a predicate plus
// the execution hints the executor needs. The zero Clause is a pass-through
// (the key is accepted but filters nothing).
type Clause[T any] struct {
	Pred Predicate[T]

	// Traverses marks clauses that walk a many-valued relationship. The
	// executor deduplicates results by primary ID after filtering when any
	// clause set it.
	Traverses bool

	// Prepass computes an aggregate annotation over the full snapshot into
	// the Eval before predicates run.
	Prepass func(ev *Eval, items []T)
}

// Rule builds a Clause from the raw, already-deserialized criteria value.
type Rule[T any] func(value any) Clause[T]

// Registry is the enumerated table of filter keys an entity supports.
// Criteria keys absent from the registry are ignored, never an error, so
// unrelated keys (pagination hints, the ordering key) can ride alongside
// filter keys.
type Registry[T any] map[string]Rule[T]

// Compiled is the AND-composition of every recognized clause in a criteria
// map, ready to hand to the executor.
type Compiled[T any] struct {
	pred      Predicate[T]
	traverses bool
	prepasses []func(ev *Eval, items []T)
}

// Compile binds a criteria map against a registry. Each recognized key yields
// one clause; clauses from different keys combine with AND. A key whose value
// fails coercion compiles to a select-nothing clause rather than an error.
func Compile[T any](reg Registry[T], criteria map[string]any) Compiled[T] {
	var out Compiled[T]
	var preds []Predicate[T]
	for key, raw := range criteria {
		rule, ok := reg[key]
		if !ok {
			continue
		}
		clause := rule(raw)
		if clause.Pred != nil {
			preds = append(preds, clause.Pred)
		}
		if clause.Traverses {
			out.traverses = true
		}
		if clause.Prepass != nil {
			out.prepasses = append(out.prepasses, clause.Prepass)
		}
	}
	if len(preds) > 0 {
		out.pred = And(preds...)
	}
	return out
}

// Match reports whether one entity satisfies the composed predicate.
func (c Compiled[T]) Match(ev *Eval, item T) bool {
	if c.pred == nil {
		return true
	}
	return c.pred(ev, item)
}

func (c Compiled[T]) annotate(ev *Eval, items []T) {
	for _, pre := range c.prepasses {
		pre(ev, items)
	}
}

func noneClause[T any]() Clause[T] {
	return Clause[T]{Pred: None[T]()}
}

// Field rule constructors. Each takes a typed accessor so the registry is a
// table of compiled accessors rather than runtime field-path strings.

func stringExact[T any](get func(T) string) Rule[T] {
	return stringRule(get, func(field, arg string) bool { return field == arg })
}

func stringContains[T any](get func(T) string) Rule[T] {
	return stringRule(get, containsFold)
}

func stringPrefix[T any](get func(T) string) Rule[T] {
	return stringRule(get, func(field, arg string) bool {
		return strings.HasPrefix(strings.ToLower(field), strings.ToLower(arg))
	})
}

func stringRule[T any](get func(T) string, match func(field, arg string) bool) Rule[T] {
	return func(value any) Clause[T] {
		s, ok := toString(value)
		if !ok {
			return noneClause[T]()
		}
		if strings.TrimSpace(s) == "" {
			return Clause[T]{}
		}
		return Clause[T]{Pred: func(_ *Eval, item T) bool {
			return match(get(item), s)
		}}
	}
}

func uuidExact[T any](get func(T) uuid.UUID) Rule[T] {
	return func(value any) Clause[T] {
		s, ok := toString(value)
		if !ok {
			return noneClause[T]()
		}
		if strings.TrimSpace(s) == "" {
			return Clause[T]{}
		}
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return noneClause[T]()
		}
		return Clause[T]{Pred: func(_ *Eval, item T) bool {
			return get(item) == id
		}}
	}
}

func intExact[T any](get func(T) int) Rule[T] {
	return intRule(get, func(field, arg int) bool { return field == arg })
}

func intGTE[T any](get func(T) int) Rule[T] {
	return intRule(get, func(field, arg int) bool { return field >= arg })
}

func intLTE[T any](get func(T) int) Rule[T] {
	return intRule(get, func(field, arg int) bool { return field <= arg })
}

func intRule[T any](get func(T) int, cmp func(field, arg int) bool) Rule[T] {
	return func(value any) Clause[T] {
		if isBlank(value) {
			return Clause[T]{}
		}
		n, ok := toInt(value)
		if !ok {
			return noneClause[T]()
		}
		return Clause[T]{Pred: func(_ *Eval, item T) bool {
			return cmp(get(item), n)
		}}
	}
}

// intRange accepts a "min,max" pair; either side may be empty for a one-sided
// bound.
func intRange[T any](get func(T) int) Rule[T] {
	return func(value any) Clause[T] {
		lo, hi, ok := toPair(value)
		if !ok {
			return noneClause[T]()
		}
		var preds []Predicate[T]
		if lo != "" {
			n, ok := toInt(lo)
			if !ok {
				return noneClause[T]()
			}
			preds = append(preds, func(_ *Eval, item T) bool { return get(item) >= n })
		}
		if hi != "" {
			n, ok := toInt(hi)
			if !ok {
				return noneClause[T]()
			}
			preds = append(preds, func(_ *Eval, item T) bool { return get(item) <= n })
		}
		if len(preds) == 0 {
			return Clause[T]{}
		}
		return Clause[T]{Pred: And(preds...)}
	}
}

func decimalExact[T any](get func(T) decimal.Decimal) Rule[T] {
	return decimalRule(get, func(c int) bool { return c == 0 })
}

func decimalGTE[T any](get func(T) decimal.Decimal) Rule[T] {
	return decimalRule(get, func(c int) bool { return c >= 0 })
}

func decimalLTE[T any](get func(T) decimal.Decimal) Rule[T] {
	return decimalRule(get, func(c int) bool { return c <= 0 })
}

func decimalRule[T any](get func(T) decimal.Decimal, cmp func(int) bool) Rule[T] {
	return func(value any) Clause[T] {
		if isBlank(value) {
			return Clause[T]{}
		}
		d, ok := toDecimal(value)
		if !ok {
			return noneClause[T]()
		}
		return Clause[T]{Pred: func(_ *Eval, item T) bool {
			return cmp(get(item).Cmp(d))
		}}
	}
}

func decimalRange[T any](get func(T) decimal.Decimal) Rule[T] {
	return func(value any) Clause[T] {
		lo, hi, ok := toPair(value)
		if !ok {
			return noneClause[T]()
		}
		var preds []Predicate[T]
		if lo != "" {
			d, ok := toDecimal(lo)
			if !ok {
				return noneClause[T]()
			}
			preds = append(preds, func(_ *Eval, item T) bool { return get(item).Cmp(d) >= 0 })
		}
		if hi != "" {
			d, ok := toDecimal(hi)
			if !ok {
				return noneClause[T]()
			}
			preds = append(preds, func(_ *Eval, item T) bool { return get(item).Cmp(d) <= 0 })
		}
		if len(preds) == 0 {
			return Clause[T]{}
		}
		return Clause[T]{Pred: And(preds...)}
	}
}

func timeGTE[T any](get func(T) time.Time) Rule[T] {
	return timeRule(get, func(field, arg time.Time) bool { return !field.Before(arg) })
}

func timeLTE[T any](get func(T) time.Time) Rule[T] {
	return timeRule(get, func(field, arg time.Time) bool { return !field.After(arg) })
}

func timeRule[T any](get func(T) time.Time, cmp func(field, arg time.Time) bool) Rule[T] {
	return func(value any) Clause[T] {
		if isBlank(value) {
			return Clause[T]{}
		}
		t, ok := toTime(value)
		if !ok {
			return noneClause[T]()
		}
		return Clause[T]{Pred: func(_ *Eval, item T) bool {
			return cmp(get(item), t)
		}}
	}
}

func timeRange[T any](get func(T) time.Time) Rule[T] {
	return func(value any) Clause[T] {
		lo, hi, ok := toPair(value)
		if !ok {
			return noneClause[T]()
		}
		var preds []Predicate[T]
		if lo != "" {
			t, ok := toTime(lo)
			if !ok {
				return noneClause[T]()
			}
			preds = append(preds, func(_ *Eval, item T) bool { return !get(item).Before(t) })
		}
		if hi != "" {
			t, ok := toTime(hi)
			if !ok {
				return noneClause[T]()
			}
			preds = append(preds, func(_ *Eval, item T) bool { return !get(item).After(t) })
		}
		if len(preds) == 0 {
			return Clause[T]{}
		}
		return Clause[T]{Pred: And(preds...)}
	}
}

func containsFold(field, arg string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(arg))
}
