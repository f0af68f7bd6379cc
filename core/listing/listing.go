// Package listing derives views (filtered, ordered, limited copies) of loaded collections.
// Nothing in here mutates the source collection.
package listing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/trezcool/uniguide/core"
)

// Record is any entity whose fields can be read by their json name.
type Record interface {
	Field(name string) (interface{}, bool)
}

// Spec tells which fields of a record the generic filters look at.
type Spec struct {
	SearchFields  []string
	CategoryField string
	StatusField   string
}

// Query holds the UI-only state of a list: search term, filters, ordering and limit.
type Query struct {
	Search   string
	Category string
	Status   string
	Active   *bool
	Ordering []core.DBOrdering
	Limit    int
}

func (q Query) IsEmpty() bool {
	return q.Search == "" && q.Category == "" && q.Status == "" && q.Active == nil &&
		len(q.Ordering) == 0 && q.Limit == 0
}

func (q *Query) Clean() {
	q.Search = core.CleanString(q.Search)
	q.Category = core.CleanString(q.Category)
	q.Status = core.CleanString(q.Status)
	if q.Limit < 0 {
		q.Limit = 0
	}
}

type Predicate[T any] func(T) bool

// Predicates builds the filters of q. Their order does not matter, a record is kept when all match.
func Predicates[T Record](spec Spec, q Query) []Predicate[T] {
	var preds []Predicate[T]
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		fields := spec.SearchFields
		preds = append(preds, func(rec T) bool {
			for _, f := range fields {
				if v, ok := rec.Field(f); ok && strings.Contains(strings.ToLower(toString(v)), term) {
					return true
				}
			}
			return false
		})
	}
	if q.Category != "" && spec.CategoryField != "" {
		preds = append(preds, FieldEquals[T](spec.CategoryField, q.Category))
	}
	if q.Status != "" && spec.StatusField != "" {
		preds = append(preds, FieldEquals[T](spec.StatusField, q.Status))
	}
	if q.Active != nil {
		want := *q.Active
		preds = append(preds, func(rec T) bool {
			v, ok := rec.Field("isActive")
			b, isBool := v.(bool)
			return ok && isBool && b == want
		})
	}
	return preds
}

// FieldEquals matches records whose field equals value, case-insensitively.
func FieldEquals[T Record](field, value string) Predicate[T] {
	return func(rec T) bool {
		v, ok := rec.Field(field)
		return ok && strings.EqualFold(toString(v), value)
	}
}

// Filter returns a new slice holding the items matching all predicates.
func Filter[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
outer:
	for _, it := range items {
		for _, p := range preds {
			if !p(it) {
				continue outer
			}
		}
		out = append(out, it)
	}
	return out
}

// Sort returns an ordered copy of items. Unknown fields compare equal.
func Sort[T Record](items []T, orderings []core.DBOrdering) []T {
	out := make([]T, len(items))
	copy(out, items)
	if len(orderings) == 0 {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, ord := range orderings {
			a, _ := out[i].Field(ord.Field)
			b, _ := out[j].Field(ord.Field)
			a, b = deref(a), deref(b)
			if (a == nil) != (b == nil) {
				return b == nil // nil last in both directions
			}
			c := Compare(a, b)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return out
}

// Limit returns at most n items; n <= 0 means no limit.
func Limit[T any](items []T, n int) []T {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

// Apply filters, orders and limits items according to q.
func Apply[T Record](items []T, spec Spec, q Query) []T {
	out := Filter(items, Predicates[T](spec, q)...)
	out = Sort(out, q.Ordering)
	return Limit(out, q.Limit)
}

// Compare orders two field values of the same kind. Nil values sort last.
func Compare(a, b interface{}) int {
	a, b = deref(a), deref(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	switch x := a.(type) {
	case int:
		if y, ok := b.(int); ok {
			return cmpInt(int64(x), int64(y))
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmpInt(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			switch {
			case x.Before(y):
				return -1
			case x.After(y):
				return 1
			}
			return 0
		}
	}
	return strings.Compare(strings.ToLower(toString(a)), strings.ToLower(toString(b)))
}

func cmpInt(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func deref(v interface{}) interface{} {
	switch x := v.(type) {
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	case *string:
		if x == nil {
			return nil
		}
		return *x
	}
	return v
}

func toString(v interface{}) string {
	switch x := deref(v).(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
