package query

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"blogapi/internal/mapping"
	"blogapi/internal/shaping"
)

// ApplySort returns source ordered by orderBy, resolved against table. The
// sort runs in process and is stable; blank orderBy returns source as is.
func ApplySort[T any](source []T, orderBy string, table mapping.Table) ([]T, error) {
	d, err := CompileSort(orderBy, table)
	if err != nil {
		return nil, err
	}
	return SortSlice(source, d), nil
}

// SortSlice returns a stably sorted copy of items. Storage fields are read by
// name from each item; a field an item lacks compares as nil.
func SortSlice[T any](items []T, d Directive) []T {
	if d.Empty() {
		return items
	}
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		for _, k := range d.keys {
			av, _ := shaping.Value(a, k.Field)
			bv, _ := shaping.Value(b, k.Field)
			c := compareValues(av, bv)
			if k.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return out
}

// compareValues orders nil first, then by the natural order of the dynamic
// type. Mixed or unknown types fall back to their printed form.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y)
		}
	case int:
		if y, ok := b.(int); ok {
			return cmp.Compare(x, y)
		}
	case int32:
		if y, ok := b.(int32); ok {
			return cmp.Compare(x, y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
	case uint64:
		if y, ok := b.(uint64); ok {
			return cmp.Compare(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
