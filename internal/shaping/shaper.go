package shaping

import (
	"reflect"
	"strings"

	"blogapi/internal/domain"
	"blogapi/internal/utils"
)

// Selection is a resolved field list for one type. Build it once per
// request with Select and reuse it for every item.
type Selection struct {
	info    *typeInfo
	indexes []int
}

// Select resolves fields against the public fields of T. Blank fields selects
// every field in declared order. Otherwise tokens are trimmed and matched
// ignoring case, duplicates collapse, and the identity field is put first
// when the caller left it out.
func Select[T any](fields string) (Selection, error) {
	return selectFor(infoFor(reflect.TypeOf((*T)(nil)).Elem()), fields)
}

func selectFor(info *typeInfo, fields string) (Selection, error) {
	sel := Selection{info: info}
	if strings.TrimSpace(fields) == "" {
		sel.indexes = make([]int, len(info.fields))
		for i := range info.fields {
			sel.indexes[i] = i
		}
		return sel, nil
	}

	seen := map[int]bool{}
	for _, name := range utils.SplitList(fields) {
		i, ok := info.find(name)
		if !ok {
			return Selection{}, domain.UnknownFieldError(name, info.typeName)
		}
		if seen[i] {
			continue
		}
		seen[i] = true
		sel.indexes = append(sel.indexes, i)
	}
	if info.identity >= 0 && !seen[info.identity] {
		sel.indexes = append([]int{info.identity}, sel.indexes...)
	}
	return sel, nil
}

// Names lists the selected public field names in output order.
func (s Selection) Names() []string {
	out := make([]string, len(s.indexes))
	for i, idx := range s.indexes {
		out[i] = s.info.fields[idx].name
	}
	return out
}

// Apply shapes one value. Pointers are dereferenced; a nil pointer yields
// nil values for every selected field.
func (s Selection) Apply(v any) *Record {
	rec := NewRecord(len(s.indexes))
	rv := reflect.ValueOf(v)
	for _, idx := range s.indexes {
		var val any
		if rv.IsValid() {
			val = s.info.value(rv, idx)
		}
		rec.Set(s.info.fields[idx].name, val)
	}
	return rec
}

// Shape projects a single value onto fields.
func Shape[T any](item T, fields string) (*Record, error) {
	sel, err := Select[T](fields)
	if err != nil {
		return nil, err
	}
	return sel.Apply(item), nil
}

// ShapeAll projects every item onto fields. The result holds one record per
// item, in source order.
func ShapeAll[T any](items []T, fields string) ([]*Record, error) {
	sel, err := Select[T](fields)
	if err != nil {
		return nil, err
	}
	out := make([]*Record, 0, len(items))
	for _, item := range items {
		out = append(out, sel.Apply(item))
	}
	return out, nil
}
