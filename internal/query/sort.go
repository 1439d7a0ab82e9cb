// Package query compiles orderBy requests into sort directives and carries
// the paging state of collection requests.
package query

import (
	"fmt"
	"strings"

	"blogapi/internal/domain"
	"blogapi/internal/mapping"
)

// SortKey orders by one storage field.
type SortKey struct {
	Field      string
	Descending bool
}

// Directive is a multi-key ordering, highest precedence first. The zero
// value keeps source order.
type Directive struct {
	keys []SortKey
}

// Keys returns the sort keys, highest precedence first.
func (d Directive) Keys() []SortKey {
	out := make([]SortKey, len(d.keys))
	copy(out, d.keys)
	return out
}

func (d Directive) Empty() bool { return len(d.keys) == 0 }

// apply adds key the way a stable re-sort would: key becomes the primary
// key and the keys applied before it only break its ties.
func (d Directive) apply(key SortKey) Directive {
	keys := make([]SortKey, 0, len(d.keys)+1)
	keys = append(keys, key)
	keys = append(keys, d.keys...)
	return Directive{keys: keys}
}

// ThenBy returns d with field ascending as its lowest precedence key, so that
// rows tied on every other key keep field order. A directive that already
// orders by field is returned unchanged.
func (d Directive) ThenBy(field string) Directive {
	for _, k := range d.keys {
		if k.Field == field {
			return d
		}
	}
	keys := make([]SortKey, 0, len(d.keys)+1)
	keys = append(keys, d.keys...)
	keys = append(keys, SortKey{Field: field})
	return Directive{keys: keys}
}

// CompileSort resolves orderBy against table. Clauses are applied last to
// first, and the targets of a clause last to first, so that the first listed
// clause and the first declared target end up with the highest precedence.
// A field with no mapping entry fails with an unknown sort field error.
func CompileSort(orderBy string, table mapping.Table) (Directive, error) {
	var d Directive
	clauses := mapping.ParseOrderBy(orderBy)
	for i := len(clauses) - 1; i >= 0; i-- {
		c := clauses[i]
		entry, ok := table.Lookup(c.Field)
		if !ok {
			return Directive{}, domain.UnknownSortFieldError(c.Field)
		}
		for j := len(entry.Targets) - 1; j >= 0; j-- {
			target := entry.Targets[j]
			desc := c.Descending
			if target.Invert {
				desc = !desc
			}
			d = d.apply(SortKey{Field: target.Name, Descending: desc})
		}
	}
	return d, nil
}

// SQL renders the directive as an ORDER BY clause body using columns to map
// storage fields to column names. Empty directives render "".
func (d Directive) SQL(columns map[string]string) (string, error) {
	if d.Empty() {
		return "", nil
	}
	parts := make([]string, 0, len(d.keys))
	for _, k := range d.keys {
		col, ok := columns[k.Field]
		if !ok {
			return "", domain.ConfigurationError{Msg: fmt.Sprintf("no column for storage field %s", k.Field)}
		}
		dir := "ASC"
		if k.Descending {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	return strings.Join(parts, ", "), nil
}
