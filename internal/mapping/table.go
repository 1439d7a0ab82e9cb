// Package mapping holds the resource-to-storage field mapping tables used to
// validate and compile orderBy requests.
package mapping

import (
	"reflect"
	"strings"
)

const (
	// IdentityField is the resource field every table maps implicitly.
	IdentityField = "id"
	// IdentityTarget is the storage field the identity maps to.
	IdentityTarget = "ID"
)

// Target is one storage field a resource field sorts by. Invert flips the
// requested direction for this target only.
type Target struct {
	Name   string
	Invert bool
}

// Entry maps one resource field to its storage targets, in declared order.
type Entry struct {
	Source  string
	Targets []Target
}

// Field builds an Entry whose targets keep their natural direction.
func Field(source string, targets ...string) Entry {
	e := Entry{Source: source}
	for _, t := range targets {
		e.Targets = append(e.Targets, Target{Name: t})
	}
	return e
}

// Table is an immutable, case-insensitive mapping table.
type Table struct {
	entries map[string]Entry
}

// NewTable builds a table from entries. The identity entry is always
// injected as id -> ID and replaces any caller supplied one.
func NewTable(entries ...Entry) Table {
	t := Table{entries: make(map[string]Entry, len(entries)+1)}
	for _, e := range entries {
		if strings.EqualFold(e.Source, IdentityField) {
			continue
		}
		t.put(e)
	}
	t.put(Entry{Source: IdentityField, Targets: []Target{{Name: IdentityTarget}}})
	return t
}

func (t *Table) put(e Entry) {
	key := strings.ToLower(strings.TrimSpace(e.Source))
	if key == "" {
		return
	}
	targets := make([]Target, len(e.Targets))
	copy(targets, e.Targets)
	t.entries[key] = Entry{Source: e.Source, Targets: targets}
}

// Lookup finds the entry for a resource field, ignoring case.
func (t Table) Lookup(field string) (Entry, bool) {
	e, ok := t.entries[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		return Entry{}, false
	}
	targets := make([]Target, len(e.Targets))
	copy(targets, e.Targets)
	return Entry{Source: e.Source, Targets: targets}, true
}

// Has reports whether field has an entry, ignoring case.
func (t Table) Has(field string) bool {
	_, ok := t.entries[strings.ToLower(strings.TrimSpace(field))]
	return ok
}

func (t Table) Len() int { return len(t.entries) }

// Kind identifies a (resource, entity) type pair.
type Kind struct {
	Resource string
	Entity   string
}

func (k Kind) String() string { return k.Resource + " -> " + k.Entity }

// KindOf derives the Kind of the R resource and E entity types.
func KindOf[R, E any]() Kind {
	return Kind{
		Resource: reflect.TypeOf((*R)(nil)).Elem().String(),
		Entity:   reflect.TypeOf((*E)(nil)).Elem().String(),
	}
}

// PropertyMapping is a table bound to the kind it serves.
type PropertyMapping struct {
	Kind  Kind
	Table Table
}

// For builds the PropertyMapping of resource R onto entity E.
func For[R, E any](entries ...Entry) PropertyMapping {
	return PropertyMapping{Kind: KindOf[R, E](), Table: NewTable(entries...)}
}
