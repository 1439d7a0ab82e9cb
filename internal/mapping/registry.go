package mapping

import (
	"sync"

	"blogapi/internal/domain"
)

// Registry holds one Table per Kind. It is filled during startup and only
// read afterwards; a second registration for the same Kind is rejected.
type Registry struct {
	mu     sync.RWMutex
	tables map[Kind]Table
}

func NewRegistry(mappings ...PropertyMapping) (*Registry, error) {
	r := &Registry{tables: make(map[Kind]Table, len(mappings))}
	for _, m := range mappings {
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register installs the table for m.Kind.
func (r *Registry) Register(m PropertyMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tables == nil {
		r.tables = make(map[Kind]Table)
	}
	if _, exists := r.tables[m.Kind]; exists {
		return domain.ConfigurationError{
			Resource: m.Kind.Resource,
			Entity:   m.Kind.Entity,
			Msg:      "property mapping already registered for " + m.Kind.String(),
		}
	}
	r.tables[m.Kind] = m.Table
	return nil
}

// Resolve returns the table registered for kind.
func (r *Registry) Resolve(kind Kind) (Table, error) {
	r.mu.RLock()
	t, ok := r.tables[kind]
	r.mu.RUnlock()
	if !ok {
		return Table{}, domain.ConfigurationError{Resource: kind.Resource, Entity: kind.Entity}
	}
	return t, nil
}

// Resolve returns the table registered for resource R onto entity E.
func Resolve[R, E any](r *Registry) (Table, error) {
	return r.Resolve(KindOf[R, E]())
}

// ValidateMappingExists reports whether every field named in orderBy has an
// entry in kind's table. Blank input is valid; an unregistered kind is not.
func (r *Registry) ValidateMappingExists(kind Kind, orderBy string) bool {
	return r.CheckOrderBy(kind, orderBy) == nil
}

// CheckOrderBy is ValidateMappingExists returning the reason: a
// ConfigurationError for an unregistered kind, or an unknown sort field error
// naming the first unmapped field.
func (r *Registry) CheckOrderBy(kind Kind, orderBy string) error {
	t, err := r.Resolve(kind)
	if err != nil {
		return err
	}
	for _, c := range ParseOrderBy(orderBy) {
		if !t.Has(c.Field) {
			return domain.UnknownSortFieldError(c.Field)
		}
	}
	return nil
}
