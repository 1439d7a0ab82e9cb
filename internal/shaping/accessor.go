// Package shaping projects values of arbitrary struct types onto a
// caller-chosen subset of their public fields.
package shaping

import (
	"reflect"
	"strings"
	"sync"
)

// IdentityField is always part of a shaped record when the type declares it.
const IdentityField = "id"

type fieldInfo struct {
	name   string // public (json) name
	goName string
	index  []int
}

// typeInfo is the field accessor table of one struct type.
type typeInfo struct {
	typeName string
	fields   []fieldInfo
	lookup   map[string]int
	identity int
}

var typeCache sync.Map // reflect.Type -> *typeInfo

func infoFor(t reflect.Type) *typeInfo {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeInfo)
	}
	info := scan(t)
	actual, _ := typeCache.LoadOrStore(t, info)
	return actual.(*typeInfo)
}

func scan(t reflect.Type) *typeInfo {
	info := &typeInfo{typeName: t.String(), lookup: map[string]int{}, identity: -1}
	if t.Kind() != reflect.Struct {
		return info
	}
	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		name, skip := jsonName(sf)
		if skip {
			continue
		}
		i := len(info.fields)
		info.fields = append(info.fields, fieldInfo{name: name, goName: sf.Name, index: sf.Index})
		for _, key := range []string{strings.ToLower(name), strings.ToLower(sf.Name)} {
			if _, taken := info.lookup[key]; !taken {
				info.lookup[key] = i
			}
		}
		if info.identity < 0 && strings.EqualFold(name, IdentityField) {
			info.identity = i
		}
	}
	return info
}

func jsonName(sf reflect.StructField) (string, bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return sf.Name, false
}

func (ti *typeInfo) find(name string) (int, bool) {
	i, ok := ti.lookup[strings.ToLower(strings.TrimSpace(name))]
	return i, ok
}

// names lists the public field names in declared order.
func (ti *typeInfo) names() []string {
	out := make([]string, len(ti.fields))
	for i, f := range ti.fields {
		out[i] = f.name
	}
	return out
}

func (ti *typeInfo) value(v reflect.Value, i int) any {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	fv, err := v.FieldByIndexErr(ti.fields[i].index)
	if err != nil {
		return nil
	}
	return fv.Interface()
}

// Fields lists the public field names of T in declared order.
func Fields[T any]() []string {
	return infoFor(reflect.TypeOf((*T)(nil)).Elem()).names()
}

// Value reads the field called name (public or Go name, any case) from v.
func Value(v any, name string) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	ti := infoFor(rv.Type())
	i, ok := ti.find(name)
	if !ok {
		return nil, false
	}
	return ti.value(rv, i), true
}
