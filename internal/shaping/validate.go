package shaping

import "reflect"

// CheckFields reports whether every non-blank token of fields names a public
// field of T, ignoring case. Blank fields is always valid. The error names
// the first unknown token.
func CheckFields[T any](fields string) error {
	_, err := selectFor(infoFor(reflect.TypeOf((*T)(nil)).Elem()), fields)
	return err
}
