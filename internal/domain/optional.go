package domain

import (
	"bytes"
	"encoding/json"
)

// Field is a tri-state value for partial updates: absent, explicitly null, or
// set to a value. The zero Field is absent.
type Field[T any] struct {
	present bool
	null    bool
	value   T
}

// Set returns a present, non-null Field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{present: true, value: v}
}

// Null returns a present Field holding an explicit null.
func Null[T any]() Field[T] {
	return Field[T]{present: true, null: true}
}

// IsPresent reports whether the field was supplied at all.
func (f Field[T]) IsPresent() bool { return f.present }

// IsNull reports whether the field was supplied as an explicit null.
func (f Field[T]) IsNull() bool { return f.present && f.null }

// Get returns the value and true when the field is present and non-null.
func (f Field[T]) Get() (T, bool) {
	if !f.present || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}

// UnmarshalJSON is only invoked for keys that appear in the document, which
// is what makes absent distinguishable from null.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.null = true
		var zero T
		f.value = zero
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}

// MarshalJSON encodes absent and null fields as null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.present || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
