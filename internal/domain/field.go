package domain

import (
	"bytes"
	"encoding/json"
)

// Field is a tri-state value used by partial updates.
// Absent from the payload: Set is false. Explicit null: Set is true, Value is nil.
type Field[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON is only invoked when the key is present in the payload
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// MarshalJSON renders an unset or null field as null
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}

// Some builds a field holding v
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// Null builds an explicitly cleared field
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

// Merge overwrites *dst when the field was provided; explicit null clears it
func (f Field[T]) Merge(dst **T) {
	if !f.Set {
		return
	}
	if f.Value == nil {
		*dst = nil
		return
	}
	v := *f.Value
	*dst = &v
}

// MergeRequired overwrites a non-nullable destination, rejecting explicit null
func (f Field[T]) MergeRequired(dst *T, name string) error {
	if !f.Set {
		return nil
	}
	if f.Value == nil {
		return BadRequest("%s cannot be null", name)
	}
	*dst = *f.Value
	return nil
}
