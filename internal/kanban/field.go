package kanban

import (
	"bytes"
	"encoding/json"
)

// Field is an optional, nullable value of a partial update. Set reports that
// the client sent the field; a nil Value then clears it.
type Field[T any] struct {
	Set   bool
	Value *T
}

// SetTo returns a field that assigns v.
func SetTo[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// Clear returns a field that removes the current value.
func Clear[T any]() Field[T] {
	return Field[T]{Set: true}
}

// UnmarshalJSON marks the field as sent. null and "" both clear the value.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
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

// apply returns the patched value given the current one.
func (f Field[T]) apply(current *T) *T {
	if !f.Set {
		return current
	}
	return f.Value
}
