package domain

import (
	"bytes"
	"encoding/json"
)

// Optional wraps a value with an explicit presence marker for partial-update
// payloads. It distinguishes three states that a plain pointer cannot:
//
//   - Set=false: the field did not appear in the payload at all
//   - Set=true, Valid=false: the field appeared with an explicit null
//   - Set=true, Valid=true: the field appeared with a value
//
// Patch application must only touch fields with Set=true.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Some returns an Optional holding the given value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

// Null returns an Optional that was explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked by
// encoding/json when the field is present in the payload, which is what
// makes the Set marker reliable.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true

	if bytes.Equal(data, []byte("null")) {
		o.Valid = false
		var zero T
		o.Value = zero
		return nil
	}

	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
