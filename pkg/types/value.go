package types

import (
	"encoding/json"
	"fmt"
)

// Value is a closed JSON value variant: exactly one of Null, Bool,
// Number, String, Array or Object. Using a closed set instead of
// interface{} keeps serialization of the opaque context snapshots
// total: every Value marshals, no reflection surprises.
type Value interface {
	isValue()
}

// Null is the JSON null literal.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Number is a JSON number. All numbers decode to float64.
type Number float64

// String is a JSON string.
type String string

// Array is an ordered JSON array.
type Array []Value

// Object is a JSON object. A nil Object marshals as null, which is how
// absent context snapshots appear on the wire.
type Object map[string]Value

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Number) isValue() {}
func (String) isValue() {}
func (Array) isValue()  {}
func (Object) isValue() {}

// MarshalJSON renders the null literal.
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// UnmarshalJSON decodes arbitrary JSON into the closed variant.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := DecodeValue(data)
	if err != nil {
		return err
	}
	if _, ok := v.(Null); ok {
		*o = nil
		return nil
	}
	obj, ok := v.(Object)
	if !ok {
		return fmt.Errorf("types: expected JSON object, got %T", v)
	}
	*o = obj
	return nil
}

// UnmarshalJSON decodes arbitrary JSON into the closed variant.
func (a *Array) UnmarshalJSON(data []byte) error {
	v, err := DecodeValue(data)
	if err != nil {
		return err
	}
	arr, ok := v.(Array)
	if !ok {
		return fmt.Errorf("types: expected JSON array, got %T", v)
	}
	*a = arr
	return nil
}

// DecodeValue parses raw JSON into a Value.
func DecodeValue(data []byte) (Value, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("types: decode value: %w", err)
	}
	return fromAny(raw), nil
}

// fromAny converts the encoding/json default representation into the
// closed variant.
func fromAny(raw interface{}) Value {
	switch v := raw.(type) {
	case nil:
		return Null{}
	case bool:
		return Bool(v)
	case float64:
		return Number(v)
	case string:
		return String(v)
	case []interface{}:
		arr := make(Array, len(v))
		for i, e := range v {
			arr[i] = fromAny(e)
		}
		return arr
	case map[string]interface{}:
		obj := make(Object, len(v))
		for k, e := range v {
			obj[k] = fromAny(e)
		}
		return obj
	default:
		// encoding/json never produces another type.
		return Null{}
	}
}
