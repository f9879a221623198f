package cell

import (
	"encoding/json"
	"fmt"
)

// envelope is the tagged wire shape shared by on-disk cell storage and
// backup records:
//
//	{"type": "int"|"long"|"float"|"double"|"string"|"boolean"|"stringSet", "value": <json>}
type envelope struct {
	Type  Tag             `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Marshal encodes a Value as its tagged JSON envelope.
func Marshal(v Value) ([]byte, error) {
	var raw json.RawMessage
	var err error
	switch v.Tag {
	case TagBool:
		raw, err = json.Marshal(v.B)
	case TagInt32:
		raw, err = json.Marshal(v.I32)
	case TagInt64:
		raw, err = json.Marshal(v.I64)
	case TagFloat32:
		raw, err = json.Marshal(v.F32)
	case TagFloat64:
		raw, err = json.Marshal(v.F64)
	case TagString:
		raw, err = json.Marshal(v.S)
	case TagStringSet:
		raw, err = json.Marshal(v.Set.Slice())
	default:
		return nil, fmt.Errorf("cell: unknown tag %q", v.Tag)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: v.Tag, Value: raw})
}

// Unmarshal decodes a tagged JSON envelope back into a Value. An unknown
// tag or a type/value mismatch is returned as an error; callers at the
// backup layer treat this as a per-entry rejection, never a panic.
func Unmarshal(data []byte) (Value, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Value{}, fmt.Errorf("cell: invalid envelope: %w", err)
	}
	switch env.Type {
	case TagBool:
		var b bool
		if err := json.Unmarshal(env.Value, &b); err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case TagInt32:
		var i int32
		if err := json.Unmarshal(env.Value, &i); err != nil {
			return Value{}, err
		}
		return Int32(i), nil
	case TagInt64:
		var i int64
		if err := json.Unmarshal(env.Value, &i); err != nil {
			return Value{}, err
		}
		return Int64(i), nil
	case TagFloat32:
		var f float32
		if err := json.Unmarshal(env.Value, &f); err != nil {
			return Value{}, err
		}
		return Float32(f), nil
	case TagFloat64:
		var f float64
		if err := json.Unmarshal(env.Value, &f); err != nil {
			return Value{}, err
		}
		return Float64(f), nil
	case TagString:
		var s string
		if err := json.Unmarshal(env.Value, &s); err != nil {
			return Value{}, err
		}
		return String(s), nil
	case TagStringSet:
		var items []string
		if err := json.Unmarshal(env.Value, &items); err != nil {
			return Value{}, err
		}
		return Set(NewStringSet(items...)), nil
	default:
		return Value{}, fmt.Errorf("cell: unrecognized tag %q", env.Type)
	}
}
