package answer

import (
	"encoding/json"
	"fmt"
)

// Wire format for coordinator-backed stores. Every value carries its kind so
// typed answers survive the round-trip: plain JSON would hand ints back as
// float64 and erase the raw-string vs typed distinction translation relies
// on.
const (
	kindString = "string"
	kindBool   = "bool"
	kindInt    = "int"
	kindList   = "list"
	kindNil    = "nil"
)

type wireValue struct {
	Kind  string          `json:"k"`
	Value json.RawMessage `json:"v,omitempty"`
}

func encodeEntry(entry Entry) ([]byte, error) {
	wire := make(map[string]wireValue, len(entry))
	for key, val := range entry {
		wv, err := encodeValue(val)
		if err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", key, err)
		}
		wire[key] = wv
	}
	return json.Marshal(wire)
}

func encodeValue(val any) (wireValue, error) {
	switch v := val.(type) {
	case nil:
		return wireValue{Kind: kindNil}, nil
	case string:
		return marshalWire(kindString, v)
	case bool:
		return marshalWire(kindBool, v)
	case int:
		return marshalWire(kindInt, v)
	case int64:
		return marshalWire(kindInt, v)
	case []string:
		return marshalWire(kindList, v)
	case []any:
		list := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return wireValue{}, fmt.Errorf("unsupported list member type %T", item)
			}
			list[i] = s
		}
		return marshalWire(kindList, list)
	default:
		return wireValue{}, fmt.Errorf("unsupported answer value type %T", val)
	}
}

func marshalWire(kind string, v any) (wireValue, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return wireValue{}, err
	}
	return wireValue{Kind: kind, Value: raw}, nil
}

func decodeEntry(data []byte) (Entry, error) {
	var wire map[string]wireValue
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decoding entry: %w", err)
	}
	entry := make(Entry, len(wire))
	for key, wv := range wire {
		val, err := decodeValue(wv)
		if err != nil {
			return nil, fmt.Errorf("decoding key %q: %w", key, err)
		}
		entry[key] = val
	}
	return entry, nil
}

func decodeValue(wv wireValue) (any, error) {
	switch wv.Kind {
	case kindNil:
		return nil, nil
	case kindString:
		var s string
		if err := json.Unmarshal(wv.Value, &s); err != nil {
			return nil, err
		}
		return s, nil
	case kindBool:
		var b bool
		if err := json.Unmarshal(wv.Value, &b); err != nil {
			return nil, err
		}
		return b, nil
	case kindInt:
		var n int
		if err := json.Unmarshal(wv.Value, &n); err != nil {
			return nil, err
		}
		return n, nil
	case kindList:
		var list []string
		if err := json.Unmarshal(wv.Value, &list); err != nil {
			return nil, err
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unknown value kind %q", wv.Kind)
	}
}
