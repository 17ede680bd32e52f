package stackitem

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

var typeNames = map[Type]string{
	AnyT:              "Any",
	BooleanT:          "Boolean",
	IntegerT:          "Integer",
	ByteStringT:       "ByteString",
	BufferT:           "Buffer",
	ArrayT:            "Array",
	StructT:           "Struct",
	MapT:              "Map",
	InteropInterfaceT: "InteropInterface",
	PointerT:          "Pointer",
}

var namesToType = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, n := range typeNames {
		m[n] = t
	}
	return m
}()

// String renders the type's manifest/JSON name.
func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Unknown(0x%02x)", byte(t))
}

// TypeFromString parses a manifest/JSON type name.
func TypeFromString(s string) (Type, error) {
	t, ok := namesToType[s]
	if !ok {
		return 0, fmt.Errorf("stackitem: unknown type name %q", s)
	}
	return t, nil
}

// jsonItem is the wire shape of an Item in JSON form.
type jsonItem struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

const maxJSONDepth = 10

// ToJSON renders item as its manifest-style JSON encoding.
func ToJSON(item Item) ([]byte, error) {
	return toJSON(item, 0)
}

func toJSON(item Item, depth int) ([]byte, error) {
	if item == nil {
		return json.Marshal(jsonItem{Type: AnyT.String()})
	}
	if depth > maxJSONDepth {
		return nil, errors.New("stackitem: exceeds JSON depth limit")
	}
	switch t := item.(type) {
	case Boolean:
		v, _ := json.Marshal(bool(t))
		return json.Marshal(jsonItem{Type: BooleanT.String(), Value: v})
	case *BigInteger:
		v, _ := json.Marshal(t.Value().String())
		return json.Marshal(jsonItem{Type: IntegerT.String(), Value: v})
	case ByteString:
		v, _ := json.Marshal(base64.StdEncoding.EncodeToString(t))
		return json.Marshal(jsonItem{Type: ByteStringT.String(), Value: v})
	case Buffer:
		v, _ := json.Marshal(base64.StdEncoding.EncodeToString(t))
		return json.Marshal(jsonItem{Type: BufferT.String(), Value: v})
	case Null:
		return json.Marshal(jsonItem{Type: AnyT.String()})
	case *InteropInterface:
		return json.Marshal(jsonItem{Type: InteropInterfaceT.String()})
	case *Array:
		return toJSONItems(ArrayT, t.Value, depth)
	case *Struct:
		return toJSONItems(StructT, t.Value, depth)
	case *Map:
		entries := make([]json.RawMessage, 0, len(t.Value)*2)
		for _, e := range t.Value {
			kb, err := toJSON(e.Key, depth+1)
			if err != nil {
				return nil, err
			}
			vb, err := toJSON(e.Value, depth+1)
			if err != nil {
				return nil, err
			}
			pair, _ := json.Marshal([]json.RawMessage{kb, vb})
			entries = append(entries, pair)
		}
		v, _ := json.Marshal(entries)
		return json.Marshal(jsonItem{Type: MapT.String(), Value: v})
	default:
		return nil, fmt.Errorf("stackitem: cannot render %T as JSON", item)
	}
}

func toJSONItems(typ Type, items []Item, depth int) ([]byte, error) {
	parts := make([]json.RawMessage, len(items))
	for i, it := range items {
		b, err := toJSON(it, depth+1)
		if err != nil {
			return nil, err
		}
		parts[i] = b
	}
	v, _ := json.Marshal(parts)
	return json.Marshal(jsonItem{Type: typ.String(), Value: v})
}

// FromJSON parses an item encoded by ToJSON.
func FromJSON(data []byte) (Item, error) {
	return fromJSON(data, 0)
}

func fromJSON(data []byte, depth int) (Item, error) {
	if depth > maxJSONDepth {
		return nil, errors.New("stackitem: exceeds JSON depth limit")
	}
	var ji jsonItem
	if err := json.Unmarshal(data, &ji); err != nil {
		return nil, err
	}
	typ, err := TypeFromString(ji.Type)
	if err != nil {
		return nil, err
	}
	switch typ {
	case AnyT:
		return Null{}, nil
	case BooleanT:
		var b bool
		if err := json.Unmarshal(ji.Value, &b); err != nil {
			return nil, err
		}
		return NewBool(b), nil
	case IntegerT:
		var s string
		if err := json.Unmarshal(ji.Value, &s); err != nil {
			return nil, err
		}
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("stackitem: invalid integer %q", s)
		}
		return NewBigInteger(n), nil
	case ByteStringT, BufferT:
		var s string
		if err := json.Unmarshal(ji.Value, &s); err != nil {
			return nil, err
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, err
		}
		if typ == BufferT {
			return NewBuffer(b), nil
		}
		return NewByteArray(b), nil
	case InteropInterfaceT:
		return Null{}, nil
	case ArrayT, StructT:
		var raw []json.RawMessage
		if err := json.Unmarshal(ji.Value, &raw); err != nil {
			return nil, err
		}
		items := make([]Item, len(raw))
		for i, r := range raw {
			it, err := fromJSON(r, depth+1)
			if err != nil {
				return nil, err
			}
			items[i] = it
		}
		if typ == StructT {
			return NewStruct(items), nil
		}
		return NewArray(items), nil
	case MapT:
		var raw []json.RawMessage
		if err := json.Unmarshal(ji.Value, &raw); err != nil {
			return nil, err
		}
		m := NewMap()
		for _, pairRaw := range raw {
			var pair []json.RawMessage
			if err := json.Unmarshal(pairRaw, &pair); err != nil || len(pair) != 2 {
				return nil, errors.New("stackitem: invalid map entry")
			}
			k, err := fromJSON(pair[0], depth+1)
			if err != nil {
				return nil, err
			}
			v, err := fromJSON(pair[1], depth+1)
			if err != nil {
				return nil, err
			}
			m.Add(k, v)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("stackitem: cannot parse JSON type %q", ji.Type)
	}
}
