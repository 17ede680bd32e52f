package stackitem

import (
	"errors"

	"github.com/n3-go/core/pkg/io"
)

// maxSerializeDepth bounds nested Array/Struct/Map encoding, guarding
// against the unbounded recursion a self-referential item would otherwise
// cause.
const maxSerializeDepth = 10

var errTooDeep = errors.New("stackitem: exceeds serialization depth limit")

// EncodeBinaryStackItem writes item's wire representation: a type tag
// followed by a type-specific payload. InteropInterface items have no wire
// representation and are written as a bare tag; DecodeBinaryStackItem
// reads such a tag back as Null, since an interop handle cannot outlive
// the VM that produced it.
func EncodeBinaryStackItem(item Item, w *io.BinWriter) {
	encodeBinaryStackItem(item, w, 0)
}

func encodeBinaryStackItem(item Item, w *io.BinWriter, depth int) {
	if item == nil {
		w.WriteB(byte(AnyT))
		return
	}
	if depth > maxSerializeDepth {
		w.Err = errTooDeep
		return
	}
	w.WriteB(byte(item.Type()))
	switch t := item.(type) {
	case Boolean:
		w.WriteBool(bool(t))
	case *BigInteger:
		w.WriteVarBytes(io.BigIntToBytes(t.Value()))
	case ByteString:
		w.WriteVarBytes([]byte(t))
	case Buffer:
		w.WriteVarBytes([]byte(t))
	case Null:
		// no payload
	case *InteropInterface:
		// no wire representation; decodes back as Null
	case *Array:
		encodeItems(t.Value, w, depth)
	case *Struct:
		encodeItems(t.Value, w, depth)
	case *Map:
		w.WriteVarUint(uint64(len(t.Value)))
		for _, e := range t.Value {
			encodeBinaryStackItem(e.Key, w, depth+1)
			encodeBinaryStackItem(e.Value, w, depth+1)
		}
	default:
		w.Err = errors.New("stackitem: unknown item type for encoding")
	}
}

func encodeItems(items []Item, w *io.BinWriter, depth int) {
	w.WriteVarUint(uint64(len(items)))
	for _, it := range items {
		encodeBinaryStackItem(it, w, depth+1)
	}
}

// DecodeBinaryStackItem reads back an item written by EncodeBinaryStackItem.
func DecodeBinaryStackItem(r *io.BinReader) Item {
	return decodeBinaryStackItem(r, 0)
}

func decodeBinaryStackItem(r *io.BinReader, depth int) Item {
	if r.Err != nil {
		return nil
	}
	if depth > maxSerializeDepth {
		r.Err = errTooDeep
		return nil
	}
	typ := Type(r.ReadB())
	if r.Err != nil {
		return nil
	}
	switch typ {
	case AnyT:
		return Null{}
	case BooleanT:
		return NewBool(r.ReadBool())
	case IntegerT:
		b := r.ReadVarBytes()
		if r.Err != nil {
			return nil
		}
		return NewBigInteger(io.BytesToBigInt(b))
	case ByteStringT:
		return NewByteArray(r.ReadVarBytes())
	case BufferT:
		return NewBuffer(r.ReadVarBytes())
	case InteropInterfaceT:
		return Null{}
	case ArrayT:
		return NewArray(decodeItems(r, depth))
	case StructT:
		return NewStruct(decodeItems(r, depth))
	case MapT:
		n := r.ReadVarUint()
		m := NewMap()
		for i := uint64(0); i < n && r.Err == nil; i++ {
			k := decodeBinaryStackItem(r, depth+1)
			v := decodeBinaryStackItem(r, depth+1)
			if r.Err == nil {
				m.Add(k, v)
			}
		}
		return m
	default:
		r.Err = errors.New("stackitem: unknown item type for decoding")
		return nil
	}
}

func decodeItems(r *io.BinReader, depth int) []Item {
	n := r.ReadVarUint()
	if r.Err != nil {
		return nil
	}
	items := make([]Item, 0, n)
	for i := uint64(0); i < n; i++ {
		items = append(items, decodeBinaryStackItem(r, depth+1))
		if r.Err != nil {
			return items
		}
	}
	return items
}
