// Package stackitem implements the tagged value types that flow across the
// VM evaluation stack and the syscall boundary: Boolean, Integer,
// ByteString, Buffer, Array, Struct, Map, InteropInterface, and Null.
// Pointer exists only as the PointerT type tag; there is no Pointer item
// type.
package stackitem

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/n3-go/core/pkg/io"
)

// Type tags the concrete kind of an Item, used for CONVERT and JSON/manifest
// round-tripping.
type Type byte

// Item type tags.
const (
	AnyT             Type = 0x00
	BooleanT         Type = 0x20
	IntegerT         Type = 0x21
	ByteStringT      Type = 0x28
	BufferT          Type = 0x30
	ArrayT           Type = 0x40
	StructT          Type = 0x41
	MapT             Type = 0x48
	InteropInterfaceT Type = 0x60
	PointerT         Type = 0x10
)

// MaxBigIntegerSizeBits bounds Integer items to the N3 VM limit.
const MaxBigIntegerSizeBits = 256

// Item is any value that can live on the VM evaluation stack.
type Item interface {
	Type() Type
	// Bool converts the item to a boolean per the VM's truthiness rules.
	Bool() bool
	// TryBytes attempts a conversion to a raw byte slice; only
	// ByteString, Buffer, Integer, and Boolean support it.
	TryBytes() ([]byte, error)
	// TryInteger attempts a conversion to a big.Int.
	TryInteger() (*big.Int, error)
	// String renders a human-readable representation for logs/diagnostics.
	String() string
}

// CheckIntegerSize returns an error if n does not fit in
// MaxBigIntegerSizeBits bits (two's complement).
func CheckIntegerSize(n *big.Int) error {
	if n.BitLen() > MaxBigIntegerSizeBits {
		return fmt.Errorf("stackitem: integer exceeds %d bits", MaxBigIntegerSizeBits)
	}
	return nil
}

// Boolean is a true/false item.
type Boolean bool

func NewBool(b bool) Boolean { return Boolean(b) }

func (Boolean) Type() Type { return BooleanT }
func (b Boolean) Bool() bool { return bool(b) }
func (b Boolean) TryBytes() ([]byte, error) {
	if b {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}
func (b Boolean) TryInteger() (*big.Int, error) {
	if b {
		return big.NewInt(1), nil
	}
	return big.NewInt(0), nil
}
func (b Boolean) String() string { return fmt.Sprintf("Boolean(%v)", bool(b)) }

// BigInteger is an arbitrary-precision signed integer item.
type BigInteger struct{ value *big.Int }

func NewBigInteger(n *big.Int) *BigInteger { return &BigInteger{value: n} }

func (*BigInteger) Type() Type        { return IntegerT }
func (i *BigInteger) Bool() bool      { return i.value.Sign() != 0 }
func (i *BigInteger) Value() *big.Int { return i.value }
func (i *BigInteger) TryBytes() ([]byte, error) {
	return io.BigIntToBytes(i.value), nil
}
func (i *BigInteger) TryInteger() (*big.Int, error) { return i.value, nil }
func (i *BigInteger) String() string                { return fmt.Sprintf("Integer(%s)", i.value.String()) }

// ByteString is an immutable byte string item.
type ByteString []byte

func NewByteArray(b []byte) ByteString { return ByteString(b) }

func (ByteString) Type() Type          { return ByteStringT }
func (b ByteString) Bool() bool        { return !isAllZero(b) }
func (b ByteString) TryBytes() ([]byte, error) { return []byte(b), nil }
func (b ByteString) TryInteger() (*big.Int, error) {
	if len(b) > 32 {
		return nil, errors.New("stackitem: byte string too long to convert to integer")
	}
	return io.BytesToBigInt(b), nil
}
func (b ByteString) String() string { return fmt.Sprintf("ByteString(%x)", []byte(b)) }

func isAllZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// Buffer is a mutable byte string item.
type Buffer []byte

func NewBuffer(b []byte) Buffer { return Buffer(b) }

func (Buffer) Type() Type              { return BufferT }
func (b Buffer) Bool() bool            { return true }
func (b Buffer) TryBytes() ([]byte, error) { return []byte(b), nil }
func (b Buffer) TryInteger() (*big.Int, error) {
	if len(b) > 32 {
		return nil, errors.New("stackitem: buffer too long to convert to integer")
	}
	return io.BytesToBigInt(b), nil
}
func (b Buffer) String() string { return fmt.Sprintf("Buffer(%x)", []byte(b)) }

// Null is the sentinel absent-value item.
type Null struct{}

func (Null) Type() Type                   { return AnyT }
func (Null) Bool() bool                   { return false }
func (Null) TryBytes() ([]byte, error)    { return nil, errors.New("stackitem: null has no byte representation") }
func (Null) TryInteger() (*big.Int, error) { return nil, errors.New("stackitem: null has no integer representation") }
func (Null) String() string               { return "Null" }

// Array is an ordered, mutable, by-reference collection.
type Array struct {
	Value []Item
}

func NewArray(items []Item) *Array { return &Array{Value: items} }

func (*Array) Type() Type { return ArrayT }
func (a *Array) Bool() bool { return true }
func (a *Array) TryBytes() ([]byte, error) {
	return nil, errors.New("stackitem: array has no byte representation")
}
func (a *Array) TryInteger() (*big.Int, error) {
	return nil, errors.New("stackitem: array has no integer representation")
}
func (a *Array) String() string { return fmt.Sprintf("Array(len=%d)", len(a.Value)) }

// Struct is like Array but compares by structural equality rather than
// reference identity.
type Struct struct {
	Value []Item
}

func NewStruct(items []Item) *Struct { return &Struct{Value: items} }

func (*Struct) Type() Type { return StructT }
func (s *Struct) Bool() bool { return true }
func (s *Struct) TryBytes() ([]byte, error) {
	return nil, errors.New("stackitem: struct has no byte representation")
}
func (s *Struct) TryInteger() (*big.Int, error) {
	return nil, errors.New("stackitem: struct has no integer representation")
}
func (s *Struct) String() string { return fmt.Sprintf("Struct(len=%d)", len(s.Value)) }

// MapElement is a single key/value pair of a Map item.
type MapElement struct {
	Key   Item
	Value Item
}

// Map is an ordered associative collection keyed by primitive items.
type Map struct {
	Value []MapElement
}

func NewMap() *Map { return &Map{} }

func (*Map) Type() Type { return MapT }
func (m *Map) Bool() bool { return true }
func (m *Map) TryBytes() ([]byte, error) {
	return nil, errors.New("stackitem: map has no byte representation")
}
func (m *Map) TryInteger() (*big.Int, error) {
	return nil, errors.New("stackitem: map has no integer representation")
}
func (m *Map) String() string { return fmt.Sprintf("Map(len=%d)", len(m.Value)) }

// Add inserts or replaces the value for key.
func (m *Map) Add(key, value Item) {
	kb, _ := key.TryBytes()
	for i := range m.Value {
		if eb, err := m.Value[i].Key.TryBytes(); err == nil && string(eb) == string(kb) {
			m.Value[i].Value = value
			return
		}
	}
	m.Value = append(m.Value, MapElement{Key: key, Value: value})
}

// InteropInterface wraps an opaque Go value (e.g. an iterator handle) so it
// can be carried on the evaluation stack without being interpretable by
// ordinary VM arithmetic.
type InteropInterface struct {
	Value interface{}
}

func NewInterop(v interface{}) *InteropInterface { return &InteropInterface{Value: v} }

func (*InteropInterface) Type() Type { return InteropInterfaceT }
func (*InteropInterface) Bool() bool { return true }
func (*InteropInterface) TryBytes() ([]byte, error) {
	return nil, errors.New("stackitem: interop interface has no byte representation")
}
func (*InteropInterface) TryInteger() (*big.Int, error) {
	return nil, errors.New("stackitem: interop interface has no integer representation")
}
func (i *InteropInterface) String() string { return fmt.Sprintf("InteropInterface(%T)", i.Value) }

// Make converts a Go native value into the corresponding Item.
func Make(v interface{}) Item {
	switch val := v.(type) {
	case Item:
		return val
	case bool:
		return NewBool(val)
	case int:
		return NewBigInteger(big.NewInt(int64(val)))
	case int64:
		return NewBigInteger(big.NewInt(val))
	case uint32:
		return NewBigInteger(new(big.Int).SetUint64(uint64(val)))
	case uint64:
		return NewBigInteger(new(big.Int).SetUint64(val))
	case *big.Int:
		return NewBigInteger(val)
	case []byte:
		return NewByteArray(val)
	case string:
		return NewByteArray([]byte(val))
	case nil:
		return Null{}
	default:
		panic(fmt.Sprintf("stackitem: cannot convert %T to Item", v))
	}
}
