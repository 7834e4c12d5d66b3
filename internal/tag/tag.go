// Package tag implements the self-describing binary container format used by
// mod-data sidecar files: an NBT-compatible tree of typed values.
package tag

import (
	"fmt"
	"math"
)

// Kind is the wire identifier of a Tag variant.
type Kind uint8

const (
	KindEnd       Kind = 0
	KindByte      Kind = 1
	KindShort     Kind = 2
	KindInt       Kind = 3
	KindLong      Kind = 4
	KindFloat     Kind = 5
	KindDouble    Kind = 6
	KindByteArray Kind = 7
	KindString    Kind = 8
	KindList      Kind = 9
	KindCompound  Kind = 10
	KindIntArray  Kind = 11
)

var kindNames = [...]string{
	KindEnd:       "End",
	KindByte:      "Byte",
	KindShort:     "Short",
	KindInt:       "Int",
	KindLong:      "Long",
	KindFloat:     "Float",
	KindDouble:    "Double",
	KindByteArray: "ByteArray",
	KindString:    "String",
	KindList:      "List",
	KindCompound:  "Compound",
	KindIntArray:  "IntArray",
}

// String returns the variant name, or "Kind(n)" for unknown identifiers.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k names a value-carrying variant.
func (k Kind) Valid() bool {
	return k >= KindByte && k <= KindIntArray
}

// Tag is a single value in a tag tree. The variant set is closed: only the
// types declared in this package implement Tag.
type Tag interface {
	Kind() Kind
	sealed()
}

type (
	// Byte is an unsigned 8-bit value.
	Byte uint8
	// Short is a signed 16-bit value.
	Short int16
	// Int is a signed 32-bit value.
	Int int32
	// Long is a signed 64-bit value.
	Long int64
	// Float is an IEEE-754 single precision value.
	Float float32
	// Double is an IEEE-754 double precision value.
	Double float64
	// String is UTF-8 text.
	String string
	// ByteArray is a length-prefixed byte buffer.
	ByteArray []byte
	// IntArray is a length-prefixed sequence of signed 32-bit values.
	IntArray []int32
)

func (Byte) Kind() Kind      { return KindByte }
func (Short) Kind() Kind     { return KindShort }
func (Int) Kind() Kind       { return KindInt }
func (Long) Kind() Kind      { return KindLong }
func (Float) Kind() Kind     { return KindFloat }
func (Double) Kind() Kind    { return KindDouble }
func (String) Kind() Kind    { return KindString }
func (ByteArray) Kind() Kind { return KindByteArray }
func (IntArray) Kind() Kind  { return KindIntArray }

func (Byte) sealed()      {}
func (Short) sealed()     {}
func (Int) sealed()       {}
func (Long) sealed()      {}
func (Float) sealed()     {}
func (Double) sealed()    {}
func (String) sealed()    {}
func (ByteArray) sealed() {}
func (IntArray) sealed()  {}

// Bool encodes b the way the sidecar format stores booleans: as a Byte.
func Bool(b bool) Byte {
	if b {
		return 1
	}
	return 0
}

// Equal reports whether a and b hold the same variant and value. Floats are
// compared bitwise so a NaN equals an identical NaN.
//
// Postcondition: Equal(a, b) == Equal(b, a).
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Byte, Short, Int, Long, String:
		return a == b
	case Float:
		return math.Float32bits(float32(av)) == math.Float32bits(float32(b.(Float)))
	case Double:
		return math.Float64bits(float64(av)) == math.Float64bits(float64(b.(Double)))
	case ByteArray:
		bv := b.(ByteArray)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case IntArray:
		bv := b.(IntArray)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case *List:
		return av.Equal(b.(*List))
	case *Compound:
		return av.Equal(b.(*Compound))
	default:
		panic(fmt.Sprintf("tag: unhandled variant %T", a))
	}
}

// Clone returns a deep copy of t.
func Clone(t Tag) Tag {
	switch v := t.(type) {
	case nil:
		return nil
	case ByteArray:
		return append(ByteArray(nil), v...)
	case IntArray:
		return append(IntArray(nil), v...)
	case *List:
		return v.Clone()
	case *Compound:
		return v.Clone()
	default:
		return t
	}
}
