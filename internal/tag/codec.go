package tag

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// MaxDepth bounds compound/list nesting on decode.
const MaxDepth = 512

// MaxStringLen is the longest string payload, in bytes, the writer accepts.
// Readers of the external format decode the length as a signed 16-bit value.
const MaxStringLen = math.MaxInt16

var (
	// ErrUnknownType reports a type byte outside the variant set.
	ErrUnknownType = errors.New("tag: unknown type")
	// ErrTruncated reports a read past the end of the buffer.
	ErrTruncated = errors.New("tag: truncated data")
	// ErrNegativeLength reports a negative array or list length.
	ErrNegativeLength = errors.New("tag: negative length")
	// ErrRootNotCompound reports a tree whose root is not a compound.
	ErrRootNotCompound = errors.New("tag: root is not a compound")
	// ErrTooDeep reports nesting beyond MaxDepth.
	ErrTooDeep = errors.New("tag: nesting too deep")
	// ErrStringTooLong reports a string that cannot be length-prefixed.
	ErrStringTooLong = errors.New("tag: string too long")
)

// Write serialises c as a root compound with an empty name.
//
// Precondition: c must be non-nil.
// Postcondition: on success the complete tree has been written to w.
func Write(w io.Writer, c *Compound) error {
	buf, err := Append(nil, c)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("writing tag tree: %w", err)
	}
	return nil
}

// Append appends the root encoding of c to dst.
func Append(dst []byte, c *Compound) ([]byte, error) {
	if c == nil {
		return dst, ErrRootNotCompound
	}
	dst = append(dst, byte(KindCompound))
	dst, err := appendString(dst, "")
	if err != nil {
		return dst, err
	}
	return appendPayload(dst, c)
}

func appendString(dst []byte, s string) ([]byte, error) {
	if len(s) > MaxStringLen {
		return dst, fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s))
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(s)))
	return append(dst, s...), nil
}

func appendPayload(dst []byte, t Tag) ([]byte, error) {
	var err error
	switch v := t.(type) {
	case Byte:
		dst = append(dst, byte(v))
	case Short:
		dst = binary.BigEndian.AppendUint16(dst, uint16(v))
	case Int:
		dst = binary.BigEndian.AppendUint32(dst, uint32(v))
	case Long:
		dst = binary.BigEndian.AppendUint64(dst, uint64(v))
	case Float:
		dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(float32(v)))
	case Double:
		dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(float64(v)))
	case String:
		dst, err = appendString(dst, string(v))
	case ByteArray:
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(v)))
		dst = append(dst, v...)
	case IntArray:
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(v)))
		for _, i := range v {
			dst = binary.BigEndian.AppendUint32(dst, uint32(i))
		}
	case *List:
		dst, err = appendList(dst, v)
	case *Compound:
		for _, k := range v.Keys() {
			child, _ := v.Get(k)
			dst = append(dst, byte(child.Kind()))
			if dst, err = appendString(dst, k); err != nil {
				return dst, err
			}
			if dst, err = appendPayload(dst, child); err != nil {
				return dst, fmt.Errorf("key %q: %w", k, err)
			}
		}
		dst = append(dst, byte(KindEnd))
	default:
		return dst, fmt.Errorf("%w: %T", ErrUnknownType, t)
	}
	return dst, err
}

func appendList(dst []byte, l *List) ([]byte, error) {
	elem := l.Elem
	if len(l.Items) == 0 && !elem.Valid() {
		elem = KindEnd
	}
	dst = append(dst, byte(elem))
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(l.Items)))
	var err error
	for i, it := range l.Items {
		if it == nil || it.Kind() != elem {
			return dst, fmt.Errorf("tag: list of %s holds %v at index %d", elem, it, i)
		}
		if dst, err = appendPayload(dst, it); err != nil {
			return dst, err
		}
	}
	return dst, nil
}

// Read decodes a root compound from r. The whole stream is consumed.
//
// Postcondition: returns a non-nil Compound or a non-nil error; partial
// trees are never returned.
func Read(r io.Reader) (*Compound, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading tag tree: %w", err)
	}
	return Decode(data)
}

// Decode decodes a root compound from data. Bytes after the root are ignored.
func Decode(data []byte) (*Compound, error) {
	d := &decoder{buf: data}
	kind, err := d.u8()
	if err != nil {
		return nil, err
	}
	if Kind(kind) != KindCompound {
		return nil, fmt.Errorf("%w: got %s", ErrRootNotCompound, Kind(kind))
	}
	if _, err := d.str(); err != nil {
		return nil, fmt.Errorf("root name: %w", err)
	}
	t, err := d.payload(KindCompound, 0)
	if err != nil {
		return nil, err
	}
	return t.(*Compound), nil
}

// decoder is a bounds-checked cursor over an in-memory tag tree.
type decoder struct {
	buf []byte
	off int
}

func (d *decoder) need(n int) ([]byte, error) {
	if n < 0 || len(d.buf)-d.off < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, d.off, len(d.buf)-d.off)
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) u8() (uint8, error) {
	b, err := d.need(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) u16() (uint16, error) {
	b, err := d.need(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *decoder) u32() (uint32, error) {
	b, err := d.need(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *decoder) u64() (uint64, error) {
	b, err := d.need(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// length reads a signed 32-bit count and checks it against the bytes left,
// assuming each element occupies at least width bytes.
func (d *decoder) length(width int) (int, error) {
	u, err := d.u32()
	if err != nil {
		return 0, err
	}
	n := int(int32(u))
	if n < 0 {
		return 0, fmt.Errorf("%w: %d at offset %d", ErrNegativeLength, n, d.off-4)
	}
	if width > 0 && n > (len(d.buf)-d.off)/width {
		return 0, fmt.Errorf("%w: %d elements of %d bytes at offset %d", ErrTruncated, n, width, d.off)
	}
	return n, nil
}

func (d *decoder) str() (string, error) {
	n, err := d.u16()
	if err != nil {
		return "", err
	}
	b, err := d.need(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return string([]rune(string(b))), nil
	}
	return string(b), nil
}

// minWidth is the smallest encoded payload of each kind.
func minWidth(k Kind) int {
	switch k {
	case KindByte, KindCompound:
		return 1
	case KindShort, KindString:
		return 2
	case KindInt, KindFloat, KindByteArray, KindIntArray:
		return 4
	case KindLong, KindDouble:
		return 8
	case KindList:
		return 5
	default:
		return 0
	}
}

func (d *decoder) payload(k Kind, depth int) (Tag, error) {
	switch k {
	case KindByte:
		v, err := d.u8()
		return Byte(v), err
	case KindShort:
		v, err := d.u16()
		return Short(int16(v)), err
	case KindInt:
		v, err := d.u32()
		return Int(int32(v)), err
	case KindLong:
		v, err := d.u64()
		return Long(int64(v)), err
	case KindFloat:
		v, err := d.u32()
		return Float(math.Float32frombits(v)), err
	case KindDouble:
		v, err := d.u64()
		return Double(math.Float64frombits(v)), err
	case KindString:
		s, err := d.str()
		return String(s), err
	case KindByteArray:
		n, err := d.length(1)
		if err != nil {
			return nil, err
		}
		b, err := d.need(n)
		if err != nil {
			return nil, err
		}
		return append(ByteArray{}, b...), nil
	case KindIntArray:
		n, err := d.length(4)
		if err != nil {
			return nil, err
		}
		out := make(IntArray, n)
		for i := range out {
			v, err := d.u32()
			if err != nil {
				return nil, err
			}
			out[i] = int32(v)
		}
		return out, nil
	case KindList:
		return d.list(depth)
	case KindCompound:
		return d.compound(depth)
	default:
		return nil, fmt.Errorf("%w: %d at offset %d", ErrUnknownType, uint8(k), d.off)
	}
}

func (d *decoder) list(depth int) (Tag, error) {
	if depth >= MaxDepth {
		return nil, ErrTooDeep
	}
	eb, err := d.u8()
	if err != nil {
		return nil, err
	}
	elem := Kind(eb)
	n, err := d.length(minWidth(elem))
	if err != nil {
		return nil, err
	}
	if n > 0 && !elem.Valid() {
		return nil, fmt.Errorf("%w: list element %d at offset %d", ErrUnknownType, eb, d.off)
	}
	l := &List{Elem: elem, Items: make([]Tag, 0, n)}
	for i := 0; i < n; i++ {
		it, err := d.payload(elem, depth+1)
		if err != nil {
			return nil, fmt.Errorf("list index %d: %w", i, err)
		}
		l.Items = append(l.Items, it)
	}
	return l, nil
}

func (d *decoder) compound(depth int) (Tag, error) {
	if depth >= MaxDepth {
		return nil, ErrTooDeep
	}
	c := NewCompound()
	for {
		kb, err := d.u8()
		if err != nil {
			return nil, err
		}
		k := Kind(kb)
		if k == KindEnd {
			return c, nil
		}
		if !k.Valid() {
			return nil, fmt.Errorf("%w: %d at offset %d", ErrUnknownType, kb, d.off-1)
		}
		name, err := d.str()
		if err != nil {
			return nil, err
		}
		v, err := d.payload(k, depth+1)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", name, err)
		}
		c.Set(name, v)
	}
}
