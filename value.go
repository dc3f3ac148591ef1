package obsipc

import (
	"bytes"
	"fmt"
	"math"

	"github.com/danderson/obsipc/fragments"
)

// Kind identifies which of the fixed set of wire types a [Value]
// holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindFloat
	KindDouble
	KindInt32
	KindInt64
	KindUInt32
	KindUInt64
	KindString
	KindBinary

	numKinds
)

var kindNames = [numKinds]string{
	KindNull:   "Null",
	KindFloat:  "Float",
	KindDouble: "Double",
	KindInt32:  "Int32",
	KindInt64:  "Int64",
	KindUInt32: "UInt32",
	KindUInt64: "UInt64",
	KindString: "String",
	KindBinary: "Binary",
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool { return k < numKinds }

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// fixedSize returns the payload size of numeric and null kinds, and
// -1 for length-prefixed kinds.
func (k Kind) fixedSize() int {
	switch k {
	case KindNull:
		return 0
	case KindFloat, KindInt32, KindUInt32:
		return 4
	case KindDouble, KindInt64, KindUInt64:
		return 8
	default:
		return -1
	}
}

// A Value is a single call argument or reply element.
//
// The zero Value is Null. Values are immutable, and own their
// payload: constructing a Value from a byte slice copies it, and
// reading a byte slice back out returns a copy.
type Value struct {
	kind Kind
	num  uint64
	str  string
}

// Null returns a Null value.
func Null() Value { return Value{} }

// Float32 returns a Float value.
func Float32(f float32) Value {
	return Value{kind: KindFloat, num: uint64(math.Float32bits(f))}
}

// Float64 returns a Double value.
func Float64(f float64) Value {
	return Value{kind: KindDouble, num: math.Float64bits(f)}
}

// Int32 returns an Int32 value.
func Int32(i int32) Value { return Value{kind: KindInt32, num: uint64(uint32(i))} }

// Int64 returns an Int64 value.
func Int64(i int64) Value { return Value{kind: KindInt64, num: uint64(i)} }

// Uint32 returns a UInt32 value.
func Uint32(u uint32) Value { return Value{kind: KindUInt32, num: uint64(u)} }

// Uint64 returns a UInt64 value.
func Uint64(u uint64) Value { return Value{kind: KindUInt64, num: u} }

// Bool returns an Int32 value of 1 or 0. The wire format has no
// boolean kind.
func Bool(b bool) Value {
	if b {
		return Int32(1)
	}
	return Int32(0)
}

// String returns a String value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Binary returns a Binary value holding a copy of bs.
func Binary(bs []byte) Value { return Value{kind: KindBinary, str: string(bs)} }

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// The following accessors return the value's payload interpreted as
// the named type. They do not check v's kind: it is the caller's
// responsibility to only read a Value as the kind it holds, which the
// [Dispatcher] guarantees for registered call signatures.

func (v Value) AsFloat32() float32 { return math.Float32frombits(uint32(v.num)) }
func (v Value) AsFloat64() float64 { return math.Float64frombits(v.num) }
func (v Value) AsInt32() int32     { return int32(uint32(v.num)) }
func (v Value) AsInt64() int64     { return int64(v.num) }
func (v Value) AsUint32() uint32   { return uint32(v.num) }
func (v Value) AsUint64() uint64   { return v.num }
func (v Value) AsBool() bool       { return v.num != 0 }
func (v Value) AsString() string   { return v.str }

// AsBytes returns a copy of a Binary or String value's payload.
func (v Value) AsBytes() []byte { return []byte(v.str) }

// Equal reports whether v and o have the same kind and payload.
//
// Floating point payloads compare bitwise, so NaN values with the
// same bit pattern are equal.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.num == o.num && v.str == o.str
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindFloat:
		return fmt.Sprintf("float(%v)", v.AsFloat32())
	case KindDouble:
		return fmt.Sprintf("double(%v)", v.AsFloat64())
	case KindInt32:
		return fmt.Sprintf("int32(%d)", v.AsInt32())
	case KindInt64:
		return fmt.Sprintf("int64(%d)", v.AsInt64())
	case KindUInt32:
		return fmt.Sprintf("uint32(%d)", v.AsUint32())
	case KindUInt64:
		return fmt.Sprintf("uint64(%d)", v.AsUint64())
	case KindString:
		return fmt.Sprintf("string(%q)", v.str)
	case KindBinary:
		return fmt.Sprintf("binary(% x)", []byte(v.str))
	default:
		return v.kind.String()
	}
}

// ValueSize returns the number of bytes [AppendValue] writes for v.
func ValueSize(v Value) int {
	if n := v.kind.fixedSize(); n >= 0 {
		return 1 + n
	}
	return 1 + fragments.StringSize(v.str)
}

// AppendValue appends the wire encoding of v to bs.
func AppendValue(bs []byte, v Value) []byte {
	e := fragments.Encoder{Out: bs}
	encodeValue(&e, v)
	return e.Out
}

func encodeValue(e *fragments.Encoder, v Value) {
	e.Uint8(uint8(v.kind))
	switch v.kind {
	case KindNull:
	case KindFloat, KindInt32, KindUInt32:
		e.Uint32(uint32(v.num))
	case KindDouble, KindInt64, KindUInt64:
		e.Uint64(v.num)
	case KindString, KindBinary:
		e.String(v.str)
	default:
		panic(fmt.Sprintf("encoding invalid value kind %d", v.kind))
	}
}

// DecodeValue decodes one value starting at bs[off:], and returns the
// value and the offset of the first byte following it.
//
// On error, DecodeValue returns a [*DecodeError] whose cause is either
// [ErrUnknownKind] or [ErrTruncated].
func DecodeValue(bs []byte, off int) (Value, int, error) {
	d := fragments.Decoder{In: bs, Offset: off}
	v, err := decodeValue(&d)
	if err != nil {
		return Value{}, off, err
	}
	return v, d.Offset, nil
}

func decodeValue(d *fragments.Decoder) (Value, error) {
	start := d.Offset
	fail := func(err error) (Value, error) {
		d.Offset = start
		return Value{}, &DecodeError{Offset: start, Reason: err}
	}

	k, err := d.Uint8()
	if err != nil {
		return fail(err)
	}
	kind := Kind(k)
	switch kind {
	case KindNull:
		return Value{}, nil
	case KindFloat, KindInt32, KindUInt32:
		u, err := d.Uint32()
		if err != nil {
			return fail(err)
		}
		return Value{kind: kind, num: uint64(u)}, nil
	case KindDouble, KindInt64, KindUInt64:
		u, err := d.Uint64()
		if err != nil {
			return fail(err)
		}
		return Value{kind: kind, num: u}, nil
	case KindString, KindBinary:
		s, err := d.String()
		if err != nil {
			return fail(err)
		}
		return Value{kind: kind, str: s}, nil
	default:
		return fail(fmt.Errorf("%w %d", ErrUnknownKind, k))
	}
}

// appendValues appends a counted list of values.
func appendValues(e *fragments.Encoder, vs []Value) {
	e.Array(len(vs), func(i int) error {
		encodeValue(e, vs[i])
		return nil
	})
}

// decodeValues decodes a counted list of values.
func decodeValues(d *fragments.Decoder) ([]Value, error) {
	var ret []Value
	_, err := d.Array(1, func(int) error {
		v, err := decodeValue(d)
		if err != nil {
			return err
		}
		ret = append(ret, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// FormatValues returns a compact human-readable rendering of vs.
func FormatValues(vs []Value) string {
	var b bytes.Buffer
	b.WriteByte('[')
	for i, v := range vs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	b.WriteByte(']')
	return b.String()
}
