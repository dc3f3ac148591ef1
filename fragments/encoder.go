package fragments

import (
	"encoding/binary"
	"fmt"
	"math"
)

// An Encoder provides utilities to write obsipc wire format data to a
// byte slice.
type Encoder struct {
	// Out is the encoded output.
	Out []byte
}

// Write writes bs as-is to the output, with no length prefix.
func (e *Encoder) Write(bs []byte) {
	e.Out = append(e.Out, bs...)
}

// Bytes writes bs to the output, prefixed with its length.
func (e *Encoder) Bytes(bs []byte) {
	e.Uint32(uint32(len(bs)))
	e.Out = append(e.Out, bs...)
}

// String writes s to the output, prefixed with its length. Unlike C
// strings, no terminator is written.
func (e *Encoder) String(s string) {
	e.Uint32(uint32(len(s)))
	e.Out = append(e.Out, s...)
}

// Bool writes b as a single byte.
func (e *Encoder) Bool(b bool) {
	if b {
		e.Uint8(1)
	} else {
		e.Uint8(0)
	}
}

// Uint8 writes a uint8.
func (e *Encoder) Uint8(u8 uint8) {
	e.Out = append(e.Out, u8)
}

// Uint32 writes a uint32.
func (e *Encoder) Uint32(u32 uint32) {
	e.Out = binary.LittleEndian.AppendUint32(e.Out, u32)
}

// Int32 writes an int32.
func (e *Encoder) Int32(i32 int32) {
	e.Uint32(uint32(i32))
}

// Uint64 writes a uint64.
func (e *Encoder) Uint64(u64 uint64) {
	e.Out = binary.LittleEndian.AppendUint64(e.Out, u64)
}

// Int64 writes an int64.
func (e *Encoder) Int64(i64 int64) {
	e.Uint64(uint64(i64))
}

// Float32 writes an IEEE 754 single precision float.
func (e *Encoder) Float32(f float32) {
	e.Uint32(math.Float32bits(f))
}

// Float64 writes an IEEE 754 double precision float.
func (e *Encoder) Float64(f float64) {
	e.Uint64(math.Float64bits(f))
}

// Array writes a counted sequence of n elements.
//
// The element function is called once per element, in order, and is
// responsible for writing the element's encoding.
func (e *Encoder) Array(n int, element func(i int) error) error {
	if n < 0 || n > math.MaxUint32 {
		return fmt.Errorf("array length %d out of range", n)
	}
	e.Uint32(uint32(n))
	for i := range n {
		if err := element(i); err != nil {
			return err
		}
	}
	return nil
}

// StringSize returns the number of bytes [Encoder.String] writes for
// s.
func StringSize(s string) int { return 4 + len(s) }

// BytesSize returns the number of bytes [Encoder.Bytes] writes for bs.
func BytesSize(bs []byte) int { return 4 + len(bs) }
