package fragments

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrTruncated is the error returned when the input ends before a
// complete value has been read.
var ErrTruncated = errors.New("truncated input")

// A Decoder provides utilities to read obsipc wire format data from a
// byte slice.
//
// Reads are all-or-nothing: a method that returns an error leaves the
// read cursor where it was before the call.
type Decoder struct {
	// In is the input to read.
	In []byte
	// Offset is the read cursor within In.
	Offset int
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.In) - d.Offset
}

// Read reads n bytes, with no framing. The returned slice is a copy,
// and does not alias the decoder's input.
func (d *Decoder) Read(n int) ([]byte, error) {
	bs, err := d.peek(n)
	if err != nil {
		return nil, err
	}
	d.Offset += n
	return bs, nil
}

func (d *Decoder) peek(n int) ([]byte, error) {
	if n < 0 || n > d.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, d.Offset, d.Remaining())
	}
	ret := make([]byte, n)
	copy(ret, d.In[d.Offset:])
	return ret, nil
}

// Bytes reads a length-prefixed byte blob.
func (d *Decoder) Bytes() ([]byte, error) {
	start := d.Offset
	ln, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	if uint64(ln) > uint64(d.Remaining()) {
		d.Offset = start
		return nil, fmt.Errorf("%w: declared length %d at offset %d exceeds %d remaining bytes", ErrTruncated, ln, start, d.Remaining())
	}
	return d.Read(int(ln))
}

// String reads a length-prefixed string.
func (d *Decoder) String() (string, error) {
	bs, err := d.Bytes()
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

// Bool reads a single byte boolean. Any nonzero byte is true.
func (d *Decoder) Bool() (bool, error) {
	v, err := d.Uint8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// Uint8 reads a uint8.
func (d *Decoder) Uint8() (uint8, error) {
	bs, err := d.Read(1)
	if err != nil {
		return 0, err
	}
	return bs[0], nil
}

// Uint32 reads a uint32.
func (d *Decoder) Uint32() (uint32, error) {
	bs, err := d.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(bs), nil
}

// Int32 reads an int32.
func (d *Decoder) Int32() (int32, error) {
	v, err := d.Uint32()
	return int32(v), err
}

// Uint64 reads a uint64.
func (d *Decoder) Uint64() (uint64, error) {
	bs, err := d.Read(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(bs), nil
}

// Int64 reads an int64.
func (d *Decoder) Int64() (int64, error) {
	v, err := d.Uint64()
	return int64(v), err
}

// Float32 reads an IEEE 754 single precision float.
func (d *Decoder) Float32() (float32, error) {
	v, err := d.Uint32()
	return math.Float32frombits(v), err
}

// Float64 reads an IEEE 754 double precision float.
func (d *Decoder) Float64() (float64, error) {
	v, err := d.Uint64()
	return math.Float64frombits(v), err
}

// Array reads a counted sequence of elements.
//
// readElement is called once per element with the element's index,
// and must consume exactly that element. Array returns the number of
// elements read.
//
// minElemSize is the smallest encoding of a single element, used to
// reject element counts that cannot possibly fit in the remaining
// input before any element is read.
func (d *Decoder) Array(minElemSize int, readElement func(int) error) (int, error) {
	start := d.Offset
	n, err := d.Uint32()
	if err != nil {
		return 0, err
	}
	if minElemSize > 0 && uint64(n)*uint64(minElemSize) > uint64(d.Remaining()) {
		d.Offset = start
		return 0, fmt.Errorf("%w: %d elements at offset %d cannot fit in %d remaining bytes", ErrTruncated, n, start, d.Remaining())
	}
	for i := range int(n) {
		if err := readElement(i); err != nil {
			d.Offset = start
			return i, err
		}
	}
	return int(n), nil
}
