package fragments_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/danderson/obsipc/fragments"
)

func TestEncoder(t *testing.T) {
	tests := []struct {
		name string
		in   func(*fragments.Encoder)
		want []byte
	}{
		{
			"raw bytes",
			func(e *fragments.Encoder) {
				e.Write([]byte{1, 2, 3})
			},
			[]byte{0x01, 0x02, 0x03},
		},

		{
			"byte blob",
			func(e *fragments.Encoder) {
				e.Bytes([]byte{1, 2, 3})
			},
			[]byte{
				0x03, 0x00, 0x00, 0x00, // length
				0x01, 0x02, 0x03, // val
			},
		},

		{
			"empty byte blob",
			func(e *fragments.Encoder) {
				e.Bytes(nil)
			},
			[]byte{0x00, 0x00, 0x00, 0x00},
		},

		{
			"string",
			func(e *fragments.Encoder) {
				e.String("foo")
			},
			[]byte{
				0x03, 0x00, 0x00, 0x00, // length
				0x66, 0x6f, 0x6f, // val
			},
		},

		{
			"uints",
			func(e *fragments.Encoder) {
				e.Uint8(42)
				e.Uint32(42)
				e.Uint64(66)
			},
			[]byte{
				0x2a,
				0x2a, 0x00, 0x00, 0x00,
				0x42, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			},
		},

		{
			"ints",
			func(e *fragments.Encoder) {
				e.Int32(-1)
				e.Int64(math.MinInt64)
			},
			[]byte{
				0xff, 0xff, 0xff, 0xff,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80,
			},
		},

		{
			"floats",
			func(e *fragments.Encoder) {
				e.Float32(1)
				e.Float64(-2)
			},
			[]byte{
				0x00, 0x00, 0x80, 0x3f,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xc0,
			},
		},

		{
			"bools",
			func(e *fragments.Encoder) {
				e.Bool(true)
				e.Bool(false)
			},
			[]byte{0x01, 0x00},
		},

		{
			"array",
			func(e *fragments.Encoder) {
				vals := []string{"a", "bc"}
				e.Array(len(vals), func(i int) error {
					e.String(vals[i])
					return nil
				})
			},
			[]byte{
				0x02, 0x00, 0x00, 0x00, // count
				0x01, 0x00, 0x00, 0x00, 0x61,
				0x02, 0x00, 0x00, 0x00, 0x62, 0x63,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var e fragments.Encoder
			tc.in(&e)
			if !bytes.Equal(e.Out, tc.want) {
				t.Errorf("wrong encoding:\n  got: % x\n want: % x", e.Out, tc.want)
			}
		})
	}
}

func TestSizes(t *testing.T) {
	var e fragments.Encoder
	e.String("hello")
	if got, want := len(e.Out), fragments.StringSize("hello"); got != want {
		t.Errorf("StringSize = %d, encoded %d bytes", want, got)
	}
	e.Out = nil
	e.Bytes([]byte{1, 2})
	if got, want := len(e.Out), fragments.BytesSize([]byte{1, 2}); got != want {
		t.Errorf("BytesSize = %d, encoded %d bytes", want, got)
	}
}
