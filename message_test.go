package obsipc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMessageRoundTrip(t *testing.T) {
	tests := []*message{
		{
			Type:       msgTypeCall,
			ID:         1,
			Collection: "SceneItem",
			Function:   "SetPosition",
			Values:     []Value{Uint64(7), Float32(12.5), Float32(-3)},
		},
		{
			Type:       msgTypeCall,
			ID:         2,
			Collection: "API",
			Function:   "GetPerformanceStatistics",
		},
		{
			Type:   msgTypeReply,
			ID:     1,
			Values: []Value{Uint64(0), String("ok"), Binary([]byte{1, 2})},
		},
		{
			Type:      msgTypeError,
			ID:        1 << 40,
			ErrName:   ErrNameUnknownFunction,
			ErrDetail: "no function Foo.Bar",
		},
	}

	for _, want := range tests {
		t.Run(want.String(), func(t *testing.T) {
			bs, err := appendMessage(nil, want)
			if err != nil {
				t.Fatalf("appendMessage: %v", err)
			}
			got, err := parseMessage(bs)
			if err != nil {
				t.Fatalf("parseMessage(%x): %v", bs, err)
			}
			if diff := cmp.Diff(got, want, cmp.Comparer(Value.Equal)); diff != "" {
				t.Errorf("roundtrip mismatch (-got+want):\n%s", diff)
			}
		})
	}
}

func TestMessageEncoding(t *testing.T) {
	m := &message{
		Type:       msgTypeCall,
		ID:         3,
		Collection: "S",
		Function:   "F",
		Values:     []Value{Int32(-1)},
	}
	got, err := appendMessage(nil, m)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		1,                      // call
		3, 0, 0, 0, 0, 0, 0, 0, // id
		1, 0, 0, 0, 'S',
		1, 0, 0, 0, 'F',
		1, 0, 0, 0, // 1 value
		3, 0xff, 0xff, 0xff, 0xff,
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("wrong encoding (-got+want):\n%s", diff)
	}
}

func TestParseMessageErrors(t *testing.T) {
	valid, err := appendMessage(nil, &message{Type: msgTypeReply, ID: 9, Values: []Value{Uint64(0)}})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		in     []byte
		wantID uint64
	}{
		{"empty", nil, 0},
		{"no id", []byte{2, 1, 2}, 0},
		{"unknown type", []byte{9, 5, 0, 0, 0, 0, 0, 0, 0}, 5},
		{"truncated values", valid[:len(valid)-1], 9},
		{"trailing bytes", append(valid, 0), 9},
		{"unknown kind", []byte{2, 4, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 42}, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseMessage(tc.in)
			if err == nil {
				t.Fatalf("parseMessage(%x) succeeded, want error", tc.in)
			}
			var gotID uint64
			if got != nil {
				gotID = got.ID
			}
			if gotID != tc.wantID {
				t.Errorf("message ID after error is %d, want %d", gotID, tc.wantID)
			}
		})
	}
}
