package property

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/danderson/obsipc/fragments"
	"github.com/google/go-cmp/cmp"
)

func common(name string) Common {
	return Common{
		Name:            name,
		Description:     "Desc of " + name,
		LongDescription: "Longer description of " + name,
		Enabled:         true,
		Visible:         false,
	}
}

func allVariants() []Property {
	return []Property{
		&Boolean{common("flip")},
		&Boolean{},
		&Integer{Common: common("volume"), NumberType: NumberSlider, Min: math.MinInt64, Max: math.MaxInt64, Step: 1},
		&Float{Common: common("opacity"), Min: -1.5, Max: math.MaxFloat64, Step: math.SmallestNonzeroFloat64},
		&Text{Common: common("text"), TextType: TextMultiLine},
		&Path{Common: common("file"), PathType: PathDirectory, Filter: "Images (*.png *.jpg)", DefaultPath: "/home"},
		&Path{Common: common("empty path")},
		&List{
			Common:   common("mode"),
			ListType: ListList,
			Format:   FormatString,
			Items: []ListItem{
				{Name: "c", Enabled: true, String: "third"},
				{Name: "a", Int: -4, Float: 0.25},
				{Name: "b", Enabled: true, String: "ünïcødé"},
			},
		},
		&List{Common: common("empty list"), ListType: ListEditable, Format: FormatInt},
		&Color{common("color")},
		&Button{common("refresh")},
		&Font{common("font")},
		&EditableList{Common: common("playlist"), ListType: EditableFilesAndURLs, Filter: "*.mp4", DefaultPath: "~"},
		&FrameRate{
			Common: common("fps"),
			Ranges: []FrameRateRange{
				{Min: Fraction{1, 1}, Max: Fraction{60000, 1001}},
				{Min: Fraction{0, 0}, Max: Fraction{math.MaxUint32, math.MaxUint32}},
			},
			Options: []FrameRateOption{
				{Name: "ntsc", Description: "29.97"},
				{},
			},
		},
		&FrameRate{Common: common("no ranges")},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, p := range allVariants() {
		t.Run(p.Type().String()+"/"+p.Base().Name, func(t *testing.T) {
			bs := Marshal(p)
			if got, want := len(bs), Size(p); got != want {
				t.Fatalf("Marshal wrote %d bytes, Size reports %d", got, want)
			}
			if bs[0] != byte(p.Type()) {
				t.Fatalf("leading tag %d, want %d", bs[0], p.Type())
			}
			got, err := Decode(bs)
			if err != nil {
				t.Fatalf("Decode(%x): %v", bs, err)
			}
			if diff := cmp.Diff(got, p); diff != "" {
				t.Fatalf("roundtrip mismatch (-got+want):\n%s", diff)
			}
		})
	}
}

func TestIntegerEncoding(t *testing.T) {
	p := &Integer{
		Common: Common{Name: "Volume", Enabled: true, Visible: true},
		Min:    0,
		Max:    100,
		Step:   1,
	}
	var want []byte
	want = append(want, byte(TypeInteger))
	want = append(want, 6, 0, 0, 0, 'V', 'o', 'l', 'u', 'm', 'e')
	want = append(want, 0, 0, 0, 0) // description
	want = append(want, 0, 0, 0, 0) // long description
	want = append(want, 1, 1)       // enabled, visible
	want = append(want, 0)          // scroller
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 0)
	want = append(want, 100, 0, 0, 0, 0, 0, 0, 0)
	want = append(want, 1, 0, 0, 0, 0, 0, 0, 0)

	got := Marshal(p)
	if diff := cmp.Diff(got, want); diff != "" {
		t.Fatalf("wrong encoding (-got+want):\n%s", diff)
	}
	if Size(p) != len(want) {
		t.Fatalf("Size = %d, want %d", Size(p), len(want))
	}

	dec, err := Decode(got)
	if err != nil {
		t.Fatal(err)
	}
	ip, ok := dec.(*Integer)
	if !ok {
		t.Fatalf("decoded %T, want *Integer", dec)
	}
	if ip.Name != "Volume" || ip.Min != 0 || ip.Max != 100 || ip.Step != 1 {
		t.Fatalf("decoded wrong integer property: %+v", ip)
	}
}

func TestListOrder(t *testing.T) {
	p := &List{
		Common: common("order"),
		Format: FormatString,
		Items:  []ListItem{{Name: "a"}, {Name: "b"}, {Name: "c"}},
	}
	got, err := Decode(Marshal(p))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, it := range got.(*List).Items {
		names = append(names, it.Name)
	}
	if diff := cmp.Diff(names, []string{"a", "b", "c"}); diff != "" {
		t.Fatalf("list order changed (-got+want):\n%s", diff)
	}
}

func TestDecodeAll(t *testing.T) {
	want := allVariants()
	bs := MarshalAll(want)
	got, err := DecodeAll(bs)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Fatalf("DecodeAll mismatch (-got+want):\n%s", diff)
	}

	got, err = DecodeAll(nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("DecodeAll(nil) = %v, %v, want empty", got, err)
	}
}

func TestDecodeErrors(t *testing.T) {
	list := Marshal(&List{
		Common: common("l"),
		Items:  []ListItem{{Name: "x"}},
	})
	integer := Marshal(&Integer{Common: common("i"), Max: 5})

	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"empty", nil, fragments.ErrTruncated},
		{"zero tag", []byte{0, 0, 0, 0, 0}, ErrUnknownType},
		{"unknown tag", append([]byte{200}, integer[1:]...), ErrUnknownType},
		{"tag only", []byte{byte(TypeBoolean)}, fragments.ErrTruncated},
		{"truncated integer", integer[:len(integer)-3], fragments.ErrTruncated},
		{"truncated list item", list[:len(list)-1], fragments.ErrTruncated},
		{"huge name", []byte{byte(TypeButton), 0xff, 0xff, 0xff, 0xff}, fragments.ErrTruncated},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Decode(%x) = %v, %v, want error %v", tc.in, got, err, tc.want)
			}
			if got != nil {
				t.Fatalf("Decode returned partial property %+v", got)
			}
		})
	}

	if _, err := Decode(append(bytes.Clone(integer), 0)); err == nil {
		t.Fatal("Decode with trailing byte succeeded")
	}
}

func TestDecodeAllPartial(t *testing.T) {
	good := Marshal(&Button{common("b")})
	bs := append(bytes.Clone(good), good[:5]...)
	if _, err := DecodeAll(bs); !errors.Is(err, fragments.ErrTruncated) {
		t.Fatalf("DecodeAll of truncated tail err=%v, want ErrTruncated", err)
	}
}
