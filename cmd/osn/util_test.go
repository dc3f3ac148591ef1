package main

import (
	"testing"

	"github.com/danderson/obsipc"
	"github.com/google/go-cmp/cmp"
)

func TestParseArgs(t *testing.T) {
	got, err := parseArgs([]string{
		"n",
		"f:12.5",
		"d:-0.25",
		"i:-7",
		"x:0x10",
		"u:42",
		"t:0x0100000000000001",
		"s:hello:world",
		"b:00ff",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []obsipc.Value{
		obsipc.Null(),
		obsipc.Float32(12.5),
		obsipc.Float64(-0.25),
		obsipc.Int32(-7),
		obsipc.Int64(16),
		obsipc.Uint32(42),
		obsipc.Uint64(0x0100000000000001),
		obsipc.String("hello:world"),
		obsipc.Binary([]byte{0, 0xff}),
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("parseArgs wrong (-got+want):\n%s", diff)
	}
}

func TestParseArgErrors(t *testing.T) {
	for _, arg := range []string{
		"",
		"12",
		"q:1",
		"ff:1",
		"i:99999999999",
		"u:-1",
		"t:abc",
		"b:0",
	} {
		if v, err := parseArg(arg); err == nil {
			t.Errorf("parseArg(%q) = %v, want error", arg, v)
		}
	}
}
