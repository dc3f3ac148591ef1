package obsipc

import (
	"context"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func nopHandler(context.Context, []Value, *Reply) {}

func TestRegistryLookup(t *testing.T) {
	items := NewCollection("SceneItem").
		Register("GetPosition", "t", nopHandler).
		Register("SetPosition", "tff", nopHandler)
	video := NewCollection("Video").
		Register("GetSkippedFrames", "", nopHandler)

	reg, err := NewRegistry(items, video)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	tests := []struct {
		coll, fn string
		wantSig  string
		wantOK   bool
	}{
		{"SceneItem", "GetPosition", "t", true},
		{"SceneItem", "SetPosition", "tff", true},
		{"Video", "GetSkippedFrames", "", true},
		{"SceneItem", "GetSkippedFrames", "", false},
		{"Scene", "GetPosition", "", false},
		{"", "", "", false},
	}
	for _, tc := range tests {
		f, ok := reg.Lookup(tc.coll, tc.fn)
		if ok != tc.wantOK {
			t.Errorf("Lookup(%q, %q) ok=%v, want %v", tc.coll, tc.fn, ok, tc.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if got := f.Signature().String(); got != tc.wantSig {
			t.Errorf("Lookup(%q, %q) signature %q, want %q", tc.coll, tc.fn, got, tc.wantSig)
		}
		if f.Name() != tc.fn {
			t.Errorf("Lookup(%q, %q) returned function %q", tc.coll, tc.fn, f.Name())
		}
	}

	var got []string
	for c := range reg.Collections() {
		for f := range c.Functions() {
			got = append(got, c.Name()+"."+f.Name())
		}
	}
	want := []string{"SceneItem.GetPosition", "SceneItem.SetPosition", "Video.GetSkippedFrames"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("wrong registry contents (-got+want):\n%s", diff)
	}
}

func TestRegistryDuplicateCollection(t *testing.T) {
	a := NewCollection("Scene")
	b := NewCollection("Scene")
	if _, err := NewRegistry(a, b); err == nil {
		t.Fatal("NewRegistry with duplicate collections succeeded")
	}
}

func TestRegisterPanics(t *testing.T) {
	tests := []struct {
		name string
		reg  func(*Collection)
	}{
		{"duplicate", func(c *Collection) {
			c.Register("F", "", nopHandler).Register("F", "t", nopHandler)
		}},
		{"bad signature", func(c *Collection) { c.Register("F", "tz", nopHandler) }},
		{"empty name", func(c *Collection) { c.Register("", "", nopHandler) }},
		{"nil handler", func(c *Collection) { c.Register("F", "", nil) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("Register did not panic")
				}
			}()
			tc.reg(NewCollection("C"))
		})
	}
}

func TestCollectionFunctionsOrder(t *testing.T) {
	c := NewCollection("C")
	names := []string{"Zed", "Alpha", "Mid"}
	for _, n := range names {
		c.Register(n, "", nopHandler)
	}
	var got []string
	for f := range c.Functions() {
		got = append(got, f.Name())
	}
	if !slices.Equal(got, names) {
		t.Fatalf("Functions() = %v, want registration order %v", got, names)
	}
}
