package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danderson/obsipc/property"
	"github.com/google/go-cmp/cmp"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultConfig, nil)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func mustSource(t *testing.T, e *Engine, typ, name string) *Source {
	t.Helper()
	s, err := e.CreateSource(typ, name, nil)
	if err != nil {
		t.Fatalf("CreateSource(%q, %q): %v", typ, name, err)
	}
	return s
}

func itemIDs(sc *Scene) []int64 {
	var ret []int64
	for _, it := range sc.Items() {
		ret = append(ret, it.ID())
	}
	return ret
}

func TestSources(t *testing.T) {
	e := newEngine(t)
	img := mustSource(t, e, "image_source", "logo")

	if _, err := e.CreateSource("image_source", "logo", nil); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("duplicate name err=%v, want ErrNameTaken", err)
	}
	if _, err := e.CreateSource("hologram", "x", nil); !errors.Is(err, ErrUnknownSourceType) {
		t.Fatalf("unknown type err=%v, want ErrUnknownSourceType", err)
	}
	if _, err := e.CreateSource(SceneTypeID, "x", nil); !errors.Is(err, ErrUnknownSourceType) {
		t.Fatalf("scene via CreateSource err=%v, want ErrUnknownSourceType", err)
	}

	if err := img.SetName("banner"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if _, ok := e.SourceByName("logo"); ok {
		t.Fatal("old name still resolves after rename")
	}
	if s, ok := e.SourceByName("banner"); !ok || s != img {
		t.Fatal("new name does not resolve after rename")
	}
	mustSource(t, e, "color_source", "bg")
	if err := img.SetName("bg"); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("rename onto taken name err=%v, want ErrNameTaken", err)
	}

	want := map[string]any{"file": "", "unload": false}
	if diff := cmp.Diff(img.Settings(), want); diff != "" {
		t.Fatalf("default settings wrong (-got+want):\n%s", diff)
	}
	if err := img.Update(map[string]any{"file": "/tmp/a.png"}); err != nil {
		t.Fatal(err)
	}
	want["file"] = "/tmp/a.png"
	if diff := cmp.Diff(img.Settings(), want); diff != "" {
		t.Fatalf("updated settings wrong (-got+want):\n%s", diff)
	}

	if err := e.ReleaseSource(img); err != nil {
		t.Fatalf("ReleaseSource: %v", err)
	}
	if err := e.ReleaseSource(img); !errors.Is(err, ErrReleased) {
		t.Fatalf("double release err=%v, want ErrReleased", err)
	}
	if err := img.Update(nil); !errors.Is(err, ErrReleased) {
		t.Fatalf("Update after release err=%v, want ErrReleased", err)
	}
}

func TestSourceTypeProperties(t *testing.T) {
	e := newEngine(t)
	for _, typ := range SourceTypes() {
		s := mustSource(t, e, typ, typ)
		settings := s.Settings()
		for _, p := range s.Properties() {
			switch p.(type) {
			case *property.Button, *property.Font, *property.EditableList:
				continue
			}
			if _, ok := settings[p.Base().Name]; !ok {
				t.Errorf("%s: property %q has no default setting", typ, p.Base().Name)
			}
		}
	}
}

func TestSceneOrdering(t *testing.T) {
	e := newEngine(t)
	sc, err := e.CreateScene("main")
	if err != nil {
		t.Fatal(err)
	}
	src := mustSource(t, e, "color_source", "c")
	var items []*SceneItem
	for range 4 {
		it, err := sc.Add(src)
		if err != nil {
			t.Fatal(err)
		}
		items = append(items, it)
	}
	if diff := cmp.Diff(itemIDs(sc), []int64{1, 2, 3, 4}); diff != "" {
		t.Fatalf("initial order (-got+want):\n%s", diff)
	}

	steps := []struct {
		name string
		do   func() error
		want []int64
	}{
		{"up", func() error { return sc.SetOrder(items[0], OrderMoveUp) }, []int64{2, 1, 3, 4}},
		{"up at top", func() error { return sc.SetOrder(items[3], OrderMoveUp) }, []int64{2, 1, 3, 4}},
		{"down", func() error { return sc.SetOrder(items[2], OrderMoveDown) }, []int64{2, 3, 1, 4}},
		{"top", func() error { return sc.SetOrder(items[1], OrderMoveTop) }, []int64{3, 1, 4, 2}},
		{"bottom", func() error { return sc.SetOrder(items[3], OrderMoveBottom) }, []int64{4, 3, 1, 2}},
		{"position", func() error { return sc.SetOrderPosition(items[3], 2) }, []int64{3, 1, 4, 2}},
		{"position clamped", func() error { return sc.SetOrderPosition(items[2], -5) }, []int64{3, 1, 4, 2}},
		{"position past end", func() error { return sc.SetOrderPosition(items[0], 99) }, []int64{3, 4, 2, 1}},
	}
	for _, st := range steps {
		if err := st.do(); err != nil {
			t.Fatalf("%s: %v", st.name, err)
		}
		if diff := cmp.Diff(itemIDs(sc), st.want); diff != "" {
			t.Fatalf("%s: wrong order (-got+want):\n%s", st.name, diff)
		}
	}

	items[1].Remove()
	if items[1].Scene() != nil {
		t.Fatal("removed item still has a scene")
	}
	if err := sc.SetOrder(items[1], OrderMoveUp); err == nil {
		t.Fatal("SetOrder of removed item succeeded")
	}
	if diff := cmp.Diff(itemIDs(sc), []int64{3, 4, 1}); diff != "" {
		t.Fatalf("order after remove (-got+want):\n%s", diff)
	}

	if _, err := sc.Add(sc.Source()); !errors.Is(err, ErrRecursive) {
		t.Fatalf("adding scene to itself err=%v, want ErrRecursive", err)
	}
}

func TestNestedSceneCycles(t *testing.T) {
	e := newEngine(t)
	scenes := map[string]*Scene{}
	for _, name := range []string{"a", "b", "c", "d"} {
		sc, err := e.CreateScene(name)
		if err != nil {
			t.Fatal(err)
		}
		scenes[name] = sc
	}
	bg := mustSource(t, e, "color_source", "bg")

	tests := []struct {
		parent, child string
		wantErr       error
	}{
		{"a", "b", nil},
		{"b", "c", nil},
		{"a", "c", nil},
		{"b", "a", ErrRecursive},
		{"c", "a", ErrRecursive},
		{"c", "b", ErrRecursive},
		{"c", "c", ErrRecursive},
		{"d", "a", nil},
		{"c", "d", ErrRecursive},
	}
	for _, tc := range tests {
		parent, child := scenes[tc.parent], scenes[tc.child]
		_, err := parent.Add(child.Source())
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("%s.Add(%s) err=%v, want %v", tc.parent, tc.child, err, tc.wantErr)
		}
	}
	if _, err := scenes["c"].Add(bg); err != nil {
		t.Errorf("adding a plain source below nested scenes: %v", err)
	}
	if got := len(scenes["c"].Items()); got != 1 {
		t.Errorf("c has %d items, want 1", got)
	}
}

func TestReleaseOrphansItems(t *testing.T) {
	e := newEngine(t)
	sc, err := e.CreateScene("main")
	if err != nil {
		t.Fatal(err)
	}
	src := mustSource(t, e, "text_ft2_source", "title")
	it, err := sc.Add(src)
	if err != nil {
		t.Fatal(err)
	}

	if err := e.ReleaseSource(src); err != nil {
		t.Fatal(err)
	}
	if it.Source() != nil {
		t.Fatal("item still shows released source")
	}
	if it.Scene() != sc {
		t.Fatal("item left its scene when its source was released")
	}
	if _, err := sc.Add(src); !errors.Is(err, ErrReleased) {
		t.Fatalf("adding released source err=%v, want ErrReleased", err)
	}

	if err := e.ReleaseSource(sc.Source()); err != nil {
		t.Fatal(err)
	}
	if it.Scene() != nil {
		t.Fatal("item still in released scene")
	}
	if len(e.Scenes()) != 0 {
		t.Fatalf("released scene still listed: %v", e.Scenes())
	}
}

func TestSceneItemSetters(t *testing.T) {
	e := newEngine(t)
	sc, _ := e.CreateScene("s")
	it, err := sc.Add(mustSource(t, e, "color_source", "c"))
	if err != nil {
		t.Fatal(err)
	}

	if !it.Visible() || it.Scale() != (Vec2{1, 1}) || it.Alignment() != AlignLeft|AlignTop {
		t.Fatal("wrong scene item defaults")
	}
	if err := it.SetScaleFilter(ScaleArea + 1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("bad scale filter err=%v", err)
	}
	if err := it.SetBoundsType(-1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("bad bounds type err=%v", err)
	}
	if err := it.SetAlignment(1 << 5); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("bad alignment err=%v", err)
	}
	if err := it.SetCrop(Crop{Left: -1}); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("bad crop err=%v", err)
	}
	if it.ScaleFilter() != ScaleDisable || it.BoundsType() != BoundsNone || it.Crop() != (Crop{}) {
		t.Fatal("rejected setter mutated item")
	}

	it.SetBounds(Vec2{640, 480})
	if got := it.Bounds(); got != (Vec2{640, 480}) {
		t.Fatalf("Bounds() = %v after SetBounds", got)
	}
}

func TestDeferUpdate(t *testing.T) {
	e := newEngine(t)
	sc, _ := e.CreateScene("s")
	it, err := sc.Add(mustSource(t, e, "color_source", "c"))
	if err != nil {
		t.Fatal(err)
	}

	it.SetPosition(Vec2{1, 1})
	if got := it.TransformUpdates(); got != 1 {
		t.Fatalf("TransformUpdates = %d, want 1", got)
	}

	it.DeferUpdateBegin()
	it.DeferUpdateBegin()
	it.SetPosition(Vec2{2, 2})
	it.SetRotation(90)
	it.SetScale(Vec2{2, 2})
	it.DeferUpdateEnd()
	if got := it.TransformUpdates(); got != 1 {
		t.Fatalf("TransformUpdates = %d inside nested deferral, want 1", got)
	}
	it.DeferUpdateEnd()
	if got := it.TransformUpdates(); got != 2 {
		t.Fatalf("TransformUpdates = %d after deferral, want 2", got)
	}
	// Unbalanced End is ignored.
	it.DeferUpdateEnd()
	it.SetRotation(0)
	if got := it.TransformUpdates(); got != 3 {
		t.Fatalf("TransformUpdates = %d, want 3", got)
	}
}

func TestVideoTick(t *testing.T) {
	e := newEngine(t)
	sc, _ := e.CreateScene("s")
	if _, err := sc.Add(mustSource(t, e, "color_source", "c")); err != nil {
		t.Fatal(err)
	}
	hidden, err := sc.Add(mustSource(t, e, "color_source", "d"))
	if err != nil {
		t.Fatal(err)
	}
	hidden.SetVisible(false)

	v := e.Video()
	if got, want := v.Interval(), time.Second/30; got != want {
		t.Fatalf("Interval() = %v, want %v", got, want)
	}
	start := time.Unix(1000, 0)
	v.reset(start)
	v.tick(start.Add(v.Interval()))
	v.tick(start.Add(2 * v.Interval()))
	// Fell behind by 3 frames.
	v.tick(start.Add(6 * v.Interval()))

	if got := v.EncodedFrames(); got != 3 {
		t.Errorf("EncodedFrames = %d, want 3", got)
	}
	if got := v.SkippedFrames(); got != 3 {
		t.Errorf("SkippedFrames = %d, want 3", got)
	}
	if got := v.DrawnItems(); got != 1 {
		t.Errorf("DrawnItems = %d, want 1", got)
	}

	st := e.Stats()
	if st.DroppedFrames != 3 || st.DroppedPercent != 50 {
		t.Errorf("Stats() = %+v, want 3 dropped frames (50%%)", st)
	}
}

func TestVideoRun(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- e.Video().Run(ctx) }()
	deadline := time.Now().Add(5 * time.Second)
	for e.Video().EncodedFrames() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("video produced no frames")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"zero denominator", func(c *Config) { c.FPSDen = 0 }},
		{"zero numerator", func(c *Config) { c.FPSNum = 0 }},
		{"sub-nanosecond frames", func(c *Config) { c.FPSNum, c.FPSDen = 2_000_000_000, 1 }},
		{"zero width", func(c *Config) { c.OutputWidth = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bad := DefaultConfig
			tc.edit(&bad)
			if _, err := New(bad, nil); err == nil {
				t.Fatalf("New(%+v) succeeded, want error", bad)
			}
		})
	}

	fast := DefaultConfig
	fast.FPSNum, fast.FPSDen = 1_000_000_000, 1
	e, err := New(fast, nil)
	if err != nil {
		t.Fatalf("New at 1ns per frame: %v", err)
	}
	if got := e.Video().Interval(); got != time.Nanosecond {
		t.Errorf("Interval = %v, want 1ns", got)
	}
}
