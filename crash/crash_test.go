package crash

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/danderson/obsipc"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"
)

type exitRecorder struct {
	codes []int
}

func (e *exitRecorder) exit(code int) { e.codes = append(e.codes, code) }

func fatal(reason any) *obsipc.FatalError {
	return &obsipc.FatalError{
		Collection: "SceneItem",
		Function:   "SetPosition",
		Reason:     reason,
		Stack:      []byte("goroutine 1 [running]:"),
	}
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	var ex exitRecorder
	s := New(Config{
		Dir:      dir,
		LogDepth: 2,
		Exit:     ex.exit,
	})
	s.Annotate("version", "1.2.3")
	s.Annotate("version", "1.2.4")
	s.Record("one")
	s.Record("two")
	s.Record("three")

	s.HandleFatal(fatal("nil pointer dereference"))

	if diff := cmp.Diff(ex.codes, []int{ExitReported}); diff != "" {
		t.Fatalf("wrong exit codes (-got+want):\n%s", diff)
	}
	paths, err := ListReports(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Fatalf("got %d reports, want 1: %v", len(paths), paths)
	}
	got, err := ReadReport(paths[0])
	if err != nil {
		t.Fatalf("ReadReport: %v", err)
	}
	if want := got.ID.String() + ReportExt; filepath.Base(paths[0]) != want {
		t.Errorf("report file %s, want %s", filepath.Base(paths[0]), want)
	}
	want := &Report{
		Info:        "nil pointer dereference",
		Call:        "SceneItem.SetPosition",
		Stack:       "goroutine 1 [running]:",
		Status:      "Initialized",
		Annotations: map[string]string{"version": "1.2.4"},
		Log:         []string{"two", "three"},
	}
	if diff := cmp.Diff(got, want, cmpopts.IgnoreFields(Report{}, "ID", "Time")); diff != "" {
		t.Errorf("wrong report (-got+want):\n%s", diff)
	}
	if got.Time.IsZero() {
		t.Error("report has no timestamp")
	}
}

func TestHandledCrash(t *testing.T) {
	dir := t.TempDir()
	var ex exitRecorder
	s := New(Config{
		Dir:            dir,
		HandledCrashes: []string{"Failed to recreate D3D11"},
		Exit:           ex.exit,
	})
	s.HandleFatal(fatal(fmt.Errorf("device lost: Failed to recreate D3D11 context")))

	if diff := cmp.Diff(ex.codes, []int{ExitHandled}); diff != "" {
		t.Fatalf("wrong exit codes (-got+want):\n%s", diff)
	}
	if paths, _ := ListReports(dir); len(paths) != 0 {
		t.Fatalf("handled crash wrote reports: %v", paths)
	}
}

func TestDisabled(t *testing.T) {
	dir := t.TempDir()
	var ex exitRecorder
	s := New(Config{Dir: dir, Exit: ex.exit})
	s.Disable()
	if s.Enabled() {
		t.Fatal("Enabled after Disable")
	}
	s.HandleFatal(fatal("boom"))
	s.CheckExit(true)
	if len(ex.codes) != 0 {
		t.Fatalf("disabled supervisor exited with %v", ex.codes)
	}
	if paths, _ := ListReports(dir); len(paths) != 0 {
		t.Fatalf("disabled supervisor wrote reports: %v", paths)
	}
}

func TestCheckExit(t *testing.T) {
	dir := t.TempDir()
	var ex exitRecorder
	s := New(Config{Dir: dir, Exit: ex.exit})

	s.CheckExit(false)
	if len(ex.codes) != 0 {
		t.Fatalf("clean shutdown exited with %v", ex.codes)
	}

	s.CheckExit(true)
	if diff := cmp.Diff(ex.codes, []int{ExitReported}); diff != "" {
		t.Fatalf("wrong exit codes (-got+want):\n%s", diff)
	}
	paths, _ := ListReports(dir)
	if len(paths) != 1 {
		t.Fatalf("got %d reports, want 1", len(paths))
	}
	r, err := ReadReport(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if r.Info != "AtExit" || r.Status != "Initialized" {
		t.Fatalf("wrong at-exit report: info=%q status=%q", r.Info, r.Status)
	}
}

func TestReentrant(t *testing.T) {
	var (
		codes []int
		s     *Supervisor
	)
	s = New(Config{
		Exit: func(code int) {
			codes = append(codes, code)
			if len(codes) == 1 {
				s.HandleFatal(fatal("second failure"))
			}
		},
	})
	s.HandleFatal(fatal("first failure"))
	if diff := cmp.Diff(codes, []int{ExitReported, ExitReentrant}); diff != "" {
		t.Fatalf("wrong exit codes (-got+want):\n%s", diff)
	}
}

func TestLogHook(t *testing.T) {
	s := New(Config{LogDepth: 3})
	log := zap.NewExample(zap.Hooks(s.Hook)).Named("osn")
	log.Info("first")
	log.Warn("second")

	want := []string{"INFO osn: first", "WARN osn: second"}
	if diff := cmp.Diff(s.RecentLogs(), want); diff != "" {
		t.Fatalf("wrong recent logs (-got+want):\n%s", diff)
	}
}

func TestShutdownStatus(t *testing.T) {
	dir := t.TempDir()
	s := New(Config{Dir: dir, Initialized: func() bool { return false }})
	s.HandleFatal(fatal("late failure"))
	paths, _ := ListReports(dir)
	if len(paths) != 1 {
		t.Fatalf("got %d reports, want 1", len(paths))
	}
	r, err := ReadReport(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if r.Status != "Shutdown" {
		t.Fatalf("report status %q, want Shutdown", r.Status)
	}
}
