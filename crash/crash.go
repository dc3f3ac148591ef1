// Package crash records fatal engine failures.
//
// A [Supervisor] receives fatal errors from the IPC dispatcher, and
// for each one writes a [Report] to disk and terminates the process.
// Failures matching a known list of unrecoverable-but-expected
// conditions exit cleanly without a report.
package crash

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/creachadair/mds/queue"
	"github.com/danderson/obsipc"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Process exit codes used by a Supervisor.
const (
	ExitHandled   = 0
	ExitReported  = 1
	ExitReentrant = 134
)

// DefaultLogDepth is the default number of log lines kept for
// reports.
const DefaultLogDepth = 50

// Config configures a Supervisor.
type Config struct {
	// Dir is where reports are written. If empty, reports are only
	// logged.
	Dir string
	// HandledCrashes are substrings of failure descriptions that
	// cause a clean exit instead of a report.
	HandledCrashes []string
	// LogDepth is how many recent log lines to include in reports.
	// Zero means DefaultLogDepth.
	LogDepth int
	// Logger receives the supervisor's own logs. If nil, logging is
	// disabled.
	Logger *zap.Logger
	// Exit terminates the process. If nil, failures are recorded but
	// the process keeps running.
	Exit func(code int)
	// Initialized reports whether the engine is running, for
	// inclusion in reports. If nil, the engine is assumed running.
	Initialized func() bool
}

// Supervisor handles fatal failures.
type Supervisor struct {
	cfg      Config
	disabled atomic.Bool
	crashing atomic.Bool

	mu          sync.Mutex
	annotations map[string]string

	logMu sync.Mutex
	logs  queue.Queue[string]
}

// New returns a Supervisor.
func New(cfg Config) *Supervisor {
	if cfg.LogDepth <= 0 {
		cfg.LogDepth = DefaultLogDepth
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Supervisor{
		cfg:         cfg,
		annotations: map[string]string{},
	}
}

// Annotate sets an annotation included in all future reports.
func (s *Supervisor) Annotate(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations[key] = value
}

func (s *Supervisor) snapshotAnnotations() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make(map[string]string, len(s.annotations))
	for k, v := range s.annotations {
		ret[k] = v
	}
	return ret
}

// Record adds a line to the recent log, evicting the oldest line if
// the log is full.
func (s *Supervisor) Record(line string) {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	for s.logs.Len() >= s.cfg.LogDepth {
		s.logs.Pop()
	}
	s.logs.Add(line)
}

// Hook records every log entry it receives. It is meant to be
// installed with zap.Hooks.
func (s *Supervisor) Hook(e zapcore.Entry) error {
	line := fmt.Sprintf("%s %s", e.Level.CapitalString(), e.Message)
	if e.LoggerName != "" {
		line = fmt.Sprintf("%s %s: %s", e.Level.CapitalString(), e.LoggerName, e.Message)
	}
	s.Record(line)
	return nil
}

// RecentLogs returns the recorded log lines, oldest first.
func (s *Supervisor) RecentLogs() []string {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	ret := make([]string, 0, s.logs.Len())
	s.logs.Each(func(l string) bool {
		ret = append(ret, l)
		return true
	})
	return ret
}

// Disable stops the supervisor from handling failures. Failures that
// arrive while disabled are logged and otherwise ignored.
func (s *Supervisor) Disable() {
	if !s.disabled.Swap(true) {
		s.cfg.Logger.Info("crash handler disabled")
	}
}

// Enabled reports whether the supervisor is handling failures.
func (s *Supervisor) Enabled() bool { return !s.disabled.Load() }

// HandleFatal handles a fatal handler failure. It is meant to be
// used as [obsipc.Dispatcher.OnFatal].
func (s *Supervisor) HandleFatal(f *obsipc.FatalError) {
	initialized := s.cfg.Initialized == nil || s.cfg.Initialized()
	s.handle(fmt.Sprint(f.Reason), f.Collection+"."+f.Function, f.Stack, initialized)
}

// CheckExit is called when the process is about to exit. Exiting
// while the engine is still initialized is a failure.
func (s *Supervisor) CheckExit(initialized bool) {
	if initialized {
		s.handle("AtExit", "", debug.Stack(), true)
	}
}

func (s *Supervisor) handle(info, call string, stack []byte, initialized bool) {
	log := s.cfg.Logger
	if !s.Enabled() {
		log.Warn("ignoring failure, crash handler disabled", zap.String("info", info), zap.String("call", call))
		return
	}
	if !s.crashing.CompareAndSwap(false, true) {
		log.Error("failure while handling failure", zap.String("info", info))
		s.exit(ExitReentrant)
		return
	}
	defer s.crashing.Store(false)

	for _, h := range s.cfg.HandledCrashes {
		if h != "" && strings.Contains(info, h) {
			log.Warn("known failure, exiting", zap.String("info", info), zap.String("match", h))
			s.exit(ExitHandled)
			return
		}
	}

	r := &Report{
		ID:          uuid.New(),
		Time:        time.Now().UTC(),
		Info:        info,
		Call:        call,
		Stack:       string(stack),
		Status:      "Shutdown",
		Annotations: s.snapshotAnnotations(),
		Log:         s.RecentLogs(),
	}
	if initialized {
		r.Status = "Initialized"
	}
	fields := []zap.Field{
		zap.Stringer("report", r.ID),
		zap.String("info", info),
		zap.String("call", call),
	}
	if s.cfg.Dir != "" {
		path, err := r.WriteTo(s.cfg.Dir)
		if err != nil {
			log.Error("writing crash report", zap.Error(err))
		} else {
			fields = append(fields, zap.String("path", path))
		}
	}
	log.Error("fatal failure", fields...)
	s.exit(ExitReported)
}

func (s *Supervisor) exit(code int) {
	if s.cfg.Exit != nil {
		s.cfg.Exit(code)
	}
}

// Report describes one fatal failure.
type Report struct {
	ID   uuid.UUID `cbor:"id"`
	Time time.Time `cbor:"time"`
	// Info is the failure description, such as a panic value.
	Info string `cbor:"info"`
	// Call is the collection.function that failed, if any.
	Call  string `cbor:"call,omitempty"`
	Stack string `cbor:"stack"`
	// Status is the engine state at the time of failure,
	// "Initialized" or "Shutdown".
	Status      string            `cbor:"status"`
	Annotations map[string]string `cbor:"annotations"`
	// Log is the recent log, oldest first.
	Log []string `cbor:"log"`
}

var encMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Marshal returns the CBOR encoding of r.
func (r *Report) Marshal() ([]byte, error) {
	return encMode.Marshal(r)
}

// WriteTo writes r into dir, and returns the report's path.
func (r *Report) WriteTo(dir string) (string, error) {
	bs, err := r.Marshal()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	path := filepath.Join(dir, r.ID.String()+ReportExt)
	if err := os.WriteFile(path, bs, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// ReportExt is the file extension of reports.
const ReportExt = ".crash"

// ReadReport reads the report at path.
func ReadReport(path string) (*Report, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ret Report
	if err := cbor.Unmarshal(bs, &ret); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", path, err)
	}
	return &ret, nil
}

// ListReports returns the paths of the reports in dir.
func ListReports(dir string) ([]string, error) {
	return filepath.Glob(filepath.Join(dir, "*"+ReportExt))
}
