package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danderson/obsipc/engine"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "osn.toml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if diff := cmp.Diff(c.Engine(), engine.DefaultConfig); diff != "" {
		t.Errorf("default engine config wrong (-got+want):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
socket = "/run/osn/osn.sock"
log-level = "debug"
same-user = false

[crash]
dir = "/var/crash/osn"
handled-crashes = ["out of video memory", "device lost"]

[video]
fps-num = 60000
fps-den = 1001
output-width = 1280
output-height = 720
`)
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Socket = "/run/osn/osn.sock"
	want.LogLevel = "debug"
	want.SameUser = false
	want.Crash.Dir = "/var/crash/osn"
	want.Crash.HandledCrashes = []string{"out of video memory", "device lost"}
	want.Video.FPSNum = 60000
	want.Video.FPSDen = 1001
	want.Video.OutputWidth = 1280
	want.Video.OutputHeight = 720
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Load wrong (-got+want):\n%s", diff)
	}
	if lvl, _ := got.Level(); lvl != zapcore.DebugLevel {
		t.Errorf("Level = %v, want debug", lvl)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, body, wantErr string
	}{
		{"unknown key", `sockett = "x"`, "unknown keys"},
		{"unknown nested key", "[video]\nfps = 30", "video.fps"},
		{"bad level", `log-level = "loud"`, "invalid log level"},
		{"bad fps", "[video]\nfps-den = 0", "invalid frame rate"},
		{"fps too high", "[video]\nfps-num = 2000000000\nfps-den = 1", "frame interval under 1ns"},
		{"syntax", `socket = `, "parsing"},
		{"negative depth", "[crash]\nlog-depth = -1", "negative crash log depth"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Load err = %v, want containing %q", err, tc.wantErr)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}
