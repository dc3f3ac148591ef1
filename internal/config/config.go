// Package config loads the osn server's configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danderson/obsipc/crash"
	"github.com/danderson/obsipc/engine"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the server configuration.
type Config struct {
	// Socket is the path of the server's unix socket.
	Socket string `toml:"socket"`
	// LogLevel is the minimum level logged, one of "debug", "info",
	// "warn" or "error".
	LogLevel string `toml:"log-level"`
	// SameUser rejects clients running as a different user than the
	// server.
	SameUser bool `toml:"same-user"`

	Crash Crash `toml:"crash"`
	Video Video `toml:"video"`
}

// Crash configures the crash supervisor.
type Crash struct {
	Dir            string   `toml:"dir"`
	HandledCrashes []string `toml:"handled-crashes"`
	LogDepth       int      `toml:"log-depth"`
}

// Video configures the engine's video pipeline.
type Video struct {
	FPSNum       uint32 `toml:"fps-num"`
	FPSDen       uint32 `toml:"fps-den"`
	BaseWidth    uint32 `toml:"base-width"`
	BaseHeight   uint32 `toml:"base-height"`
	OutputWidth  uint32 `toml:"output-width"`
	OutputHeight uint32 `toml:"output-height"`
}

// DefaultSocket returns the default socket path, in the user's
// runtime directory when there is one.
func DefaultSocket() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "osn.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("osn-%d.sock", os.Getuid()))
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	d := engine.DefaultConfig
	return &Config{
		Socket:   DefaultSocket(),
		LogLevel: "info",
		SameUser: true,
		Crash: Crash{
			LogDepth: crash.DefaultLogDepth,
		},
		Video: Video{
			FPSNum:       d.FPSNum,
			FPSDen:       d.FPSDen,
			BaseWidth:    d.BaseWidth,
			BaseHeight:   d.BaseHeight,
			OutputWidth:  d.OutputWidth,
			OutputHeight: d.OutputHeight,
		},
	}
}

// Load reads the configuration file at path over the defaults. A
// missing file is not an error if path is empty.
func Load(path string) (*Config, error) {
	ret := Default()
	if path == "" {
		return ret, nil
	}
	md, err := toml.DecodeFile(path, ret)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config file %s not found", path)
	} else if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if und := md.Undecoded(); len(und) > 0 {
		keys := make([]string, 0, len(und))
		for _, k := range und {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return ret, nil
}

// Validate reports whether c is usable.
func (c *Config) Validate() error {
	if c.Socket == "" {
		return errors.New("socket path is empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Crash.LogDepth < 0 {
		return fmt.Errorf("negative crash log depth %d", c.Crash.LogDepth)
	}
	return c.Engine().Validate()
}

// Level returns the parsed log level.
func (c *Config) Level() (zapcore.Level, error) {
	l, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return l, nil
}

// Engine returns the engine configuration.
func (c *Config) Engine() engine.Config {
	return engine.Config{
		FPSNum:       c.Video.FPSNum,
		FPSDen:       c.Video.FPSDen,
		BaseWidth:    c.Video.BaseWidth,
		BaseHeight:   c.Video.BaseHeight,
		OutputWidth:  c.Video.OutputWidth,
		OutputHeight: c.Video.OutputHeight,
	}
}

// Logger returns a console logger at c's level. Every entry is also
// passed to hooks.
func (c *Config) Logger(hooks ...func(zapcore.Entry) error) (*zap.Logger, error) {
	lvl, err := c.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Development = false
	zc.DisableStacktrace = true
	return zc.Build(zap.Hooks(hooks...))
}
