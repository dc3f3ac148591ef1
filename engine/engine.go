// Package engine is an in-process model of the compositing engine
// that IPC handlers operate on.
//
// It tracks sources, scenes and scene items, and runs a video clock
// that counts produced and skipped frames. Engine objects are safe
// for concurrent use.
package engine

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNameTaken is returned when creating or renaming a source to a
	// name that is already in use.
	ErrNameTaken = errors.New("source name already in use")
	// ErrUnknownSourceType is returned when creating a source of an
	// unregistered type.
	ErrUnknownSourceType = errors.New("unknown source type")
	// ErrReleased is returned when operating on a released source.
	ErrReleased = errors.New("source has been released")
	// ErrOutOfRange is returned by setters given a value outside the
	// accepted range.
	ErrOutOfRange = errors.New("value out of range")
	// ErrRecursive is returned when adding a scene would make it
	// contain itself, directly or through nested scenes.
	ErrRecursive = errors.New("scene cannot contain itself")
)

// Config is the engine's video configuration.
type Config struct {
	FPSNum, FPSDen            uint32
	BaseWidth, BaseHeight     uint32
	OutputWidth, OutputHeight uint32
}

// DefaultConfig is 1080p at 30fps.
var DefaultConfig = Config{
	FPSNum:       30,
	FPSDen:       1,
	BaseWidth:    1920,
	BaseHeight:   1080,
	OutputWidth:  1920,
	OutputHeight: 1080,
}

// Validate reports whether c describes a usable video pipeline.
func (c Config) Validate() error {
	if c.FPSNum == 0 || c.FPSDen == 0 {
		return fmt.Errorf("invalid frame rate %d/%d", c.FPSNum, c.FPSDen)
	}
	if c.interval() <= 0 {
		return fmt.Errorf("invalid frame rate %d/%d: frame interval under 1ns", c.FPSNum, c.FPSDen)
	}
	if c.BaseWidth == 0 || c.BaseHeight == 0 || c.OutputWidth == 0 || c.OutputHeight == 0 {
		return errors.New("video resolution must be non-zero")
	}
	return nil
}

// interval returns the duration of one frame.
func (c Config) interval() time.Duration {
	return time.Duration(uint64(time.Second) * uint64(c.FPSDen) / uint64(c.FPSNum))
}

// Engine is the root of the engine object graph.
type Engine struct {
	logger *zap.Logger
	video  *Video
	cpu    cpuSampler

	mu      sync.Mutex
	sources map[string]*Source
}

// New returns an engine with no sources.
//
// logger may be nil to disable logging.
func New(cfg Config, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ret := &Engine{
		logger:  logger,
		sources: map[string]*Source{},
	}
	ret.video = newVideo(cfg, ret, logger.Named("video"))
	return ret, nil
}

// Video returns the engine's video pipeline.
func (e *Engine) Video() *Video { return e.video }

// CreateSource creates a source of the given type.
//
// settings overrides the type's default settings, and may be nil.
func (e *Engine) CreateSource(typeID, name string, settings map[string]any) (*Source, error) {
	if typeID == SceneTypeID {
		return nil, fmt.Errorf("use CreateScene to create scenes: %w", ErrUnknownSourceType)
	}
	st, ok := sourceTypes[typeID]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSourceType, typeID)
	}
	return e.addSource(typeID, name, st, settings)
}

func (e *Engine) addSource(typeID, name string, st sourceType, settings map[string]any) (*Source, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.sources[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrNameTaken, name)
	}
	s := &Source{
		engine:   e,
		typeID:   typeID,
		name:     name,
		props:    st.properties,
		settings: st.defaults(),
	}
	maps.Copy(s.settings, settings)
	e.sources[name] = s
	e.logger.Debug("created source", zap.String("type", typeID), zap.String("name", name))
	return s, nil
}

// CreateScene creates an empty scene and its backing source.
func (e *Engine) CreateScene(name string) (*Scene, error) {
	src, err := e.addSource(SceneTypeID, name, sourceTypes[SceneTypeID], nil)
	if err != nil {
		return nil, err
	}
	sc := &Scene{source: src}
	src.mu.Lock()
	src.scene = sc
	src.mu.Unlock()
	return sc, nil
}

// SourceByName returns the live source with the given name.
func (e *Engine) SourceByName(name string) (*Source, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sources[name]
	return s, ok
}

// Sources returns all live sources, sorted by name.
func (e *Engine) Sources() []*Source {
	e.mu.Lock()
	defer e.mu.Unlock()
	ret := slices.Collect(maps.Values(e.sources))
	slices.SortFunc(ret, func(a, b *Source) int {
		switch {
		case a.name < b.name:
			return -1
		case a.name > b.name:
			return 1
		}
		return 0
	})
	return ret
}

// Scenes returns all live scenes, sorted by name.
func (e *Engine) Scenes() []*Scene {
	var ret []*Scene
	for _, s := range e.Sources() {
		if sc := s.Scene(); sc != nil {
			ret = append(ret, sc)
		}
	}
	return ret
}

// ReleaseSource destroys s.
//
// Scene items that show s stay in their scenes with no source. If s
// is a scene, its items are detached from it.
func (e *Engine) ReleaseSource(s *Source) error {
	e.mu.Lock()
	if cur, ok := e.sources[s.Name()]; !ok || cur != s {
		e.mu.Unlock()
		return ErrReleased
	}
	delete(e.sources, s.Name())
	remaining := slices.Collect(maps.Values(e.sources))
	e.mu.Unlock()

	s.mu.Lock()
	s.released = true
	sc := s.scene
	s.mu.Unlock()

	for _, other := range remaining {
		if osc := other.Scene(); osc != nil {
			osc.orphanSource(s)
		}
	}
	if sc != nil {
		sc.detachAll()
	}
	e.logger.Debug("released source", zap.String("type", s.typeID), zap.String("name", s.Name()))
	return nil
}

func (e *Engine) rename(s *Source, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cur, ok := e.sources[s.name]; !ok || cur != s {
		return ErrReleased
	}
	if name == s.name {
		return nil
	}
	if _, ok := e.sources[name]; ok {
		return fmt.Errorf("%w: %q", ErrNameTaken, name)
	}
	delete(e.sources, s.name)
	e.sources[name] = s
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
	return nil
}

// PerformanceStats is a snapshot of engine load.
type PerformanceStats struct {
	// CPUPercent is the process CPU usage since the previous
	// snapshot, as a percentage of one core.
	CPUPercent float64
	// DroppedFrames is the number of frames the video clock skipped.
	DroppedFrames uint64
	// DroppedPercent is DroppedFrames as a percentage of all frames.
	DroppedPercent float64
	// Bandwidth is the current output bitrate in kbit/s. There are no
	// outputs in this engine, so it is always zero.
	Bandwidth float64
	// FrameRate is the measured rendering rate.
	FrameRate float64
}

// Stats returns current performance statistics.
func (e *Engine) Stats() PerformanceStats {
	enc, skip := e.video.EncodedFrames(), e.video.SkippedFrames()
	ret := PerformanceStats{
		CPUPercent:    e.cpu.sample(),
		DroppedFrames: skip,
		FrameRate:     e.video.ActiveFPS(),
	}
	if total := enc + skip; total > 0 {
		ret.DroppedPercent = 100 * float64(skip) / float64(total)
	}
	return ret
}
