package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// VideoInfo is the video pipeline's configuration.
type VideoInfo struct {
	FPSNum, FPSDen            uint32
	BaseWidth, BaseHeight     uint32
	OutputWidth, OutputHeight uint32
}

// Video is the engine's frame clock.
//
// While Run is active, Video produces one frame per frame interval.
// Intervals that pass without a frame being produced, because the
// clock fell behind, are counted as skipped.
type Video struct {
	cfg    Config
	engine *Engine
	logger *zap.Logger

	mu       sync.Mutex
	start    time.Time
	encoded  uint64
	skipped  uint64
	lastTick time.Time
	fps      float64
	drawn    int
}

func newVideo(cfg Config, e *Engine, logger *zap.Logger) *Video {
	return &Video{cfg: cfg, engine: e, logger: logger}
}

// Info returns the video configuration.
func (v *Video) Info() VideoInfo {
	return VideoInfo(v.cfg)
}

// Interval returns the duration of one frame.
func (v *Video) Interval() time.Duration {
	return v.cfg.interval()
}

// EncodedFrames returns the number of frames produced.
func (v *Video) EncodedFrames() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.encoded
}

// SkippedFrames returns the number of frame intervals that passed
// without a frame.
func (v *Video) SkippedFrames() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.skipped
}

// ActiveFPS returns the recently measured frame rate.
func (v *Video) ActiveFPS() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fps
}

// DrawnItems returns the number of items drawn in the last frame.
func (v *Video) DrawnItems() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.drawn
}

// Run produces frames until ctx is canceled.
func (v *Video) Run(ctx context.Context) error {
	interval := v.Interval()
	t := time.NewTicker(interval)
	defer t.Stop()

	v.logger.Info("video started",
		zap.Uint32("fps_num", v.cfg.FPSNum),
		zap.Uint32("fps_den", v.cfg.FPSDen),
		zap.Uint32("width", v.cfg.OutputWidth),
		zap.Uint32("height", v.cfg.OutputHeight))
	v.reset(time.Now())
	for {
		select {
		case <-ctx.Done():
			v.logger.Info("video stopped",
				zap.Uint64("encoded", v.EncodedFrames()),
				zap.Uint64("skipped", v.SkippedFrames()))
			return nil
		case now := <-t.C:
			v.tick(now)
		}
	}
}

func (v *Video) reset(now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.start, v.lastTick = now, now
}

// tick records one produced frame at now, and counts any frame
// intervals that elapsed since the previous tick as skipped.
func (v *Video) tick(now time.Time) {
	interval := v.Interval()
	drawn := v.render()

	v.mu.Lock()
	defer v.mu.Unlock()
	v.drawn = drawn
	want := uint64(now.Sub(v.start) / interval)
	if have := v.encoded + v.skipped + 1; want > have {
		v.skipped += want - have
	}
	v.encoded++

	if d := now.Sub(v.lastTick); d > 0 {
		inst := float64(time.Second) / float64(d)
		if v.fps == 0 {
			v.fps = inst
		} else {
			v.fps = 0.9*v.fps + 0.1*inst
		}
	}
	v.lastTick = now
}

// render returns the number of scene items a compositor would draw:
// visible items that still have a source.
func (v *Video) render() int {
	n := 0
	for _, sc := range v.engine.Scenes() {
		for _, it := range sc.Items() {
			if it.Visible() && it.Source() != nil {
				n++
			}
		}
	}
	return n
}
