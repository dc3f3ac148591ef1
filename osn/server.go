// Package osn exposes the engine's scenes, sources, scene items and
// video pipeline as IPC collections.
//
// Engine objects are referenced remotely by handles. Every reply
// starts with a status code; failed calls carry a message and no
// payload, and never leave a partial change behind.
package osn

import (
	"errors"
	"sync/atomic"

	"github.com/danderson/obsipc"
	"github.com/danderson/obsipc/crash"
	"github.com/danderson/obsipc/engine"
	"github.com/danderson/obsipc/handle"
	"go.uber.org/zap"
)

// Server implements the IPC collections over an engine.
type Server struct {
	engine *engine.Engine
	crash  *crash.Supervisor
	logger *zap.Logger

	items   *handle.Table[*engine.SceneItem]
	sources *handle.Table[*engine.Source]
	scenes  *handle.Table[*engine.Scene]

	shutdown atomic.Bool
	reg      *obsipc.Registry

	// maxSettings overrides MaxSettingsSize when positive.
	maxSettings int
}

// New returns a Server for e.
//
// sup handles API.StopCrashHandler and may be nil. logger may be nil
// to disable logging.
func New(e *engine.Engine, sup *crash.Supervisor, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	ret := &Server{
		engine:  e,
		crash:   sup,
		logger:  logger,
		items:   handle.New[*engine.SceneItem](handle.SceneItem),
		sources: handle.New[*engine.Source](handle.Source),
		scenes:  handle.New[*engine.Scene](handle.Scene),
	}
	reg, err := obsipc.NewRegistry(
		ret.sceneItemCollection(),
		ret.sceneCollection(),
		ret.sourceCollection(),
		ret.videoCollection(),
		ret.apiCollection(),
	)
	if err != nil {
		// Collection names are fixed, so this is a programming error.
		panic(err)
	}
	ret.reg = reg
	return ret
}

// Registry returns the server's collections.
func (s *Server) Registry() *obsipc.Registry { return s.reg }

// Dispatcher returns a Dispatcher for the server's collections.
func (s *Server) Dispatcher() *obsipc.Dispatcher {
	d := &obsipc.Dispatcher{
		Registry: s.reg,
		Logger:   s.logger.Named("dispatch"),
	}
	if s.crash != nil {
		d.OnFatal = s.crash.HandleFatal
	}
	return d
}

// Initialized reports whether the engine is running, that is whether
// API.Shutdown has not been called.
func (s *Server) Initialized() bool { return !s.shutdown.Load() }

const (
	msgBadItem   = "Item reference is not valid."
	msgBadSource = "Source reference is not valid."
	msgBadScene  = "Scene reference is not valid."
)

func argHandle(v obsipc.Value) handle.Handle { return handle.Handle(v.AsUint64()) }

func handleValue(h handle.Handle) obsipc.Value { return obsipc.Uint64(uint64(h)) }

func (s *Server) findItem(v obsipc.Value, reply *obsipc.Reply) (*engine.SceneItem, bool) {
	it, ok := s.items.Find(argHandle(v))
	if !ok {
		reply.Fail(obsipc.StatusInvalidReference, msgBadItem)
	}
	return it, ok
}

func (s *Server) findSource(v obsipc.Value, reply *obsipc.Reply) (*engine.Source, bool) {
	src, ok := s.sources.Find(argHandle(v))
	if !ok {
		reply.Fail(obsipc.StatusInvalidReference, msgBadSource)
	}
	return src, ok
}

func (s *Server) findScene(v obsipc.Value, reply *obsipc.Reply) (*engine.Scene, bool) {
	sc, ok := s.scenes.Find(argHandle(v))
	if !ok {
		reply.Fail(obsipc.StatusInvalidReference, msgBadScene)
	}
	return sc, ok
}

// checkSettings reports whether settings encode within the size
// limit, and fails the reply if not.
func (s *Server) checkSettings(settings map[string]any, reply *obsipc.Reply) ([]byte, bool) {
	bs, err := EncodeSettings(settings)
	if err != nil {
		reply.Failf(obsipc.StatusFailed, "Encoding settings: %v", err)
		return nil, false
	}
	limit := MaxSettingsSize
	if s.maxSettings > 0 {
		limit = s.maxSettings
	}
	if len(bs) > limit {
		reply.Failf(obsipc.StatusOutOfBounds, "Settings of %d bytes exceed the limit of %d bytes.", len(bs), limit)
		return nil, false
	}
	return bs, true
}

// failEngine reports an engine error with the status that best
// matches it.
func failEngine(reply *obsipc.Reply, err error) {
	switch {
	case errors.Is(err, engine.ErrOutOfRange):
		reply.Fail(obsipc.StatusOutOfBounds, err.Error())
	case errors.Is(err, engine.ErrUnknownSourceType):
		reply.Fail(obsipc.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrReleased):
		reply.Fail(obsipc.StatusInvalidReference, err.Error())
	case errors.Is(err, engine.ErrRecursive):
		reply.Fail(obsipc.StatusUnsupported, err.Error())
	default:
		reply.Fail(obsipc.StatusFailed, err.Error())
	}
}
