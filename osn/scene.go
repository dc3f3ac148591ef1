package osn

import (
	"context"

	"github.com/danderson/obsipc"
	"go.uber.org/zap"
)

func (s *Server) sceneCollection() *obsipc.Collection {
	return obsipc.NewCollection("Scene").
		Register("Create", "s", s.sceneCreate).
		Register("FromName", "s", s.sceneFromName).
		Register("GetSource", "t", s.sceneGetSource).
		Register("AddSource", "tt", s.sceneAddSource).
		Register("GetItems", "t", s.sceneGetItems).
		Register("Release", "t", s.sceneRelease)
}

func (s *Server) sceneCreate(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	sc, err := s.engine.CreateScene(args[0].AsString())
	if err != nil {
		failEngine(reply, err)
		return
	}
	s.logger.Debug("created scene", zap.String("name", sc.Name()))
	reply.Ok(handleValue(s.scenes.Allocate(sc)))
}

func (s *Server) sceneFromName(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	src, ok := s.engine.SourceByName(args[0].AsString())
	if !ok || src.Scene() == nil {
		reply.Failf(obsipc.StatusNotFound, "No scene named %q.", args[0].AsString())
		return
	}
	reply.Ok(handleValue(s.scenes.Allocate(src.Scene())))
}

func (s *Server) sceneGetSource(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if sc, ok := s.findScene(args[0], reply); ok {
		reply.Ok(handleValue(s.sources.Allocate(sc.Source())))
	}
}

func (s *Server) sceneAddSource(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	sc, ok := s.findScene(args[0], reply)
	if !ok {
		return
	}
	src, ok := s.findSource(args[1], reply)
	if !ok {
		return
	}
	it, err := sc.Add(src)
	if err != nil {
		failEngine(reply, err)
		return
	}
	reply.Ok(handleValue(s.items.Allocate(it)))
}

func (s *Server) sceneGetItems(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	sc, ok := s.findScene(args[0], reply)
	if !ok {
		return
	}
	items := sc.Items()
	vals := make([]obsipc.Value, 0, len(items))
	for _, it := range items {
		vals = append(vals, handleValue(s.items.Allocate(it)))
	}
	reply.Ok(vals...)
}

func (s *Server) sceneRelease(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	sc, ok := s.findScene(args[0], reply)
	if !ok {
		return
	}
	if err := s.engine.ReleaseSource(sc.Source()); err != nil {
		failEngine(reply, err)
		return
	}
	s.scenes.FreeValue(sc)
	s.sources.FreeValue(sc.Source())
	reply.Ok()
}
