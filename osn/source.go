package osn

import (
	"context"
	"maps"

	"github.com/danderson/obsipc"
	"github.com/danderson/obsipc/engine"
	"github.com/danderson/obsipc/property"
	"go.uber.org/zap"
)

func (s *Server) sourceCollection() *obsipc.Collection {
	return obsipc.NewCollection("Source").
		Register("GetTypes", "", s.sourceGetTypes).
		Register("Create", "ssb", s.sourceCreate).
		Register("FromName", "s", s.sourceFromName).
		Register("GetName", "t", s.sourceGetName).
		Register("SetName", "ts", s.sourceSetName).
		Register("GetType", "t", s.sourceGetType).
		Register("GetProperties", "t", s.sourceGetProperties).
		Register("GetSettings", "t", s.sourceGetSettings).
		Register("Update", "tb", s.sourceUpdate).
		Register("Release", "t", s.sourceRelease)
}

func (s *Server) sourceGetTypes(_ context.Context, _ []obsipc.Value, reply *obsipc.Reply) {
	types := engine.SourceTypes()
	vals := make([]obsipc.Value, 0, len(types))
	for _, t := range types {
		vals = append(vals, obsipc.String(t))
	}
	reply.Ok(vals...)
}

func (s *Server) sourceCreate(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	settings, err := DecodeSettings(args[2].AsBytes())
	if err != nil {
		reply.Failf(obsipc.StatusFailed, "Invalid settings: %v", err)
		return
	}
	if _, ok := s.checkSettings(settings, reply); !ok {
		return
	}
	src, err := s.engine.CreateSource(args[0].AsString(), args[1].AsString(), settings)
	if err != nil {
		failEngine(reply, err)
		return
	}
	if _, ok := s.checkSettings(src.Settings(), reply); !ok {
		s.engine.ReleaseSource(src)
		return
	}
	s.logger.Debug("created source", zap.String("type", src.TypeID()), zap.String("name", src.Name()))
	reply.Ok(handleValue(s.sources.Allocate(src)))
}

func (s *Server) sourceFromName(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	src, ok := s.engine.SourceByName(args[0].AsString())
	if !ok {
		reply.Failf(obsipc.StatusNotFound, "No source named %q.", args[0].AsString())
		return
	}
	reply.Ok(handleValue(s.sources.Allocate(src)))
}

func (s *Server) sourceGetName(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if src, ok := s.findSource(args[0], reply); ok {
		reply.Ok(obsipc.String(src.Name()))
	}
}

func (s *Server) sourceSetName(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	src, ok := s.findSource(args[0], reply)
	if !ok {
		return
	}
	if err := src.SetName(args[1].AsString()); err != nil {
		failEngine(reply, err)
		return
	}
	reply.Ok(obsipc.String(src.Name()))
}

func (s *Server) sourceGetType(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if src, ok := s.findSource(args[0], reply); ok {
		reply.Ok(obsipc.String(src.TypeID()))
	}
}

func (s *Server) sourceGetProperties(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	src, ok := s.findSource(args[0], reply)
	if !ok {
		return
	}
	props := src.Properties()
	vals := make([]obsipc.Value, 0, len(props))
	for _, p := range props {
		vals = append(vals, obsipc.Binary(property.Marshal(p)))
	}
	reply.Ok(vals...)
}

func (s *Server) sourceGetSettings(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	src, ok := s.findSource(args[0], reply)
	if !ok {
		return
	}
	bs, err := EncodeSettings(src.Settings())
	if err != nil {
		reply.Failf(obsipc.StatusFailed, "Encoding settings: %v", err)
		return
	}
	reply.Ok(obsipc.Binary(bs))
}

func (s *Server) sourceUpdate(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	src, ok := s.findSource(args[0], reply)
	if !ok {
		return
	}
	settings, err := DecodeSettings(args[1].AsBytes())
	if err != nil {
		reply.Failf(obsipc.StatusFailed, "Invalid settings: %v", err)
		return
	}
	merged := src.Settings()
	maps.Copy(merged, settings)
	bs, ok := s.checkSettings(merged, reply)
	if !ok {
		return
	}
	if err := src.Update(settings); err != nil {
		failEngine(reply, err)
		return
	}
	reply.Ok(obsipc.Binary(bs))
}

func (s *Server) sourceRelease(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	src, ok := s.findSource(args[0], reply)
	if !ok {
		return
	}
	if err := s.engine.ReleaseSource(src); err != nil {
		failEngine(reply, err)
		return
	}
	s.sources.FreeValue(src)
	if sc := src.Scene(); sc != nil {
		s.scenes.FreeValue(sc)
	}
	reply.Ok()
}
