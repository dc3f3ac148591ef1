package osn

import (
	"context"
	"math"

	"github.com/danderson/obsipc"
)

func (s *Server) videoCollection() *obsipc.Collection {
	return obsipc.NewCollection("Video").
		Register("GetSkippedFrames", "", s.videoGetSkippedFrames).
		Register("GetEncodedFrames", "", s.videoGetEncodedFrames).
		Register("GetInfo", "", s.videoGetInfo)
}

func saturate32(n uint64) obsipc.Value {
	return obsipc.Uint32(uint32(min(n, math.MaxUint32)))
}

func (s *Server) videoGetSkippedFrames(_ context.Context, _ []obsipc.Value, reply *obsipc.Reply) {
	reply.Ok(saturate32(s.engine.Video().SkippedFrames()))
}

func (s *Server) videoGetEncodedFrames(_ context.Context, _ []obsipc.Value, reply *obsipc.Reply) {
	reply.Ok(saturate32(s.engine.Video().EncodedFrames()))
}

func (s *Server) videoGetInfo(_ context.Context, _ []obsipc.Value, reply *obsipc.Reply) {
	vi := s.engine.Video().Info()
	reply.Ok(
		obsipc.Uint32(vi.FPSNum),
		obsipc.Uint32(vi.FPSDen),
		obsipc.Uint32(vi.BaseWidth),
		obsipc.Uint32(vi.BaseHeight),
		obsipc.Uint32(vi.OutputWidth),
		obsipc.Uint32(vi.OutputHeight))
}
