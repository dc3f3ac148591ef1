package osn

import (
	"context"

	"github.com/danderson/obsipc"
)

func (s *Server) apiCollection() *obsipc.Collection {
	return obsipc.NewCollection("API").
		Register("GetPerformanceStatistics", "", s.apiGetPerformanceStatistics).
		Register("StopCrashHandler", "", s.apiStopCrashHandler).
		Register("Shutdown", "", s.apiShutdown).
		Register("ListFunctions", "", s.apiListFunctions)
}

func (s *Server) apiGetPerformanceStatistics(_ context.Context, _ []obsipc.Value, reply *obsipc.Reply) {
	st := s.engine.Stats()
	reply.Ok(
		obsipc.Float64(st.CPUPercent),
		obsipc.Uint64(st.DroppedFrames),
		obsipc.Float64(st.DroppedPercent),
		obsipc.Float64(st.Bandwidth),
		obsipc.Float64(st.FrameRate))
}

func (s *Server) apiStopCrashHandler(_ context.Context, _ []obsipc.Value, reply *obsipc.Reply) {
	if s.crash != nil {
		s.crash.Disable()
	}
	reply.Ok()
}

// apiShutdown marks the engine as cleanly shut down, so that the
// process may exit without it being reported as a failure.
func (s *Server) apiShutdown(_ context.Context, _ []obsipc.Value, reply *obsipc.Reply) {
	if !s.shutdown.Swap(true) {
		s.logger.Info("engine shut down by client")
	}
	reply.Ok()
}

// apiListFunctions replies with one "Collection.Function" string and
// one signature string per registered function.
func (s *Server) apiListFunctions(_ context.Context, _ []obsipc.Value, reply *obsipc.Reply) {
	var vals []obsipc.Value
	for c := range s.reg.Collections() {
		for f := range c.Functions() {
			vals = append(vals, obsipc.String(c.Name()+"."+f.Name()), obsipc.String(f.Signature().String()))
		}
	}
	reply.Ok(vals...)
}
