package obsipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/creachadair/taskgroup"
	"github.com/danderson/obsipc/transport"
	"go.uber.org/zap"
)

// Transport is a bidirectional stream of frames.
type Transport interface {
	ReadFrame() ([]byte, error)
	WriteFrame([]byte) error
	Close() error
}

// Server answers calls from IPC clients using a [Dispatcher].
type Server struct {
	Dispatcher *Dispatcher
	// Logger receives connection logs. If nil, logging is disabled.
	Logger *zap.Logger

	// maxReply is the largest encoded reply message. Zero means
	// transport.MaxFrameSize.
	maxReply int
}

func (s *Server) maxReplySize() int {
	if s.maxReply > 0 {
		return s.maxReply
	}
	return transport.MaxFrameSize
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Serve accepts connections from l and serves each one until ctx is
// canceled or l fails. Serve closes l before returning, and waits for
// all connections to finish.
func (s *Server) Serve(ctx context.Context, l *transport.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()

	g := taskgroup.New(nil)
	defer g.Wait()

	log := s.logger()
	log.Info("serving", zap.String("socket", l.Path()))
	for {
		c, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.Close()
			return err
		}
		g.Go(func() error {
			if err := s.ServeConn(ctx, c); err != nil {
				log.Warn("connection failed", zap.Error(err))
			}
			return nil
		})
	}
}

// ServeConn serves calls arriving on t until the peer disconnects or
// ctx is canceled. Calls are answered in the order they arrive.
//
// ServeConn closes t before returning. A clean disconnect by the peer
// returns nil.
func (s *Server) ServeConn(ctx context.Context, t Transport) error {
	defer t.Close()
	stop := context.AfterFunc(ctx, func() { t.Close() })
	defer stop()

	log := s.logger()
	log.Debug("client connected")
	defer log.Debug("client disconnected")

	var out []byte
	for {
		frame, err := t.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		resp := s.handleFrame(ctx, frame)
		out, err = appendMessage(out[:0], resp)
		if err != nil {
			return err
		}
		if limit, size := s.maxReplySize(), len(out); size > limit {
			log.Warn("reply exceeds frame limit",
				zap.Uint64("call", resp.ID),
				zap.Int("size", size),
				zap.Int("limit", limit))
			out, err = appendMessage(out[:0], &message{
				Type:      msgTypeError,
				ID:        resp.ID,
				ErrName:   ErrNameInternal,
				ErrDetail: fmt.Sprintf("reply of %d bytes exceeds frame limit of %d bytes", size, limit),
			})
			if err != nil {
				return err
			}
		}
		if err := t.WriteFrame(out); err != nil {
			return err
		}
	}
}

func (s *Server) handleFrame(ctx context.Context, frame []byte) *message {
	req, err := parseMessage(frame)
	if err != nil {
		s.logger().Debug("malformed frame", zap.Error(err))
		ret := &message{
			Type:      msgTypeError,
			ErrName:   ErrNameMalformedCall,
			ErrDetail: err.Error(),
		}
		if req != nil {
			ret.ID = req.ID
		}
		return ret
	}
	if req.Type != msgTypeCall {
		return &message{
			Type:      msgTypeError,
			ID:        req.ID,
			ErrName:   ErrNameMalformedCall,
			ErrDetail: "expected call message, got " + req.Type.String(),
		}
	}

	vals, err := s.Dispatcher.Dispatch(ctx, Call{
		ID:         req.ID,
		Collection: req.Collection,
		Function:   req.Function,
		Args:       req.Values,
	})
	if err != nil {
		ret := &message{
			Type:      msgTypeError,
			ID:        req.ID,
			ErrName:   ErrNameInternal,
			ErrDetail: err.Error(),
		}
		var ce *CallError
		if errors.As(err, &ce) {
			ret.ErrName = ce.Name
			ret.ErrDetail = ce.Detail
		}
		return ret
	}
	return &message{
		Type:   msgTypeReply,
		ID:     req.ID,
		Values: vals,
	}
}
