package obsipc

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net"
	"sync"

	"github.com/danderson/obsipc/transport"
	"go.uber.org/zap"
)

// Dial connects to the IPC server listening on the unix socket at
// path.
func Dial(ctx context.Context, path string, logger *zap.Logger) (*Conn, error) {
	t, err := transport.Dial(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewConn(t, logger), nil
}

// NewConn returns a client connection that makes calls over t.
//
// logger may be nil to disable logging.
func NewConn(t Transport, logger *zap.Logger) *Conn {
	if logger == nil {
		logger = zap.NewNop()
	}
	ret := &Conn{
		t:      t,
		logger: logger,
		calls:  map[uint64]*pendingCall{},
	}
	go ret.readLoop()
	return ret
}

// Conn is a client connection to an IPC server.
//
// A Conn may be used concurrently. Each call waits for its own reply,
// but the server answers calls one at a time in arrival order.
type Conn struct {
	t      Transport
	logger *zap.Logger

	writeMu sync.Mutex
	wbuf    []byte

	mu     sync.Mutex
	closed bool
	err    error
	calls  map[uint64]*pendingCall
	lastID uint64
}

type pendingCall struct {
	notify chan struct{}
	resp   []Value
	err    error
}

// Close closes the connection. Calls in flight fail with
// net.ErrClosed.
func (c *Conn) Close() error {
	c.failAll(net.ErrClosed)
	return c.t.Close()
}

func (c *Conn) failAll(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.err = err
	pend := c.calls
	c.calls = nil
	c.mu.Unlock()

	for p := range maps.Values(pend) {
		p.err = err
		close(p.notify)
	}
}

// Call calls collection.function with args, and returns the reply
// values.
//
// If the server rejects the call, the returned error is a
// [*CallError]. Application failures are not errors at this layer:
// they are reported in the reply values, see [ParseResult].
func (c *Conn) Call(ctx context.Context, collection, function string, args ...Value) ([]Value, error) {
	pending := &pendingCall{notify: make(chan struct{})}
	id, err := func() (uint64, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return 0, c.err
		}
		c.lastID++
		c.calls[c.lastID] = pending
		return c.lastID, nil
	}()
	if err != nil {
		return nil, err
	}
	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.calls, id)
	}()

	err = c.writeMsg(&message{
		Type:       msgTypeCall,
		ID:         id,
		Collection: collection,
		Function:   function,
		Values:     args,
	})
	if err != nil {
		return nil, err
	}

	select {
	case <-pending.notify:
		return pending.resp, pending.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Conn) writeMsg(m *message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	var err error
	c.wbuf, err = appendMessage(c.wbuf[:0], m)
	if err != nil {
		return err
	}
	return c.t.WriteFrame(c.wbuf)
}

func (c *Conn) readLoop() {
	for {
		frame, err := c.t.ReadFrame()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				c.logger.Debug("read failed, closing connection", zap.Error(err))
			}
			c.failAll(fmt.Errorf("connection lost: %w", err))
			c.t.Close()
			return
		}
		if err := c.dispatchMsg(frame); err != nil {
			c.logger.Warn("discarding bad message", zap.Error(err))
		}
	}
}

func (c *Conn) dispatchMsg(frame []byte) error {
	msg, parseErr := parseMessage(frame)
	if msg == nil {
		return parseErr
	}

	pending := func() *pendingCall {
		c.mu.Lock()
		defer c.mu.Unlock()
		ret := c.calls[msg.ID]
		delete(c.calls, msg.ID)
		return ret
	}()
	if pending == nil {
		// Reply to a canceled call.
		return parseErr
	}

	switch {
	case parseErr != nil:
		pending.err = fmt.Errorf("decoding reply: %w", parseErr)
	case msg.Type == msgTypeReply:
		pending.resp = msg.Values
	case msg.Type == msgTypeError:
		pending.err = &CallError{Name: msg.ErrName, Detail: msg.ErrDetail}
	default:
		pending.err = fmt.Errorf("unexpected %s message in reply to call %d", msg.Type, msg.ID)
	}
	close(pending.notify)
	return parseErr
}

// Collection returns a handle for calling the functions of a remote
// collection.
func (c *Conn) Collection(name string) Remote {
	return Remote{c, name}
}

// Remote is a collection on the other end of a [Conn].
type Remote struct {
	c    *Conn
	name string
}

// Name returns the collection name.
func (r Remote) Name() string { return r.name }

// Call calls the named function of the collection.
func (r Remote) Call(ctx context.Context, function string, args ...Value) ([]Value, error) {
	return r.c.Call(ctx, r.name, function, args...)
}

// Result calls the named function of the collection, and parses the
// reply as a status-prefixed [Result].
//
// If the call succeeds at the protocol level but reports a non-Ok
// status, Result returns the parsed Result and a [*StatusError].
func (r Remote) Result(ctx context.Context, function string, args ...Value) (Result, error) {
	vals, err := r.Call(ctx, function, args...)
	if err != nil {
		return Result{}, err
	}
	res, err := ParseResult(vals)
	if err != nil {
		return Result{}, fmt.Errorf("%s.%s: %w", r.name, function, err)
	}
	return res, res.Err()
}
