package obsipc

import (
	"context"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

// A Call is one remote function invocation.
type Call struct {
	// ID is the caller-assigned call ID, echoed in the reply.
	ID         uint64
	Collection string
	Function   string
	Args       []Value
}

// A Dispatcher validates calls against a [Registry] and runs their
// handlers.
//
// A Dispatcher runs one call at a time: concurrent Dispatch calls are
// serialized, and each handler runs to completion before the next one
// starts.
type Dispatcher struct {
	// Registry is the set of callable functions.
	Registry *Registry
	// Logger receives dispatch logs. If nil, logging is disabled.
	Logger *zap.Logger
	// OnFatal, if non-nil, is called with a description of every
	// handler that panics. The panic is contained, and the call is
	// rejected with a [CallError] named [ErrNameInternal].
	OnFatal func(*FatalError)

	mu sync.Mutex
}

func (d *Dispatcher) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Dispatch runs call and returns the values its handler added to the
// reply.
//
// Dispatch returns a [*CallError] without running any handler if the
// call's function is not registered, or if its arguments don't match
// the function's signature.
func (d *Dispatcher) Dispatch(ctx context.Context, call Call) ([]Value, error) {
	log := d.logger().With(
		zap.Uint64("call", call.ID),
		zap.String("collection", call.Collection),
		zap.String("function", call.Function))

	fn, ok := d.Registry.Lookup(call.Collection, call.Function)
	if !ok {
		log.Debug("rejected call to unknown function")
		return nil, callErr(ErrNameUnknownFunction, "no function %s.%s", call.Collection, call.Function)
	}
	if err := fn.sig.Check(call.Args); err != nil {
		log.Debug("rejected call with mismatched arguments", zap.Error(err))
		return nil, callErr(ErrNameSignatureMismatch, "%s.%s: %v", call.Collection, call.Function, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx = withContextCall(ctx, CallInfo{call.ID, call.Collection, call.Function})
	var reply Reply
	if fatal := d.invoke(ctx, fn, call, &reply); fatal != nil {
		log.Error("handler failed fatally", zap.Any("reason", fatal.Reason))
		if d.OnFatal != nil {
			d.OnFatal(fatal)
		}
		return nil, callErr(ErrNameInternal, "%s.%s failed: %v", call.Collection, call.Function, fatal.Reason)
	}
	log.Debug("dispatched call", zap.Int("reply_values", len(reply.vals)))
	return reply.vals, nil
}

func (d *Dispatcher) invoke(ctx context.Context, fn *Function, call Call, reply *Reply) (fatal *FatalError) {
	defer func() {
		if r := recover(); r != nil {
			fatal = &FatalError{
				Collection: call.Collection,
				Function:   call.Function,
				Reason:     r,
				Stack:      debug.Stack(),
			}
		}
	}()
	fn.handler(ctx, call.Args, reply)
	return nil
}
