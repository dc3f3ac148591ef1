package obsipc

import "context"

// CallInfo describes the call a handler is servicing.
type CallInfo struct {
	// ID is the caller-assigned call ID.
	ID         uint64
	Collection string
	Function   string
}

type callContextKey struct{}

func withContextCall(ctx context.Context, info CallInfo) context.Context {
	return context.WithValue(ctx, callContextKey{}, info)
}

// ContextCall returns the CallInfo of the call being handled, if ctx
// was passed to a [HandlerFunc] by a [Dispatcher].
func ContextCall(ctx context.Context) (CallInfo, bool) {
	v := ctx.Value(callContextKey{})
	if v == nil {
		return CallInfo{}, false
	}
	ret, ok := v.(CallInfo)
	return ret, ok
}
