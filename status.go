package obsipc

import "fmt"

// Status is the application-level outcome of a call, carried as the
// first element of every reply.
type Status uint64

const (
	// StatusOk indicates the operation completed successfully.
	StatusOk Status = iota
	// StatusFailed is a generic failure.
	StatusFailed
	// StatusNotFound indicates a named resource doesn't exist.
	StatusNotFound
	// StatusOutOfBounds indicates a numeric argument is outside the
	// accepted range.
	StatusOutOfBounds
	// StatusInvalidReference indicates a handle is unknown or has been
	// freed.
	StatusInvalidReference
	// StatusCriticalError indicates a resource is in an invalid
	// internal state, such as a scene item with no source.
	StatusCriticalError
	// StatusUnsupported indicates the operation is not available on
	// the target resource.
	StatusUnsupported
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusFailed:
		return "Error"
	case StatusNotFound:
		return "NotFound"
	case StatusOutOfBounds:
		return "OutOfBounds"
	case StatusInvalidReference:
		return "InvalidReference"
	case StatusCriticalError:
		return "CriticalError"
	case StatusUnsupported:
		return "Unsupported"
	default:
		return fmt.Sprintf("Status(%d)", uint64(s))
	}
}

// A Reply accumulates the values a handler returns.
type Reply struct {
	vals []Value
}

// Add appends vs to the reply.
func (r *Reply) Add(vs ...Value) {
	r.vals = append(r.vals, vs...)
}

// Ok appends [StatusOk] followed by the payload vs.
func (r *Reply) Ok(vs ...Value) {
	r.Add(Uint64(uint64(StatusOk)))
	r.Add(vs...)
}

// Fail appends status and a human-readable message.
func (r *Reply) Fail(status Status, msg string) {
	r.Add(Uint64(uint64(status)), String(msg))
}

// Failf is like Fail, with a formatted message.
func (r *Reply) Failf(status Status, format string, args ...any) {
	r.Fail(status, fmt.Sprintf(format, args...))
}

// Values returns the values added to the reply so far.
func (r *Reply) Values() []Value {
	return r.vals
}

// Result is the client-side view of a reply.
type Result struct {
	Status Status
	// Message is the failure explanation. It is empty for successful
	// calls.
	Message string
	// Values is the call's payload. It is empty for failed calls.
	Values []Value
}

// ParseResult splits a reply into its status, message and payload.
//
// ParseResult returns an error if vals doesn't start with a UInt64
// status code.
func ParseResult(vals []Value) (Result, error) {
	if len(vals) == 0 {
		return Result{}, fmt.Errorf("empty reply, want status code")
	}
	if k := vals[0].Kind(); k != KindUInt64 {
		return Result{}, fmt.Errorf("reply status has kind %s, want UInt64", k)
	}
	ret := Result{Status: Status(vals[0].AsUint64())}
	if ret.Status == StatusOk {
		ret.Values = vals[1:]
		return ret, nil
	}
	if len(vals) > 1 && vals[1].Kind() == KindString {
		ret.Message = vals[1].AsString()
	}
	return ret, nil
}

// Err returns a [*StatusError] if r's status is not [StatusOk], or nil
// otherwise.
func (r Result) Err() error {
	if r.Status == StatusOk {
		return nil
	}
	return &StatusError{r.Status, r.Message}
}
