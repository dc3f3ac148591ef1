package obsipc

import (
	"errors"
	"fmt"

	"github.com/danderson/obsipc/fragments"
)

var (
	// ErrUnknownKind is the cause of a [DecodeError] for a value whose
	// discriminant byte is not a known [Kind].
	ErrUnknownKind = errors.New("unknown value kind")
	// ErrTruncated is the cause of a [DecodeError] for a value or
	// message that extends past the end of its input.
	ErrTruncated = fragments.ErrTruncated
)

// DecodeError is the error returned when wire data cannot be decoded.
type DecodeError struct {
	// Offset is the input offset at which the undecodable item
	// starts.
	Offset int
	// Reason is an explanation of why decoding failed.
	Reason error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding value at offset %d: %s", e.Offset, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Reason
}

// Names of protocol errors, reported in [CallError.Name].
const (
	// ErrNameUnknownFunction rejects a call to a collection or
	// function that isn't registered.
	ErrNameUnknownFunction = "UnknownFunction"
	// ErrNameSignatureMismatch rejects a call whose arguments don't
	// match the function's signature.
	ErrNameSignatureMismatch = "SignatureMismatch"
	// ErrNameMalformedCall rejects a message that could not be
	// decoded.
	ErrNameMalformedCall = "MalformedCall"
	// ErrNameInternal reports that the handler failed fatally.
	ErrNameInternal = "Internal"
)

// CallError is the error returned for calls rejected at the protocol
// level. A CallError means the call never reached a handler, or the
// handler did not complete. Application-level failures are instead
// reported in the reply's status code, see [StatusError].
type CallError struct {
	// Name is the protocol error name, one of the ErrName constants.
	Name string
	// Detail is the human-readable explanation of what went wrong.
	Detail string
}

func (e *CallError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("call error %s", e.Name)
	}
	return fmt.Sprintf("call error %s: %s", e.Name, e.Detail)
}

// Is reports whether target is a *CallError with the same Name, or a
// *CallError with an empty Name.
func (e *CallError) Is(target error) bool {
	t, ok := target.(*CallError)
	if !ok {
		return false
	}
	return t.Name == "" || t.Name == e.Name
}

func callErr(name, detail string, args ...any) *CallError {
	return &CallError{name, fmt.Sprintf(detail, args...)}
}

// StatusError is the error form of a reply whose status is not
// [StatusOk].
type StatusError struct {
	Status  Status
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return e.Status.String()
	}
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

// Is reports whether target is a *StatusError with the same Status.
func (e *StatusError) Is(target error) bool {
	t, ok := target.(*StatusError)
	return ok && t.Status == e.Status
}

// FatalError describes a handler that failed in a way that leaves the
// engine in an unknown state, such as a panic.
type FatalError struct {
	Collection string
	Function   string
	// Reason is the recovered panic value or error.
	Reason any
	// Stack is the goroutine stack at the point of failure.
	Stack []byte
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal error in %s.%s: %v", e.Collection, e.Function, e.Reason)
}
