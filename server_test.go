package obsipc

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/danderson/obsipc/transport"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"
)

func TestServeOversizedReply(t *testing.T) {
	coll := NewCollection("Test").
		Register("Blob", "u", func(_ context.Context, args []Value, reply *Reply) {
			reply.Ok(String(strings.Repeat("x", int(args[0].AsUint32()))))
		})
	reg, err := NewRegistry(coll)
	if err != nil {
		t.Fatal(err)
	}
	log := zaptest.NewLogger(t)
	srv := &Server{
		Dispatcher: &Dispatcher{Registry: reg, Logger: log},
		Logger:     log,
		maxReply:   1024,
	}

	cs, cc := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.ServeConn(ctx, transport.New(cs)) }()
	conn := NewConn(transport.New(cc), log)

	_, err = conn.Call(ctx, "Test", "Blob", Uint32(2000))
	var ce *CallError
	if !errors.As(err, &ce) || ce.Name != ErrNameInternal {
		t.Fatalf("oversized reply err = %v, want Internal CallError", err)
	}
	if !strings.Contains(ce.Detail, "exceeds frame limit") {
		t.Errorf("oversized reply detail = %q, want frame limit explanation", ce.Detail)
	}

	// The connection survives.
	got, err := conn.Call(ctx, "Test", "Blob", Uint32(3))
	if err != nil {
		t.Fatalf("call after oversized reply: %v", err)
	}
	want := []Value{Uint64(uint64(StatusOk)), String("xxx")}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("reply after oversized reply wrong (-got+want):\n%s", diff)
	}

	conn.Close()
	if err := <-done; err != nil {
		t.Errorf("ServeConn: %v", err)
	}
}

func TestStatusNames(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{StatusOk, "Ok"},
		{StatusFailed, "Error"},
		{StatusNotFound, "NotFound"},
		{StatusOutOfBounds, "OutOfBounds"},
		{StatusInvalidReference, "InvalidReference"},
		{StatusCriticalError, "CriticalError"},
		{StatusUnsupported, "Unsupported"},
		{Status(99), "Status(99)"},
	}
	for i, tc := range tests {
		if got := tc.s.String(); got != tc.want {
			t.Errorf("%d.String() = %q, want %q", uint64(tc.s), got, tc.want)
		}
		if tc.s != Status(99) && uint64(tc.s) != uint64(i) {
			t.Errorf("%s has code %d, want %d", tc.want, uint64(tc.s), i)
		}
	}

	err := Result{Status: StatusFailed, Message: "boom"}.Err()
	var se *StatusError
	if !errors.As(err, &se) || se.Status != StatusFailed || se.Message != "boom" {
		t.Errorf("Result.Err() = %#v, want *StatusError{StatusFailed, boom}", err)
	}
	if !errors.Is(err, &StatusError{Status: StatusFailed}) {
		t.Errorf("errors.Is(%v, StatusFailed) = false, want true", err)
	}
}
