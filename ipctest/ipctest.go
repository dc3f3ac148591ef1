// Package ipctest provides helpers to run an in-memory IPC server in
// tests.
package ipctest

import (
	"context"
	"net"
	"testing"

	"github.com/danderson/obsipc"
	"github.com/danderson/obsipc/transport"
	"go.uber.org/zap/zaptest"
)

// New serves d over an in-memory connection, and returns a client
// connected to it.
//
// The server and client are shut down when the calling test
// finishes.
func New(t testing.TB, d *obsipc.Dispatcher) *obsipc.Conn {
	t.Helper()
	log := zaptest.NewLogger(t)
	if d.Logger == nil {
		d.Logger = log.Named("dispatch")
	}

	cs, cc := net.Pipe()
	srv := &obsipc.Server{
		Dispatcher: d,
		Logger:     log.Named("server"),
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.ServeConn(ctx, transport.New(cs)); err != nil {
			t.Errorf("ServeConn: %v", err)
		}
	}()

	client := obsipc.NewConn(transport.New(cc), log.Named("client"))
	t.Cleanup(func() {
		client.Close()
		cancel()
		<-done
	})
	return client
}

// NewRegistry is like [obsipc.NewRegistry], but fails the test on
// error.
func NewRegistry(t testing.TB, colls ...*obsipc.Collection) *obsipc.Registry {
	t.Helper()
	ret, err := obsipc.NewRegistry(colls...)
	if err != nil {
		t.Fatalf("creating registry: %v", err)
	}
	return ret
}
