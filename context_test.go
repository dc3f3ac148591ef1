package obsipc

import (
	"context"
	"testing"
)

func TestContextCall(t *testing.T) {
	want := CallInfo{ID: 42, Collection: "SceneItem", Function: "GetPosition"}
	ctx := withContextCall(context.Background(), want)

	got, ok := ContextCall(ctx)
	if !ok {
		t.Fatal("call not found in context")
	}
	if got != want {
		t.Fatalf("wrong call, got %#v want %#v", got, want)
	}

	got, ok = ContextCall(context.Background())
	if ok {
		t.Fatalf("got call %#v from context with no call", got)
	}
}
