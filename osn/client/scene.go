package client

import (
	"context"

	"github.com/danderson/obsipc"
)

// Scene is a remote scene.
type Scene struct {
	c *Client
	h uint64
}

// Scene returns the scene with handle h.
func (c *Client) Scene(h uint64) Scene { return Scene{c, h} }

// CreateScene creates an empty scene.
func (c *Client) CreateScene(ctx context.Context, name string) (Scene, error) {
	h, err := c.callHandle(ctx, "Scene", "Create", obsipc.String(name))
	return Scene{c, h}, err
}

// SceneByName returns the scene with the given name.
func (c *Client) SceneByName(ctx context.Context, name string) (Scene, error) {
	h, err := c.callHandle(ctx, "Scene", "FromName", obsipc.String(name))
	return Scene{c, h}, err
}

// Handle returns the scene's handle.
func (s Scene) Handle() uint64 { return s.h }

// Source returns the source backing the scene.
func (s Scene) Source(ctx context.Context) (Source, error) {
	h, err := s.c.callHandle(ctx, "Scene", "GetSource", obsipc.Uint64(s.h))
	return Source{s.c, h}, err
}

// Add places src at the top of the scene.
func (s Scene) Add(ctx context.Context, src Source) (SceneItem, error) {
	h, err := s.c.callHandle(ctx, "Scene", "AddSource", obsipc.Uint64(s.h), obsipc.Uint64(src.h))
	return SceneItem{s.c, h}, err
}

// Items returns the scene's items, bottom first.
func (s Scene) Items(ctx context.Context) ([]SceneItem, error) {
	res, err := s.c.conn.Collection("Scene").Result(ctx, "GetItems", obsipc.Uint64(s.h))
	if err != nil {
		return nil, err
	}
	hs, err := handles(res.Values)
	if err != nil {
		return nil, err
	}
	ret := make([]SceneItem, 0, len(hs))
	for _, h := range hs {
		ret = append(ret, SceneItem{s.c, h})
	}
	return ret, nil
}

// Release destroys the scene.
func (s Scene) Release(ctx context.Context) error {
	_, err := s.c.call(ctx, "Scene", "Release", "", obsipc.Uint64(s.h))
	return err
}
