package client

import (
	"context"

	"github.com/danderson/obsipc"
	"github.com/danderson/obsipc/osn"
	"github.com/danderson/obsipc/property"
)

// Source is a remote source.
type Source struct {
	c *Client
	h uint64
}

// Source returns the source with handle h.
func (c *Client) Source(h uint64) Source { return Source{c, h} }

// SourceTypes lists the source types the server can create.
func (c *Client) SourceTypes(ctx context.Context) ([]string, error) {
	res, err := c.conn.Collection("Source").Result(ctx, "GetTypes")
	if err != nil {
		return nil, err
	}
	ret := make([]string, 0, len(res.Values))
	for _, v := range res.Values {
		ret = append(ret, v.AsString())
	}
	return ret, nil
}

// CreateSource creates a source. settings may be nil.
func (c *Client) CreateSource(ctx context.Context, typeID, name string, settings map[string]any) (Source, error) {
	bs, err := osn.EncodeSettings(settings)
	if err != nil {
		return Source{}, err
	}
	h, err := c.callHandle(ctx, "Source", "Create", obsipc.String(typeID), obsipc.String(name), obsipc.Binary(bs))
	return Source{c, h}, err
}

// SourceByName returns the source with the given name.
func (c *Client) SourceByName(ctx context.Context, name string) (Source, error) {
	h, err := c.callHandle(ctx, "Source", "FromName", obsipc.String(name))
	return Source{c, h}, err
}

// Handle returns the source's handle.
func (s Source) Handle() uint64 { return s.h }

func (s Source) call(ctx context.Context, fn, sig string, args ...obsipc.Value) ([]obsipc.Value, error) {
	return s.c.call(ctx, "Source", fn, sig, append([]obsipc.Value{obsipc.Uint64(s.h)}, args...)...)
}

func (s Source) Name(ctx context.Context) (string, error) {
	vals, err := s.call(ctx, "GetName", "s")
	if err != nil {
		return "", err
	}
	return vals[0].AsString(), nil
}

func (s Source) SetName(ctx context.Context, name string) (string, error) {
	vals, err := s.call(ctx, "SetName", "s", obsipc.String(name))
	if err != nil {
		return "", err
	}
	return vals[0].AsString(), nil
}

// Type returns the source's type identifier.
func (s Source) Type(ctx context.Context) (string, error) {
	vals, err := s.call(ctx, "GetType", "s")
	if err != nil {
		return "", err
	}
	return vals[0].AsString(), nil
}

// Properties returns descriptors of the source's settings.
func (s Source) Properties(ctx context.Context) ([]property.Property, error) {
	res, err := s.c.conn.Collection("Source").Result(ctx, "GetProperties", obsipc.Uint64(s.h))
	if err != nil {
		return nil, err
	}
	ret := make([]property.Property, 0, len(res.Values))
	for _, v := range res.Values {
		p, err := property.Decode(v.AsBytes())
		if err != nil {
			return nil, err
		}
		ret = append(ret, p)
	}
	return ret, nil
}

func (s Source) Settings(ctx context.Context) (map[string]any, error) {
	vals, err := s.call(ctx, "GetSettings", "b")
	if err != nil {
		return nil, err
	}
	return osn.DecodeSettings(vals[0].AsBytes())
}

// Update merges settings into the source's settings, and returns the
// resulting settings.
func (s Source) Update(ctx context.Context, settings map[string]any) (map[string]any, error) {
	bs, err := osn.EncodeSettings(settings)
	if err != nil {
		return nil, err
	}
	vals, err := s.call(ctx, "Update", "b", obsipc.Binary(bs))
	if err != nil {
		return nil, err
	}
	return osn.DecodeSettings(vals[0].AsBytes())
}

// Release destroys the source. The source's handle is invalid
// afterwards.
func (s Source) Release(ctx context.Context) error {
	_, err := s.call(ctx, "Release", "")
	return err
}
