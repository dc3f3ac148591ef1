// Package client provides typed access to the osn IPC collections.
package client

import (
	"context"
	"fmt"

	"github.com/danderson/obsipc"
)

// Client is a typed view of an osn server.
type Client struct {
	conn *obsipc.Conn
}

// New returns a Client that calls over conn.
func New(conn *obsipc.Conn) *Client {
	return &Client{conn}
}

// Conn returns the client's connection.
func (c *Client) Conn() *obsipc.Conn { return c.conn }

// call calls collection.function and checks that the payload of the
// successful reply matches sig.
func (c *Client) call(ctx context.Context, collection, function, sig string, args ...obsipc.Value) ([]obsipc.Value, error) {
	res, err := c.conn.Collection(collection).Result(ctx, function, args...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", collection, function, err)
	}
	if err := obsipc.MustParseSignature(sig).Check(res.Values); err != nil {
		return nil, fmt.Errorf("%s.%s: unexpected reply: %w", collection, function, err)
	}
	return res.Values, nil
}

func (c *Client) callHandle(ctx context.Context, collection, function string, args ...obsipc.Value) (uint64, error) {
	vals, err := c.call(ctx, collection, function, "t", args...)
	if err != nil {
		return 0, err
	}
	return vals[0].AsUint64(), nil
}

func handles(vals []obsipc.Value) ([]uint64, error) {
	ret := make([]uint64, 0, len(vals))
	for i, v := range vals {
		if v.Kind() != obsipc.KindUInt64 {
			return nil, fmt.Errorf("reply value %d has kind %s, want UInt64", i, v.Kind())
		}
		ret = append(ret, v.AsUint64())
	}
	return ret, nil
}
