package client

import (
	"context"
	"fmt"

	"github.com/danderson/obsipc"
	"github.com/danderson/obsipc/engine"
)

// VideoInfo returns the server's video configuration.
func (c *Client) VideoInfo(ctx context.Context) (engine.VideoInfo, error) {
	vals, err := c.call(ctx, "Video", "GetInfo", "uuuuuu")
	if err != nil {
		return engine.VideoInfo{}, err
	}
	return engine.VideoInfo{
		FPSNum:       vals[0].AsUint32(),
		FPSDen:       vals[1].AsUint32(),
		BaseWidth:    vals[2].AsUint32(),
		BaseHeight:   vals[3].AsUint32(),
		OutputWidth:  vals[4].AsUint32(),
		OutputHeight: vals[5].AsUint32(),
	}, nil
}

// FrameCounts returns the number of frames the server's video
// pipeline has produced and skipped.
func (c *Client) FrameCounts(ctx context.Context) (encoded, skipped uint32, err error) {
	vals, err := c.call(ctx, "Video", "GetEncodedFrames", "u")
	if err != nil {
		return 0, 0, err
	}
	encoded = vals[0].AsUint32()
	vals, err = c.call(ctx, "Video", "GetSkippedFrames", "u")
	if err != nil {
		return 0, 0, err
	}
	return encoded, vals[0].AsUint32(), nil
}

// PerformanceStatistics returns the server's load statistics.
func (c *Client) PerformanceStatistics(ctx context.Context) (engine.PerformanceStats, error) {
	vals, err := c.call(ctx, "API", "GetPerformanceStatistics", "dtddd")
	if err != nil {
		return engine.PerformanceStats{}, err
	}
	return engine.PerformanceStats{
		CPUPercent:     vals[0].AsFloat64(),
		DroppedFrames:  vals[1].AsUint64(),
		DroppedPercent: vals[2].AsFloat64(),
		Bandwidth:      vals[3].AsFloat64(),
		FrameRate:      vals[4].AsFloat64(),
	}, nil
}

// StopCrashHandler disables the server's crash reporting.
func (c *Client) StopCrashHandler(ctx context.Context) error {
	_, err := c.call(ctx, "API", "StopCrashHandler", "")
	return err
}

// Shutdown marks the server's engine as cleanly shut down.
func (c *Client) Shutdown(ctx context.Context) error {
	_, err := c.call(ctx, "API", "Shutdown", "")
	return err
}

// FunctionInfo describes one remotely callable function.
type FunctionInfo struct {
	// Name is the function's qualified name, "Collection.Function".
	Name      string
	Signature string
}

// Functions lists the functions the server exposes.
func (c *Client) Functions(ctx context.Context) ([]FunctionInfo, error) {
	res, err := c.conn.Collection("API").Result(ctx, "ListFunctions")
	if err != nil {
		return nil, err
	}
	if len(res.Values)%2 != 0 {
		return nil, fmt.Errorf("API.ListFunctions: odd number of reply values (%d)", len(res.Values))
	}
	ret := make([]FunctionInfo, 0, len(res.Values)/2)
	for i := 0; i < len(res.Values); i += 2 {
		name, sig := res.Values[i], res.Values[i+1]
		if name.Kind() != obsipc.KindString || sig.Kind() != obsipc.KindString {
			return nil, fmt.Errorf("API.ListFunctions: unexpected reply %s", obsipc.FormatValues(res.Values[i:i+2]))
		}
		ret = append(ret, FunctionInfo{name.AsString(), sig.AsString()})
	}
	return ret, nil
}
