package client

import (
	"context"

	"github.com/danderson/obsipc"
	"github.com/danderson/obsipc/engine"
)

// SceneItem is a remote scene item.
type SceneItem struct {
	c *Client
	h uint64
}

// SceneItem returns the scene item with handle h.
func (c *Client) SceneItem(h uint64) SceneItem { return SceneItem{c, h} }

// Handle returns the item's handle.
func (it SceneItem) Handle() uint64 { return it.h }

func (it SceneItem) call(ctx context.Context, fn, sig string, args ...obsipc.Value) ([]obsipc.Value, error) {
	return it.c.call(ctx, "SceneItem", fn, sig, append([]obsipc.Value{obsipc.Uint64(it.h)}, args...)...)
}

func (it SceneItem) vec2(ctx context.Context, fn string, args ...obsipc.Value) (engine.Vec2, error) {
	vals, err := it.call(ctx, fn, "ff", args...)
	if err != nil {
		return engine.Vec2{}, err
	}
	return engine.Vec2{X: vals[0].AsFloat32(), Y: vals[1].AsFloat32()}, nil
}

func (it SceneItem) flag(ctx context.Context, fn string, args ...obsipc.Value) (bool, error) {
	vals, err := it.call(ctx, fn, "i", args...)
	if err != nil {
		return false, err
	}
	return vals[0].AsBool(), nil
}

func (it SceneItem) u32(ctx context.Context, fn string, args ...obsipc.Value) (uint32, error) {
	vals, err := it.call(ctx, fn, "u", args...)
	if err != nil {
		return 0, err
	}
	return vals[0].AsUint32(), nil
}

func (it SceneItem) i32(ctx context.Context, fn string, args ...obsipc.Value) (int32, error) {
	vals, err := it.call(ctx, fn, "i", args...)
	if err != nil {
		return 0, err
	}
	return vals[0].AsInt32(), nil
}

func (it SceneItem) crop(ctx context.Context, fn string, args ...obsipc.Value) (engine.Crop, error) {
	vals, err := it.call(ctx, fn, "iiii", args...)
	if err != nil {
		return engine.Crop{}, err
	}
	return engine.Crop{
		Left:   vals[0].AsInt32(),
		Top:    vals[1].AsInt32(),
		Right:  vals[2].AsInt32(),
		Bottom: vals[3].AsInt32(),
	}, nil
}

// Source returns the source the item shows.
func (it SceneItem) Source(ctx context.Context) (Source, error) {
	h, err := it.c.callHandle(ctx, "SceneItem", "GetSource", obsipc.Uint64(it.h))
	return Source{it.c, h}, err
}

// Scene returns the scene holding the item.
func (it SceneItem) Scene(ctx context.Context) (Scene, error) {
	h, err := it.c.callHandle(ctx, "SceneItem", "GetScene", obsipc.Uint64(it.h))
	return Scene{it.c, h}, err
}

// Remove removes the item from its scene. The item's handle is
// invalid afterwards.
func (it SceneItem) Remove(ctx context.Context) error {
	_, err := it.call(ctx, "Remove", "")
	return err
}

func (it SceneItem) Visible(ctx context.Context) (bool, error) { return it.flag(ctx, "IsVisible") }

func (it SceneItem) SetVisible(ctx context.Context, v bool) (bool, error) {
	return it.flag(ctx, "SetVisible", obsipc.Bool(v))
}

func (it SceneItem) Selected(ctx context.Context) (bool, error) { return it.flag(ctx, "IsSelected") }

func (it SceneItem) SetSelected(ctx context.Context, v bool) (bool, error) {
	return it.flag(ctx, "SetSelected", obsipc.Bool(v))
}

func (it SceneItem) Position(ctx context.Context) (engine.Vec2, error) {
	return it.vec2(ctx, "GetPosition")
}

func (it SceneItem) SetPosition(ctx context.Context, p engine.Vec2) (engine.Vec2, error) {
	return it.vec2(ctx, "SetPosition", obsipc.Float32(p.X), obsipc.Float32(p.Y))
}

func (it SceneItem) Rotation(ctx context.Context) (float32, error) {
	vals, err := it.call(ctx, "GetRotation", "f")
	if err != nil {
		return 0, err
	}
	return vals[0].AsFloat32(), nil
}

func (it SceneItem) SetRotation(ctx context.Context, deg float32) (float32, error) {
	vals, err := it.call(ctx, "SetRotation", "f", obsipc.Float32(deg))
	if err != nil {
		return 0, err
	}
	return vals[0].AsFloat32(), nil
}

func (it SceneItem) Scale(ctx context.Context) (engine.Vec2, error) {
	return it.vec2(ctx, "GetScale")
}

func (it SceneItem) SetScale(ctx context.Context, s engine.Vec2) (engine.Vec2, error) {
	return it.vec2(ctx, "SetScale", obsipc.Float32(s.X), obsipc.Float32(s.Y))
}

func (it SceneItem) ScaleFilter(ctx context.Context) (engine.ScaleFilter, error) {
	f, err := it.i32(ctx, "GetScaleFilter")
	return engine.ScaleFilter(f), err
}

func (it SceneItem) SetScaleFilter(ctx context.Context, f engine.ScaleFilter) (engine.ScaleFilter, error) {
	ret, err := it.i32(ctx, "SetScaleFilter", obsipc.Int32(int32(f)))
	return engine.ScaleFilter(ret), err
}

func (it SceneItem) Alignment(ctx context.Context) (uint32, error) { return it.u32(ctx, "GetAlignment") }

func (it SceneItem) SetAlignment(ctx context.Context, a uint32) (uint32, error) {
	return it.u32(ctx, "SetAlignment", obsipc.Uint32(a))
}

func (it SceneItem) Bounds(ctx context.Context) (engine.Vec2, error) {
	return it.vec2(ctx, "GetBounds")
}

func (it SceneItem) SetBounds(ctx context.Context, b engine.Vec2) (engine.Vec2, error) {
	return it.vec2(ctx, "SetBounds", obsipc.Float32(b.X), obsipc.Float32(b.Y))
}

func (it SceneItem) BoundsAlignment(ctx context.Context) (uint32, error) {
	return it.u32(ctx, "GetBoundsAlignment")
}

func (it SceneItem) SetBoundsAlignment(ctx context.Context, a uint32) (uint32, error) {
	return it.u32(ctx, "SetBoundsAlignment", obsipc.Uint32(a))
}

func (it SceneItem) BoundsType(ctx context.Context) (engine.BoundsType, error) {
	t, err := it.i32(ctx, "GetBoundsType")
	return engine.BoundsType(t), err
}

func (it SceneItem) SetBoundsType(ctx context.Context, t engine.BoundsType) (engine.BoundsType, error) {
	ret, err := it.i32(ctx, "SetBoundsType", obsipc.Int32(int32(t)))
	return engine.BoundsType(ret), err
}

func (it SceneItem) Crop(ctx context.Context) (engine.Crop, error) { return it.crop(ctx, "GetCrop") }

func (it SceneItem) SetCrop(ctx context.Context, c engine.Crop) (engine.Crop, error) {
	return it.crop(ctx, "SetCrop", obsipc.Int32(c.Left), obsipc.Int32(c.Top), obsipc.Int32(c.Right), obsipc.Int32(c.Bottom))
}

// ID returns the item's identifier within its scene.
func (it SceneItem) ID(ctx context.Context) (int64, error) {
	vals, err := it.call(ctx, "GetId", "x")
	if err != nil {
		return 0, err
	}
	return vals[0].AsInt64(), nil
}

func (it SceneItem) MoveUp(ctx context.Context) error {
	_, err := it.call(ctx, "MoveUp", "")
	return err
}

func (it SceneItem) MoveDown(ctx context.Context) error {
	_, err := it.call(ctx, "MoveDown", "")
	return err
}

func (it SceneItem) MoveTop(ctx context.Context) error {
	_, err := it.call(ctx, "MoveTop", "")
	return err
}

func (it SceneItem) MoveBottom(ctx context.Context) error {
	_, err := it.call(ctx, "MoveBottom", "")
	return err
}

// Move moves the item to the given stack position, 0 being the
// bottom.
func (it SceneItem) Move(ctx context.Context, pos int32) error {
	_, err := it.call(ctx, "Move", "", obsipc.Int32(pos))
	return err
}

func (it SceneItem) DeferUpdateBegin(ctx context.Context) error {
	_, err := it.call(ctx, "DeferUpdateBegin", "")
	return err
}

func (it SceneItem) DeferUpdateEnd(ctx context.Context) error {
	_, err := it.call(ctx, "DeferUpdateEnd", "")
	return err
}
