package osn

import (
	"context"

	"github.com/danderson/obsipc"
	"github.com/danderson/obsipc/engine"
)

func (s *Server) sceneItemCollection() *obsipc.Collection {
	return obsipc.NewCollection("SceneItem").
		Register("GetSource", "t", s.itemGetSource).
		Register("GetScene", "t", s.itemGetScene).
		Register("Remove", "t", s.itemRemove).
		Register("IsVisible", "t", s.itemIsVisible).
		Register("SetVisible", "ti", s.itemSetVisible).
		Register("IsSelected", "t", s.itemIsSelected).
		Register("SetSelected", "ti", s.itemSetSelected).
		Register("GetPosition", "t", s.itemGetPosition).
		Register("SetPosition", "tff", s.itemSetPosition).
		Register("GetRotation", "t", s.itemGetRotation).
		Register("SetRotation", "tf", s.itemSetRotation).
		Register("GetScale", "t", s.itemGetScale).
		Register("SetScale", "tff", s.itemSetScale).
		Register("GetScaleFilter", "t", s.itemGetScaleFilter).
		Register("SetScaleFilter", "ti", s.itemSetScaleFilter).
		Register("GetAlignment", "t", s.itemGetAlignment).
		Register("SetAlignment", "tu", s.itemSetAlignment).
		Register("GetBounds", "t", s.itemGetBounds).
		Register("SetBounds", "tff", s.itemSetBounds).
		Register("GetBoundsAlignment", "t", s.itemGetBoundsAlignment).
		Register("SetBoundsAlignment", "tu", s.itemSetBoundsAlignment).
		Register("GetBoundsType", "t", s.itemGetBoundsType).
		Register("SetBoundsType", "ti", s.itemSetBoundsType).
		Register("GetCrop", "t", s.itemGetCrop).
		Register("SetCrop", "tiiii", s.itemSetCrop).
		Register("GetId", "t", s.itemGetID).
		Register("MoveUp", "t", s.itemOrder(engine.OrderMoveUp)).
		Register("MoveDown", "t", s.itemOrder(engine.OrderMoveDown)).
		Register("MoveTop", "t", s.itemOrder(engine.OrderMoveTop)).
		Register("MoveBottom", "t", s.itemOrder(engine.OrderMoveBottom)).
		Register("Move", "ti", s.itemMove).
		Register("DeferUpdateBegin", "t", s.itemDeferUpdateBegin).
		Register("DeferUpdateEnd", "t", s.itemDeferUpdateEnd)
}

func vec2(v engine.Vec2) []obsipc.Value {
	return []obsipc.Value{obsipc.Float32(v.X), obsipc.Float32(v.Y)}
}

func crop(c engine.Crop) []obsipc.Value {
	return []obsipc.Value{obsipc.Int32(c.Left), obsipc.Int32(c.Top), obsipc.Int32(c.Right), obsipc.Int32(c.Bottom)}
}

func (s *Server) itemGetSource(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	it, ok := s.findItem(args[0], reply)
	if !ok {
		return
	}
	src := it.Source()
	if src == nil {
		reply.Fail(obsipc.StatusCriticalError, "Item does not contain a source.")
		return
	}
	reply.Ok(handleValue(s.sources.Allocate(src)))
}

func (s *Server) itemGetScene(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	it, ok := s.findItem(args[0], reply)
	if !ok {
		return
	}
	sc := it.Scene()
	if sc == nil {
		reply.Fail(obsipc.StatusCriticalError, "Item does not belong to a scene.")
		return
	}
	if sc.Source().Released() {
		reply.Fail(obsipc.StatusCriticalError, "Scene is invalid.")
		return
	}
	reply.Ok(handleValue(s.scenes.Allocate(sc)))
}

func (s *Server) itemRemove(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	it, ok := s.findItem(args[0], reply)
	if !ok {
		return
	}
	if err := s.items.Free(argHandle(args[0])); err != nil {
		reply.Fail(obsipc.StatusInvalidReference, msgBadItem)
		return
	}
	it.Remove()
	reply.Ok()
}

func (s *Server) itemIsVisible(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		reply.Ok(obsipc.Bool(it.Visible()))
	}
}

func (s *Server) itemSetVisible(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		it.SetVisible(args[1].AsInt32() != 0)
		reply.Ok(obsipc.Bool(it.Visible()))
	}
}

func (s *Server) itemIsSelected(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		reply.Ok(obsipc.Bool(it.Selected()))
	}
}

func (s *Server) itemSetSelected(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		it.SetSelected(args[1].AsInt32() != 0)
		reply.Ok(obsipc.Bool(it.Selected()))
	}
}

func (s *Server) itemGetPosition(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		reply.Ok(vec2(it.Position())...)
	}
}

func (s *Server) itemSetPosition(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		it.SetPosition(engine.Vec2{X: args[1].AsFloat32(), Y: args[2].AsFloat32()})
		reply.Ok(vec2(it.Position())...)
	}
}

func (s *Server) itemGetRotation(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		reply.Ok(obsipc.Float32(it.Rotation()))
	}
}

func (s *Server) itemSetRotation(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		it.SetRotation(args[1].AsFloat32())
		reply.Ok(obsipc.Float32(it.Rotation()))
	}
}

func (s *Server) itemGetScale(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		reply.Ok(vec2(it.Scale())...)
	}
}

func (s *Server) itemSetScale(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		it.SetScale(engine.Vec2{X: args[1].AsFloat32(), Y: args[2].AsFloat32()})
		reply.Ok(vec2(it.Scale())...)
	}
}

func (s *Server) itemGetScaleFilter(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		reply.Ok(obsipc.Int32(int32(it.ScaleFilter())))
	}
}

func (s *Server) itemSetScaleFilter(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	it, ok := s.findItem(args[0], reply)
	if !ok {
		return
	}
	if err := it.SetScaleFilter(engine.ScaleFilter(args[1].AsInt32())); err != nil {
		failEngine(reply, err)
		return
	}
	reply.Ok(obsipc.Int32(int32(it.ScaleFilter())))
}

func (s *Server) itemGetAlignment(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		reply.Ok(obsipc.Uint32(it.Alignment()))
	}
}

func (s *Server) itemSetAlignment(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	it, ok := s.findItem(args[0], reply)
	if !ok {
		return
	}
	if err := it.SetAlignment(args[1].AsUint32()); err != nil {
		failEngine(reply, err)
		return
	}
	reply.Ok(obsipc.Uint32(it.Alignment()))
}

func (s *Server) itemGetBounds(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		reply.Ok(vec2(it.Bounds())...)
	}
}

func (s *Server) itemSetBounds(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		it.SetBounds(engine.Vec2{X: args[1].AsFloat32(), Y: args[2].AsFloat32()})
		reply.Ok(vec2(it.Bounds())...)
	}
}

func (s *Server) itemGetBoundsAlignment(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		reply.Ok(obsipc.Uint32(it.BoundsAlignment()))
	}
}

func (s *Server) itemSetBoundsAlignment(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	it, ok := s.findItem(args[0], reply)
	if !ok {
		return
	}
	if err := it.SetBoundsAlignment(args[1].AsUint32()); err != nil {
		failEngine(reply, err)
		return
	}
	reply.Ok(obsipc.Uint32(it.BoundsAlignment()))
}

func (s *Server) itemGetBoundsType(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		reply.Ok(obsipc.Int32(int32(it.BoundsType())))
	}
}

func (s *Server) itemSetBoundsType(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	it, ok := s.findItem(args[0], reply)
	if !ok {
		return
	}
	if err := it.SetBoundsType(engine.BoundsType(args[1].AsInt32())); err != nil {
		failEngine(reply, err)
		return
	}
	reply.Ok(obsipc.Int32(int32(it.BoundsType())))
}

func (s *Server) itemGetCrop(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		reply.Ok(crop(it.Crop())...)
	}
}

func (s *Server) itemSetCrop(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	it, ok := s.findItem(args[0], reply)
	if !ok {
		return
	}
	c := engine.Crop{
		Left:   args[1].AsInt32(),
		Top:    args[2].AsInt32(),
		Right:  args[3].AsInt32(),
		Bottom: args[4].AsInt32(),
	}
	if err := it.SetCrop(c); err != nil {
		failEngine(reply, err)
		return
	}
	reply.Ok(crop(it.Crop())...)
}

func (s *Server) itemGetID(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		reply.Ok(obsipc.Int64(it.ID()))
	}
}

func (s *Server) itemOrder(o engine.Order) obsipc.HandlerFunc {
	return func(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
		it, ok := s.findItem(args[0], reply)
		if !ok {
			return
		}
		sc := it.Scene()
		if sc == nil {
			reply.Fail(obsipc.StatusCriticalError, "Item does not belong to a scene.")
			return
		}
		if err := sc.SetOrder(it, o); err != nil {
			failEngine(reply, err)
			return
		}
		reply.Ok()
	}
}

func (s *Server) itemMove(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	it, ok := s.findItem(args[0], reply)
	if !ok {
		return
	}
	sc := it.Scene()
	if sc == nil {
		reply.Fail(obsipc.StatusCriticalError, "Item does not belong to a scene.")
		return
	}
	if err := sc.SetOrderPosition(it, int(args[1].AsInt32())); err != nil {
		failEngine(reply, err)
		return
	}
	reply.Ok()
}

func (s *Server) itemDeferUpdateBegin(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		it.DeferUpdateBegin()
		reply.Ok()
	}
}

func (s *Server) itemDeferUpdateEnd(_ context.Context, args []obsipc.Value, reply *obsipc.Reply) {
	if it, ok := s.findItem(args[0], reply); ok {
		it.DeferUpdateEnd()
		reply.Ok()
	}
}
