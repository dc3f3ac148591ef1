package engine

import (
	"fmt"
	"sync"
)

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float32
}

// Crop is the number of pixels trimmed from each edge of an item.
type Crop struct {
	Left, Top, Right, Bottom int32
}

// ScaleFilter is the resampling filter used to scale an item.
type ScaleFilter int32

const (
	ScaleDisable ScaleFilter = iota
	ScalePoint
	ScaleBicubic
	ScaleBilinear
	ScaleLanczos
	ScaleArea
)

// BoundsType is how an item is fitted to its bounding box.
type BoundsType int32

const (
	BoundsNone BoundsType = iota
	BoundsStretch
	BoundsScaleInner
	BoundsScaleOuter
	BoundsScaleToWidth
	BoundsScaleToHeight
	BoundsMaxOnly
)

// Alignment bits.
const (
	AlignCenter uint32 = 0
	AlignLeft   uint32 = 1 << 0
	AlignRight  uint32 = 1 << 1
	AlignTop    uint32 = 1 << 2
	AlignBottom uint32 = 1 << 3

	alignMask = AlignLeft | AlignRight | AlignTop | AlignBottom
)

// SceneItem is one placement of a source in a scene.
type SceneItem struct {
	id int64

	mu              sync.Mutex
	scene           *Scene
	source          *Source
	visible         bool
	selected        bool
	pos             Vec2
	rot             float32
	scale           Vec2
	scaleFilter     ScaleFilter
	align           uint32
	bounds          Vec2
	boundsAlign     uint32
	boundsType      BoundsType
	crop            Crop
	deferDepth      int
	transformDirty  bool
	transformUpdate uint64
}

func newSceneItem(id int64, sc *Scene, src *Source) *SceneItem {
	return &SceneItem{
		id:      id,
		scene:   sc,
		source:  src,
		visible: true,
		scale:   Vec2{1, 1},
		align:   AlignLeft | AlignTop,
	}
}

// ID returns the item's identifier, unique within its scene.
func (it *SceneItem) ID() int64 { return it.id }

// Scene returns the scene holding the item, or nil if the item has
// been removed or its scene released.
func (it *SceneItem) Scene() *Scene {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.scene
}

func (it *SceneItem) setScene(sc *Scene) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.scene = sc
}

// Source returns the source the item shows, or nil if that source has
// been released.
func (it *SceneItem) Source() *Source {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.source
}

func (it *SceneItem) clearSource(src *Source) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.source == src {
		it.source = nil
	}
}

// Remove takes the item out of its scene.
func (it *SceneItem) Remove() {
	if sc := it.Scene(); sc != nil {
		sc.Remove(it)
	}
}

func (it *SceneItem) Visible() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.visible
}

func (it *SceneItem) SetVisible(v bool) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.visible = v
}

func (it *SceneItem) Selected() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.selected
}

func (it *SceneItem) SetSelected(v bool) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.selected = v
}

func (it *SceneItem) Position() Vec2 {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.pos
}

func (it *SceneItem) SetPosition(p Vec2) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.pos = p
	it.transformChangedLocked()
}

// Rotation returns the item's rotation in degrees.
func (it *SceneItem) Rotation() float32 {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.rot
}

func (it *SceneItem) SetRotation(deg float32) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.rot = deg
	it.transformChangedLocked()
}

func (it *SceneItem) Scale() Vec2 {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.scale
}

func (it *SceneItem) SetScale(s Vec2) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.scale = s
	it.transformChangedLocked()
}

func (it *SceneItem) ScaleFilter() ScaleFilter {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.scaleFilter
}

func (it *SceneItem) SetScaleFilter(f ScaleFilter) error {
	if f < ScaleDisable || f > ScaleArea {
		return fmt.Errorf("%w: scale filter %d", ErrOutOfRange, f)
	}
	it.mu.Lock()
	defer it.mu.Unlock()
	it.scaleFilter = f
	return nil
}

// Alignment returns the item's alignment bits.
func (it *SceneItem) Alignment() uint32 {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.align
}

func (it *SceneItem) SetAlignment(a uint32) error {
	if a&^alignMask != 0 {
		return fmt.Errorf("%w: alignment %#x", ErrOutOfRange, a)
	}
	it.mu.Lock()
	defer it.mu.Unlock()
	it.align = a
	it.transformChangedLocked()
	return nil
}

func (it *SceneItem) Bounds() Vec2 {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.bounds
}

func (it *SceneItem) SetBounds(b Vec2) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.bounds = b
	it.transformChangedLocked()
}

func (it *SceneItem) BoundsAlignment() uint32 {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.boundsAlign
}

func (it *SceneItem) SetBoundsAlignment(a uint32) error {
	if a&^alignMask != 0 {
		return fmt.Errorf("%w: alignment %#x", ErrOutOfRange, a)
	}
	it.mu.Lock()
	defer it.mu.Unlock()
	it.boundsAlign = a
	it.transformChangedLocked()
	return nil
}

func (it *SceneItem) BoundsType() BoundsType {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.boundsType
}

func (it *SceneItem) SetBoundsType(t BoundsType) error {
	if t < BoundsNone || t > BoundsMaxOnly {
		return fmt.Errorf("%w: bounds type %d", ErrOutOfRange, t)
	}
	it.mu.Lock()
	defer it.mu.Unlock()
	it.boundsType = t
	it.transformChangedLocked()
	return nil
}

func (it *SceneItem) Crop() Crop {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.crop
}

func (it *SceneItem) SetCrop(c Crop) error {
	if c.Left < 0 || c.Top < 0 || c.Right < 0 || c.Bottom < 0 {
		return fmt.Errorf("%w: negative crop %+v", ErrOutOfRange, c)
	}
	it.mu.Lock()
	defer it.mu.Unlock()
	it.crop = c
	it.transformChangedLocked()
	return nil
}

// DeferUpdateBegin suspends transform recomputation until the
// matching DeferUpdateEnd. Calls nest.
func (it *SceneItem) DeferUpdateBegin() {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.deferDepth++
}

// DeferUpdateEnd ends one level of deferral. When the outermost
// deferral ends, pending transform changes are applied at once.
func (it *SceneItem) DeferUpdateEnd() {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.deferDepth == 0 {
		return
	}
	it.deferDepth--
	if it.deferDepth == 0 && it.transformDirty {
		it.transformDirty = false
		it.transformUpdate++
	}
}

// TransformUpdates returns how many times the item's transform has
// been recomputed.
func (it *SceneItem) TransformUpdates() uint64 {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.transformUpdate
}

func (it *SceneItem) transformChangedLocked() {
	if it.deferDepth > 0 {
		it.transformDirty = true
		return
	}
	it.transformUpdate++
}
