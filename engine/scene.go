package engine

import (
	"fmt"
	"slices"
	"sync"
)

// Scene is an ordered stack of scene items. The first item is drawn
// at the bottom.
type Scene struct {
	source *Source

	mu     sync.Mutex
	items  []*SceneItem
	lastID int64
}

// Source returns the source backing the scene.
func (sc *Scene) Source() *Source { return sc.source }

// Name returns the scene's name.
func (sc *Scene) Name() string { return sc.source.Name() }

// Add places src at the top of the scene, and returns the new item.
func (sc *Scene) Add(src *Source) (*SceneItem, error) {
	if src == sc.source || src.Scene().reaches(sc) {
		return nil, ErrRecursive
	}
	if src.Released() {
		return nil, ErrReleased
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.source.Released() {
		return nil, ErrReleased
	}
	sc.lastID++
	it := newSceneItem(sc.lastID, sc, src)
	sc.items = append(sc.items, it)
	return it, nil
}

// reaches reports whether target is sc or nested somewhere below it.
func (sc *Scene) reaches(target *Scene) bool {
	seen := map[*Scene]bool{}
	stack := []*Scene{sc}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == nil || seen[cur] {
			continue
		}
		if cur == target {
			return true
		}
		seen[cur] = true
		for _, it := range cur.Items() {
			if src := it.Source(); src != nil {
				stack = append(stack, src.Scene())
			}
		}
	}
	return false
}

// Items returns the scene's items, bottom first.
func (sc *Scene) Items() []*SceneItem {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return slices.Clone(sc.items)
}

// Remove takes it out of the scene. Removing an item that isn't in
// the scene does nothing.
func (sc *Scene) Remove(it *SceneItem) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if i := slices.Index(sc.items, it); i >= 0 {
		sc.items = slices.Delete(sc.items, i, i+1)
		it.setScene(nil)
	}
}

// Order is a relative stacking movement.
type Order int

const (
	OrderMoveUp Order = iota
	OrderMoveDown
	OrderMoveTop
	OrderMoveBottom
)

// SetOrder moves it within the stack.
func (sc *Scene) SetOrder(it *SceneItem, o Order) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	i := slices.Index(sc.items, it)
	if i < 0 {
		return fmt.Errorf("item %d is not in scene %q", it.ID(), sc.Name())
	}
	var to int
	switch o {
	case OrderMoveUp:
		to = min(i+1, len(sc.items)-1)
	case OrderMoveDown:
		to = max(i-1, 0)
	case OrderMoveTop:
		to = len(sc.items) - 1
	case OrderMoveBottom:
		to = 0
	default:
		return fmt.Errorf("%w: order %d", ErrOutOfRange, o)
	}
	sc.moveLocked(i, to)
	return nil
}

// SetOrderPosition moves it to the given stack position, where 0 is
// the bottom. Positions past either end are clamped.
func (sc *Scene) SetOrderPosition(it *SceneItem, pos int) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	i := slices.Index(sc.items, it)
	if i < 0 {
		return fmt.Errorf("item %d is not in scene %q", it.ID(), sc.Name())
	}
	sc.moveLocked(i, max(0, min(pos, len(sc.items)-1)))
	return nil
}

func (sc *Scene) moveLocked(from, to int) {
	if from == to {
		return
	}
	it := sc.items[from]
	sc.items = slices.Delete(sc.items, from, from+1)
	sc.items = slices.Insert(sc.items, to, it)
}

// orphanSource clears the source of every item showing src.
func (sc *Scene) orphanSource(src *Source) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for _, it := range sc.items {
		it.clearSource(src)
	}
}

// detachAll removes all items from the scene.
func (sc *Scene) detachAll() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for _, it := range sc.items {
		it.setScene(nil)
	}
	sc.items = nil
}
