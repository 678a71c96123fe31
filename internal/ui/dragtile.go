package ui

import (
	"gioui.org/f32"
	"gioui.org/gesture"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
)

// DragTile is an area whose content can be pulled out of the window. It pairs
// gesture.Click with gesture.Drag on the same hit area: the drag gesture only
// grabs the pointer once it has moved past the touch slop, so a plain click
// still reaches the click gesture.
//
// A drag out of the window is handed to the OS drag loop, which takes over the
// mouse. The tile therefore reports the start exactly once per press and does
// not draw a shadow of its own.
type DragTile struct {
	click gesture.Click
	drag  gesture.Drag

	pid      pointer.ID
	pressPos f32.Point
	pressed  bool
	fired    bool
}

// Hovered reports whether a pointer is inside the tile.
func (t *DragTile) Hovered() bool {
	return t.click.Hovered()
}

// Pressed reports whether a pointer is pressing the tile.
func (t *DragTile) Pressed() bool {
	return t.drag.Pressed()
}

// track folds one drag gesture event into the tile state. It returns the
// press position once the pointer that pressed the tile starts dragging.
func (t *DragTile) track(e pointer.Event) (f32.Point, bool) {
	switch e.Kind {
	case pointer.Press:
		t.pid = e.PointerID
		t.pressPos = e.Position
		t.pressed = true
		t.fired = false
	case pointer.Drag:
		if !t.pressed || t.fired || e.PointerID != t.pid {
			return f32.Point{}, false
		}
		t.fired = true
		return t.pressPos, true
	case pointer.Release, pointer.Cancel:
		t.pressed = false
		t.fired = false
	}
	return f32.Point{}, false
}

// Layout draws w and registers the tile's hit area. It reports the press
// position, in tile coordinates, on the frame the drag threshold is crossed.
func (t *DragTile) Layout(gtx layout.Context, w layout.Widget) (layout.Dimensions, f32.Point, bool) {
	if !gtx.Enabled() {
		return w(gtx), f32.Point{}, false
	}

	// Clicks only reset state here; the tile has no click action.
	for {
		e, ok := t.click.Update(gtx.Source)
		if !ok {
			break
		}
		if e.Kind == gesture.KindCancel {
			t.pressed = false
		}
	}

	var (
		origin  f32.Point
		started bool
	)
	for {
		e, ok := t.drag.Update(gtx.Metric, gtx.Source, gesture.Both)
		if !ok {
			break
		}
		if pos, ok := t.track(e); ok {
			origin, started = pos, true
		}
	}

	dims := w(gtx)

	defer clip.Rect{Max: dims.Size}.Push(gtx.Ops).Pop()
	pointer.CursorGrab.Add(gtx.Ops)
	t.click.Add(gtx.Ops)
	t.drag.Add(gtx.Ops)
	event.Op(gtx.Ops, t)

	return dims, origin, started
}
