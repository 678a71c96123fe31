package ui

import (
	"image"

	"gioui.org/f32"
)

type UIAction int

const (
	ActionNone UIAction = iota
	ActionStartDrag
	ActionOpen
	ActionReload
	ActionQuit
)

// UIEvent is what the renderer reports back to the window loop after a frame.
type UIEvent struct {
	Action UIAction
	// Origin is where the drag gesture started, in window pixels.
	Origin f32.Point
}

// DragStatus is what the window is currently doing with its file.
type DragStatus int

const (
	StatusIdle DragStatus = iota
	StatusStaging
	StatusDragging
)

func (s DragStatus) String() string {
	switch s {
	case StatusStaging:
		return "Preparing…"
	case StatusDragging:
		return "Dragging"
	}
	return "Drag the image into Explorer or any app"
}

// State is everything the renderer draws. The window loop owns it.
type State struct {
	Name       string
	Path       string
	Size       int64
	Dimensions image.Point
	Thumb      *Thumbnail
	Status     DragStatus
	ConfigErr  error
}
