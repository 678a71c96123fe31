package ui

import (
	"image"
	"image/color"
	"sync"
	"time"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
)

// ToastType indicates the severity of a toast message
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastSuccess
	ToastWarning
	ToastError
)

// toastDuration is how long toasts are displayed
const toastDuration = 3 * time.Second

// Toast is a temporary notification. Show may be called from any goroutine.
type Toast struct {
	mu        sync.Mutex
	message   string
	kind      ToastType
	expiresAt time.Time
	now       func() time.Time
}

// Show displays message until toastDuration has passed.
func (t *Toast) Show(message string, kind ToastType) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.message = message
	t.kind = kind
	t.expiresAt = t.clock().Add(toastDuration)
}

// Dismiss hides the toast immediately.
func (t *Toast) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.message = ""
}

// Current returns the visible message, if any.
func (t *Toast) Current() (string, ToastType, time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.message == "" || !t.clock().Before(t.expiresAt) {
		return "", ToastInfo, time.Time{}, false
	}
	return t.message, t.kind, t.expiresAt, true
}

func (t *Toast) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

func toastColors(kind ToastType) (bg, fg color.NRGBA) {
	fg = colWhite
	switch kind {
	case ToastError:
		bg = color.NRGBA{R: 200, G: 50, B: 50, A: 240}
	case ToastWarning:
		bg = color.NRGBA{R: 220, G: 160, B: 40, A: 240}
		fg = color.NRGBA{R: 40, G: 40, B: 40, A: 255}
	case ToastSuccess:
		bg = color.NRGBA{R: 50, G: 160, B: 80, A: 240}
	default:
		bg = color.NRGBA{R: 60, G: 60, B: 60, A: 240}
	}
	return bg, fg
}

// Layout renders the toast at the bottom of the available area
func (t *Toast) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	message, kind, expiresAt, ok := t.Current()
	if !ok {
		return layout.Dimensions{}
	}
	// Schedule redraw when toast should expire
	gtx.Execute(op.InvalidateCmd{At: expiresAt})

	bg, fg := toastColors(kind)
	return layout.S.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.UniformInset(unit.Dp(16)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min = image.Point{}

			macro := op.Record(gtx.Ops)
			dims := layout.Inset{
				Top: unit.Dp(10), Bottom: unit.Dp(10),
				Left: unit.Dp(14), Right: unit.Dp(14),
			}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				label := material.Body2(th, message)
				label.Color = fg
				return label.Layout(gtx)
			})
			call := macro.Stop()

			rr := gtx.Dp(unit.Dp(8))
			paint.FillShape(gtx.Ops, bg, clip.UniformRRect(image.Rectangle{Max: dims.Size}, rr).Op(gtx.Ops))
			call.Add(gtx.Ops)
			return dims
		})
	})
}
