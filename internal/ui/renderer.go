package ui

import (
	"fmt"
	"image"
	"io"
	"strings"

	"gioui.org/font"
	"gioui.org/io/clipboard"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/dustin/go-humanize"

	"github.com/justyntemme/dragexport/internal/config"
	"github.com/justyntemme/dragexport/internal/debug"
)

type Renderer struct {
	Theme *material.Theme

	tile    DragTile
	toast   Toast
	hotkeys *config.HotkeyMatcher
	// ThumbSize is the largest side of the preview tile.
	ThumbSize unit.Dp
}

func NewRenderer(hotkeys *config.HotkeysConfig) *Renderer {
	r := &Renderer{
		Theme:     material.NewTheme(),
		ThumbSize: 192,
	}
	if hotkeys != nil {
		r.hotkeys = config.NewHotkeyMatcher(*hotkeys)
	}
	return r
}

// ShowToast displays a toast notification that auto-dismisses
func (r *Renderer) ShowToast(message string, kind ToastType) {
	r.toast.Show(message, kind)
}

// ShowError is a convenience method for showing error toasts
func (r *Renderer) ShowError(message string) {
	r.toast.Show(message, ToastError)
}

// Layout draws one frame and returns the action the user asked for, if any.
func (r *Renderer) Layout(gtx layout.Context, state *State) UIEvent {
	evt := r.processHotkeys(gtx, state)

	paint.Fill(gtx.Ops, colBackground)

	layout.Stack{}.Layout(gtx,
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return r.layoutConfigError(gtx, state.ConfigErr)
				}),
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						return r.layoutTile(gtx, state, &evt)
					})
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return r.layoutDetails(gtx, state)
				}),
			)
		}),
		layout.Stacked(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min = gtx.Constraints.Max
			return r.toast.Layout(gtx, r.Theme)
		}),
	)

	// Hit area for window-wide hotkeys.
	area := clip.Rect{Max: gtx.Constraints.Max}.Push(gtx.Ops)
	event.Op(gtx.Ops, r)
	area.Pop()

	return evt
}

func (r *Renderer) layoutTile(gtx layout.Context, state *State, evt *UIEvent) layout.Dimensions {
	side := gtx.Dp(r.ThumbSize)
	inset := gtx.Dp(unit.Dp(8))

	dims, origin, started := r.tile.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		size := image.Pt(side+2*inset, side+2*inset)
		bg := colWhite
		if r.tile.Hovered() {
			bg = colTileHover
		}
		rr := gtx.Dp(unit.Dp(6))
		paint.FillShape(gtx.Ops, colShadow, clip.UniformRRect(image.Rectangle{Min: image.Pt(2, 2), Max: size.Add(image.Pt(2, 2))}, rr).Op(gtx.Ops))
		paint.FillShape(gtx.Ops, bg, clip.UniformRRect(image.Rectangle{Max: size}, rr).Op(gtx.Ops))

		gtx.Constraints = layout.Exact(size)
		layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			if state.Thumb == nil {
				return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					lbl := material.Body2(r.Theme, "No image")
					lbl.Color = colGray
					return lbl.Layout(gtx)
				})
			}
			img := widget.Image{Src: state.Thumb.Op, Fit: widget.Contain, Position: layout.Center}
			return img.Layout(gtx)
		})
		return layout.Dimensions{Size: size}
	})

	if started && state.Path != "" && state.Status == StatusIdle {
		debug.Log(debug.UI, "drag threshold crossed at (%.0f, %.0f)", origin.X, origin.Y)
		*evt = UIEvent{Action: ActionStartDrag, Origin: origin}
	}
	return dims
}

func (r *Renderer) layoutDetails(gtx layout.Context, state *State) layout.Dimensions {
	return layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				name := state.Name
				if name == "" {
					name = "—"
				}
				lbl := material.Body1(r.Theme, name)
				lbl.Font.Weight = font.Bold
				lbl.MaxLines = 1
				return lbl.Layout(gtx)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Caption(r.Theme, describe(state))
				lbl.Color = colGray
				return lbl.Layout(gtx)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Caption(r.Theme, state.Status.String())
				lbl.Color = colAccent
				return lbl.Layout(gtx)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				hint := r.hint()
				if hint == "" {
					return layout.Dimensions{}
				}
				return layout.Inset{Top: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					lbl := material.Caption(r.Theme, hint)
					lbl.Color = colGray
					lbl.MaxLines = 1
					return lbl.Layout(gtx)
				})
			}),
		)
	})
}

// hint lists the configured shortcuts, or nothing without hotkeys.
func (r *Renderer) hint() string {
	if r.hotkeys == nil {
		return ""
	}
	return r.hotkeys.Hint()
}

// describe renders the size line under the file name.
func describe(state *State) string {
	var parts []string
	if d := state.Dimensions; d.X > 0 && d.Y > 0 {
		parts = append(parts, fmt.Sprintf("%d × %d", d.X, d.Y))
	}
	if state.Size > 0 {
		parts = append(parts, humanize.Bytes(uint64(state.Size)))
	}
	return strings.Join(parts, " · ")
}

func (r *Renderer) layoutConfigError(gtx layout.Context, err error) layout.Dimensions {
	if err == nil {
		return layout.Dimensions{}
	}
	macro := op.Record(gtx.Ops)
	dims := layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		lbl := material.Caption(r.Theme, "Config error: "+err.Error())
		lbl.Color = colErrorBannerText
		return lbl.Layout(gtx)
	})
	call := macro.Stop()
	paint.FillShape(gtx.Ops, colErrorBannerBg, clip.Rect{Max: image.Pt(gtx.Constraints.Max.X, dims.Size.Y)}.Op())
	call.Add(gtx.Ops)
	return layout.Dimensions{Size: image.Pt(gtx.Constraints.Max.X, dims.Size.Y)}
}

// processHotkeys handles the window-wide keyboard shortcuts.
func (r *Renderer) processHotkeys(gtx layout.Context, state *State) UIEvent {
	if r.hotkeys == nil {
		return UIEvent{}
	}

	var filters []event.Filter
	for _, h := range r.hotkeys.All() {
		filters = append(filters, h.Filter(nil))
	}

	evt := UIEvent{}
	for {
		e, ok := gtx.Event(filters...)
		if !ok {
			break
		}
		k, ok := e.(key.Event)
		if !ok || k.State != key.Press {
			continue
		}
		debug.Log(debug.UI, "key pressed: name=%q mods=0x%x", k.Name, k.Modifiers)

		switch {
		case r.hotkeys.Quit.Matches(k):
			evt = UIEvent{Action: ActionQuit}
		case r.hotkeys.Open.Matches(k) && state.Path != "":
			evt = UIEvent{Action: ActionOpen}
		case r.hotkeys.Reload.Matches(k):
			evt = UIEvent{Action: ActionReload}
		case r.hotkeys.CopyPath.Matches(k) && state.Path != "":
			gtx.Execute(clipboard.WriteCmd{
				Type: "application/text",
				Data: io.NopCloser(strings.NewReader(state.Path)),
			})
			r.toast.Show("Path copied", ToastInfo)
		case r.hotkeys.Cancel.Matches(k):
			r.toast.Dismiss()
		}
	}
	return evt
}
