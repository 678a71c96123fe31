package app

import (
	"fmt"
	"path/filepath"

	"gioui.org/f32"

	"github.com/justyntemme/dragexport/internal/debug"
	"github.com/justyntemme/dragexport/internal/dragdrop"
	"github.com/justyntemme/dragexport/internal/staging"
	"github.com/justyntemme/dragexport/internal/ui"
)

// Dragger runs one native drag of a file.
type Dragger interface {
	StartDrag(req dragdrop.DragRequest) (dragdrop.Outcome, error)
}

// Exporter stages a copy of the window's file and drags the copy. The
// original is never handed to the shell, so a move only consumes the copy.
type Exporter struct {
	stager     *staging.Stager
	drag       Dragger
	decodeHEIC func() bool
}

func NewExporter(stager *staging.Stager, drag Dragger) *Exporter {
	return &Exporter{stager: stager, drag: drag, decodeHEIC: staging.HEICSupported}
}

// Export blocks until the drag ends. HEIC sources are re-encoded as PNG so
// targets without a HEIC codec can still take them. Builds without a HEIC
// decoder drag the original bytes instead.
func (e *Exporter) Export(src string, origin f32.Point) (dragdrop.Outcome, error) {
	staged, err := e.stage(src)
	if err != nil {
		return dragdrop.Outcome{Kind: dragdrop.OutcomeFailed, Err: err}, err
	}
	debug.Log(debug.APP, "exporting %s as %s", src, staged)

	return e.drag.StartDrag(dragdrop.DragRequest{
		Path:    staged,
		OriginX: float64(origin.X),
		OriginY: float64(origin.Y),
	})
}

func (e *Exporter) stage(src string) (string, error) {
	if !staging.IsHEIC(src) {
		return e.stager.StageFile(src)
	}
	if !e.decodeHEIC() {
		debug.Log(debug.APP, "no HEIC decoder, staging %s unconverted", src)
		return e.stager.StageFile(src)
	}
	img, err := staging.LoadImage(src)
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", filepath.Base(src), err)
	}
	return e.stager.StageImage(img, filepath.Base(src))
}

// outcomeToast turns a finished drag into the toast shown in the window.
func outcomeToast(out dragdrop.Outcome, err error) (string, ui.ToastType) {
	switch out.Kind {
	case dragdrop.OutcomeCopied:
		if out.CleanupErr != nil {
			return "Copied (temp file left behind)", ui.ToastWarning
		}
		return "Copied", ui.ToastSuccess
	case dragdrop.OutcomeMoved:
		return "Moved", ui.ToastSuccess
	case dragdrop.OutcomeCancelled:
		return "Drag cancelled", ui.ToastInfo
	}
	if err == nil {
		err = out.Err
	}
	if err == nil {
		return "Drag failed", ui.ToastError
	}
	return "Drag failed: " + err.Error(), ui.ToastError
}
