package app

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"gioui.org/f32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/dragexport/internal/dragdrop"
	"github.com/justyntemme/dragexport/internal/staging"
	"github.com/justyntemme/dragexport/internal/ui"
)

// stagedDragger checks the staged copy while the "drag" runs and then cleans
// it up the way dragdrop.Orchestrator does.
type stagedDragger struct {
	t       *testing.T
	stager  *staging.Stager
	outcome dragdrop.Outcome
	req     dragdrop.DragRequest
	content []byte
}

func (d *stagedDragger) StartDrag(req dragdrop.DragRequest) (dragdrop.Outcome, error) {
	d.req = req
	data, err := os.ReadFile(req.Path)
	require.NoError(d.t, err)
	d.content = data
	require.NoError(d.t, d.stager.Remove(req.Path))
	return d.outcome, d.outcome.Err
}

func newStager(t *testing.T) *staging.Stager {
	t.Helper()
	s, err := staging.New(t.TempDir(), "")
	require.NoError(t, err)
	return s
}

func TestExport_StagesCopy(t *testing.T) {
	src := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.7"), 0o644))

	stager := newStager(t)
	d := &stagedDragger{t: t, stager: stager, outcome: dragdrop.Outcome{Kind: dragdrop.OutcomeMoved, Effect: dragdrop.EffectMove}}

	out, err := NewExporter(stager, d).Export(src, f32.Pt(4, 8))
	require.NoError(t, err)
	assert.Equal(t, dragdrop.OutcomeMoved, out.Kind)

	assert.NotEqual(t, src, d.req.Path, "the original is never dragged")
	assert.Equal(t, "report.pdf", filepath.Base(d.req.Path))
	assert.Equal(t, 4.0, d.req.OriginX)
	assert.Equal(t, 8.0, d.req.OriginY)
	assert.Equal(t, []byte("%PDF-1.7"), d.content)

	// The original survives a move of the copy.
	assert.FileExists(t, src)
	assert.NoFileExists(t, d.req.Path)
}

func TestExport_PNGPassesThrough(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{G: 255, A: 255})
	src := filepath.Join(t.TempDir(), "shot.png")
	f, err := os.Create(src)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	stager := newStager(t)
	d := &stagedDragger{t: t, stager: stager, outcome: dragdrop.Outcome{Kind: dragdrop.OutcomeCopied, Effect: dragdrop.EffectCopy}}

	_, err = NewExporter(stager, d).Export(src, f32.Point{})
	require.NoError(t, err)
	want, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, want, d.content)
}

func TestExport_HEICWithoutDecoderStagesOriginal(t *testing.T) {
	src := filepath.Join(t.TempDir(), "IMG_0042.HEIC")
	raw := []byte("\x00\x00\x00\x18ftypheic")
	require.NoError(t, os.WriteFile(src, raw, 0o644))

	stager := newStager(t)
	d := &stagedDragger{t: t, stager: stager, outcome: dragdrop.Outcome{Kind: dragdrop.OutcomeCopied, Effect: dragdrop.EffectCopy}}
	e := NewExporter(stager, d)
	e.decodeHEIC = func() bool { return false }

	out, err := e.Export(src, f32.Point{})
	require.NoError(t, err)
	assert.Equal(t, dragdrop.OutcomeCopied, out.Kind)
	assert.Equal(t, "IMG_0042.HEIC", filepath.Base(d.req.Path))
	assert.Equal(t, raw, d.content, "original bytes are dragged")
}

func TestExport_MissingSource(t *testing.T) {
	stager := newStager(t)
	d := &stagedDragger{t: t, stager: stager}

	out, err := NewExporter(stager, d).Export(filepath.Join(t.TempDir(), "nope.png"), f32.Point{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, dragdrop.OutcomeFailed, out.Kind)
	assert.Empty(t, d.req.Path, "no drag without a staged file")
}

func TestOutcomeToast(t *testing.T) {
	failure := &dragdrop.OSError{Op: "DoDragDrop", Code: dragdrop.E_FAIL, Err: errors.New("boom")}
	tests := []struct {
		name string
		out  dragdrop.Outcome
		err  error
		kind ui.ToastType
		msg  string
	}{
		{"copied", dragdrop.Outcome{Kind: dragdrop.OutcomeCopied}, nil, ui.ToastSuccess, "Copied"},
		{"copied dirty", dragdrop.Outcome{Kind: dragdrop.OutcomeCopied, CleanupErr: errors.New("locked")}, nil, ui.ToastWarning, "Copied (temp file left behind)"},
		{"moved", dragdrop.Outcome{Kind: dragdrop.OutcomeMoved}, nil, ui.ToastSuccess, "Moved"},
		{"cancelled", dragdrop.Outcome{Kind: dragdrop.OutcomeCancelled}, nil, ui.ToastInfo, "Drag cancelled"},
		{"failed", dragdrop.Outcome{Kind: dragdrop.OutcomeFailed, Err: failure}, failure, ui.ToastError, "Drag failed: " + failure.Error()},
		{"failed without error", dragdrop.Outcome{}, nil, ui.ToastError, "Drag failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, kind := outcomeToast(tt.out, tt.err)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.msg, msg)
		})
	}
}
