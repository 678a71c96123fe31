package channel

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/dragexport/internal/dragdrop"
)

type recordedReply struct {
	kind    string
	value   any
	code    string
	message string
	details any
}

type recordingResult struct {
	mu      sync.Mutex
	replies []recordedReply
}

func (r *recordingResult) add(rep recordedReply) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, rep)
}

func (r *recordingResult) Success(value any) { r.add(recordedReply{kind: "success", value: value}) }

func (r *recordingResult) Error(code, message string, details any) {
	r.add(recordedReply{kind: "error", code: code, message: message, details: details})
}

func (r *recordingResult) NotImplemented() { r.add(recordedReply{kind: "notImplemented"}) }

func (r *recordingResult) only(t *testing.T) recordedReply {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.Len(t, r.replies, 1)
	return r.replies[0]
}

type fakeDragger struct {
	outcome dragdrop.Outcome
	err     error
	mu      sync.Mutex
	calls   []dragdrop.DragRequest
	started chan struct{}
	release chan struct{}
}

func (f *fakeDragger) StartDrag(req dragdrop.DragRequest) (dragdrop.Outcome, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.outcome, f.err
}

func (f *fakeDragger) requests() []dragdrop.DragRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dragdrop.DragRequest(nil), f.calls...)
}

func existingFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shot.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 2, 2))))
	require.NoError(t, f.Close())
	return path
}

func dragCall(args map[string]any) MethodCall {
	return MethodCall{Method: MethodStartImageDrag, Arguments: args}
}

func TestStartImageDrag_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		outcome dragdrop.Outcome
		effect  string
	}{
		{"copied", dragdrop.Outcome{Kind: dragdrop.OutcomeCopied, Effect: dragdrop.EffectCopy}, "copy"},
		{"moved", dragdrop.Outcome{Kind: dragdrop.OutcomeMoved, Effect: dragdrop.EffectMove}, "move"},
		{"cancelled", dragdrop.Outcome{Kind: dragdrop.OutcomeCancelled}, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := existingFile(t)
			d := &fakeDragger{outcome: tt.outcome}
			res := &recordingResult{}

			NewHandler(d).HandleMethodCall(dragCall(map[string]any{
				"filePath": path, "originX": 10.5, "originY": 20,
			}), res)

			rep := res.only(t)
			assert.Equal(t, "success", rep.kind)
			assert.Equal(t, map[string]any{"effect": tt.effect}, rep.value)
			require.Len(t, d.requests(), 1)
			assert.Equal(t, dragdrop.DragRequest{Path: path, OriginX: 10.5, OriginY: 20}, d.requests()[0])
		})
	}
}

func TestStartImageDrag_Failed(t *testing.T) {
	path := existingFile(t)
	loopErr := &dragdrop.OSError{Op: "DoDragDrop", Code: dragdrop.E_OUTOFMEMORY, Err: errors.New("boom")}
	d := &fakeDragger{
		outcome: dragdrop.Outcome{Kind: dragdrop.OutcomeFailed, Code: dragdrop.E_OUTOFMEMORY, Err: loopErr},
		err:     loopErr,
	}
	res := &recordingResult{}

	NewHandler(d).HandleMethodCall(dragCall(map[string]any{"filePath": path, "originX": 0.0, "originY": 0.0}), res)

	rep := res.only(t)
	assert.Equal(t, "error", rep.kind)
	assert.Equal(t, CodeDragFailed, rep.code)
	assert.Equal(t, map[string]any{"code": "0x8007000E"}, rep.details)
}

func TestStartImageDrag_FailedWithoutCode(t *testing.T) {
	path := existingFile(t)
	err := &dragdrop.OSError{Op: "DoDragDrop", Err: dragdrop.ErrUnsupportedPlatform}
	d := &fakeDragger{outcome: dragdrop.Outcome{Kind: dragdrop.OutcomeFailed, Err: err}, err: err}
	res := &recordingResult{}

	NewHandler(d).HandleMethodCall(dragCall(map[string]any{"filePath": path, "originX": 0.0, "originY": 0.0}), res)

	rep := res.only(t)
	assert.Equal(t, CodeDragFailed, rep.code)
	assert.Equal(t, map[string]any{"code": "0x80004005"}, rep.details)
}

func TestStartImageDrag_InvalidArgs(t *testing.T) {
	path := existingFile(t)
	tests := []struct {
		name string
		args map[string]any
	}{
		{"nil args", nil},
		{"missing path", map[string]any{"originX": 1.0, "originY": 1.0}},
		{"path not a string", map[string]any{"filePath": 42, "originX": 1.0, "originY": 1.0}},
		{"empty path", map[string]any{"filePath": "", "originX": 1.0, "originY": 1.0}},
		{"missing originX", map[string]any{"filePath": path, "originY": 1.0}},
		{"originY not a number", map[string]any{"filePath": path, "originX": 1.0, "originY": "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDragger{}
			res := &recordingResult{}

			NewHandler(d).HandleMethodCall(dragCall(tt.args), res)

			rep := res.only(t)
			assert.Equal(t, "error", rep.kind)
			assert.Equal(t, CodeInvalidArgs, rep.code)
			assert.Empty(t, d.requests(), "drag must not start")
		})
	}
}

func TestStartImageDrag_FileNotFound(t *testing.T) {
	d := &fakeDragger{}
	res := &recordingResult{}
	missing := filepath.Join(t.TempDir(), "gone.png")

	NewHandler(d).HandleMethodCall(dragCall(map[string]any{"filePath": missing, "originX": 1, "originY": 2}), res)

	rep := res.only(t)
	assert.Equal(t, CodeFileNotFound, rep.code)
	assert.Contains(t, rep.message, missing)
	assert.Empty(t, d.requests())
}

func TestStartImageDrag_InvalidImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o644))
	d := &fakeDragger{}
	res := &recordingResult{}

	NewHandler(d).HandleMethodCall(dragCall(map[string]any{"filePath": path, "originX": 1.0, "originY": 2.0}), res)

	rep := res.only(t)
	assert.Equal(t, "error", rep.kind)
	assert.Equal(t, CodeInvalidImage, rep.code)
	assert.Contains(t, rep.message, "failed to load image")
	assert.Empty(t, d.requests(), "drag must not start")
}

func TestStartImageDrag_InProgress(t *testing.T) {
	path := existingFile(t)
	d := &fakeDragger{
		outcome: dragdrop.Outcome{Kind: dragdrop.OutcomeCopied, Effect: dragdrop.EffectCopy},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	h := NewHandler(d)
	args := map[string]any{"filePath": path, "originX": 1.0, "originY": 1.0}

	first := &recordingResult{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.HandleMethodCall(dragCall(args), first)
	}()
	<-d.started

	second := &recordingResult{}
	h.HandleMethodCall(dragCall(args), second)
	assert.Equal(t, CodeDragInProgress, second.only(t).code)

	close(d.release)
	<-done
	assert.Equal(t, "success", first.only(t).kind)
}

func TestUnknownMethod(t *testing.T) {
	res := &recordingResult{}
	NewHandler(&fakeDragger{}).HandleMethodCall(MethodCall{Method: "stopImageDrag"}, res)
	assert.Equal(t, "notImplemented", res.only(t).kind)
}

func TestOnce_DropsExtraReplies(t *testing.T) {
	inner := &recordingResult{}
	r := Once("test", inner)

	r.Success("first")
	r.Error("X", "second", nil)
	r.NotImplemented()

	rep := inner.only(t)
	assert.Equal(t, "success", rep.kind)
	assert.Equal(t, "first", rep.value)

	// Wrapping twice keeps a single guard.
	assert.Same(t, r, Once("test", r))
}

func TestOnce_ConcurrentReplies(t *testing.T) {
	inner := &recordingResult{}
	r := Once("test", inner)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Success(nil)
		}()
	}
	wg.Wait()
	inner.only(t)
}
