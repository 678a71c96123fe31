package channel

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sync"

	"github.com/justyntemme/dragexport/internal/debug"
	"github.com/justyntemme/dragexport/internal/dragdrop"
	"github.com/justyntemme/dragexport/internal/staging"
)

// Dragger runs one drag to completion.
type Dragger interface {
	StartDrag(req dragdrop.DragRequest) (dragdrop.Outcome, error)
}

// Handler dispatches method calls to a Dragger. Only one drag runs at a time.
type Handler struct {
	drag       Dragger
	busy       sync.Mutex
	stat       func(string) (fs.FileInfo, error)
	checkImage func(string) error
}

// NewHandler returns a Handler that starts drags through d.
func NewHandler(d Dragger) *Handler {
	return &Handler{drag: d, stat: os.Stat, checkImage: staging.CheckImage}
}

// HandleMethodCall replies to call through result exactly once. It blocks
// until the drag finishes.
func (h *Handler) HandleMethodCall(call MethodCall, result Result) {
	result = Once(call.Method, result)
	debug.Log(debug.CHANNEL, "call %s", call.Method)

	switch call.Method {
	case MethodStartImageDrag:
		h.startImageDrag(call.Arguments, result)
	default:
		result.NotImplemented()
	}
}

func (h *Handler) startImageDrag(args map[string]any, result Result) {
	req, err := parseDragArgs(args)
	if err != nil {
		result.Error(CodeInvalidArgs, err.Error(), nil)
		return
	}
	if err := req.Validate(); err != nil {
		result.Error(CodeInvalidArgs, err.Error(), nil)
		return
	}
	if _, err := h.stat(req.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			result.Error(CodeFileNotFound, fmt.Sprintf("file does not exist: %s", req.Path), nil)
			return
		}
		result.Error(CodeInvalidArgs, err.Error(), nil)
		return
	}
	if err := h.checkImage(req.Path); err != nil {
		debug.Log(debug.CHANNEL, "rejecting %s: %v", req.Path, err)
		result.Error(CodeInvalidImage, "failed to load image: "+err.Error(), nil)
		return
	}

	if !h.busy.TryLock() {
		result.Error(CodeDragInProgress, "another drag is still running", nil)
		return
	}
	defer h.busy.Unlock()

	outcome, err := h.drag.StartDrag(req)
	if outcome.CleanupErr != nil {
		debug.Warn(debug.CHANNEL, "drag of %s left a temp file behind: %v", req.Path, outcome.CleanupErr)
	}

	switch outcome.Kind {
	case dragdrop.OutcomeCopied:
		result.Success(map[string]any{"effect": "copy"})
	case dragdrop.OutcomeMoved:
		result.Success(map[string]any{"effect": "move"})
	case dragdrop.OutcomeCancelled:
		result.Success(map[string]any{"effect": "none"})
	default:
		if err == nil {
			err = outcome.Err
		}
		if errors.Is(err, dragdrop.ErrInvalidArgument) {
			result.Error(CodeInvalidArgs, err.Error(), nil)
			return
		}
		code := outcome.Code
		if code == dragdrop.S_OK {
			code = dragdrop.HResultOf(err)
		}
		if code == dragdrop.S_OK {
			code = dragdrop.E_FAIL
		}
		msg := "drag failed"
		if err != nil {
			msg = err.Error()
		}
		result.Error(CodeDragFailed, msg, map[string]any{"code": code.String()})
	}
}

func parseDragArgs(args map[string]any) (dragdrop.DragRequest, error) {
	if args == nil {
		return dragdrop.DragRequest{}, errors.New("missing arguments")
	}
	path, ok := args["filePath"].(string)
	if !ok {
		return dragdrop.DragRequest{}, errors.New("filePath must be a string")
	}
	x, err := number(args, "originX")
	if err != nil {
		return dragdrop.DragRequest{}, err
	}
	y, err := number(args, "originY")
	if err != nil {
		return dragdrop.DragRequest{}, err
	}
	return dragdrop.DragRequest{Path: path, OriginX: x, OriginY: y}, nil
}

func number(args map[string]any, name string) (float64, error) {
	var v float64
	switch n := args[name].(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case nil:
		return 0, fmt.Errorf("%s is required", name)
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", name, n)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be finite", name)
	}
	return v, nil
}
