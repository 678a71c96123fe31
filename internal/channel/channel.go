// Package channel exposes the drag orchestrator to a host application as a
// named method channel. Calls arrive as MethodCall values and every call gets
// exactly one reply through its Result.
package channel

import (
	"sync"

	"github.com/justyntemme/dragexport/internal/debug"
)

// DefaultName is the channel the host application talks to.
const DefaultName = "snipwise_drag_export"

// MethodStartImageDrag starts a native drag of one file.
const MethodStartImageDrag = "startImageDrag"

// Error codes sent back to the host.
const (
	CodeInvalidArgs    = "INVALID_ARGS"
	CodeFileNotFound   = "FILE_NOT_FOUND"
	CodeInvalidImage   = "INVALID_IMAGE"
	CodeDragInProgress = "DRAG_IN_PROGRESS"
	CodeDragFailed     = "DRAG_FAILED"
)

// MethodCall is one incoming request.
type MethodCall struct {
	Method    string
	Arguments map[string]any
}

// Result receives the reply to a MethodCall.
type Result interface {
	Success(value any)
	Error(code, message string, details any)
	NotImplemented()
}

// onceResult forwards the first reply and drops the rest.
type onceResult struct {
	method string
	once   sync.Once
	inner  Result
}

// Once wraps r so that only the first reply reaches it.
func Once(method string, r Result) Result {
	if o, ok := r.(*onceResult); ok {
		return o
	}
	return &onceResult{method: method, inner: r}
}

func (o *onceResult) reply(kind string, fn func()) {
	sent := false
	o.once.Do(func() {
		sent = true
		fn()
	})
	if !sent {
		debug.Warn(debug.CHANNEL, "%s: dropped extra %s reply", o.method, kind)
	}
}

func (o *onceResult) Success(value any) {
	o.reply("success", func() { o.inner.Success(value) })
}

func (o *onceResult) Error(code, message string, details any) {
	o.reply("error", func() { o.inner.Error(code, message, details) })
}

func (o *onceResult) NotImplemented() {
	o.reply("notImplemented", o.inner.NotImplemented)
}
