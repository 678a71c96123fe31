package dragdrop

import (
	"errors"
	"io/fs"
	"os"

	"github.com/justyntemme/dragexport/internal/debug"
)

// DragState names the steps a request passes through.
type DragState int

const (
	StateIdle DragState = iota
	StateValidating
	StateLoopRunning
	StateCompleted
	StateCancelled
	StateFailed
	StateCleaningUp
	StateReported
)

func (s DragState) String() string {
	return [...]string{
		"idle", "validating", "loop-running", "completed",
		"cancelled", "failed", "cleaning-up", "reported",
	}[s]
}

// Orchestrator runs one native drag per StartDrag call. It holds no state
// between requests and can be reused, though the drag loop itself only allows
// one drag at a time per thread.
type Orchestrator struct {
	loop    DragLoop
	alloc   GlobalAllocator
	allowed Effect
	remove  func(string) error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRemover replaces os.Remove for temp file cleanup.
func WithRemover(fn func(string) error) Option {
	return func(o *Orchestrator) { o.remove = fn }
}

// WithAllowedEffects overrides the default copy|move effect set. Link is
// masked out.
func WithAllowedEffects(e Effect) Option {
	return func(o *Orchestrator) {
		if e &= EffectCopy | EffectMove; e != EffectNone {
			o.allowed = e
		}
	}
}

func NewOrchestrator(loop DragLoop, alloc GlobalAllocator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		loop:    loop,
		alloc:   alloc,
		allowed: EffectCopy | EffectMove,
		remove:  os.Remove,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) transition(req DragRequest, s DragState) {
	debug.Log(debug.DRAG, "%s path=%q", s, req.Path)
}

// StartDrag runs the native drag loop for req.Path and blocks until the user
// drops or cancels. The file at req.Path is deleted afterwards whatever the
// result; a failed delete is recorded in Outcome.CleanupErr only.
//
// The returned error is non-nil for invalid requests and failed loops, and is
// the same value as Outcome.Err. A cancelled drag is not an error.
func (o *Orchestrator) StartDrag(req DragRequest) (Outcome, error) {
	o.transition(req, StateValidating)
	if err := req.Validate(); err != nil {
		debug.Log(debug.DRAG, "rejected request: %v", err)
		return Outcome{Kind: OutcomeFailed, Err: err}, err
	}

	data, err := NewDataProvider(req.Path, o.alloc)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, Err: err}, err
	}
	source := NewFeedbackSource()

	o.transition(req, StateLoopRunning)
	debug.Log(debug.DRAG, "origin=(%.1f, %.1f) allowed=%s", req.OriginX, req.OriginY, o.allowed)
	res := o.loop.Run(data, source, o.allowed)

	// From here on the shell's own references decide when the objects die.
	data.ReleaseReference()
	source.ReleaseReference()

	outcome := outcomeOf(res)
	switch outcome.Kind {
	case OutcomeCopied, OutcomeMoved:
		o.transition(req, StateCompleted)
	case OutcomeCancelled:
		o.transition(req, StateCancelled)
	default:
		o.transition(req, StateFailed)
	}

	o.transition(req, StateCleaningUp)
	err = o.remove(req.Path)
	if err != nil && outcome.Kind == OutcomeMoved && errors.Is(err, fs.ErrNotExist) {
		// The target already took the file away.
		err = nil
	}
	if err != nil {
		outcome.CleanupErr = &CleanupError{Path: req.Path, Err: err}
		debug.Warn(debug.DRAG, "temp file cleanup failed: %v", outcome.CleanupErr)
	} else {
		debug.Log(debug.DRAG, "temp file removed: %s", req.Path)
	}

	o.transition(req, StateReported)
	debug.Log(debug.DRAG, "outcome=%s effect=%s code=%s", outcome.Kind, outcome.Effect, outcome.Code)
	return outcome, outcome.Err
}

func outcomeOf(res LoopResult) Outcome {
	out := Outcome{Code: res.Code, Effect: res.Effect}
	if res.Err != nil {
		out.Kind = OutcomeFailed
		out.Effect = EffectNone
		out.Err = &OSError{Op: "DoDragDrop", Code: res.Code, Err: res.Err}
		return out
	}

	switch res.Code {
	case DRAGDROP_S_DROP:
		switch {
		case res.Effect&EffectMove != 0:
			out.Kind = OutcomeMoved
			out.Effect = EffectMove
		case res.Effect&EffectCopy != 0:
			out.Kind = OutcomeCopied
			out.Effect = EffectCopy
		default:
			// The target accepted the drop but performed nothing.
			out.Kind = OutcomeCancelled
			out.Effect = EffectNone
		}
	case DRAGDROP_S_CANCEL:
		out.Kind = OutcomeCancelled
		out.Effect = EffectNone
	default:
		out.Kind = OutcomeFailed
		out.Effect = EffectNone
		out.Err = &OSError{Op: "DoDragDrop", Code: res.Code}
	}
	return out
}
