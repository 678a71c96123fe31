// Package dragdrop starts a native shell drag of a single file and reports how it ended.
//
// The package models the two objects the Windows drag loop talks to, a data object
// (DataProvider) and a drop source (FeedbackSource), as plain Go structs with explicit
// atomic reference counts. The OLE binding in ole_windows.go exposes them to the shell
// through hand-built vtables; everything else is platform independent and testable
// with a fake DragLoop.
package dragdrop

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Effect is a DROPEFFECT bit set.
type Effect uint32

const (
	EffectNone Effect = 0
	EffectCopy Effect = 1
	EffectMove Effect = 2
	EffectLink Effect = 4
)

func (e Effect) String() string {
	switch e {
	case EffectNone:
		return "none"
	case EffectCopy:
		return "copy"
	case EffectMove:
		return "move"
	case EffectLink:
		return "link"
	}
	var parts []string
	for _, f := range []Effect{EffectCopy, EffectMove, EffectLink} {
		if e&f != 0 {
			parts = append(parts, f.String())
		}
	}
	return strings.Join(parts, "|")
}

// ParseEffects combines effect names ("copy", "move") into a bit set. Link is
// refused because the staged file behind a link is deleted after the drop.
func ParseEffects(names []string) (Effect, error) {
	var e Effect
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "copy":
			e |= EffectCopy
		case "move":
			e |= EffectMove
		case "link":
			return EffectNone, fmt.Errorf("drop effect %q is not supported: %w", n, ErrInvalidArgument)
		default:
			return EffectNone, fmt.Errorf("unknown drop effect %q: %w", n, ErrInvalidArgument)
		}
	}
	return e, nil
}

// KeyState mirrors the MK_* flags passed to QueryContinueDrag.
type KeyState uint32

const (
	KeyLButton KeyState = 0x0001
	KeyRButton KeyState = 0x0002
	KeyShift   KeyState = 0x0004
	KeyControl KeyState = 0x0008
	KeyMButton KeyState = 0x0010
	KeyAlt     KeyState = 0x0020

	mouseButtons = KeyLButton | KeyRButton | KeyMButton
)

// Capability is the closed set of interfaces a drag object can be asked for.
type Capability int

const (
	CapUnknown Capability = iota
	CapDataObject
	CapDropSource
)

func (c Capability) String() string {
	switch c {
	case CapUnknown:
		return "IUnknown"
	case CapDataObject:
		return "IDataObject"
	case CapDropSource:
		return "IDropSource"
	}
	return fmt.Sprintf("Capability(%d)", int(c))
}

// DragRequest is one start-drag call from the transport layer.
type DragRequest struct {
	Path    string
	OriginX float64
	OriginY float64
}

// Validate rejects requests the shell could never accept.
func (r DragRequest) Validate() error {
	if r.Path == "" {
		return fmt.Errorf("empty path: %w", ErrInvalidArgument)
	}
	if strings.ContainsRune(r.Path, 0) {
		return fmt.Errorf("path contains NUL: %w", ErrInvalidArgument)
	}
	if !utf8.ValidString(r.Path) {
		return fmt.Errorf("path is not valid UTF-8: %w", ErrInvalidArgument)
	}
	return nil
}

// OutcomeKind classifies how a drag ended.
type OutcomeKind int

const (
	OutcomeFailed OutcomeKind = iota
	OutcomeCopied
	OutcomeMoved
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCopied:
		return "copied"
	case OutcomeMoved:
		return "moved"
	case OutcomeCancelled:
		return "cancelled"
	}
	return "failed"
}

// Outcome is the single result reported for a drag request.
type Outcome struct {
	Kind   OutcomeKind
	Effect Effect
	// Code is the result of the drag loop; zero when the loop never ran.
	Code HResult
	// Err is set when Kind is OutcomeFailed.
	Err error
	// CleanupErr records a temp file that could not be removed. It never
	// changes Kind.
	CleanupErr error
}

// LoopResult is what a DragLoop reports once the user finishes the gesture.
type LoopResult struct {
	Code   HResult
	Effect Effect
	// Err describes failures that happen before or around the loop itself
	// (thread initialization, unsupported platform).
	Err error
}

// DragLoop runs the OS drag loop. Run blocks until the drag completes or is
// cancelled and may call back into data and source any number of times.
type DragLoop interface {
	Run(data *DataProvider, source *FeedbackSource, allowed Effect) LoopResult
}
