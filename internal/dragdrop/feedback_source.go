package dragdrop

import (
	"fmt"

	"github.com/justyntemme/dragexport/internal/debug"
)

// DragAction is the drop source's answer to QueryContinueDrag.
type DragAction int

const (
	ActionContinue DragAction = iota
	ActionDrop
	ActionCancel
)

func (a DragAction) String() string {
	switch a {
	case ActionDrop:
		return "drop"
	case ActionCancel:
		return "cancel"
	}
	return "continue"
}

// HResult converts the action to the code QueryContinueDrag returns.
func (a DragAction) HResult() HResult {
	switch a {
	case ActionDrop:
		return DRAGDROP_S_DROP
	case ActionCancel:
		return DRAGDROP_S_CANCEL
	}
	return S_OK
}

// FeedbackSource is the drop source handed to the drag loop. Apart from its
// reference count it holds no state.
type FeedbackSource struct {
	refs refCount
}

// NewFeedbackSource returns a source with a reference count of one.
func NewFeedbackSource() *FeedbackSource {
	s := &FeedbackSource{}
	s.refs.init()
	return s
}

func (s *FeedbackSource) AcquireReference() uint32 { return s.refs.acquire() }
func (s *FeedbackSource) ReleaseReference() uint32 { return s.refs.release() }
func (s *FeedbackSource) References() uint32       { return s.refs.count() }
func (s *FeedbackSource) Destroyed() bool          { return s.refs.isDestroyed() }
func (s *FeedbackSource) OnDestroy(fn func())      { s.refs.addDestroyHook(fn) }

// QueryCapability succeeds for IUnknown and IDropSource, adding a reference.
func (s *FeedbackSource) QueryCapability(c Capability) error {
	switch c {
	case CapUnknown, CapDropSource:
		if s.refs.acquire() == 0 {
			return fmt.Errorf("drop source %s: destroyed: %w", c, ErrNoInterface)
		}
		return nil
	}
	return fmt.Errorf("drop source %s: %w", c, ErrNoInterface)
}

// ShouldContinueDrag keeps the drag alive while a mouse button is held and
// escape has not been pressed. Releasing the primary button while another
// button is still down drops.
func (s *FeedbackSource) ShouldContinueDrag(escapePressed bool, keys KeyState) DragAction {
	action := ActionContinue
	switch {
	case escapePressed:
		action = ActionCancel
	case keys&mouseButtons == 0:
		action = ActionCancel
	case keys&KeyLButton == 0:
		action = ActionDrop
	}
	if action != ActionContinue {
		debug.Log(debug.OLE, "QueryContinueDrag escape=%v keys=%#x -> %s", escapePressed, uint32(keys), action)
	}
	return action
}

// ProvideFeedback always lets the shell draw its default cursors.
func (s *FeedbackSource) ProvideFeedback(effect Effect) HResult {
	return DRAGDROP_S_USEDEFAULTCURSORS
}
