//go:build !windows

package dragdrop

import "github.com/justyntemme/dragexport/internal/debug"

type unsupportedLoop struct{}

// NewNativeLoop returns the platform drag loop. Only Windows has one; elsewhere
// every drag fails with ErrUnsupportedPlatform.
func NewNativeLoop() DragLoop { return unsupportedLoop{} }

// NewNativeAllocator returns the allocator matching NewNativeLoop.
func NewNativeAllocator() GlobalAllocator { return NewHeapAllocator() }

func (unsupportedLoop) Run(data *DataProvider, source *FeedbackSource, allowed Effect) LoopResult {
	debug.Log(debug.DRAG, "no native drag loop on this platform")
	return LoopResult{Code: E_NOTIMPL, Err: ErrUnsupportedPlatform}
}
