package dragdrop

import (
	"fmt"
	"sync"
)

// GlobalAllocator hands out the memory blocks returned through a Medium.
type GlobalAllocator interface {
	Alloc(data []byte) (uintptr, error)
	Free(handle uintptr) error
}

// HeapAllocator keeps blocks in Go memory. It backs platforms without a
// native drag loop and lets tests inspect what a provider handed out.
type HeapAllocator struct {
	mu     sync.Mutex
	next   uintptr
	blocks map[uintptr][]byte
}

func NewHeapAllocator() *HeapAllocator {
	return &HeapAllocator{blocks: make(map[uintptr][]byte)}
}

func (a *HeapAllocator) Alloc(data []byte) (uintptr, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next++
	a.blocks[a.next] = append([]byte(nil), data...)
	return a.next, nil
}

func (a *HeapAllocator) Free(handle uintptr) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.blocks[handle]; !ok {
		return fmt.Errorf("free unknown handle %#x: %w", handle, ErrInvalidArgument)
	}
	delete(a.blocks, handle)
	return nil
}

// Bytes returns the contents of a live block.
func (a *HeapAllocator) Bytes(handle uintptr) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.blocks[handle]
	return b, ok
}

// Live reports how many blocks have not been freed.
func (a *HeapAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.blocks)
}
