package dragdrop

import (
	"sync"
	"sync/atomic"
)

// refCount is an atomic COM-style reference count. When the count drops to
// zero the destroy hooks run exactly once and the count can no longer be revived.
type refCount struct {
	n atomic.Int32

	mu        sync.Mutex
	destroyed bool
	onDestroy []func()
}

func (r *refCount) init() {
	r.n.Store(1)
}

func (r *refCount) acquire() uint32 {
	for {
		cur := r.n.Load()
		if cur <= 0 {
			return 0
		}
		if r.n.CompareAndSwap(cur, cur+1) {
			return uint32(cur + 1)
		}
	}
}

func (r *refCount) release() uint32 {
	for {
		cur := r.n.Load()
		if cur <= 0 {
			return 0
		}
		if r.n.CompareAndSwap(cur, cur-1) {
			if cur == 1 {
				r.destroy()
			}
			return uint32(cur - 1)
		}
	}
}

func (r *refCount) count() uint32 {
	n := r.n.Load()
	if n < 0 {
		return 0
	}
	return uint32(n)
}

func (r *refCount) addDestroyHook(fn func()) {
	r.mu.Lock()
	if !r.destroyed {
		r.onDestroy = append(r.onDestroy, fn)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	fn()
}

func (r *refCount) isDestroyed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}

func (r *refCount) destroy() {
	r.mu.Lock()
	r.destroyed = true
	hooks := r.onDestroy
	r.onDestroy = nil
	r.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}
