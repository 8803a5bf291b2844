package nexusalloc

import (
	"sync"
	"unsafe"
)

// NexusAllocator is the public allocator. Construct one with New; the
// zero value is not usable. All instances are safe for concurrent use
// by any number of goroutines.
type NexusAllocator struct {
	arena        *shardArena
	stats        statsTracker
	heapFallback bool

	// fallbackMu/fallbackLive track pointers Allocate satisfied from the
	// plain Go heap instead of the arena, so Deallocate can recognize and
	// release them without routing them back through a shard's bins.
	fallbackMu   sync.Mutex
	fallbackLive map[unsafe.Pointer][]byte
}

// New builds a NexusAllocator. With no options it uses GOMAXPROCS shards
// (rounded up to a power of two), regular (non-huge) pages and no memory
// locking.
func New(opts ...Option) *NexusAllocator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	provider := newPageProvider(cfg.hugePages, cfg.logger)
	if cfg.memoryLock {
		if ok := provider.lockMemory(); !ok && cfg.logger != nil {
			cfg.logger.Warn("memory locking failed, continuing without it")
		}
	}

	a := &NexusAllocator{
		arena:        newShardArena(cfg.shardCount, provider, cfg.logger),
		heapFallback: cfg.heapFallback,
	}
	if cfg.heapFallback {
		a.fallbackLive = make(map[unsafe.Pointer][]byte)
	}
	return a
}

// Allocate returns size bytes, or nil on out-of-memory. The returned
// pointer is 16-byte aligned. size 0 is treated as the minimum block
// size, matching jemalloc's convention.
func (a *NexusAllocator) Allocate(size int) unsafe.Pointer {
	if size < 0 {
		panicInvalidArgument(ErrInvalidSize)
	}
	p := a.arena.allocate(uintptr(size))
	if p == nil && a.heapFallback {
		p = a.allocateHeapFallback(size)
	}
	a.stats.recordAlloc(isLargeSize(uintptr(size)))
	return p
}

// allocateHeapFallback satisfies size bytes from the plain Go heap when
// the arena's page provider is exhausted. The backing slice is kept
// reachable in fallbackLive so the garbage collector never reclaims it
// out from under a caller that still holds the returned pointer.
func (a *NexusAllocator) allocateHeapFallback(size int) unsafe.Pointer {
	// over-allocate so the returned pointer can honor kMinAlignment
	buf := make([]byte, size+kMinAlignment)
	base := uintptr(unsafe.Pointer(&buf[0]))
	p := unsafe.Pointer(&buf[alignUp(base, kMinAlignment)-base])

	a.fallbackMu.Lock()
	a.fallbackLive[p] = buf
	a.fallbackMu.Unlock()

	a.stats.recordHeapFallback()
	return p
}

// Deallocate returns ptr, previously obtained from Allocate with the
// given size (or any size classifying to the same bin), to the
// allocator. ptr may be nil, in which case this is a no-op. size must
// match the corresponding Allocate call's contract; violating it is
// undefined behavior that the allocator tolerates silently, never a
// panic, per its documented error-handling contract. A negative size is
// the one exception: it panics with ErrInvalidSize.
func (a *NexusAllocator) Deallocate(ptr unsafe.Pointer, size int) {
	if ptr == nil {
		return
	}
	if size < 0 {
		panicInvalidArgument(ErrInvalidSize)
	}
	if a.heapFallback && a.releaseHeapFallback(ptr) {
		a.stats.recordDealloc()
		return
	}
	a.arena.deallocate(ptr, uintptr(size))
	a.stats.recordDealloc()
}

// releaseHeapFallback drops ptr from fallbackLive if it was satisfied by
// allocateHeapFallback, reporting whether it was. A false result means
// ptr is arena-backed and must still go through the arena's deallocate.
func (a *NexusAllocator) releaseHeapFallback(ptr unsafe.Pointer) bool {
	a.fallbackMu.Lock()
	defer a.fallbackMu.Unlock()
	if _, ok := a.fallbackLive[ptr]; !ok {
		return false
	}
	delete(a.fallbackLive, ptr)
	return true
}

// Stats returns a point-in-time snapshot of allocation counters.
func (a *NexusAllocator) Stats() Stats {
	return a.stats.snapshot()
}

// Reclaim surrenders every shard's slab chunks back to the process-wide
// recycler. P-shards are never torn down mid-process, so this is the
// explicit release point callers use in place of a destructor, typically
// at a natural quiescent point such as between request-processing phases.
func (a *NexusAllocator) Reclaim() {
	a.arena.reclaim()
}

// defaultAllocatorOnce/defaultAllocatorPtr back the package-level
// Allocate/Deallocate/Initialize convenience functions, mirroring the
// original implementation's free-function wrappers over a lazily
// constructed global arena (there, a thread_local singleton; here, a
// single lazily built instance shared across every shard).
var (
	defaultAllocatorOnce sync.Once
	defaultAllocatorPtr  *NexusAllocator
)

func defaultNexusAllocator() *NexusAllocator {
	defaultAllocatorOnce.Do(func() {
		defaultAllocatorPtr = New()
	})
	return defaultAllocatorPtr
}

// Allocate is the package-level convenience entry point over a shared
// default allocator.
func Allocate(size int) unsafe.Pointer {
	return defaultNexusAllocator().Allocate(size)
}

// Deallocate is the package-level convenience entry point over a shared
// default allocator.
func Deallocate(ptr unsafe.Pointer, size int) {
	defaultNexusAllocator().Deallocate(ptr, size)
}

// Initialize enables best-effort memory locking on the default allocator.
// It is optional and idempotent.
func Initialize() bool {
	return defaultNexusAllocator().arena.provider.lockMemory()
}
