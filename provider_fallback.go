//go:build !unix

package nexusalloc

import (
	"log/slog"
	"sync"
	"unsafe"
)

// heapPageProvider backs chunks with heap-allocated, manually-aligned
// byte slices on platforms with no unix-style mmap. Pages are "released"
// by dropping the reference for the garbage collector to reclaim; there
// is no huge-page support here, and lockMemory is treated as a
// best-effort hint whose failure is never fatal.
type heapPageProvider struct {
	logger *slog.Logger
	mu     sync.Mutex
	// live keeps every outstanding chunk's backing slice reachable so the
	// GC never collects memory the caller still thinks is allocated; the
	// key is the aligned base address handed out by allocateChunk.
	live map[uintptr][]byte
}

func newPageProvider(hugePages bool, logger *slog.Logger) pageProvider {
	if hugePages && logger != nil {
		logger.Debug("huge page hint ignored: no mmap support on this platform")
	}
	return &heapPageProvider{logger: logger, live: make(map[uintptr][]byte)}
}

func (p *heapPageProvider) allocateChunk() unsafe.Pointer {
	buf := make([]byte, chunkSize*2)
	base := uintptr(unsafe.Pointer(&buf[0]))
	aligned := alignUp(base, chunkSize)
	p.mu.Lock()
	p.live[aligned] = buf
	p.mu.Unlock()
	return unsafe.Pointer(aligned)
}

func (p *heapPageProvider) deallocateChunk(base unsafe.Pointer) {
	if base == nil {
		return
	}
	p.mu.Lock()
	delete(p.live, uintptr(base))
	p.mu.Unlock()
}

func (p *heapPageProvider) lockMemory() bool { return false }
