package nexusalloc

import (
	"sync/atomic"
	"unsafe"
)

// chunkStack is a lock-free LIFO of chunk base pointers shared by every
// shard arena. A 128-bit aligned (pointer, tag) CAS would give process-wide
// ABA resistance, but portable Go cannot perform one without platform
// assembly. This stack exploits the alignment guarantee chunk bases already
// carry instead: a chunk-aligned base has its low chunkSizeBits bits always
// zero, so the generation tag is packed into exactly those bits and the
// whole head fits in one atomic.Uint64, giving a single-word CAS the same
// ABA resistance a 128-bit CAS would.
//
// The tag is incremented by every successful push and pop and wraps every
// 1<<chunkSizeBits (2,097,152) such operations; wrapping into a stale value
// collides the head with a previous generation only if a stalled goroutine
// sees the exact same pointer again after exactly that many intervening
// pushes and pops, which is not a concern at any
// realistic contention level.
type chunkStack struct {
	head atomic.Uint64
}

const tagMask = uint64(chunkSize - 1)

func packHead(ptr unsafe.Pointer, tag uint64) uint64 {
	return uint64(uintptr(ptr))&^tagMask | (tag & tagMask)
}

func unpackHead(v uint64) (ptr unsafe.Pointer, tag uint64) {
	tag = v & tagMask
	ptr = unsafe.Pointer(uintptr(v &^ tagMask))
	return
}

// push places chunk back on the stack. chunk must be a non-nil, chunk-size-
// aligned base previously obtained from the page provider; its first
// pointer-width bytes are overwritten with the current head.
func (s *chunkStack) push(chunk unsafe.Pointer) {
	if chunk == nil {
		return
	}
	for {
		old := s.head.Load()
		oldPtr, oldTag := unpackHead(old)
		*(*unsafe.Pointer)(chunk) = oldPtr
		newVal := packHead(chunk, oldTag+1)
		if s.head.CompareAndSwap(old, newVal) {
			return
		}
	}
}

// pop detaches and returns the top chunk, or nil if the stack is empty.
func (s *chunkStack) pop() unsafe.Pointer {
	for {
		old := s.head.Load()
		oldPtr, oldTag := unpackHead(old)
		if oldPtr == nil {
			return nil
		}
		next := *(*unsafe.Pointer)(oldPtr)
		newVal := packHead(next, oldTag+1)
		if s.head.CompareAndSwap(old, newVal) {
			return oldPtr
		}
	}
}

// approximateSize walks the stack for diagnostics. It is permitted to race
// with concurrent push/pop and is capped at a safety bound.
func (s *chunkStack) approximateSize() int {
	const safetyLimit = 1_000_000
	ptr, _ := unpackHead(s.head.Load())
	count := 0
	for ptr != nil && count < safetyLimit {
		count++
		ptr = *(*unsafe.Pointer)(ptr)
	}
	return count
}

// globalChunkStack is the process-lifetime recycler shared by every shard.
var globalChunkStack chunkStack
