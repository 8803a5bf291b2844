package nexusalloc

import "unsafe"

// Allocator is the container-adapter surface: a thin, rebindable shim
// exposing the core arena to standard-library-style containers. It is
// intentionally tiny, forwarding every call straight to the core arena.
//
// Grounded on apache-arrow's GoAllocator (Allocate/Reallocate/Free) and
// matrixorigin's Allocator interface that ShardedAllocator[T] composes
// over.
type Allocator interface {
	Alloc(n int) unsafe.Pointer
	Free(p unsafe.Pointer, n int)
}

// ContainerAdapter is a stateless adapter over the package-level arena.
// All instances compare equal, since every instance routes through the
// same purely shard-routed arena; zero value is ready to use.
type ContainerAdapter struct{}

var _ Allocator = ContainerAdapter{}

// Alloc forwards n bytes through the arena. It panics with ErrOutOfMemory
// on exhaustion rather than returning nil, matching the raise-on-null
// contract standard-library-style container allocators are expected to
// honor (the same contract the original C++ allocator enforces by
// throwing std::bad_alloc).
func (ContainerAdapter) Alloc(n int) unsafe.Pointer {
	if n <= 0 {
		return nil
	}
	p := defaultNexusAllocator().arena.allocate(uintptr(n))
	if p == nil {
		panic(ErrOutOfMemory)
	}
	return p
}

// Free forwards n bytes through the arena; n must be the same byte count
// passed to the matching Alloc.
func (ContainerAdapter) Free(p unsafe.Pointer, n int) {
	defaultNexusAllocator().arena.deallocate(p, uintptr(n))
}

// AllocSlice allocates room for n values of T and returns a slice over
// that memory together with a release function the caller must invoke
// exactly once. It forwards n * sizeof(T) bytes through the arena and
// returns a nil slice on exhaustion rather than panicking, since callers
// here are expected to check the returned slice themselves.
func AllocSlice[T any](n int) ([]T, func()) {
	if n <= 0 {
		return nil, func() {}
	}
	var zero T
	elemSize := unsafe.Sizeof(zero)
	bytes := uintptr(n) * elemSize

	p := defaultNexusAllocator().arena.allocate(bytes)
	if p == nil {
		return nil, func() {}
	}

	slice := unsafe.Slice((*T)(p), n)
	release := func() { defaultNexusAllocator().arena.deallocate(p, bytes) }
	return slice, release
}
