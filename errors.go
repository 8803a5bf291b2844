package nexusalloc

import "errors"

// Predefined errors for the parts of the API that can fail explicitly.
// The hot allocate/deallocate path never returns an error: out-of-memory is
// signalled by a nil pointer and malformed frees are silently tolerated, per
// the allocator's documented error-handling contract.
var (
	ErrInvalidShardCount = errors.New("nexusalloc: shard count must be positive")
	ErrInvalidSize       = errors.New("nexusalloc: size must not be negative")
	ErrOutOfMemory       = errors.New("nexusalloc: out of memory")
)

// panicInvalidArgument reports a programmer-error contract breach — never a
// runtime allocator condition such as out-of-memory or a mismatched free,
// both of which stay silent per the allocator's contract.
func panicInvalidArgument(err error) {
	panic(err)
}
