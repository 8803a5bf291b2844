package nexusalloc

// Alignment helpers shared by the chunk recycler, the size-class table and
// the large-allocation path.

const (
	// kMinAlignment is the natural alignment of every block: SIMD-friendly
	// and wide enough to hold the free-list pointer.
	kMinAlignment = 16

	// kPointerSize is the width of the intrusive free-list pointer stored
	// in the first bytes of every free block.
	kPointerSize = 8
)

// alignUp rounds value up to the next multiple of alignment, which must be
// a power of two.
func alignUp(value, alignment uintptr) uintptr {
	return (value + alignment - 1) &^ (alignment - 1)
}

// isAligned reports whether value is already a multiple of alignment, which
// must be a power of two.
func isAligned(value, alignment uintptr) bool {
	return value&(alignment-1) == 0
}
