package nexusalloc

// Page and chunk size constants shared by the page provider, the chunk
// recycler, slabs and the large-allocation path.
const (
	hugePageSize    = 2 * 1024 * 1024 // 2MiB
	regularPageSize = 4096            // 4KiB, used for large-alloc rounding
	chunkSize       = hugePageSize    // every slab is backed by exactly one chunk
	chunkSizeBits   = 21              // log2(chunkSize); low bits always zero on an aligned base
)
