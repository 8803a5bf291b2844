package nexusalloc

import "unsafe"

// slab is a single chunk reinterpreted as a homogeneous array of
// blockSize blocks for one bin. It embeds its free list in the first
// pointer-width bytes of every free block, keeps an occupancy bitmap for
// diagnostics, and recovers in O(1) which blocks it has handed out.
//
// A slab is neither copyable nor safe to share across shards: its
// pointers are interior to a single chunk a single shard owns.
type slab struct {
	base          unsafe.Pointer
	blockSize     uintptr
	blocksPerSlab int
	freeHead      unsafe.Pointer
	allocated     int
	occupancy     bitmap
}

// newSlab formats chunk — a freshly obtained, chunkSize-aligned region —
// into a slab serving blockSize blocks, chaining each block's first
// pointer-width bytes to the next and terminating the list at nil.
func newSlab(chunk unsafe.Pointer, blockSize uintptr) *slab {
	blocksPerSlab := int(chunkSize / blockSize)
	s := &slab{
		base:          chunk,
		blockSize:     blockSize,
		blocksPerSlab: blocksPerSlab,
		freeHead:      chunk,
		occupancy:     newBitmap(blocksPerSlab),
	}

	for i := 0; i < blocksPerSlab-1; i++ {
		block := unsafe.Add(chunk, uintptr(i)*blockSize)
		next := unsafe.Add(chunk, uintptr(i+1)*blockSize)
		*(*unsafe.Pointer)(block) = next
	}
	last := unsafe.Add(chunk, uintptr(blocksPerSlab-1)*blockSize)
	*(*unsafe.Pointer)(last) = nil

	return s
}

// allocate pops the free-list head, marking the corresponding occupancy
// bit, or returns nil if the slab is full.
func (s *slab) allocate() unsafe.Pointer {
	if s.freeHead == nil {
		return nil
	}
	block := s.freeHead
	next := *(*unsafe.Pointer)(block)
	s.freeHead = next
	s.allocated++
	s.occupancy.set(s.blockIndex(block))
	return block
}

// deallocate rejects nil and any pointer outside this slab's chunk,
// clears the occupancy bit and pushes the block back onto the free list.
func (s *slab) deallocate(ptr unsafe.Pointer) {
	if ptr == nil || !s.contains(ptr) {
		return
	}
	s.occupancy.clear(s.blockIndex(ptr))
	*(*unsafe.Pointer)(ptr) = s.freeHead
	s.freeHead = ptr
	s.allocated--
}

func (s *slab) empty() bool { return s.allocated == 0 }
func (s *slab) full() bool  { return s.freeHead == nil }

func (s *slab) usedBlocks() int { return s.allocated }
func (s *slab) freeBlocks() int { return s.blocksPerSlab - s.allocated }

// contains reports whether ptr falls within this slab's chunk. The hot
// path never calls this: it recovers the owning chunk by masking the
// pointer directly, which is cheaper than a range check.
func (s *slab) contains(ptr unsafe.Pointer) bool {
	p := uintptr(ptr)
	b := uintptr(s.base)
	return p >= b && p < b+chunkSize
}

func (s *slab) blockIndex(ptr unsafe.Pointer) int {
	return int((uintptr(ptr) - uintptr(s.base)) / s.blockSize)
}

// slabBaseFromPtr recovers a block's owning chunk base by masking off the
// low chunkSizeBits bits, sound because the page provider guarantees
// every chunk is chunkSize-aligned.
func slabBaseFromPtr(ptr unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(uintptr(ptr) &^ (chunkSize - 1))
}
