package nexusalloc

import "sync/atomic"

// Stats reports allocator-wide counters: ambient observability any
// production allocator carries regardless of whether callers ever read it.
// FragmentationRatio is derived from the counters alone, as total
// deallocations divided by total allocations; it does not inspect slab
// occupancy.
type Stats struct {
	TotalAllocations   uint64  `json:"total_allocations"`
	TotalDeallocations uint64  `json:"total_deallocations"`
	CurrentAllocations uint64  `json:"current_allocations"`
	LargeAllocations   uint64  `json:"large_allocations"`
	HighWaterMark      uint64  `json:"high_water_mark"`
	RecycledChunks     int     `json:"recycled_chunks"`
	FragmentationRatio float64 `json:"fragmentation_ratio"`
	HeapFallbacks      uint64  `json:"heap_fallbacks"`
}

// statsTracker is the live, atomic-counter-backed state Stats snapshots.
// Its counters are updated on every Allocate and Deallocate call, without
// sampling, since an atomic.Uint64 add is cheap.
type statsTracker struct {
	totalAllocations   atomic.Uint64
	totalDeallocations atomic.Uint64
	currentAllocations atomic.Uint64
	largeAllocations   atomic.Uint64
	highWaterMark      atomic.Uint64
	heapFallbacks      atomic.Uint64
}

func (s *statsTracker) recordAlloc(large bool) {
	s.totalAllocations.Add(1)
	if large {
		s.largeAllocations.Add(1)
	}
	cur := s.currentAllocations.Add(1)
	s.raiseHighWaterMark(cur)
}

func (s *statsTracker) recordDealloc() {
	s.totalDeallocations.Add(1)
	for {
		cur := s.currentAllocations.Load()
		if cur == 0 {
			return
		}
		if s.currentAllocations.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

func (s *statsTracker) recordHeapFallback() {
	s.heapFallbacks.Add(1)
}

func (s *statsTracker) raiseHighWaterMark(candidate uint64) {
	for {
		hwm := s.highWaterMark.Load()
		if candidate <= hwm {
			return
		}
		if s.highWaterMark.CompareAndSwap(hwm, candidate) {
			return
		}
	}
}

func (s *statsTracker) snapshot() Stats {
	recycled := globalChunkStack.approximateSize()
	total := s.totalAllocations.Load()
	var frag float64
	if total > 0 {
		frag = float64(s.totalDeallocations.Load()) / float64(total)
	}
	return Stats{
		TotalAllocations:   total,
		TotalDeallocations: s.totalDeallocations.Load(),
		CurrentAllocations: s.currentAllocations.Load(),
		LargeAllocations:   s.largeAllocations.Load(),
		HighWaterMark:      s.highWaterMark.Load(),
		RecycledChunks:     recycled,
		FragmentationRatio: frag,
		HeapFallbacks:      s.heapFallbacks.Load(),
	}
}
