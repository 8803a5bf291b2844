package nexusalloc

import (
	"bytes"
	"log/slog"
	"math/bits"
	"runtime"
	"strconv"
	"sync"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// shardArena holds one array of bins per logical shard. Go has no portable
// thread-local-storage hook or thread-exit callback — goroutines migrate
// freely between OS threads — so per-thread arenas are not a fit here; this
// generalizes to a per-shard arena instead: shardCount is GOMAXPROCS rounded
// up to a power of two, and a call picks its shard via a fast affinity
// hash rather than true thread affinity. Each shard is protected by its
// own mutex: contention between goroutines that land on the same shard is
// expected to be rare and short, never across the fast path's hot loop of
// a single goroutine's own bursty allocations.
type shardArena struct {
	shards   []arenaShard
	mask     uint64
	provider pageProvider
	logger   *slog.Logger
}

type arenaShard struct {
	mu   sync.Mutex
	bins [numClasses]bin
	_    cpu.CacheLinePad
}

// newShardArena builds an arena with shardCount shards (rounded up to a
// power of two so the affinity hash can mask instead of divide). Per-shard
// state is cache-line padded to keep adjacent shards from false-sharing a
// line under concurrent access, and shards are selected by an affinity
// hash over "current shard" rather than a true per-CPU or per-thread slot.
func newShardArena(shardCount int, provider pageProvider, logger *slog.Logger) *shardArena {
	if shardCount <= 0 {
		shardCount = runtime.GOMAXPROCS(0)
	}
	shardCount = int(nextPowerOfTwo(uint32(shardCount)))

	a := &shardArena{
		shards:   make([]arenaShard, shardCount),
		mask:     uint64(shardCount) - 1,
		provider: provider,
		logger:   logger,
	}
	for i := range a.shards {
		for c := 0; c < numClasses; c++ {
			a.shards[i].bins[c] = newBin(classBlockSize(c))
		}
	}
	return a
}

func nextPowerOfTwo(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	return 1 << bits.Len32(v-1)
}

// shardFor picks the shard a call affines to. Go has no thread-local-storage
// slot to key off, so the next best stable-per-goroutine signal comes from
// runtime.Stack. A first cut hashed the whole current-goroutine stack trace,
// but that varies with call depth — the trace captured inside allocate()
// differs from the one captured inside deallocate(), which would route a
// goroutine's own immediate free to the wrong shard's bin lists and break
// same-goroutine LIFO reuse. Parsing the numeric goroutine ID out of
// runtime.Stack's leading "goroutine N [" line instead gives an identifier
// that is stable for the goroutine's entire lifetime.
func (a *shardArena) shardFor() *arenaShard {
	return &a.shards[currentGoroutineID()&a.mask]
}

func currentGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	const prefix = "goroutine "
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return 0
	}
	b = b[len(prefix):]
	end := bytes.IndexByte(b, ' ')
	if end < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(b[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func (a *shardArena) requestChunk() unsafe.Pointer {
	if chunk := globalChunkStack.pop(); chunk != nil {
		return chunk
	}
	return a.provider.allocateChunk()
}

func (a *shardArena) returnChunk(chunk unsafe.Pointer) {
	globalChunkStack.push(chunk)
}

// allocate is the public fast path: large requests bypass slabs entirely,
// everything else classifies to a bin and goes through that shard's
// fast/slow path.
func (a *shardArena) allocate(size uintptr) unsafe.Pointer {
	if isLargeSize(size) {
		return a.allocateLarge(size)
	}

	idx := sizeClassIndex(size)
	shard := a.shardFor()
	shard.mu.Lock()
	defer shard.mu.Unlock()
	return shard.bins[idx].allocate(a.requestChunk)
}

// deallocate frees ptr, which must be nil or a value previously returned
// by allocate with a size that classifies to the same bin.
func (a *shardArena) deallocate(ptr unsafe.Pointer, size uintptr) {
	if ptr == nil {
		return
	}
	if isLargeSize(size) {
		a.deallocateLarge(ptr, size)
		return
	}

	idx := sizeClassIndex(size)
	slabBase := slabBaseFromPtr(ptr)
	shard := a.shardFor()
	shard.mu.Lock()
	defer shard.mu.Unlock()
	shard.bins[idx].deallocate(ptr, slabBase)
}

// reclaim surrenders every shard's slab chunks back to the global
// recycler. Shards are never destroyed mid-process (GOMAXPROCS rarely
// shrinks), so this explicit call is the release point callers use in
// place of a destructor, typically at a natural quiescent point.
func (a *shardArena) reclaim() {
	for i := range a.shards {
		s := &a.shards[i]
		s.mu.Lock()
		for c := range s.bins {
			s.bins[c].reclaim(a.returnChunk)
		}
		s.mu.Unlock()
	}
}

func alignedPageSize(size uintptr) uintptr {
	return alignUp(size, regularPageSize)
}

// allocateLarge rounds up to a system-page multiple and requests an
// anonymous mapping directly, bypassing chunks and the shard bins
// entirely. Large allocations are not tracked by the arena.
func (a *shardArena) allocateLarge(size uintptr) unsafe.Pointer {
	return mmapLarge(alignedPageSize(size))
}

// deallocateLarge unmaps a large allocation with the same rounded size
// used at allocation time.
func (a *shardArena) deallocateLarge(ptr unsafe.Pointer, size uintptr) {
	munmapLarge(ptr, alignedPageSize(size))
}
