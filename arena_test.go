package nexusalloc

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func newTestArena(t *testing.T) *shardArena {
	t.Helper()
	provider := newPageProvider(false, nil)
	a := newShardArena(4, provider, nil)
	t.Cleanup(a.reclaim)
	return a
}

func TestArenaBasicAllocFreeReuse(t *testing.T) {
	a := newTestArena(t)

	p16 := a.allocate(16)
	p32 := a.allocate(32)
	p64 := a.allocate(64)
	require.NotNil(t, p16)
	require.NotNil(t, p32)
	require.NotNil(t, p64)
	require.True(t, isAligned(uintptr(p16), kMinAlignment))
	require.NotEqual(t, p16, p32)
	require.NotEqual(t, p32, p64)

	a.deallocate(p16, 16)
	a.deallocate(p32, 32)
	a.deallocate(p64, 64)

	again := a.allocate(16)
	require.Equal(t, p16, again)
}

func TestArenaLargeAllocationRoundTrip(t *testing.T) {
	a := newTestArena(t)
	const size = 1 << 20 // 1 MiB
	p := a.allocate(size)
	require.NotNil(t, p)

	region := unsafe.Slice((*byte)(p), size)
	for i := 0; i < len(region); i += regularPageSize {
		region[i] = 1
	}
	a.deallocate(p, size)
}

func TestArenaSweepEverySizeClass(t *testing.T) {
	a := newTestArena(t)
	for idx := 0; idx < numClasses; idx++ {
		size := classBlockSize(idx)
		var ptrs []unsafe.Pointer
		for i := 0; i < 10; i++ {
			p := a.allocate(size)
			require.NotNil(t, p)
			region := unsafe.Slice((*byte)(p), size)
			for j := range region {
				region[j] = byte(idx)
			}
			ptrs = append(ptrs, p)
		}
		for k, p := range ptrs {
			region := unsafe.Slice((*byte)(p), size)
			for j := range region {
				require.Equal(t, byte(idx), region[j], "class %d obj %d", idx, k)
			}
		}
		for _, p := range ptrs {
			a.deallocate(p, size)
		}
	}
}

func TestArenaConcurrentAllocDealloc(t *testing.T) {
	a := newTestArena(t)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen := map[unsafe.Pointer]bool{}
			for i := 0; i < 2000; i++ {
				p := a.allocate(64)
				require.NotNil(t, p)
				require.False(t, seen[p])
				seen[p] = true
				a.deallocate(p, 64)
				delete(seen, p)
			}
		}()
	}
	wg.Wait()
}

func TestArenaFragmentationSettlesToZero(t *testing.T) {
	a := newTestArena(t)
	sizes := []uintptr{16, 64, 128, 512, 1024}
	var live []struct {
		ptr  unsafe.Pointer
		size uintptr
	}
	for i := 0; i < 1000; i++ {
		size := sizes[i%len(sizes)]
		p := a.allocate(size)
		require.NotNil(t, p)
		live = append(live, struct {
			ptr  unsafe.Pointer
			size uintptr
		}{p, size})
	}
	for i := 0; i < len(live); i += 2 {
		a.deallocate(live[i].ptr, live[i].size)
	}
	var remaining []struct {
		ptr  unsafe.Pointer
		size uintptr
	}
	for i, l := range live {
		if i%2 == 0 {
			continue
		}
		remaining = append(remaining, l)
	}
	for _, l := range remaining {
		a.deallocate(l.ptr, l.size)
	}

	for i := range a.shards {
		s := &a.shards[i]
		for c := range s.bins {
			b := &s.bins[c]
			if b.current != nil {
				require.Equal(t, 0, b.current.usedBlocks(), "class %d current", c)
			}
			for _, sl := range b.partialSlabs {
				require.Equal(t, 0, sl.usedBlocks(), "class %d partial", c)
			}
			require.Empty(t, b.fullSlabs, "class %d full", c)
		}
	}
}
