//go:build linux

package nexusalloc

import (
	"log/slog"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// unixPageProvider backs chunks with anonymous mmap regions. It attempts a
// huge-page mapping first when configured and falls back to a regular
// mapping on failure, matching the sequencing of a HugepageProvider that
// prefers MAP_HUGETLB but tolerates a kernel that refuses it. Grounded on
// the pack's momentics-hioload-ws Linux buffer pool (mmap with
// MAP_HUGETLB, fallback to a non-huge mapping) and funny-falcon's chunk
// generator, which over-maps and trims the unaligned head/tail with
// munmap rather than requesting posix_memalign-style aligned memory
// directly — mmap gives no alignment guarantee beyond the page size.
type unixPageProvider struct {
	hugePages bool
	logger    *slog.Logger
	locked    atomic.Bool
}

func newPageProvider(hugePages bool, logger *slog.Logger) pageProvider {
	return &unixPageProvider{hugePages: hugePages, logger: logger}
}

func (p *unixPageProvider) allocateChunk() unsafe.Pointer {
	if p.hugePages {
		if ptr := p.mmapAligned(unix.MAP_HUGETLB); ptr != nil {
			return ptr
		}
		if p.logger != nil {
			p.logger.Debug("huge page mapping failed, falling back to regular pages")
		}
	}
	return p.mmapAligned(0)
}

// mmapAligned over-maps two chunks' worth of address space and trims the
// unaligned head and tail back to the OS, leaving exactly one chunkSize
// window at a chunkSize-aligned base.
func (p *unixPageProvider) mmapAligned(extraFlags int) unsafe.Pointer {
	total := chunkSize * 2
	data, err := unix.Mmap(-1, 0, total, unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS|unix.MAP_POPULATE|extraFlags)
	if err != nil {
		return nil
	}

	base := uintptr(unsafe.Pointer(&data[0]))
	aligned := alignUp(base, chunkSize)
	headTrim := aligned - base
	if headTrim > 0 {
		_ = unix.Munmap(data[:headTrim])
	}
	tailTrim := uintptr(total) - headTrim - chunkSize
	if tailTrim > 0 {
		_ = unix.Munmap(data[headTrim+chunkSize : headTrim+chunkSize+tailTrim])
	}
	return unsafe.Pointer(aligned)
}

func (p *unixPageProvider) deallocateChunk(base unsafe.Pointer) {
	if base == nil {
		return
	}
	region := unsafe.Slice((*byte)(base), chunkSize)
	_ = unix.Munmap(region)
}

func (p *unixPageProvider) lockMemory() bool {
	if p.locked.Load() {
		return true
	}
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return false
	}
	p.locked.Store(true)
	return true
}
