//go:build unix && !linux

package nexusalloc

import (
	"log/slog"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// unixPageProvider on non-Linux unixes maps chunks without a huge-page
// hint — MAP_HUGETLB is a Linux-only flag — and treats memory locking as
// unsupported, since Mlockall isn't available for every BSD-family
// kernel in golang.org/x/sys/unix.
type unixPageProvider struct {
	hugePages bool
	logger    *slog.Logger
	locked    atomic.Bool
}

func newPageProvider(hugePages bool, logger *slog.Logger) pageProvider {
	if hugePages && logger != nil {
		logger.Debug("huge page hint ignored: not supported on this platform")
	}
	return &unixPageProvider{hugePages: hugePages, logger: logger}
}

func (p *unixPageProvider) allocateChunk() unsafe.Pointer {
	total := chunkSize * 2
	data, err := unix.Mmap(-1, 0, total, unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
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
	// Mlockall is unavailable for several non-Linux unixes in
	// golang.org/x/sys/unix; treat the hint as best-effort-unsupported
	// rather than attempting a partial per-mapping lock that would not
	// match lockMemory's documented "current and future pages" contract.
	return false
}
