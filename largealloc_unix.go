//go:build unix

package nexusalloc

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmapLarge and munmapLarge back the arena's large-allocation path
// directly, independent of the chunk recycler, matching the original
// allocate_large/deallocate_large: a page-aligned mmap/munmap bypassing
// slabs entirely for sizes above the largest slab-served bin.
func mmapLarge(size uintptr) unsafe.Pointer {
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil
	}
	return unsafe.Pointer(&data[0])
}

func munmapLarge(ptr unsafe.Pointer, size uintptr) {
	if ptr == nil {
		return
	}
	region := unsafe.Slice((*byte)(ptr), size)
	_ = unix.Munmap(region)
}
