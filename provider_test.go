package nexusalloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestPageProviderAllocateIsChunkAligned(t *testing.T) {
	p := newPageProvider(false, nil)
	base := p.allocateChunk()
	require.NotNil(t, base)
	require.True(t, isAligned(uintptr(base), chunkSize))
	p.deallocateChunk(base)
}

func TestPageProviderRoundTripWritable(t *testing.T) {
	p := newPageProvider(false, nil)
	base := p.allocateChunk()
	require.NotNil(t, base)

	region := unsafe.Slice((*byte)(base), chunkSize)
	region[0] = 0xAB
	region[chunkSize-1] = 0xCD
	require.Equal(t, byte(0xAB), region[0])
	require.Equal(t, byte(0xCD), region[chunkSize-1])

	p.deallocateChunk(base)
}

func TestPageProviderLockMemoryIdempotent(t *testing.T) {
	p := newPageProvider(false, nil)
	first := p.lockMemory()
	second := p.lockMemory()
	require.Equal(t, first, second)
}
