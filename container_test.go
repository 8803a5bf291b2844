package nexusalloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestContainerAdapterAllocFree(t *testing.T) {
	var c ContainerAdapter
	p := c.Alloc(128)
	require.NotNil(t, p)
	c.Free(p, 128)
}

func TestContainerAdapterInstancesCompareEqual(t *testing.T) {
	a := ContainerAdapter{}
	b := ContainerAdapter{}
	require.Equal(t, a, b)
}

func TestAllocSliceRoundTrip(t *testing.T) {
	type point struct{ X, Y int64 }
	s, release := AllocSlice[point](10)
	require.Len(t, s, 10)
	s[0] = point{X: 1, Y: 2}
	s[9] = point{X: 3, Y: 4}
	require.Equal(t, point{X: 1, Y: 2}, s[0])
	release()
}

func TestAllocSliceZeroIsNoop(t *testing.T) {
	s, release := AllocSlice[byte](0)
	require.Nil(t, s)
	release()
}

func TestPackageLevelAllocateDeallocate(t *testing.T) {
	p := Allocate(64)
	require.NotNil(t, p)
	region := unsafe.Slice((*byte)(p), 64)
	region[0] = 7
	Deallocate(p, 64)
}
