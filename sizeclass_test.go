package nexusalloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizeClassIndexSmall(t *testing.T) {
	cases := []struct {
		size     uintptr
		wantIdx  int
		wantSize uintptr
	}{
		{0, 0, 16},
		{1, 0, 16},
		{16, 0, 16},
		{17, 1, 32},
		{32, 1, 32},
		{256, 15, 256},
	}
	for _, c := range cases {
		idx := sizeClassIndex(c.size)
		require.Equal(t, c.wantIdx, idx, "size %d", c.size)
		require.Equal(t, c.wantSize, classBlockSize(idx), "size %d", c.size)
	}
}

func TestSizeClassIndexLarge(t *testing.T) {
	cases := []struct {
		size     uintptr
		wantIdx  int
		wantSize uintptr
	}{
		{257, 16, 512},
		{512, 16, 512},
		{513, 17, 1024},
		{65536, 23, 65536},
	}
	for _, c := range cases {
		idx := sizeClassIndex(c.size)
		require.Equal(t, c.wantIdx, idx, "size %d", c.size)
		require.Equal(t, c.wantSize, classBlockSize(idx), "size %d", c.size)
	}
}

func TestSizeClassIndexOutOfRange(t *testing.T) {
	require.Equal(t, numClasses, sizeClassIndex(65537))
	require.False(t, isLargeSize(65536))
	require.True(t, isLargeSize(65537))
}

func TestSizeClassMonotonic(t *testing.T) {
	for size := uintptr(1); size <= maxSlabSize; size++ {
		idx := sizeClassIndex(size)
		require.Less(t, idx, numClasses)
		require.GreaterOrEqual(t, classBlockSize(idx), size)
	}
}
