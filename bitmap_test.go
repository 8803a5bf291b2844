package nexusalloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitmapSetClearTest(t *testing.T) {
	b := newBitmap(130)
	require.True(t, b.none())
	b.set(0)
	b.set(64)
	b.set(129)
	require.True(t, b.test(0))
	require.True(t, b.test(64))
	require.True(t, b.test(129))
	require.False(t, b.test(1))
	require.Equal(t, 3, b.count())

	b.clear(64)
	require.False(t, b.test(64))
	require.Equal(t, 2, b.count())
}

func TestBitmapAllHonorsTailMask(t *testing.T) {
	b := newBitmap(70)
	for i := 0; i < 70; i++ {
		b.set(i)
	}
	require.True(t, b.all())
	require.Equal(t, 70, b.count())
}

func TestBitmapFindFirstClear(t *testing.T) {
	b := newBitmap(128)
	for i := 0; i < 64; i++ {
		b.set(i)
	}
	require.Equal(t, 64, b.findFirstClear())

	for i := 64; i < 128; i++ {
		b.set(i)
	}
	require.Equal(t, 128, b.findFirstClear())
}

func TestBitmapReset(t *testing.T) {
	b := newBitmap(64)
	b.set(10)
	b.reset()
	require.True(t, b.none())
	require.Equal(t, 0, b.findFirstClear())
}
