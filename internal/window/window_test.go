package window

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppend_BelowCapacity(t *testing.T) {
	w := New(30)
	for i := 1; i <= 30; i++ {
		w.Append("social", float64(i))
		require.Equal(t, i, w.Len("social"))
	}
}

func TestAppend_EvictsOldest(t *testing.T) {
	const n, k = 30, 5
	w := New(n)
	for i := 0; i < n+k; i++ {
		w.Append("ball", float64(i))
	}
	got := w.Read("ball")
	require.Len(t, got, n)
	for i, v := range got {
		require.Equal(t, float64(i+k), v)
	}
}

func TestChannelsIndependent(t *testing.T) {
	w := New(3)
	w.Append("social", 0.4)
	w.Append("ball", 0.9)
	w.Append("ball", 0.8)
	require.Equal(t, []float64{0.4}, w.Read("social"))
	require.Equal(t, []float64{0.9, 0.8}, w.Read("ball"))
	require.Empty(t, w.Read("unknown"))
}

func TestRead_ReturnsCopy(t *testing.T) {
	w := New(3)
	w.Append("x", 1)
	got := w.Read("x")
	got[0] = 42
	require.Equal(t, []float64{1}, w.Read("x"))
}

func TestNew_DefaultsCapacity(t *testing.T) {
	require.Equal(t, DefaultCapacity, New(0).Cap())
}

func TestAppend_Concurrent(t *testing.T) {
	w := New(10)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ch := "c" + strconv.Itoa(g)
			for i := 0; i < 100; i++ {
				w.Append(ch, float64(i))
			}
		}(g)
	}
	wg.Wait()
	for g := 0; g < 4; g++ {
		require.Equal(t, 10, w.Len("c"+strconv.Itoa(g)))
	}
}
