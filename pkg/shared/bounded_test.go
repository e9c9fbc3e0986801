package shared

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestForEachBoundedVisitsEveryValue(t *testing.T) {
	values := []string{"a", "b", "c", "d", "e"}
	got := make([]string, len(values))

	ForEachBounded(2, values, func(i int, value string) {
		got[i] = value
	})

	assert.Equal(t, values, got)
}

func TestForEachBoundedRespectsLimit(t *testing.T) {
	var (
		running int32
		peak    int32
		mu      sync.Mutex
	)
	values := make([]int, 20)

	ForEachBounded(3, values, func(int, int) {
		n := atomic.AddInt32(&running, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&running, -1)
	})

	assert.LessOrEqual(t, peak, int32(3))
}

func TestForEachBoundedZeroLimit(t *testing.T) {
	count := 0
	ForEachBounded(0, []int{1, 2, 3}, func(_ int, v int) {
		count += v
	})
	assert.Equal(t, 6, count)
}
