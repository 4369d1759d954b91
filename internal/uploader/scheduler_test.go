package uploader

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParallelismBounds(t *testing.T) {
	p := DefaultParallelism()
	assert.GreaterOrEqual(t, p, minParallel)
	assert.LessOrEqual(t, p, maxParallel)
}

func TestRunPoolBoundsConcurrency(t *testing.T) {
	const parallel = 3
	const tasks = 20

	var inFlight, peak int64
	runPool(context.Background(), parallel, tasks, func(_ context.Context, _ int) {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
	})

	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(parallel))
	assert.Greater(t, atomic.LoadInt64(&peak), int64(1), "the pool should actually run tasks concurrently")
}

func TestRunPoolRunsEveryTask(t *testing.T) {
	const tasks = 50
	var mu sync.Mutex
	seen := make(map[int]bool)

	runPool(context.Background(), 4, tasks, func(_ context.Context, i int) {
		mu.Lock()
		seen[i] = true
		mu.Unlock()
	})

	assert.Len(t, seen, tasks)
}

func TestRunPoolAdmitsInOrder(t *testing.T) {
	var mu sync.Mutex
	var admitted []int

	runPool(context.Background(), 1, 5, func(_ context.Context, i int) {
		mu.Lock()
		admitted = append(admitted, i)
		mu.Unlock()
	})

	assert.Equal(t, []int{0, 1, 2, 3, 4}, admitted, "with one worker, admission order is execution order")
}

func TestRunPoolStopsAdmittingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var started int64
	runPool(ctx, 1, 10, func(_ context.Context, i int) {
		atomic.AddInt64(&started, 1)
		if i == 2 {
			cancel()
		}
	})

	assert.LessOrEqual(t, atomic.LoadInt64(&started), int64(4), "cancellation must stop admitting new tasks")
}
