package uploader

import (
	"context"
	"runtime"
	"sync"
)

const (
	minParallel     = 3
	maxParallel     = 8
	defaultParallel = 4
)

// DefaultParallelism picks the worker-pool size from the machine's CPU
// count: NumCPU-2 clamped to [3, 8], with a conservative 4 when the count is
// unavailable. Callers on constrained links should pass an explicit value
// instead.
func DefaultParallelism() int {
	n := runtime.NumCPU()
	if n <= 0 {
		return defaultParallel
	}
	p := n - 2
	if p < minParallel {
		p = minParallel
	}
	if p > maxParallel {
		p = maxParallel
	}
	return p
}

// runPool drives fn over n tasks through a fixed-size worker pool. Admission
// follows task order; completion order is unconstrained. A task's failure is
// recorded by fn itself and never stops siblings.
func runPool(ctx context.Context, parallel, n int, fn func(ctx context.Context, i int)) {
	if parallel < 1 {
		parallel = 1
	}

	sem := make(chan struct{}, parallel)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(ctx, i)
		}(i)
	}
	wg.Wait()
}
