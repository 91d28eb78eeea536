// Package parallel provides parallel execution utilities for read-only network passes.
package parallel

import (
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on the logical core count.
func DefaultConfig() Config {
	n := Workers()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 32, // One forward pass per item is cheap; keep chunks coarse.
	}
}

// Workers reports the number of logical cores, as detected by cpuid.
// Falls back to runtime.NumCPU when detection yields nothing.
func Workers() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return min(n, runtime.NumCPU())
	}
	return runtime.NumCPU()
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < cfg.MinChunkSize {
		// Sequential fallback.
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// Sum evaluates f(i) for i in [0, n) and returns the total.
// Partial sums are combined in index order, so the result does not depend
// on scheduling.
func Sum(n int, f func(i int) float64, cfg Config) float64 {
	parts := make([]float64, n)
	For(n, func(i int) {
		parts[i] = f(i)
	}, cfg)

	var total float64
	for _, v := range parts {
		total += v
	}
	return total
}
