package probability

import (
	"runtime"

	"github.com/shirou/gopsutil/cpu"
)

// workerCount returns n when positive, otherwise the number of logical CPUs.
func workerCount(n int) int {
	if n > 0 {
		return n
	}
	if count, err := cpu.Counts(true); err == nil && count > 0 {
		return count
	}
	return runtime.NumCPU()
}

// splitPaths divides total paths over workers, handing the remainder to the
// first workers.
func splitPaths(total, workers int) []int {
	if workers > total {
		workers = total
	}
	if workers < 1 {
		return nil
	}

	shares := make([]int, workers)
	for w := range shares {
		shares[w] = total / workers
		if w < total%workers {
			shares[w]++
		}
	}
	return shares
}
