// pkg/ports/divide.go
// Balanced port list partitioning for parallel dispatch

package ports

import (
	"fmt"
	"runtime"
)

// Divide splits ports into chunkCount contiguous chunks whose sizes differ
// by at most one element, preserving input order. The effective chunk count
// is clamped to len(ports) so no chunk is ever empty. A chunkCount below 1
// is a caller error and is rejected.
//
// Divide is deterministic: the same inputs always yield the same boundaries.
func Divide(ports []int, chunkCount int) ([][]int, error) {
	if chunkCount < 1 {
		return nil, fmt.Errorf("chunk count must be >= 1, got %d", chunkCount)
	}
	if len(ports) == 0 {
		return nil, nil
	}
	if chunkCount > len(ports) {
		chunkCount = len(ports)
	}

	base := len(ports) / chunkCount
	rem := len(ports) % chunkCount

	chunks := make([][]int, 0, chunkCount)
	start := 0
	for i := 0; i < chunkCount; i++ {
		size := base
		if i < rem {
			size++
		}
		chunk := make([]int, size)
		copy(chunk, ports[start:start+size])
		chunks = append(chunks, chunk)
		start += size
	}
	return chunks, nil
}

// OptimalChunks returns a chunk count derived from available CPU
// parallelism, bounded below by 1 and above by len(ports).
func OptimalChunks(ports []int) int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	if n > len(ports) {
		n = len(ports)
	}
	if n < 1 {
		n = 1
	}
	return n
}
