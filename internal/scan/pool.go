// internal/scan/pool.go
// Bounded worker pool scanning one host's port chunk

package scan

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/portsweep/portsweep/internal/models"
)

// HostScanner runs concurrent probes against a single address, bounded by a
// worker limit so in-flight connects cannot exhaust file descriptors or
// ephemeral ports.
type HostScanner struct {
	prober  Prober
	workers int
}

// NewHostScanner creates a host scanner with up to workers concurrent
// probes. A worker count below 1 is treated as 1.
func NewHostScanner(prober Prober, workers int) *HostScanner {
	if workers < 1 {
		workers = 1
	}
	return &HostScanner{prober: prober, workers: workers}
}

// ScanHost scans every port in chunk against address and blocks until the
// whole chunk is resolved. One port failing never cancels the rest of the
// chunk. Open ports and error entries come back sorted ascending by port.
//
// The pool honors cancellation without losing accounting: once ctx is done,
// workers stop dialing and the remaining ports resolve to error outcomes,
// so the report always carries exactly len(chunk) outcomes.
func (h *HostScanner) ScanHost(ctx context.Context, address string, chunk []int) models.HostReport {
	report := models.HostReport{Address: address}
	if len(chunk) == 0 {
		return report
	}

	jobs := make(chan int, len(chunk))
	for _, port := range chunk {
		jobs <- port
	}
	close(jobs)

	results := make(chan models.Outcome, len(chunk))

	workers := h.workers
	if workers > len(chunk) {
		workers = len(chunk)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for port := range jobs {
				results <- h.probe(ctx, address, port)
			}
		}()
	}
	wg.Wait()
	close(results)

	for out := range results {
		report.Scanned++
		switch out.Status {
		case models.StatusOpen:
			report.Open = append(report.Open, out.Port)
		case models.StatusError:
			report.Errors = append(report.Errors, models.ScanError{
				Address: out.Address,
				Port:    out.Port,
				Message: out.Detail,
			})
		}
	}

	sort.Ints(report.Open)
	sort.Slice(report.Errors, func(i, j int) bool {
		return report.Errors[i].Port < report.Errors[j].Port
	})
	return report
}

// probe isolates a single probe call: a panicking Prober resolves to an
// error outcome instead of taking down the pool, and ports left after
// cancellation resolve without dialing.
func (h *HostScanner) probe(ctx context.Context, address string, port int) (out models.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = models.Outcome{
				Address: address,
				Port:    port,
				Status:  models.StatusError,
				Detail:  fmt.Sprintf("probe panic: %v", r),
			}
		}
	}()

	if ctx.Err() != nil {
		return models.Outcome{
			Address: address,
			Port:    port,
			Status:  models.StatusError,
			Detail:  "scan cancelled",
		}
	}
	return h.prober.ScanPort(ctx, address, port)
}
