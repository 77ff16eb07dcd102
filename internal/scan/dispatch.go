// internal/scan/dispatch.go
// Network-wide scan dispatch across addresses

package scan

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/portsweep/portsweep/internal/models"
	"github.com/portsweep/portsweep/pkg/logger"
)

// Dispatcher fans a scan out across addresses: one task per address, at
// most maxProcs tasks in flight, each task running a bounded worker pool
// over the address's port chunks.
type Dispatcher struct {
	prober     Prober
	maxProcs   int
	maxWorkers int
}

// NewDispatcher creates a dispatcher. maxProcs bounds concurrently scanned
// addresses, maxWorkers bounds concurrent probes within one address.
func NewDispatcher(prober Prober, maxProcs, maxWorkers int) *Dispatcher {
	if maxProcs < 1 {
		maxProcs = 1
	}
	return &Dispatcher{prober: prober, maxProcs: maxProcs, maxWorkers: maxWorkers}
}

// ScanNetwork scans every address against every chunk in chunks and blocks
// until all per-address tasks complete. Task parallelism is clamped to
// min(maxProcs, len(addresses)). A task that crashes is recorded as error
// entries for all of its assigned ports; other addresses are unaffected.
func (d *Dispatcher) ScanNetwork(ctx context.Context, addresses []string, chunks [][]int) *models.ResultSet {
	if len(addresses) == 0 {
		return models.NewResultSet()
	}

	procs := d.maxProcs
	if procs > len(addresses) {
		procs = len(addresses)
	}

	agg := newAggregator(procs)
	sem := make(chan struct{}, procs)

	var wg sync.WaitGroup
	for _, address := range addresses {
		wg.Add(1)
		go func(address string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			agg.add(d.scanAddress(ctx, address, chunks))
		}(address)
	}
	wg.Wait()

	return agg.wait()
}

// scanAddress runs the worker pool over each chunk in turn and merges the
// per-chunk reports into one report for the address. A panic anywhere in
// the task surfaces as an address-level failure report instead of being
// lost.
func (d *Dispatcher) scanAddress(ctx context.Context, address string, chunks [][]int) (rep models.HostReport) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("scan task crashed",
				logger.String("address", address),
				logger.Any("panic", r),
			)
			rep = failedHostReport(address, chunks, fmt.Sprintf("scan task crashed: %v", r))
		}
	}()

	host := NewHostScanner(d.prober, d.maxWorkers)
	rep = models.HostReport{Address: address}
	for _, chunk := range chunks {
		chunkRep := host.ScanHost(ctx, address, chunk)
		rep.Open = append(rep.Open, chunkRep.Open...)
		rep.Errors = append(rep.Errors, chunkRep.Errors...)
		rep.Scanned += chunkRep.Scanned
	}

	// Chunk reports arrive sorted, but the chunks themselves may not be
	// contiguous; restore the per-address ordering after the merge.
	sort.Ints(rep.Open)
	sort.Slice(rep.Errors, func(i, j int) bool {
		return rep.Errors[i].Port < rep.Errors[j].Port
	})

	if len(rep.Open) > 0 {
		logger.Info("open ports found",
			logger.String("address", address),
			logger.Any("ports", rep.Open),
		)
	}
	return rep
}

// failedHostReport marks every assigned port of a crashed task as an error
// so the outcome count still matches the targets issued.
func failedHostReport(address string, chunks [][]int, message string) models.HostReport {
	rep := models.HostReport{Address: address}
	for _, chunk := range chunks {
		for _, port := range chunk {
			rep.Errors = append(rep.Errors, models.ScanError{
				Address: address,
				Port:    port,
				Message: message,
			})
			rep.Scanned++
		}
	}
	return rep
}
