// internal/scan/aggregate.go
// Single-collector result aggregation

package scan

import (
	"github.com/portsweep/portsweep/internal/models"
)

// aggregator merges per-host reports into one ResultSet. Host tasks emit
// their finished HostReport through add; a single collector goroutine owns
// the result set, so no key in OpenPorts is ever written concurrently.
type aggregator struct {
	reports chan models.HostReport
	done    chan struct{}
	rs      *models.ResultSet
}

func newAggregator(buffer int) *aggregator {
	a := &aggregator{
		reports: make(chan models.HostReport, buffer),
		done:    make(chan struct{}),
		rs:      models.NewResultSet(),
	}
	go a.collect()
	return a
}

func (a *aggregator) collect() {
	defer close(a.done)
	for rep := range a.reports {
		a.rs.Scanned += rep.Scanned
		if len(rep.Open) > 0 {
			// Exactly one report per address, so this is the only write
			// to this key.
			a.rs.OpenPorts[rep.Address] = rep.Open
		}
		// Within an address errors are already sorted by port; order
		// across addresses follows completion order and is unspecified.
		a.rs.Errors = append(a.rs.Errors, rep.Errors...)
	}
}

func (a *aggregator) add(rep models.HostReport) {
	a.reports <- rep
}

// wait closes the intake and blocks until the collector has drained it.
func (a *aggregator) wait() *models.ResultSet {
	close(a.reports)
	<-a.done
	return a.rs
}
