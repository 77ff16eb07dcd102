// internal/app/app.go
// Application orchestrator: targets -> chunks -> dispatch -> report

package app

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/portsweep/portsweep/internal/core"
	"github.com/portsweep/portsweep/internal/history"
	"github.com/portsweep/portsweep/internal/models"
	"github.com/portsweep/portsweep/internal/output"
	"github.com/portsweep/portsweep/internal/scan"
	"github.com/portsweep/portsweep/pkg/iprange"
	"github.com/portsweep/portsweep/pkg/logger"
	"github.com/portsweep/portsweep/pkg/ports"
)

// App wires the scan pipeline together.
type App struct {
	config     *core.Config
	prober     scan.Prober
	formatters []output.Formatter
	history    *history.Store
}

// Deps holds the app's collaborators.
type Deps struct {
	Config     *core.Config
	Prober     scan.Prober
	Formatters []output.Formatter
	History    *history.Store
}

// New creates the application from its dependencies.
func New(deps Deps) *App {
	return &App{
		config:     deps.Config,
		prober:     deps.Prober,
		formatters: deps.Formatters,
		history:    deps.History,
	}
}

// Run executes one scan: expands targets, partitions ports, dispatches the
// scan, then renders and records the report. The returned report is the one
// given to the formatters.
func (a *App) Run(ctx context.Context) (*models.Report, error) {
	cfg := a.config.Scan

	portList, err := ports.ParseSpec(cfg.Ports)
	if err != nil {
		return nil, fmt.Errorf("parse port spec: %w", err)
	}

	count, err := iprange.Count(cfg.Targets)
	if err != nil {
		return nil, fmt.Errorf("parse targets: %w", err)
	}
	if cfg.MaxTargets > 0 && count > uint64(cfg.MaxTargets) {
		return nil, fmt.Errorf("target count %d exceeds limit %d; raise --max-targets to proceed", count, cfg.MaxTargets)
	}

	addrs, err := iprange.Expand(cfg.Targets)
	if err != nil {
		return nil, fmt.Errorf("expand targets: %w", err)
	}

	procs := cfg.Processes
	if procs == 0 {
		procs = runtime.GOMAXPROCS(0)
	}
	chunks, err := ports.Divide(portList, procs)
	if err != nil {
		return nil, fmt.Errorf("partition ports: %w", err)
	}

	logger.Info("starting scan",
		logger.Int("addresses", len(addrs)),
		logger.Int("ports", len(portList)),
		logger.Int("chunks", len(chunks)),
		logger.Int("processes", procs),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
	)

	dispatcher := scan.NewDispatcher(a.prober, procs, cfg.Workers)

	started := time.Now()
	rs := dispatcher.ScanNetwork(ctx, addrs, chunks)
	elapsed := time.Since(started)

	report := &models.Report{
		ScanID:    history.NewScanID(),
		Network:   strings.Join(cfg.Targets, ","),
		Ports:     cfg.Ports,
		Chunks:    len(chunks),
		Processes: procs,
		Workers:   cfg.Workers,
		Timeout:   cfg.Timeout.Seconds(),
		StartedAt: started.UTC(),
		Duration:  elapsed.Seconds(),
		OpenPorts: rs.OpenPorts,
		Errors:    rs.Errors,
		Scanned:   rs.Scanned,
	}

	multi := output.NewMultiFormatter(a.formatters...)
	if err := multi.Write(report); err != nil {
		logger.Error("failed to write report", logger.Err(err))
	}

	if a.history != nil {
		if err := a.history.Save(report); err != nil {
			logger.Warn("failed to record scan history", logger.Err(err))
		}
	}

	logger.Info("scan complete",
		logger.String("scan_id", report.ScanID),
		logger.Int("scanned", report.Scanned),
		logger.Int("open", rs.OpenCount()),
		logger.Int("errors", len(report.Errors)),
		logger.Duration("elapsed", elapsed),
	)

	if ctx.Err() != nil {
		return report, fmt.Errorf("scan interrupted: %w", ctx.Err())
	}
	return report, nil
}

// Shutdown releases formatters and the history store.
func (a *App) Shutdown() error {
	var firstErr error
	for _, f := range a.formatters {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
