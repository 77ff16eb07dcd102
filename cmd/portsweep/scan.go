// cmd/portsweep/scan.go
// The scan subcommand: flag wiring and graceful shutdown

package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/portsweep/portsweep/internal/app"
	"github.com/portsweep/portsweep/internal/core"
	"github.com/portsweep/portsweep/internal/history"
	"github.com/portsweep/portsweep/internal/output"
	"github.com/portsweep/portsweep/internal/scan"
	"github.com/portsweep/portsweep/pkg/logger"
	"github.com/portsweep/portsweep/pkg/ratelimit"
)

func newScanCmd() *cobra.Command {
	var (
		configFile  string
		targets     string
		portSpec    string
		processes   int
		workers     int
		timeout     time.Duration
		rateLimit   int
		maxTargets  int64
		formats     string
		historyPath string
		noHistory   bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan targets for open TCP ports",
		Example: `  portsweep scan --targets 192.168.1.0/24 --ports 1:1024
  portsweep scan --targets 10.0.0.1,10.0.0.2 --ports 22,80,443 --workers 200
  portsweep scan --targets 127.0.0.1 --ports 8000:9000 --timeout 500ms --output json,console`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logConfig := logger.Config{Level: "info", Format: "console"}
			if verbose {
				logConfig.Level = "debug"
			}
			if err := logger.Init(logConfig); err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			defer logger.Sync()

			overrides := flagOverrides(cmd, targets, portSpec, processes, workers,
				timeout, rateLimit, maxTargets, formats, historyPath, noHistory)

			cfg, err := core.Load(configFile, overrides)
			if err != nil {
				return err
			}
			if len(cfg.Scan.Targets) == 0 {
				return fmt.Errorf("no targets specified (use --targets or a config file)")
			}

			return runScan(cfg, verbose)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&targets, "targets", "", "Comma-separated CIDRs or IPs (e.g. 10.0.0.0/24,192.168.1.1)")
	cmd.Flags().StringVar(&portSpec, "ports", "", `Port spec: "22", "1:1024" or "22,80,8000:8100"`)
	cmd.Flags().IntVar(&processes, "processes", 0, "Addresses scanned in parallel and port chunk count (0 = CPU count)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent connect attempts per address")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Connect timeout per attempt")
	cmd.Flags().IntVar(&rateLimit, "rate", 0, "Max connect attempts per second (0 = unlimited)")
	cmd.Flags().Int64Var(&maxTargets, "max-targets", 0, "Refuse to scan more addresses than this")
	cmd.Flags().StringVar(&formats, "output", "", "Output formats: json, console (comma-separated)")
	cmd.Flags().StringVar(&historyPath, "history-db", "", "Scan history database path")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Disable scan history recording")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging, full error listing)")

	return cmd
}

// flagOverrides maps explicitly set flags onto config keys so the layering
// in core.Load stays the single source of truth.
func flagOverrides(cmd *cobra.Command, targets, portSpec string, processes, workers int,
	timeout time.Duration, rateLimit int, maxTargets int64, formats, historyPath string, noHistory bool) map[string]interface{} {

	overrides := make(map[string]interface{})
	if cmd.Flags().Changed("targets") {
		overrides["scan.targets"] = splitList(targets)
	}
	if cmd.Flags().Changed("ports") {
		overrides["scan.ports"] = portSpec
	}
	if cmd.Flags().Changed("processes") {
		overrides["scan.processes"] = processes
	}
	if cmd.Flags().Changed("workers") {
		overrides["scan.workers"] = workers
	}
	if cmd.Flags().Changed("timeout") {
		overrides["scan.timeout"] = timeout
	}
	if cmd.Flags().Changed("rate") {
		overrides["scan.rate_limit"] = rateLimit
	}
	if cmd.Flags().Changed("max-targets") {
		overrides["scan.max_targets"] = maxTargets
	}
	if cmd.Flags().Changed("output") {
		overrides["output.formats"] = splitList(formats)
	}
	if cmd.Flags().Changed("history-db") {
		overrides["history.path"] = historyPath
	}
	if noHistory {
		overrides["history.enabled"] = false
	}
	return overrides
}

func runScan(cfg *core.Config, verbose bool) error {
	var limiter *ratelimit.Limiter
	if cfg.Scan.RateLimit > 0 {
		limiter = ratelimit.New(cfg.Scan.RateLimit)
	}

	formatters, err := buildFormatters(cfg, verbose)
	if err != nil {
		return err
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			logger.Warn("scan history unavailable", logger.Err(err))
		}
	}

	application := app.New(app.Deps{
		Config:     cfg,
		Prober:     scan.NewScanner(cfg.Scan.Timeout, limiter),
		Formatters: formatters,
		History:    store,
	})
	defer func() {
		if err := application.Shutdown(); err != nil {
			logger.Error("shutdown error", logger.Err(err))
		}
	}()

	// SIGINT/SIGTERM cancel the scan context; in-flight pools stop dialing
	// and already-completed outcomes are kept.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = application.Run(ctx)
	return err
}

func buildFormatters(cfg *core.Config, verbose bool) ([]output.Formatter, error) {
	var formatters []output.Formatter
	for _, format := range cfg.Output.Formats {
		switch format {
		case "json":
			name := fmt.Sprintf("%s_%s.json", cfg.Output.FilePrefix, time.Now().Format("20060102_150405"))
			jf, err := output.NewJSONFormatter(filepath.Join(cfg.Output.Directory, name))
			if err != nil {
				return nil, fmt.Errorf("create JSON output: %w", err)
			}
			logger.Info("JSON output enabled", logger.String("file", jf.Path()))
			formatters = append(formatters, jf)
		case "console":
			formatters = append(formatters, output.NewConsoleFormatter(verbose))
		}
	}
	if len(formatters) == 0 {
		return nil, fmt.Errorf("no output formats configured")
	}
	return formatters, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
