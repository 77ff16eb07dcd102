// cmd/portsweep/main.go
// portsweep - concurrent TCP connect scanner

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "portsweep",
		Short: "Concurrent TCP connect scanner",
		Long: `portsweep scans IP ranges for open TCP ports using two levels of
bounded parallelism: addresses are scanned concurrently, and within each
address a worker pool probes its port chunks.

Configuration priority: defaults < config file < environment (SWEEP_) < flags.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("portsweep v%s (built: %s)\n", version, buildTime)
		},
	}
}
