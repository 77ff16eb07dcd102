// cmd/portsweep/history.go
// The history subcommand: list, show and delete past scans

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/portsweep/portsweep/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded scan runs",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "portsweep.db", "Scan history database path")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded scans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("no recorded scans")
				return nil
			}

			fmt.Printf("%-36s %-19s %-24s %-12s %6s %6s\n",
				"SCAN ID", "STARTED", "NETWORK", "PORTS", "OPEN", "ERRORS")
			fmt.Println(strings.Repeat("-", 108))
			for _, rec := range records {
				network := rec.Network
				if len(network) > 24 {
					network = network[:21] + "..."
				}
				portSpec := rec.Ports
				if len(portSpec) > 12 {
					portSpec = portSpec[:9] + "..."
				}
				fmt.Printf("%-36s %-19s %-24s %-12s %6d %6d\n",
					rec.ScanID, rec.StartedAt.Format("2006-01-02 15:04:05"),
					network, portSpec, rec.OpenCount, rec.ErrorCount)
			}
			return nil
		},
	}
	list.Flags().Int("limit", 20, "Maximum scans to list (0 = all)")

	show := &cobra.Command{
		Use:   "show <scan-id>",
		Short: "Print one scan's full report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.Get(args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec.Report)
		},
	}

	del := &cobra.Command{
		Use:   "delete <scan-id>",
		Short: "Remove one scan from the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("scan %s deleted\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, show, del)
	return cmd
}
