// internal/output/console.go
// Console report rendering with lipgloss

package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/portsweep/portsweep/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	addrStyle   = lipgloss.NewStyle().Bold(true)
	openStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// ConsoleFormatter renders a human-readable summary of a scan report.
type ConsoleFormatter struct {
	w       io.Writer
	verbose bool
}

// NewConsoleFormatter creates a console formatter writing to stdout. In
// verbose mode every error entry is listed instead of just a count.
func NewConsoleFormatter(verbose bool) *ConsoleFormatter {
	return &ConsoleFormatter{w: os.Stdout, verbose: verbose}
}

// Write renders the report.
func (f *ConsoleFormatter) Write(report *models.Report) error {
	fmt.Fprintln(f.w, headerStyle.Render(fmt.Sprintf("Scan of %s (%s)", report.Network, report.Ports)))

	if len(report.OpenPorts) == 0 {
		fmt.Fprintln(f.w, dimStyle.Render("no open ports found"))
	} else {
		// Stable ordering for readable output.
		addrs := make([]string, 0, len(report.OpenPorts))
		for addr := range report.OpenPorts {
			addrs = append(addrs, addr)
		}
		sort.Strings(addrs)

		for _, addr := range addrs {
			ports := report.OpenPorts[addr]
			rendered := make([]string, len(ports))
			for i, p := range ports {
				rendered[i] = openStyle.Render(strconv.Itoa(p))
			}
			fmt.Fprintf(f.w, "%s  %s\n", addrStyle.Render(addr), strings.Join(rendered, " "))
		}
	}

	if len(report.Errors) > 0 {
		if f.verbose {
			for _, e := range report.Errors {
				fmt.Fprintln(f.w, errStyle.Render(fmt.Sprintf("error %s:%d %s", e.Address, e.Port, e.Message)))
			}
		} else {
			fmt.Fprintln(f.w, errStyle.Render(fmt.Sprintf("%d errors (rerun with -v to list them)", len(report.Errors))))
		}
	}

	open := 0
	for _, ports := range report.OpenPorts {
		open += len(ports)
	}
	fmt.Fprintln(f.w, dimStyle.Render(fmt.Sprintf(
		"%d targets scanned, %d open, %d errors in %.2fs",
		report.Scanned, open, len(report.Errors), report.Duration,
	)))
	return nil
}

// Close is a no-op for console output.
func (f *ConsoleFormatter) Close() error {
	return nil
}
