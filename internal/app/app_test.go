// internal/app/app_test.go
// End-to-end test of the scan pipeline against loopback

package app

import (
	"context"
	"fmt"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/portsweep/portsweep/internal/core"
	"github.com/portsweep/portsweep/internal/models"
	"github.com/portsweep/portsweep/internal/output"
	"github.com/portsweep/portsweep/internal/scan"
)

// memoryFormatter captures the report for assertions.
type memoryFormatter struct {
	report *models.Report
}

func (m *memoryFormatter) Write(report *models.Report) error {
	m.report = report
	return nil
}

func (m *memoryFormatter) Close() error { return nil }

func TestApp_Run_Loopback(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	openPort := ln.Addr().(*net.TCPAddr).Port

	// Find a closed port: listen, then close immediately.
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	closedPort := probe.Addr().(*net.TCPAddr).Port
	probe.Close()
	time.Sleep(20 * time.Millisecond)

	cfg := core.Default()
	cfg.Scan.Targets = []string{"127.0.0.1"}
	cfg.Scan.Ports = fmt.Sprintf("%d,%d", openPort, closedPort)
	cfg.Scan.Workers = 4
	cfg.Scan.Timeout = time.Second

	mem := &memoryFormatter{}
	application := New(Deps{
		Config:     &cfg,
		Prober:     scan.NewScanner(cfg.Scan.Timeout, nil),
		Formatters: []output.Formatter{mem},
	})

	report, err := application.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !reflect.DeepEqual(report.OpenPorts["127.0.0.1"], []int{openPort}) {
		t.Errorf("OpenPorts = %v, want [%d]", report.OpenPorts["127.0.0.1"], openPort)
	}
	// A refused connection is closed, not an error.
	if len(report.Errors) != 0 {
		t.Errorf("Errors = %v, want none", report.Errors)
	}
	if report.Scanned != 2 {
		t.Errorf("Scanned = %d, want 2", report.Scanned)
	}
	if mem.report == nil {
		t.Error("formatter did not receive the report")
	}
}

func TestApp_Run_RejectsBadPortSpec(t *testing.T) {
	cfg := core.Default()
	cfg.Scan.Targets = []string{"127.0.0.1"}
	cfg.Scan.Ports = "not-a-port"

	application := New(Deps{Config: &cfg, Prober: scan.NewScanner(time.Second, nil)})
	if _, err := application.Run(context.Background()); err == nil {
		t.Error("Run() with invalid port spec should fail")
	}
}

func TestApp_Run_MaxTargetsGuard(t *testing.T) {
	cfg := core.Default()
	cfg.Scan.Targets = []string{"10.0.0.0/8"}
	cfg.Scan.Ports = "80"
	cfg.Scan.MaxTargets = 1000

	application := New(Deps{Config: &cfg, Prober: scan.NewScanner(time.Second, nil)})
	if _, err := application.Run(context.Background()); err == nil {
		t.Error("Run() beyond max targets should fail")
	}
}
