// internal/output/json_test.go
// Unit tests for the JSON report writer

package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/portsweep/portsweep/internal/models"
)

func sampleReport() *models.Report {
	return &models.Report{
		ScanID:    "test-scan",
		Network:   "127.0.0.1/32",
		Ports:     "22,80",
		Chunks:    2,
		Processes: 2,
		Workers:   10,
		Timeout:   1,
		StartedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Duration:  0.42,
		OpenPorts: map[string][]int{"127.0.0.1": {22}},
		Errors: []models.ScanError{
			{Address: "127.0.0.1", Port: 80, Message: "connect timed out after 1s"},
		},
		Scanned: 2,
	}
}

func TestJSONFormatter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")

	f, err := NewJSONFormatter(path)
	if err != nil {
		t.Fatalf("NewJSONFormatter() error = %v", err)
	}
	if err := f.Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	var got models.Report
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(got.OpenPorts, map[string][]int{"127.0.0.1": {22}}) {
		t.Errorf("OpenPorts = %v", got.OpenPorts)
	}
	if len(got.Errors) != 1 || got.Errors[0].Port != 80 {
		t.Errorf("Errors = %v", got.Errors)
	}
}

func TestJSONFormatter_ContractKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	f, err := NewJSONFormatter(path)
	if err != nil {
		t.Fatalf("NewJSONFormatter() error = %v", err)
	}
	defer f.Close()
	if err := f.Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"network", "ports", "open_ports", "errors", "duration_seconds"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("report missing key %q", key)
		}
	}

	// Addresses must be string keys with integer port arrays.
	openPorts, ok := doc["open_ports"].(map[string]interface{})
	if !ok {
		t.Fatalf("open_ports is %T, want object", doc["open_ports"])
	}
	if _, ok := openPorts["127.0.0.1"].([]interface{}); !ok {
		t.Errorf("open_ports[127.0.0.1] is %T, want array", openPorts["127.0.0.1"])
	}
}

func TestMultiFormatter(t *testing.T) {
	dir := t.TempDir()
	a, err := NewJSONFormatter(filepath.Join(dir, "a.json"))
	if err != nil {
		t.Fatalf("NewJSONFormatter() error = %v", err)
	}
	b, err := NewJSONFormatter(filepath.Join(dir, "b.json"))
	if err != nil {
		t.Fatalf("NewJSONFormatter() error = %v", err)
	}

	multi := NewMultiFormatter(a, b)
	if err := multi.Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := multi.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	for _, name := range []string{"a.json", "b.json"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}
