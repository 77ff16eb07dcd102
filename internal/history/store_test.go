// internal/history/store_test.go
// Unit tests for the scan history store

package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/portsweep/portsweep/internal/models"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func report(id string, started time.Time) *models.Report {
	return &models.Report{
		ScanID:    id,
		Network:   "192.168.1.0/30",
		Ports:     "22,80",
		Chunks:    2,
		Processes: 2,
		Workers:   10,
		Timeout:   1,
		StartedAt: started,
		Duration:  1.5,
		OpenPorts: map[string][]int{"192.168.1.1": {22}},
		Errors: []models.ScanError{
			{Address: "192.168.1.2", Port: 80, Message: "connect timed out after 1s"},
		},
		Scanned: 4,
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	s := tempStore(t)

	id := NewScanID()
	if err := s.Save(report(id, time.Now().UTC())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rec, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.OpenCount != 1 || rec.ErrorCount != 1 || rec.Scanned != 4 {
		t.Errorf("counts = open %d, err %d, scanned %d", rec.OpenCount, rec.ErrorCount, rec.Scanned)
	}
	if rec.Report == nil || len(rec.Report.OpenPorts["192.168.1.1"]) != 1 {
		t.Errorf("report payload not preserved: %+v", rec.Report)
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := tempStore(t)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	ids := []string{NewScanID(), NewScanID(), NewScanID()}
	for i, id := range ids {
		if err := s.Save(report(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	records, err := s.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("List() returned %d records, want 3", len(records))
	}
	if records[0].ScanID != ids[2] {
		t.Errorf("first record = %s, want newest %s", records[0].ScanID, ids[2])
	}

	limited, err := s.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d records", len(limited))
	}
}

func TestStore_Delete(t *testing.T) {
	s := tempStore(t)

	id := NewScanID()
	if err := s.Save(report(id, time.Now().UTC())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Delete(id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(id); err == nil {
		t.Error("Get() after delete should fail")
	}
	if err := s.Delete(id); err == nil {
		t.Error("Delete() of missing scan should fail")
	}
}
