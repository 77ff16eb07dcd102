// internal/models/types.go
// Core data models for portsweep

package models

import (
	"net"
	"strconv"
	"time"
)

// Status classifies the result of a single connect attempt.
type Status int

const (
	// StatusOpen means the port accepted a TCP connection within the timeout.
	StatusOpen Status = iota
	// StatusClosed means the port actively refused the connection (or the
	// host/network was unreachable). Closed is an expected result, not an error.
	StatusClosed
	// StatusError covers timeouts, resolution failures and any other
	// transport-level fault.
	StatusError
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Target is one (address, port) unit of work.
type Target struct {
	Address string
	Port    int
}

// HostPort returns the target as a dialable "address:port" string.
func (t Target) HostPort() string {
	return net.JoinHostPort(t.Address, strconv.Itoa(t.Port))
}

func (t Target) String() string {
	return t.HostPort()
}

// Outcome is the resolved result of exactly one connect attempt.
// Every target issued to the scanner resolves to exactly one Outcome.
type Outcome struct {
	Address string
	Port    int
	Status  Status
	// Detail carries a human-readable cause for StatusError outcomes.
	Detail string
}

// ScanError is one error entry in the final result set.
type ScanError struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
	Message string `json:"message"`
}

// HostReport is the aggregated result of scanning one address.
// Open and Errors are sorted ascending by port.
type HostReport struct {
	Address string
	Open    []int
	Errors  []ScanError
	// Scanned counts every outcome for the host, including closed ports.
	Scanned int
}

// ResultSet is the merged result of a network-wide scan. It is built by a
// single collector goroutine; once returned it is safe to read freely.
type ResultSet struct {
	// OpenPorts maps address -> sorted open port list. Addresses with no
	// open ports have no entry.
	OpenPorts map[string][]int `json:"open_ports"`
	Errors    []ScanError      `json:"errors"`
	// Scanned is the total outcome count across all hosts.
	Scanned int `json:"scanned"`
}

// NewResultSet returns an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{OpenPorts: make(map[string][]int)}
}

// OpenCount returns the total number of open ports across all addresses.
func (rs *ResultSet) OpenCount() int {
	var n int
	for _, ports := range rs.OpenPorts {
		n += len(ports)
	}
	return n
}

// Report is the serializable document describing one completed scan run.
// Its shape is the output contract consumed by formatters and the history
// store.
type Report struct {
	ScanID    string           `json:"scan_id"`
	Network   string           `json:"network"`
	Ports     string           `json:"ports"`
	Chunks    int              `json:"chunks"`
	Processes int              `json:"processes"`
	Workers   int              `json:"workers"`
	Timeout   float64          `json:"timeout_seconds"`
	StartedAt time.Time        `json:"started_at"`
	Duration  float64          `json:"duration_seconds"`
	OpenPorts map[string][]int `json:"open_ports"`
	Errors    []ScanError      `json:"errors"`
	Scanned   int              `json:"scanned"`
}
