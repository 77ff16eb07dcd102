// internal/scan/scanner.go
// Single-target TCP connect scanner

package scan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/portsweep/portsweep/internal/models"
	"github.com/portsweep/portsweep/pkg/ratelimit"
)

// Prober resolves one (address, port) pair to exactly one Outcome. It never
// returns a Go error: every fault class is classified into the outcome, so a
// single failing probe cannot disturb a worker pool shared with other scans.
type Prober interface {
	ScanPort(ctx context.Context, address string, port int) models.Outcome
}

// Scanner is the production Prober. It performs full TCP connect attempts
// through net.Dialer, bounded by a per-attempt timeout and an optional rate
// limiter.
type Scanner struct {
	dialer  *net.Dialer
	limiter *ratelimit.Limiter
	timeout time.Duration
}

// NewScanner creates a Scanner with the given connect timeout. limiter may
// be nil for unthrottled scanning.
func NewScanner(timeout time.Duration, limiter *ratelimit.Limiter) *Scanner {
	return &Scanner{
		dialer: &net.Dialer{
			Timeout:   timeout,
			KeepAlive: -1, // no keep-alive for scan sockets
		},
		limiter: limiter,
		timeout: timeout,
	}
}

// ScanPort attempts a TCP connection to address:port. A successful connect
// is closed immediately without exchanging data.
func (s *Scanner) ScanPort(ctx context.Context, address string, port int) models.Outcome {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return models.Outcome{
				Address: address,
				Port:    port,
				Status:  models.StatusError,
				Detail:  fmt.Sprintf("rate limit wait: %v", err),
			}
		}
	}

	target := models.Target{Address: address, Port: port}
	conn, err := s.dialer.DialContext(ctx, "tcp", target.HostPort())
	if err == nil {
		conn.Close()
		return models.Outcome{Address: address, Port: port, Status: models.StatusOpen}
	}
	return s.classify(address, port, err)
}

// classify maps a dial error to the closed taxonomy:
// refused/unreachable -> closed, everything else -> error with a cause.
func (s *Scanner) classify(address string, port int, err error) models.Outcome {
	out := models.Outcome{Address: address, Port: port}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		out.Status = models.StatusClosed

	case errors.Is(err, context.Canceled):
		out.Status = models.StatusError
		out.Detail = "scan cancelled"

	default:
		out.Status = models.StatusError
		var dnsErr *net.DNSError
		var netErr net.Error
		switch {
		case errors.As(err, &dnsErr):
			out.Detail = fmt.Sprintf("resolve %s: %v", address, dnsErr)
		case errors.As(err, &netErr) && netErr.Timeout():
			out.Detail = fmt.Sprintf("connect timed out after %s", s.timeout)
		default:
			out.Detail = err.Error()
		}
	}
	return out
}
