// internal/output/interface.go
// Output formatter interfaces

package output

import (
	"errors"

	"github.com/portsweep/portsweep/internal/models"
)

// Formatter renders a completed scan report.
type Formatter interface {
	// Write renders one report.
	Write(report *models.Report) error

	// Close releases any resources held by the formatter.
	Close() error
}

// MultiFormatter fans a report out to several formatters.
type MultiFormatter struct {
	formatters []Formatter
}

// NewMultiFormatter creates a formatter writing to all of formatters.
func NewMultiFormatter(formatters ...Formatter) *MultiFormatter {
	return &MultiFormatter{formatters: formatters}
}

// Write writes to all formatters, stopping at the first failure.
func (m *MultiFormatter) Write(report *models.Report) error {
	for _, f := range m.formatters {
		if err := f.Write(report); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all formatters.
func (m *MultiFormatter) Close() error {
	var errs []error
	for _, f := range m.formatters {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
