// internal/output/json.go
// JSON report file writer

package output

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/portsweep/portsweep/internal/models"
)

// JSONFormatter writes the scan report as an indented JSON document.
type JSONFormatter struct {
	path string
	file *os.File
}

// NewJSONFormatter creates a JSON formatter writing to path, creating
// parent directories as needed.
func NewJSONFormatter(path string) (*JSONFormatter, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &JSONFormatter{path: path, file: file}, nil
}

// Path returns the output file path.
func (f *JSONFormatter) Path() string {
	return f.path
}

// Write encodes the report.
func (f *JSONFormatter) Write(report *models.Report) error {
	enc := json.NewEncoder(f.file)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// Close closes the file.
func (f *JSONFormatter) Close() error {
	return f.file.Close()
}
