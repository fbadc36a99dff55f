package report

import (
	"io"

	"github.com/or1un/mosaic/internal/model"
)

// Writer defines the interface for report output.
// Implementations write collection results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.ProfileReport) (int, error)

	// WriteFingerprint outputs only the fingerprint portion.
	// This is useful for quick summaries without the raw profile data.
	WriteFingerprint(fp *model.Fingerprint) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.ProfileReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteFingerprint outputs the fingerprint to all configured Writers.
func (m *MultiWriter) WriteFingerprint(fp *model.Fingerprint) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteFingerprint(fp)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// fingerprintOf returns the report's fingerprint, or an empty one when
// the analysis step did not run.
func fingerprintOf(report *model.ProfileReport) *model.Fingerprint {
	if report.Fingerprint != nil {
		return report.Fingerprint
	}
	return model.NewFingerprint(report.Subject, report.DateCollected)
}
