package report

import (
	"io"

	"github.com/nao1215/agencydash/internal/pipeline"
)

// Writer writes dashboards in one output format.
type Writer interface {
	// Write outputs the dashboard and returns the number of bytes written.
	Write(d *pipeline.Dashboard) (int, error)

	// WriteSummary outputs only the headline figures.
	WriteSummary(s *Summary) (int, error)
}

// MultiWriter writes to several Writers in turn.
// Our Writer writes dashboards, not bytes, so io.MultiWriter does not fit.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the dashboard to every Writer and stops on the first error.
func (m *MultiWriter) Write(d *pipeline.Dashboard) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(d)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSummary outputs the summary to every Writer.
func (m *MultiWriter) WriteSummary(s *Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(s)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
