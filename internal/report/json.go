package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/agencydash/internal/model"
	"github.com/nao1215/agencydash/internal/pipeline"
	"github.com/nao1215/agencydash/internal/view"
)

// JSONWriter outputs dashboards as JSON for tool integration.
type JSONWriter struct {
	baseWriter

	// version is the agencydash version stamped into full reports.
	version string

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion sets the version recorded in full reports.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport is the document written by JSONWriter.Write.
type JSONReport struct {
	// Version is the agencydash version that produced the report.
	Version string `json:"version,omitempty"`

	// Summary holds the headline figures.
	Summary *Summary `json:"summary"`

	// Columns are the dataset headers in file order.
	Columns []string `json:"columns,omitempty"`

	// Agencies are the records behind the visible table rows.
	Agencies []model.Record `json:"agencies"`

	// Chart is the profit chart; it always covers every agency.
	Chart *view.Chart `json:"chart,omitempty"`
}

// NewJSONReport builds the JSON document for d.
func NewJSONReport(d *pipeline.Dashboard, version string) *JSONReport {
	r := &JSONReport{
		Version:  version,
		Summary:  NewSummary(d),
		Agencies: make([]model.Record, 0),
	}
	if d.Failed() {
		return r
	}
	r.Columns = d.Headers()
	r.Agencies = append(r.Agencies, shownRecords(d)...)
	r.Chart = d.Chart
	return r
}

// Write outputs the full report in JSON format.
func (w *JSONWriter) Write(d *pipeline.Dashboard) (int, error) {
	return w.writeJSON(NewJSONReport(d, w.version))
}

// WriteSummary outputs only the summary in JSON format.
func (w *JSONWriter) WriteSummary(s *Summary) (int, error) {
	return w.writeJSON(s)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
