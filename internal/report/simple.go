package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/nao1215/agencydash/internal/model"
	"github.com/nao1215/agencydash/internal/pipeline"
)

// SimpleWriter outputs dashboards as terminal grids.
type SimpleWriter struct {
	baseWriter

	// verbose lists the agencies left off the map under the grid.
	verbose bool

	// maxWidth caps the grid width; zero lets tablewriter decide.
	maxWidth int
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the list of agencies without coordinates.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithMaxWidth caps the grid at width terminal columns.
func WithMaxWidth(width int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.maxWidth = width
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the visible table rows as a grid followed by a status line.
// A failed dashboard prints only the error.
func (w *SimpleWriter) Write(d *pipeline.Dashboard) (int, error) {
	var sb strings.Builder

	if d.Failed() {
		fmt.Fprintf(&sb, "ERROR: %v\n", d.Err)
		return w.output.Write([]byte(sb.String()))
	}

	if d.Rows != nil && d.Rows.Len() > 0 {
		rows := make([][]string, 0, d.Rows.Len())
		for _, row := range d.Rows.Rows {
			rows = append(rows, row.Cells)
		}
		if err := w.renderGrid(&sb, d.Rows.Columns, rows); err != nil {
			return 0, err
		}
	} else {
		sb.WriteString("No agencies match.\n")
	}

	s := NewSummary(d)
	fmt.Fprintf(&sb, "\n%d of %d agencies shown", s.Shown, s.Records)
	if s.Query != "" {
		fmt.Fprintf(&sb, " for %q", s.Query)
	}
	fmt.Fprintf(&sb, ". %d on the map, %d without coordinates.\n", s.Placed, s.ExcludedCount())

	if w.verbose {
		w.writeExcluded(&sb, s)
	}

	return w.output.Write([]byte(sb.String()))
}

// WriteSummary outputs the headline figures and the profit ranking.
func (w *SimpleWriter) WriteSummary(s *Summary) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Dataset:   %s\n", s.Source)
	fmt.Fprintf(&sb, "Rendered:  %s\n", s.RenderedAt.Format("2006-01-02 15:04:05 MST"))
	if s.Failed() {
		fmt.Fprintf(&sb, "Status:    ERROR - %s\n", s.Error)
		return w.output.Write([]byte(sb.String()))
	}
	fmt.Fprintf(&sb, "Agencies:  %d (%d loss-making)\n", s.Records, s.Losses)
	fmt.Fprintf(&sb, "On map:    %d of %d\n", s.Placed, s.Records)
	fmt.Fprintf(&sb, "Total:     %s\n\n", model.FormatEuro(s.TotalProfit))

	rows := make([][]string, len(s.Ranking))
	for i, r := range s.Ranking {
		rows[i] = []string{strconv.Itoa(r.Rank), r.Name, r.Locality, model.FormatEuro(r.Profit)}
	}
	if len(rows) > 0 {
		if err := w.renderGrid(&sb, []string{"#", "Agency", "Locality", "Profit after tax"}, rows); err != nil {
			return 0, err
		}
	}

	if w.verbose {
		w.writeExcluded(&sb, s)
	}

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) renderGrid(out io.Writer, header []string, rows [][]string) error {
	opts := []tablewriter.Option{
		tablewriter.WithHeaderAutoFormat(tw.Off),
	}
	if w.maxWidth > 0 {
		opts = append(opts, tablewriter.WithMaxWidth(w.maxWidth))
	}

	table := tablewriter.NewTable(out, opts...)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to fill table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

func (w *SimpleWriter) writeExcluded(sb *strings.Builder, s *Summary) {
	if s.ExcludedCount() == 0 {
		return
	}
	sb.WriteString("\nNot on the map:\n")
	for _, e := range s.Excluded {
		fmt.Fprintf(sb, "  - %s (line %d)\n", e.Name, e.Line)
	}
}
