package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/agencydash/internal/model"
	"github.com/nao1215/agencydash/internal/pipeline"
)

// MarkdownWriter outputs dashboards as Markdown documents.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report: properties, the agency table, the profit
// ranking and the map coverage.
func (w *MarkdownWriter) Write(d *pipeline.Dashboard) (int, error) {
	s := NewSummary(d)
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, s)
	w.writeAlert(md, s)
	if !s.Failed() {
		w.writeAgencies(md, d)
		w.writeRanking(md, s)
		w.writeCoverage(md, s)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummary outputs the report without the agency table.
func (w *MarkdownWriter) WriteSummary(s *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, s)
	w.writeAlert(md, s)
	if !s.Failed() {
		w.writeRanking(md, s)
		w.writeCoverage(md, s)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *Summary) {
	md.H1("Belgian Real Estate Agencies")
	md.PlainText("")

	rows := [][]string{
		{"Dataset", "`" + s.Source + "`"},
		{"Rendered", s.RenderedAt.Format("2006-01-02 15:04:05 MST")},
	}
	if !s.Failed() {
		rows = append(rows,
			[]string{"Agencies", strconv.Itoa(s.Records)},
			[]string{"On the map", strconv.Itoa(s.Placed)},
			[]string{"Loss-making", strconv.Itoa(s.Losses)},
			[]string{"Total profit after tax", model.FormatEuro(s.TotalProfit)},
		)
		if s.Query != "" {
			rows = append(rows, []string{"Search", "`" + s.Query + "`"})
		}
		if s.Fingerprint != "" {
			rows = append(rows, []string{"SHA3-256", "`" + s.Fingerprint + "`"})
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s *Summary) {
	switch {
	case s.Failed():
		md.Cautionf("The dashboard could not be rendered: %s", s.Error)
	case s.Records == 0:
		md.Note("The dataset holds no agencies.")
	case s.ExcludedCount() > 0:
		md.Warningf("%d agency(ies) have no coordinates and are missing from the map.", s.ExcludedCount())
	case s.Losses > 0:
		md.Importantf("%d agency(ies) posted a loss.", s.Losses)
	default:
		md.Tip("Every agency is profitable and on the map.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeAgencies(md *markdown.Markdown, d *pipeline.Dashboard) {
	md.H2("Agencies")
	md.PlainText("")

	if d.Rows == nil || d.Rows.Len() == 0 {
		md.PlainText("No agencies match.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, d.Rows.Len())
	for _, row := range d.Rows.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = escapeCell(c)
		}
		rows = append(rows, cells)
	}
	md.Table(markdown.TableSet{
		Header: d.Rows.Columns,
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeRanking(md *markdown.Markdown, s *Summary) {
	md.H2("Profit Ranking")
	md.PlainText("")

	if len(s.Ranking) == 0 {
		md.PlainText("No agencies to rank.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(s.Ranking))
	for i, r := range s.Ranking {
		amount := model.FormatEuro(r.Profit)
		if r.Loss {
			amount = "**" + amount + "**"
		}
		rows[i] = []string{strconv.Itoa(r.Rank), escapeCell(r.Name), escapeCell(r.Locality), amount}
	}
	md.Table(markdown.TableSet{
		Header:    []string{"#", "Agency", "Locality", "Profit after tax"},
		Rows:      rows,
		Alignment: []markdown.TableAlignment{markdown.AlignRight, markdown.AlignLeft, markdown.AlignLeft, markdown.AlignRight},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeCoverage(md *markdown.Markdown, s *Summary) {
	md.H2("Map Coverage")
	md.PlainText("")

	if s.Records > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Agencies on the map"),
			piechart.WithShowData(true),
		)
		if s.Placed > 0 {
			chart.LabelAndIntValue("Placed", uint64(s.Placed)) //nolint:gosec // counts are never negative
		}
		if s.ExcludedCount() > 0 {
			chart.LabelAndIntValue("No coordinates", uint64(s.ExcludedCount())) //nolint:gosec // counts are never negative
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	if s.Filled > 0 {
		md.PlainTextf("%d agency(ies) were placed from the configured locality table.", s.Filled)
		md.PlainText("")
	}

	if s.ExcludedCount() == 0 {
		md.PlainText("Every agency has a marker.")
		md.PlainText("")
		return
	}

	items := make([]string, len(s.Excluded))
	for i, e := range s.Excluded {
		items[i] = e.Name + " (line " + strconv.Itoa(e.Line) + ")"
	}
	md.PlainText("Agencies without coordinates:")
	md.PlainText("")
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [agencydash](https://github.com/nao1215/agencydash)*")
}

// escapeCell keeps pipes and line breaks from breaking a table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
