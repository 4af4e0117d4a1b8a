// Package browse is the interactive terminal browser behind `agencydash browse`.
//
// The browser is a small state machine: keystrokes edit the live search or
// move the selection, Enter opens the selected agency and Escape goes back
// or quits. It reads keys from any io.Reader and draws to any io.Writer, so
// the terminal handling (raw mode, window size) stays in the command.
package browse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/agencydash/internal/model"
	"github.com/nao1215/agencydash/internal/pipeline"
	"github.com/nao1215/agencydash/internal/view"
)

// ErrNoDashboard is returned by New for a dashboard that failed to render.
var ErrNoDashboard = errors.New("nothing to browse")

// DefaultHeight is the screen height used when the terminal size is unknown.
const DefaultHeight = 24

// ANSI control sequences.
const (
	clearScreen = "\033[H\033[2J"
	lineBreak   = "\r\n"
)

// Browser holds the browse state for one dashboard.
type Browser struct {
	table   *view.Table
	records []model.Record
	placed  map[int]bool

	query    []rune
	rows     *view.Table
	selected int
	offset   int
	detail   bool
	height   int

	nameCol     int
	localityCol int
	profitCol   int
}

// Option configures a Browser.
type Option func(*Browser)

// WithHeight sets the screen height in lines.
func WithHeight(lines int) Option {
	return func(b *Browser) {
		if lines > 0 {
			b.height = lines
		}
	}
}

// New creates a browser over a rendered dashboard.
func New(d *pipeline.Dashboard, opts ...Option) (*Browser, error) {
	if d == nil || d.Failed() || d.Table == nil {
		if d != nil && d.Err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoDashboard, d.Err)
		}
		return nil, ErrNoDashboard
	}

	b := &Browser{
		table:   d.Table,
		records: d.Records,
		placed:  make(map[int]bool),
		rows:    d.Table,
		height:  DefaultHeight,
	}
	if d.Map != nil {
		for _, m := range d.Map.Markers {
			b.placed[m.Index] = true
		}
	}
	b.nameCol = d.Table.ColumnIndex(model.ColumnName)
	b.localityCol = d.Table.ColumnIndex(model.ColumnLocality)
	b.profitCol = d.Table.ColumnIndex(model.ColumnProfit)

	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Query returns the current search text.
func (b *Browser) Query() string {
	return string(b.query)
}

// Rows returns the rows matching the current search.
func (b *Browser) Rows() *view.Table {
	return b.rows
}

// Selected returns the highlighted row, if any row matches.
func (b *Browser) Selected() (view.Row, bool) {
	if b.rows.Len() == 0 {
		return view.Row{}, false
	}
	return b.rows.Rows[b.selected], true
}

// InDetail reports whether the detail view of the selected agency is open.
func (b *Browser) InDetail() bool {
	return b.detail
}

// Handle applies one keystroke and reports whether the browser should quit.
func (b *Browser) Handle(k Key, r rune) bool {
	if k == KeyInterrupt {
		return true
	}

	if b.detail {
		switch k {
		case KeyEscape, KeyEnter, KeyBackspace:
			b.detail = false
		}
		return false
	}

	switch k {
	case KeyEscape:
		return true
	case KeyRune:
		b.query = append(b.query, r)
		b.search()
	case KeyBackspace:
		if len(b.query) > 0 {
			b.query = b.query[:len(b.query)-1]
			b.search()
		}
	case KeyUp:
		b.move(-1)
	case KeyDown:
		b.move(1)
	case KeyPageUp:
		b.move(-b.pageSize())
	case KeyPageDown:
		b.move(b.pageSize())
	case KeyEnter:
		if b.rows.Len() > 0 {
			b.detail = true
		}
	}
	return false
}

func (b *Browser) search() {
	b.rows = b.table.Filter(string(b.query))
	b.selected = 0
	b.offset = 0
}

func (b *Browser) move(delta int) {
	n := b.rows.Len()
	if n == 0 {
		return
	}
	b.selected = min(max(b.selected+delta, 0), n-1)

	page := b.pageSize()
	if b.selected < b.offset {
		b.offset = b.selected
	}
	if b.selected >= b.offset+page {
		b.offset = b.selected - page + 1
	}
}

// pageSize is the number of list lines that fit below the header and
// above the help line.
func (b *Browser) pageSize() int {
	return max(b.height-4, 1)
}

// Render draws the current screen.
func (b *Browser) Render(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString(clearScreen)
	if b.detail {
		b.renderDetail(&sb)
	} else {
		b.renderList(&sb)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (b *Browser) renderList(sb *strings.Builder) {
	fmt.Fprintf(sb, "Search: %s_%s", string(b.query), lineBreak)
	fmt.Fprintf(sb, "%d of %d agencies%s", b.rows.Len(), b.table.Len(), lineBreak)

	end := min(b.offset+b.pageSize(), b.rows.Len())
	for i := b.offset; i < end; i++ {
		prefix := "  "
		if i == b.selected {
			prefix = "> "
		}
		sb.WriteString(prefix + b.summaryLine(b.rows.Rows[i]) + lineBreak)
	}
	if b.rows.Len() == 0 {
		sb.WriteString("  (no agencies match)" + lineBreak)
	}
	sb.WriteString("(type to search, ↑/↓ to move, Enter for details, Esc to quit)" + lineBreak)
}

func (b *Browser) summaryLine(row view.Row) string {
	cell := func(i int) string {
		if i < 0 || i >= len(row.Cells) {
			return ""
		}
		return row.Cells[i]
	}
	line := fmt.Sprintf("%-32s %-24s %16s", truncate(cell(b.nameCol), 32), truncate(cell(b.localityCol), 24), cell(b.profitCol))
	if row.Loss {
		line += "  loss"
	}
	return line
}

func (b *Browser) renderDetail(sb *strings.Builder) {
	row, ok := b.Selected()
	if !ok {
		return
	}
	width := 0
	for _, c := range b.table.Columns {
		width = max(width, len([]rune(c)))
	}
	for i, c := range b.table.Columns {
		value := ""
		if i < len(row.Cells) {
			value = row.Cells[i]
		}
		fmt.Fprintf(sb, "%-*s  %s%s", width, c, value, lineBreak)
	}
	sb.WriteString(lineBreak)

	if row.Index >= 0 && row.Index < len(b.records) {
		fmt.Fprintf(sb, "%-*s  %s%s", width, "Profit", b.records[row.Index].Profit, lineBreak)
	}
	mapStatus := "on the map"
	if !b.placed[row.Index] {
		mapStatus = "not on the map (no coordinates)"
	}
	fmt.Fprintf(sb, "%-*s  %s%s", width, "Map", mapStatus, lineBreak)
	sb.WriteString(lineBreak + "(Esc or Enter to go back)" + lineBreak)
}

// Run draws the browser and handles keys from in until the user quits or
// in is exhausted.
func (b *Browser) Run(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	if err := b.Render(out); err != nil {
		return err
	}
	for {
		k, r, err := ReadKey(reader)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
		if b.Handle(k, r) {
			_, err := io.WriteString(out, lineBreak)
			return err
		}
		if err := b.Render(out); err != nil {
			return err
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
