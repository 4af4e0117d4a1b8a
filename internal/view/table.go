package view

import (
	"strconv"
	"strings"

	"github.com/nao1215/agencydash/internal/model"
	"github.com/nao1215/agencydash/internal/textutil"
)

// Table is the searchable grid view.
type Table struct {
	// Columns are the dataset headers, verbatim and in file order.
	Columns []string
	// Rows holds one row per record.
	Rows []Row
}

// Row is one table row.
type Row struct {
	// Index is the record position in the dataset.
	Index int
	// Cells are aligned with Table.Columns.
	Cells []string
	// Loss is true when the agency posted a negative profit.
	Loss bool
}

// NewTable builds a table with one row per record.
// When headers is empty the canonical column order is used.
func NewTable(headers []string, records []model.Record) *Table {
	if len(headers) == 0 {
		headers = model.Columns()
	}
	t := &Table{
		Columns: append([]string(nil), headers...),
		Rows:    make([]Row, len(records)),
	}
	for i, r := range records {
		t.Rows[i] = Row{
			Index: i,
			Cells: cellsFor(r, t.Columns),
			Loss:  r.Profit.Negative(),
		}
	}
	return t
}

// cellsFor returns the raw cells when they line up with the columns and
// rebuilds them from the typed fields otherwise.
func cellsFor(r model.Record, columns []string) []string {
	if len(r.Cells) == len(columns) {
		return append([]string(nil), r.Cells...)
	}
	cells := make([]string, len(columns))
	for i, c := range columns {
		cells[i] = fieldText(r, c)
	}
	return cells
}

func fieldText(r model.Record, column string) string {
	switch column {
	case model.ColumnName:
		return r.Name
	case model.ColumnAddress:
		return r.Address
	case model.ColumnSocialMedia:
		return strings.Join(r.SocialMedia, "; ")
	case model.ColumnEmail:
		return r.Email
	case model.ColumnZipCode:
		return r.ZipCode
	case model.ColumnLocality:
		return r.Locality
	case model.ColumnCompanySize:
		return r.CompanySize.String()
	case model.ColumnVATNumber:
		return r.VATNumber
	case model.ColumnProfit:
		if r.Profit.Raw != "" {
			return r.Profit.Raw
		}
		return strconv.FormatFloat(r.Profit.Value, 'f', -1, 64)
	case model.ColumnLatitude:
		if r.Coordinate == nil {
			return ""
		}
		return strconv.FormatFloat(r.Coordinate.Lat, 'f', -1, 64)
	case model.ColumnLongitude:
		if r.Coordinate == nil {
			return ""
		}
		return strconv.FormatFloat(r.Coordinate.Lon, 'f', -1, 64)
	default:
		return ""
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Filter returns a new table with the rows where any cell contains query,
// ignoring case and accents. An empty query keeps every row.
func (t *Table) Filter(query string) *Table {
	out := &Table{Columns: t.Columns}
	for _, row := range t.Rows {
		if rowMatches(row, query) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

func rowMatches(row Row, query string) bool {
	return textutil.Contains(strings.Join(row.Cells, "\x1f"), query)
}

// Select returns a new table holding the rows whose Index is listed,
// in the order given. Unknown indices are skipped.
func (t *Table) Select(indices []int) *Table {
	byIndex := make(map[int]Row, len(t.Rows))
	for _, row := range t.Rows {
		byIndex[row.Index] = row
	}
	out := &Table{Columns: t.Columns, Rows: make([]Row, 0, len(indices))}
	for _, i := range indices {
		if row, ok := byIndex[i]; ok {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// ColumnIndex returns the position of column, or -1.
func (t *Table) ColumnIndex(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}
