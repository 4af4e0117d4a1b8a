package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/agencydash/internal/model"
	"github.com/nao1215/agencydash/internal/textutil"
)

// TableName is the name of the agency table visible to `query`.
const TableName = "agencies"

// Index errors.
var (
	// ErrUnknownSortColumn is returned when Search is asked to sort by a
	// column the index does not know.
	ErrUnknownSortColumn = errors.New("unknown sort column")

	// ErrNotReadOnly is returned when Query receives anything but a single
	// SELECT statement.
	ErrNotReadOnly = errors.New("only a single SELECT statement is allowed")
)

// sortColumns maps accepted sort keys to SQL order expressions. Both the
// dataset headers and the SQL column names are accepted.
var sortColumns = map[string]string{
	model.ColumnName:        "name COLLATE NOCASE",
	model.ColumnAddress:     "address COLLATE NOCASE",
	model.ColumnSocialMedia: "social_media COLLATE NOCASE",
	model.ColumnEmail:       "email COLLATE NOCASE",
	model.ColumnZipCode:     "zip_code",
	model.ColumnLocality:    "locality COLLATE NOCASE",
	model.ColumnCompanySize: "employees IS NULL, employees, company_size",
	model.ColumnVATNumber:   "vat_number",
	model.ColumnProfit:      "profit",
	model.ColumnLatitude:    "latitude IS NULL, latitude",
	model.ColumnLongitude:   "longitude IS NULL, longitude",

	"name":         "name COLLATE NOCASE",
	"address":      "address COLLATE NOCASE",
	"social_media": "social_media COLLATE NOCASE",
	"email":        "email COLLATE NOCASE",
	"zip_code":     "zip_code",
	"locality":     "locality COLLATE NOCASE",
	"company_size": "employees IS NULL, employees, company_size",
	"vat_number":   "vat_number",
	"profit":       "profit",
	"latitude":     "latitude IS NULL, latitude",
	"longitude":    "longitude IS NULL, longitude",
}

// Index is an in-memory SQLite copy of the agency records.
type Index struct {
	db *sql.DB
}

// Open creates an in-memory index holding records. Row ids are the record
// positions, so search results map straight back to the dataset.
func Open(ctx context.Context, records []model.Record) (*Index, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	idx := &Index{db: db}
	if err := idx.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	if err := idx.insert(ctx, records); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to make index read-only: %w", err)
	}
	return idx, nil
}

// Close releases the index.
func (idx *Index) Close() error {
	return idx.db.Close()
}

func (idx *Index) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE agencies (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		social_media TEXT NOT NULL,
		email TEXT NOT NULL,
		zip_code TEXT NOT NULL,
		locality TEXT NOT NULL,
		company_size TEXT NOT NULL,
		employees INTEGER,
		vat_number TEXT NOT NULL,
		profit REAL NOT NULL,
		profit_raw TEXT NOT NULL,
		latitude REAL,
		longitude REAL,
		line INTEGER NOT NULL,
		search_text TEXT NOT NULL
	);

	CREATE INDEX idx_agencies_locality ON agencies(locality);
	CREATE INDEX idx_agencies_profit ON agencies(profit);
	`
	_, err := idx.db.ExecContext(ctx, schema)
	return err
}

func (idx *Index) insert(ctx context.Context, records []model.Record) error {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO agencies (
		position, name, address, social_media, email, zip_code, locality,
		company_size, employees, vat_number, profit, profit_raw,
		latitude, longitude, line, search_text
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var employees, lat, lon interface{}
		if r.CompanySize.IsCount {
			employees = r.CompanySize.Employees
		}
		if r.Coordinate != nil {
			lat, lon = r.Coordinate.Lat, r.Coordinate.Lon
		}
		_, err := stmt.ExecContext(ctx,
			i,
			r.Name,
			r.Address,
			strings.Join(r.SocialMedia, "; "),
			r.Email,
			r.ZipCode,
			r.Locality,
			r.CompanySize.Raw,
			employees,
			r.VATNumber,
			r.Profit.Value,
			r.Profit.Raw,
			lat,
			lon,
			r.Line,
			searchText(r),
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert %q: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

// searchText is the folded text a search query is matched against.
// The raw cells are used when present so a search sees what the table shows.
func searchText(r model.Record) string {
	parts := r.Cells
	if len(parts) == 0 {
		parts = []string{
			r.Name, r.Address, strings.Join(r.SocialMedia, " "), r.Email, r.ZipCode,
			r.Locality, r.CompanySize.Raw, r.VATNumber, r.Profit.Raw,
		}
	}
	return textutil.Fold(strings.Join(parts, " \x1f "))
}

// Count returns the number of indexed records.
func (idx *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := idx.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM agencies").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Search returns the positions of the records matching query, ordered by
// sortColumn. Matching ignores case and accents; an empty query matches
// every record. An empty sortColumn keeps file order. Ties always fall
// back to file order.
func (idx *Index) Search(ctx context.Context, query, sortColumn string, desc bool) ([]int, error) {
	order := "position"
	if sortColumn != "" {
		expr, ok := sortColumns[sortColumn]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSortColumn, sortColumn)
		}
		if desc {
			expr = descending(expr)
		}
		order = expr + ", position"
	}

	q := "SELECT position FROM agencies"
	var args []interface{}
	if folded := textutil.Fold(query); folded != "" {
		// instr avoids LIKE wildcards in user input.
		q += " WHERE instr(search_text, ?) > 0"
		args = append(args, folded)
	}
	q += " ORDER BY " + order
	rows, err := idx.db.QueryContext(ctx, q, args...) //nolint:gosec // order comes from sortColumns
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}
	defer rows.Close()

	positions := make([]int, 0)
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search results: %w", err)
	}
	return positions, nil
}

// descending appends DESC to every term of an order expression except
// the "IS NULL" guards, which keep empty values last.
func descending(expr string) string {
	terms := strings.Split(expr, ", ")
	for i, term := range terms {
		if strings.HasSuffix(term, "IS NULL") {
			continue
		}
		terms[i] = term + " DESC"
	}
	return strings.Join(terms, ", ")
}

// SortKeys returns the SQL column names accepted by Search.
func SortKeys() []string {
	return []string{
		"name", "address", "social_media", "email", "zip_code", "locality",
		"company_size", "vat_number", "profit", "latitude", "longitude",
	}
}

// Result is the outcome of a read-only query.
type Result struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Query runs a single read-only SELECT (or WITH ... SELECT) statement
// against the agencies table and returns every value as text.
// NULL becomes the empty string.
func (idx *Index) Query(ctx context.Context, statement string) (*Result, error) {
	stmt := strings.TrimSpace(statement)
	stmt = strings.TrimSpace(strings.TrimSuffix(stmt, ";"))
	fields := strings.Fields(stmt)
	if len(fields) == 0 || strings.Contains(stmt, ";") {
		return nil, ErrNotReadOnly
	}
	if head := strings.ToUpper(fields[0]); head != "SELECT" && head != "WITH" {
		return nil, ErrNotReadOnly
	}

	rows, err := idx.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	result := &Result{Columns: columns, Rows: make([][]string, 0)}
	values := make([]interface{}, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]string, len(columns))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return result, nil
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
