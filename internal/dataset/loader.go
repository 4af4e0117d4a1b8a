package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/agencydash/internal/model"
)

// DefaultDelimiter is the field separator of the shipped agency file.
const DefaultDelimiter = ','

// Option configures the loader.
type Option func(*options)

type options struct {
	delimiter rune
}

// WithDelimiter sets the field separator. A zero rune keeps the default.
func WithDelimiter(r rune) Option {
	return func(o *options) {
		if r != 0 {
			o.delimiter = r
		}
	}
}

// Dataset is the immutable, ordered set of agency records loaded from one file.
type Dataset struct {
	source      string
	headers     []string
	records     []model.Record
	fingerprint string
}

// Load reads and parses the agency file at path.
// A missing file yields an error wrapping ErrFileNotFound.
func Load(path string, opts ...Option) (*Dataset, error) {
	data, err := os.ReadFile(path) //nolint:gosec // dataset path is chosen by the operator
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	ds, err := parse(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ds.source = path
	return ds, nil
}

// Parse reads an agency file from r. It does no I/O besides reading r.
func Parse(r io.Reader, opts ...Option) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return parse(data, opts)
}

func parse(data []byte, opts []Option) (*Dataset, error) {
	o := options{delimiter: DefaultDelimiter}
	for _, opt := range opts {
		opt(&o)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = o.delimiter
	// Width is checked per row below so the error can name the line.
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, rowErrorFrom(err)
	}
	headers = stripHeaderBOM(headers)
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	index, err := checkSchema(headers)
	if err != nil {
		return nil, err
	}

	var records []model.Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, rowErrorFrom(err)
		}
		line, _ := reader.FieldPos(0)

		if len(row) != len(headers) {
			return nil, &RowError{
				Line: line,
				Err:  fmt.Errorf("%w: expected %d, got %d", ErrFieldCount, len(headers), len(row)),
			}
		}

		rec, err := buildRecord(row, index, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	sum := sha3.Sum256(data)
	return &Dataset{
		headers:     headers,
		records:     records,
		fingerprint: hex.EncodeToString(sum[:]),
	}, nil
}

// rowErrorFrom converts an encoding/csv error into a RowError.
func rowErrorFrom(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &RowError{Line: pe.Line, Err: pe.Err}
	}
	return fmt.Errorf("%w: %w", ErrMalformedRow, err)
}

// buildRecord turns one CSV row into a record.
func buildRecord(row []string, index map[string]int, line int) (model.Record, error) {
	cell := func(col string) string {
		return strings.TrimSpace(row[index[col]])
	}

	profit, err := model.ParseProfit(cell(model.ColumnProfit))
	if err != nil {
		return model.Record{}, &RowError{Line: line, Column: model.ColumnProfit, Err: err}
	}

	coord, err := model.ParseCoordinate(cell(model.ColumnLatitude), cell(model.ColumnLongitude))
	if err != nil {
		column := model.ColumnLatitude
		var ce *model.CoordinateError
		if errors.As(err, &ce) && ce.Axis == model.AxisLongitude {
			column = model.ColumnLongitude
		}
		return model.Record{}, &RowError{Line: line, Column: column, Err: err}
	}

	return model.Record{
		Name:        cell(model.ColumnName),
		Address:     cell(model.ColumnAddress),
		SocialMedia: splitSocialMedia(row[index[model.ColumnSocialMedia]]),
		Email:       cell(model.ColumnEmail),
		ZipCode:     cell(model.ColumnZipCode),
		Locality:    cell(model.ColumnLocality),
		CompanySize: model.ParseCompanySize(cell(model.ColumnCompanySize)),
		VATNumber:   cell(model.ColumnVATNumber),
		Profit:      profit,
		Coordinate:  coord,
		Line:        line,
		Cells:       append([]string(nil), row...),
	}, nil
}

// Records returns a copy of the records in file order.
func (d *Dataset) Records() []model.Record {
	out := make([]model.Record, len(d.records))
	for i, r := range d.records {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of data rows (the header is not counted).
func (d *Dataset) Len() int {
	return len(d.records)
}

// Headers returns the header row in file order.
func (d *Dataset) Headers() []string {
	return append([]string(nil), d.headers...)
}

// Fingerprint returns the hex SHA3-256 digest of the raw file content.
func (d *Dataset) Fingerprint() string {
	return d.fingerprint
}

// Source returns the path the dataset was loaded from, or "" for Parse.
func (d *Dataset) Source() string {
	return d.source
}
