package dataset

import (
	"strings"

	"github.com/nao1215/agencydash/internal/model"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// stripHeaderBOM removes a UTF-8 BOM from the first header cell.
// Spreadsheet exports on Windows routinely add one.
func stripHeaderBOM(headers []string) []string {
	if len(headers) == 0 {
		return headers
	}
	headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	return headers
}

// checkSchema verifies that headers hold exactly the agency columns and
// returns the position of every column.
func checkSchema(headers []string) (map[string]int, error) {
	expected := make(map[string]bool)
	for _, c := range model.Columns() {
		expected[c] = true
	}

	index := make(map[string]int, len(headers))
	var schemaErr SchemaError
	for i, h := range headers {
		name := strings.TrimSpace(h)
		if !expected[name] {
			schemaErr.Unexpected = append(schemaErr.Unexpected, name)
			continue
		}
		if _, seen := index[name]; seen {
			schemaErr.Duplicate = append(schemaErr.Duplicate, name)
			continue
		}
		index[name] = i
	}
	for _, c := range model.Columns() {
		if _, ok := index[c]; !ok {
			schemaErr.Missing = append(schemaErr.Missing, c)
		}
	}

	if len(schemaErr.Unexpected) > 0 || len(schemaErr.Missing) > 0 || len(schemaErr.Duplicate) > 0 {
		return nil, &schemaErr
	}
	return index, nil
}

// splitSocialMedia splits a social media cell on ';', '|' or newlines.
func splitSocialMedia(cell string) []string {
	fields := strings.FieldsFunc(cell, func(r rune) bool {
		return r == ';' || r == '|' || r == '\n'
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
