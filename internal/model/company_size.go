package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// sizeCleaner strips grouping characters from headcounts like "1,200" or "1 200".
var sizeCleaner = strings.NewReplacer(",", "", ".", "", " ", "", "\u00a0", "")

// CompanySize is either an employee count or a categorical band.
// The dataset mixes both ("25", "10-49", "Large"), so the raw text is kept
// and the count is only set when the cell is a plain integer.
type CompanySize struct {
	// Raw is the cell text.
	Raw string
	// Employees is the headcount. Valid only when IsCount is true.
	Employees int
	// IsCount reports whether Raw parsed as an integer.
	IsCount bool
}

// ParseCompanySize interprets a company size cell. It never fails:
// anything that is not an integer is treated as a band.
func ParseCompanySize(s string) CompanySize {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return CompanySize{}
	}
	if n, err := strconv.Atoi(sizeCleaner.Replace(raw)); err == nil {
		return CompanySize{Raw: raw, Employees: n, IsCount: true}
	}
	return CompanySize{Raw: raw}
}

// Band returns the categorical band, or "" when the size is a count.
func (c CompanySize) Band() string {
	if c.IsCount {
		return ""
	}
	return c.Raw
}

// String returns the size as written in the dataset.
func (c CompanySize) String() string {
	return c.Raw
}

// MarshalJSON encodes a count as a number and a band as a string.
func (c CompanySize) MarshalJSON() ([]byte, error) {
	if c.IsCount {
		return json.Marshal(c.Employees)
	}
	return json.Marshal(c.Raw)
}
