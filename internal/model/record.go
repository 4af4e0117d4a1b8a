package model

// Dataset column headers.
// The header row of an agency file must contain exactly these names.
const (
	// ColumnName is the agency's trading name.
	ColumnName = "Name"
	// ColumnAddress is the head office street address.
	ColumnAddress = "Address"
	// ColumnSocialMedia holds one or more social media handles or URLs.
	ColumnSocialMedia = "Social media"
	// ColumnEmail is the public contact e-mail address.
	ColumnEmail = "Email"
	// ColumnZipCode is the Belgian postal code. It is kept as text.
	ColumnZipCode = "Zip code"
	// ColumnLocality is the municipality or district of the head office.
	ColumnLocality = "Locality"
	// ColumnCompanySize is an employee count or a size band such as "10-49".
	ColumnCompanySize = "Company size"
	// ColumnVATNumber is the Belgian enterprise/VAT number.
	ColumnVATNumber = "VAT number"
	// ColumnProfit is the latest published profit after tax in euros.
	ColumnProfit = "Latest profit after tax (€)"
	// ColumnLatitude is the approximate latitude in decimal degrees.
	ColumnLatitude = "Latitude"
	// ColumnLongitude is the approximate longitude in decimal degrees.
	ColumnLongitude = "Longitude"
)

// Columns returns the dataset columns in their canonical order.
// A new slice is returned on every call.
func Columns() []string {
	return []string{
		ColumnName,
		ColumnAddress,
		ColumnSocialMedia,
		ColumnEmail,
		ColumnZipCode,
		ColumnLocality,
		ColumnCompanySize,
		ColumnVATNumber,
		ColumnProfit,
		ColumnLatitude,
		ColumnLongitude,
	}
}

// Record is a single Agency Record: one data row of the agency file.
type Record struct {
	// Name is the agency name. It keys the chart bars and map markers.
	Name string `json:"name"`

	// Address is the head office street address.
	Address string `json:"address"`

	// SocialMedia lists the handles found in the social media cell.
	SocialMedia []string `json:"social_media,omitempty"`

	// Email is the public contact address.
	Email string `json:"email"`

	// ZipCode is the postal code as written in the file.
	ZipCode string `json:"zip_code"`

	// Locality is the municipality of the head office.
	Locality string `json:"locality"`

	// CompanySize is the headcount or size band.
	CompanySize CompanySize `json:"company_size"`

	// VATNumber is the Belgian VAT number as written in the file.
	VATNumber string `json:"vat_number"`

	// Profit is the latest profit after tax.
	Profit Profit `json:"profit"`

	// Coordinate is nil when the latitude or longitude cell is empty.
	// Such a record cannot be placed on the map.
	Coordinate *Coordinate `json:"coordinate,omitempty"`

	// Line is the 1-based line number of the row in the source file.
	Line int `json:"line"`

	// Cells holds the raw cell values aligned with the dataset headers.
	// The table view shows these verbatim.
	Cells []string `json:"-"`
}

// HasCoordinate reports whether the record can be placed on a map.
func (r Record) HasCoordinate() bool {
	return r.Coordinate != nil
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	if r.SocialMedia != nil {
		out.SocialMedia = append([]string(nil), r.SocialMedia...)
	}
	if r.Cells != nil {
		out.Cells = append([]string(nil), r.Cells...)
	}
	if r.Coordinate != nil {
		c := *r.Coordinate
		out.Coordinate = &c
	}
	return out
}

// WithCoordinate returns a copy of the record placed at c.
// The raw cells are left untouched so the table still shows the file content.
func (r Record) WithCoordinate(c Coordinate) Record {
	out := r.Clone()
	out.Coordinate = &c
	return out
}
