package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/nao1215/agencydash/internal/model"
	"github.com/nao1215/agencydash/internal/pipeline"
	"github.com/nao1215/agencydash/internal/view"
)

// Summary holds the headline figures of one dashboard.
type Summary struct {
	// Source is the dataset path.
	Source string `json:"source"`

	// Fingerprint is the SHA3-256 digest of the dataset file.
	Fingerprint string `json:"fingerprint,omitempty"`

	// RenderedAt is when the dashboard was rendered.
	RenderedAt time.Time `json:"rendered_at"`

	// Query is the table search, if any.
	Query string `json:"query,omitempty"`

	// Records is the number of agencies in the file.
	Records int `json:"records"`

	// Shown is the number of table rows left after the search.
	Shown int `json:"shown"`

	// Placed is the number of agencies with a map marker.
	Placed int `json:"placed"`

	// Filled is the number of agencies placed from the locality table.
	Filled int `json:"filled"`

	// Losses is the number of agencies with a negative profit.
	Losses int `json:"losses"`

	// TotalProfit is the sum of every agency's profit.
	TotalProfit float64 `json:"total_profit"`

	// Ranking lists the agencies by profit, highest first.
	Ranking []Ranked `json:"ranking"`

	// Excluded lists the agencies left off the map.
	Excluded []view.Exclusion `json:"excluded,omitempty"`

	// Error is the render error, empty on success.
	Error string `json:"error,omitempty"`
}

// Ranked is one line of the profit ranking.
type Ranked struct {
	Rank     int     `json:"rank"`
	Name     string  `json:"name"`
	Locality string  `json:"locality"`
	Profit   float64 `json:"profit"`
	Loss     bool    `json:"loss"`
}

// NewSummary condenses d. A failed dashboard yields a summary that only
// carries the source, the render time and the error.
func NewSummary(d *pipeline.Dashboard) *Summary {
	s := &Summary{
		Source:      d.Source,
		Fingerprint: d.Fingerprint(),
		RenderedAt:  d.RenderedAt,
		Query:       d.Request.Query,
		Ranking:     make([]Ranked, 0, len(d.Records)),
	}
	if d.Err != nil {
		s.Error = d.Err.Error()
		return s
	}

	s.Records = len(d.Records)
	s.Shown = s.Records
	if d.Rows != nil {
		s.Shown = d.Rows.Len()
	}
	s.Filled = len(d.Filled)
	if d.Map != nil {
		s.Placed = len(d.Map.Markers)
		s.Excluded = append(s.Excluded, d.Map.Excluded...)
	}

	for _, r := range d.Records {
		s.TotalProfit += r.Profit.Value
		if r.Profit.Negative() {
			s.Losses++
		}
		s.Ranking = append(s.Ranking, Ranked{
			Name:     r.Name,
			Locality: r.Locality,
			Profit:   r.Profit.Value,
			Loss:     r.Profit.Negative(),
		})
	}
	slices.SortStableFunc(s.Ranking, func(a, b Ranked) int {
		return cmp.Compare(b.Profit, a.Profit)
	})
	for i := range s.Ranking {
		s.Ranking[i].Rank = i + 1
	}
	return s
}

// Failed reports whether the summarised render failed.
func (s *Summary) Failed() bool {
	return s.Error != ""
}

// ExcludedCount returns the number of agencies that are in the table but not on the map.
func (s *Summary) ExcludedCount() int {
	return len(s.Excluded)
}

// shownRecords returns the records behind the visible table rows, in row order.
func shownRecords(d *pipeline.Dashboard) []model.Record {
	if d.Rows == nil {
		return d.Records
	}
	out := make([]model.Record, 0, d.Rows.Len())
	for _, row := range d.Rows.Rows {
		if row.Index >= 0 && row.Index < len(d.Records) {
			out = append(out, d.Records[row.Index])
		}
	}
	return out
}
