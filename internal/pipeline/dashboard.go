package pipeline

import (
	"time"

	"github.com/nao1215/agencydash/internal/dataset"
	"github.com/nao1215/agencydash/internal/model"
	"github.com/nao1215/agencydash/internal/view"
)

// Request describes what the user asked for in one interaction.
type Request struct {
	// Query filters the table rows. Empty keeps every row.
	Query string
	// SortColumn orders the table rows. Empty keeps file order.
	SortColumn string
	// Descending reverses the sort.
	Descending bool
}

// Dashboard is the outcome of one render.
type Dashboard struct {
	// Source is the dataset path.
	Source string

	// Request is the user's search and sort.
	Request Request

	// Dataset is nil when loading failed.
	Dataset *dataset.Dataset

	// Records are the dataset records after locality fill.
	Records []model.Record

	// Filled lists the positions of records placed from the locality table.
	Filled []int

	// Table is the full table; Rows is the searched and sorted table shown to the user.
	Table *view.Table
	Rows  *view.Table

	Chart *view.Chart
	Map   *view.Map

	// Err is the error that stopped the render, if any.
	Err error

	// RenderedAt is when the render started.
	RenderedAt time.Time

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string
}

// NewDashboard creates an empty dashboard for the dataset at source.
func NewDashboard(source string, req Request) *Dashboard {
	return &Dashboard{
		Source:         source,
		Request:        req,
		RenderedAt:     time.Now(),
		PerformedSteps: make([]string, 0),
	}
}

// Failed reports whether the render stopped on an error.
func (d *Dashboard) Failed() bool {
	return d.Err != nil
}

// Fingerprint returns the dataset fingerprint, or "" when nothing was loaded.
func (d *Dashboard) Fingerprint() string {
	if d.Dataset == nil {
		return ""
	}
	return d.Dataset.Fingerprint()
}

// Headers returns the dataset headers, or the canonical columns when
// nothing was loaded.
func (d *Dashboard) Headers() []string {
	if d.Dataset == nil {
		return model.Columns()
	}
	return d.Dataset.Headers()
}
