package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/agencydash/internal/config"
	"github.com/nao1215/agencydash/internal/database"
	"github.com/nao1215/agencydash/internal/dataset"
	"github.com/nao1215/agencydash/internal/model"
	"github.com/nao1215/agencydash/internal/view"
)

// ErrNotLoaded is returned by view steps that run without a loaded dataset.
var ErrNotLoaded = errors.New("dataset not loaded")

// Step names, in the order NewRenderPipeline runs them.
const (
	StepLoad     = "load"
	StepLocality = "locality"
	StepTable    = "table"
	StepSearch   = "search"
	StepChart    = "chart"
	StepMap      = "map"
)

// LoadStep reads the dataset file.
type LoadStep struct {
	delimiter rune
}

// NewLoadStep creates a load step. A zero delimiter keeps the default.
func NewLoadStep(delimiter rune) *LoadStep {
	return &LoadStep{delimiter: delimiter}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return StepLoad
}

// Do loads d.Source. On failure the dashboard keeps no dataset and no records.
func (s *LoadStep) Do(_ context.Context, d *Dashboard) error {
	ds, err := dataset.Load(d.Source, dataset.WithDelimiter(s.delimiter))
	if err != nil {
		d.Dataset = nil
		d.Records = nil
		return err
	}
	d.Dataset = ds
	d.Records = ds.Records()
	return nil
}

// LocalityStep places records that have no coordinates at the position
// configured for their locality. Records with coordinates are never moved.
type LocalityStep struct {
	localities map[string]model.Coordinate
	logger     *slog.Logger
}

// NewLocalityStep creates a locality fill step.
func NewLocalityStep(localities map[string]model.Coordinate, logger *slog.Logger) *LocalityStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalityStep{localities: localities, logger: logger}
}

// Name returns the step name.
func (s *LocalityStep) Name() string {
	return StepLocality
}

// Do fills missing coordinates from the locality table.
func (s *LocalityStep) Do(_ context.Context, d *Dashboard) error {
	if d.Dataset == nil {
		return ErrNotLoaded
	}
	if len(s.localities) == 0 {
		return nil
	}
	for i, r := range d.Records {
		if r.HasCoordinate() {
			continue
		}
		pos, ok := s.localities[r.Locality]
		if !ok {
			continue
		}
		d.Records[i] = r.WithCoordinate(pos)
		d.Filled = append(d.Filled, i)
		s.logger.Debug("placed from locality",
			"agency", r.Name,
			"locality", r.Locality,
			"line", r.Line,
		)
	}
	return nil
}

// TableStep builds the table view.
type TableStep struct{}

// NewTableStep creates a table step.
func NewTableStep() *TableStep {
	return &TableStep{}
}

// Name returns the step name.
func (s *TableStep) Name() string {
	return StepTable
}

// Do builds the full table. Rows starts as the full table.
func (s *TableStep) Do(_ context.Context, d *Dashboard) error {
	if d.Dataset == nil {
		return ErrNotLoaded
	}
	d.Table = view.NewTable(d.Dataset.Headers(), d.Records)
	d.Rows = d.Table
	return nil
}

// SearchStep applies the request's search and sort to the table through
// an in-memory SQLite index.
type SearchStep struct{}

// NewSearchStep creates a search step.
func NewSearchStep() *SearchStep {
	return &SearchStep{}
}

// Name returns the step name.
func (s *SearchStep) Name() string {
	return StepSearch
}

// Do narrows d.Rows to the matching rows in the requested order.
func (s *SearchStep) Do(ctx context.Context, d *Dashboard) error {
	if d.Table == nil {
		return ErrNotLoaded
	}
	req := d.Request
	if req.Query == "" && req.SortColumn == "" {
		d.Rows = d.Table
		return nil
	}

	idx, err := database.Open(ctx, d.Records)
	if err != nil {
		return fmt.Errorf("failed to index records: %w", err)
	}
	defer idx.Close()

	positions, err := idx.Search(ctx, req.Query, req.SortColumn, req.Descending)
	if err != nil {
		return err
	}
	d.Rows = d.Table.Select(positions)
	return nil
}

// ChartStep builds the profit chart.
type ChartStep struct{}

// NewChartStep creates a chart step.
func NewChartStep() *ChartStep {
	return &ChartStep{}
}

// Name returns the step name.
func (s *ChartStep) Name() string {
	return StepChart
}

// Do builds one bar per record. The chart ignores the table search.
func (s *ChartStep) Do(_ context.Context, d *Dashboard) error {
	if d.Dataset == nil {
		return ErrNotLoaded
	}
	d.Chart = view.NewChart(d.Records)
	return nil
}

// MapStep builds the map view.
type MapStep struct {
	reference model.Coordinate
	zoom      int
	logger    *slog.Logger
}

// NewMapStep creates a map step centred on reference.
func NewMapStep(reference model.Coordinate, zoom int, logger *slog.Logger) *MapStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &MapStep{reference: reference, zoom: zoom, logger: logger}
}

// Name returns the step name.
func (s *MapStep) Name() string {
	return StepMap
}

// Do places the records. Records without coordinates are reported as
// exclusions on the map and do not fail the render.
func (s *MapStep) Do(_ context.Context, d *Dashboard) error {
	if d.Dataset == nil {
		return ErrNotLoaded
	}
	m := view.NewMap(d.Records, s.reference)
	if s.zoom > 0 {
		m.Zoom = s.zoom
	}
	for _, e := range m.Excluded {
		s.logger.Info("agency left off the map",
			"agency", e.Name,
			"line", e.Line,
			"reason", e.Err,
		)
	}
	d.Map = m
	return nil
}

// NewRenderPipeline builds the standard render:
// load, locality, table, search, chart, map.
func NewRenderPipeline(cfg *config.Config, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewLoadStep(cfg.Delimiter),
		NewLocalityStep(cfg.Localities, p.logger),
		NewTableStep(),
		NewSearchStep(),
		NewChartStep(),
		NewMapStep(cfg.Reference, cfg.Zoom, p.logger),
	)
	return p
}

// Render runs the standard render for cfg.DataFile and returns the dashboard.
// The error, if any, is also stored in the dashboard.
func Render(ctx context.Context, cfg *config.Config, req Request, opts ...Option) (*Dashboard, error) {
	d := NewDashboard(cfg.DataFile, req)
	err := NewRenderPipeline(cfg, opts...).Execute(ctx, d)
	return d, err
}
