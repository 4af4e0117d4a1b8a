package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/agencydash/internal/config"
	"github.com/nao1215/agencydash/internal/database"
	"github.com/nao1215/agencydash/internal/dataset"
	"github.com/nao1215/agencydash/internal/model"
)

func testdata(name string) string {
	return filepath.Join("..", "dataset", "testdata", name)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(dataFile string) *config.Config {
	cfg := config.NewConfig()
	cfg.DataFile = dataFile
	return cfg
}

// TestRender tests the full render pipeline.
func TestRender(t *testing.T) {
	t.Parallel()

	t.Run("builds every view", func(t *testing.T) {
		t.Parallel()

		d, err := Render(context.Background(), testConfig(testdata("agencies.csv")), Request{}, WithLogger(quietLogger()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Table == nil || d.Rows == nil || d.Chart == nil || d.Map == nil {
			t.Fatal("expected every view to be built")
		}
		if d.Table.Len() != d.Dataset.Len() {
			t.Errorf("expected %d rows, got %d", d.Dataset.Len(), d.Table.Len())
		}
		if d.Chart.Len() != d.Dataset.Len() {
			t.Errorf("expected %d bars, got %d", d.Dataset.Len(), d.Chart.Len())
		}
		want := []string{StepLoad, StepLocality, StepTable, StepSearch, StepChart, StepMap}
		if strings.Join(d.PerformedSteps, ",") != strings.Join(want, ",") {
			t.Errorf("expected steps %v, got %v", want, d.PerformedSteps)
		}
		if d.Fingerprint() == "" {
			t.Error("expected a fingerprint")
		}
	})

	t.Run("missing file stops with no views", func(t *testing.T) {
		t.Parallel()

		d, err := Render(context.Background(), testConfig(filepath.Join(t.TempDir(), "gone.csv")), Request{}, WithLogger(quietLogger()))
		if !errors.Is(err, dataset.ErrFileNotFound) {
			t.Fatalf("expected ErrFileNotFound, got %v", err)
		}
		if !d.Failed() {
			t.Error("expected dashboard to be marked failed")
		}
		if d.Table != nil || d.Chart != nil || d.Map != nil || d.Rows != nil {
			t.Error("expected no partial views")
		}
		if len(d.PerformedSteps) != 0 {
			t.Errorf("expected no performed steps, got %v", d.PerformedSteps)
		}
		if d.Fingerprint() != "" {
			t.Error("expected no fingerprint")
		}
	})

	t.Run("schema mismatch stops with no views", func(t *testing.T) {
		t.Parallel()

		d, err := Render(context.Background(), testConfig(testdata("unexpected_column.csv")), Request{}, WithLogger(quietLogger()))
		if !errors.Is(err, dataset.ErrSchemaMismatch) {
			t.Fatalf("expected ErrSchemaMismatch, got %v", err)
		}
		if d.Table != nil {
			t.Error("expected no table")
		}
	})

	t.Run("search and sort narrow the rows only", func(t *testing.T) {
		t.Parallel()

		req := Request{Query: "brussels", SortColumn: "profit", Descending: true}
		d, err := Render(context.Background(), testConfig(testdata("agencies.csv")), req, WithLogger(quietLogger()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Rows.Len() == 0 || d.Rows.Len() >= d.Table.Len() {
			t.Errorf("expected a strict subset, got %d of %d", d.Rows.Len(), d.Table.Len())
		}
		for i := 1; i < d.Rows.Len(); i++ {
			prev := d.Records[d.Rows.Rows[i-1].Index].Profit.Value
			cur := d.Records[d.Rows.Rows[i].Index].Profit.Value
			if prev < cur {
				t.Errorf("rows not sorted descending at %d", i)
			}
		}
		if d.Chart.Len() != d.Table.Len() {
			t.Error("expected the chart to keep every agency")
		}
	})

	t.Run("unknown sort column fails the render", func(t *testing.T) {
		t.Parallel()

		_, err := Render(context.Background(), testConfig(testdata("agencies.csv")), Request{SortColumn: "nope"}, WithLogger(quietLogger()))
		if !errors.Is(err, database.ErrUnknownSortColumn) {
			t.Errorf("expected ErrUnknownSortColumn, got %v", err)
		}
	})
}

// TestMissingCoordinates tests that unplaced agencies stay in the table and chart.
func TestMissingCoordinates(t *testing.T) {
	t.Parallel()

	d, err := Render(context.Background(), testConfig(testdata("missing_coordinates.csv")), Request{}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Table.Len() != 3 || d.Chart.Len() != 3 {
		t.Errorf("expected 3 rows and bars, got %d and %d", d.Table.Len(), d.Chart.Len())
	}
	if len(d.Map.Markers) != 1 || len(d.Map.Excluded) != 2 {
		t.Errorf("expected 1 marker and 2 exclusions, got %d and %d", len(d.Map.Markers), len(d.Map.Excluded))
	}
}

// TestLocalityStep tests the locality fill.
func TestLocalityStep(t *testing.T) {
	t.Parallel()

	herentals := model.Coordinate{Lat: 51.1766, Lon: 4.8325}

	t.Run("fills only records without coordinates", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(testdata("missing_coordinates.csv"))
		cfg.Localities = map[string]model.Coordinate{
			"Herentals": herentals,
			"Waterloo":  {Lat: 1, Lon: 1},
		}

		d, err := Render(context.Background(), cfg, Request{}, WithLogger(quietLogger()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(d.Filled) != 1 || d.Filled[0] != 1 {
			t.Fatalf("expected record 1 to be filled, got %v", d.Filled)
		}
		if *d.Records[1].Coordinate != herentals {
			t.Errorf("expected Herentals position, got %v", d.Records[1].Coordinate)
		}
		if d.Records[0].Coordinate.Lat == 1 {
			t.Error("a record with coordinates was moved")
		}
		if len(d.Map.Markers) != 2 || len(d.Map.Excluded) != 1 {
			t.Errorf("expected 2 markers and 1 exclusion, got %d and %d", len(d.Map.Markers), len(d.Map.Excluded))
		}
		if d.Table.Rows[1].Cells[d.Table.ColumnIndex(model.ColumnLatitude)] != "" {
			t.Error("expected the table to keep the empty file cell")
		}
	})

	t.Run("without dataset", func(t *testing.T) {
		t.Parallel()

		step := NewLocalityStep(nil, nil)
		err := step.Do(context.Background(), NewDashboard("x.csv", Request{}))
		if !errors.Is(err, ErrNotLoaded) {
			t.Errorf("expected ErrNotLoaded, got %v", err)
		}
	})
}

// TestViewStepsWithoutDataset tests that view steps refuse to run on an empty dashboard.
func TestViewStepsWithoutDataset(t *testing.T) {
	t.Parallel()

	steps := []Step{
		NewTableStep(),
		NewSearchStep(),
		NewChartStep(),
		NewMapStep(model.Brussels, 8, nil),
	}
	for _, step := range steps {
		t.Run(step.Name(), func(t *testing.T) {
			t.Parallel()
			err := step.Do(context.Background(), NewDashboard("x.csv", Request{}))
			if !errors.Is(err, ErrNotLoaded) {
				t.Errorf("expected ErrNotLoaded, got %v", err)
			}
		})
	}
}

// TestNewRenderPipeline tests the standard step order.
func TestNewRenderPipeline(t *testing.T) {
	t.Parallel()

	p := NewRenderPipeline(config.NewConfig())
	want := []string{StepLoad, StepLocality, StepTable, StepSearch, StepChart, StepMap}
	if strings.Join(p.StepNames(), ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, p.StepNames())
	}
}
