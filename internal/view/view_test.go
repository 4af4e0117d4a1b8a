package view

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nao1215/agencydash/internal/dataset"
	"github.com/nao1215/agencydash/internal/model"
)

// loadAgencies loads the shipped sample agencies.
func loadAgencies(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(filepath.Join("..", "dataset", "testdata", "agencies.csv"))
	require.NoError(t, err)
	return ds
}

// loadMissingCoordinates loads the sample where two agencies lack a position.
func loadMissingCoordinates(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(filepath.Join("..", "dataset", "testdata", "missing_coordinates.csv"))
	require.NoError(t, err)
	return ds
}

func record(name string, profit float64, coord *model.Coordinate) model.Record {
	return model.Record{
		Name:       name,
		Profit:     model.Profit{Value: profit},
		Coordinate: coord,
	}
}
