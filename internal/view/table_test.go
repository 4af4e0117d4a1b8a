package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/agencydash/internal/model"
)

func TestNewTable(t *testing.T) {
	t.Parallel()

	t.Run("one row per record", func(t *testing.T) {
		t.Parallel()
		ds := loadAgencies(t)

		table := NewTable(ds.Headers(), ds.Records())

		assert.Equal(t, ds.Len(), table.Len())
		assert.Equal(t, ds.Headers(), table.Columns)
	})

	t.Run("cells are the raw dataset values", func(t *testing.T) {
		t.Parallel()
		ds := loadAgencies(t)
		recs := ds.Records()

		table := NewTable(ds.Headers(), recs)

		for i, row := range table.Rows {
			assert.Equal(t, recs[i].Cells, row.Cells)
			assert.Equal(t, i, row.Index)
		}
		profit := table.ColumnIndex(model.ColumnProfit)
		require.GreaterOrEqual(t, profit, 0)
		assert.Equal(t, "€ 412,350", table.Rows[0].Cells[profit])
	})

	t.Run("loss rows are flagged", func(t *testing.T) {
		t.Parallel()
		ds := loadAgencies(t)

		table := NewTable(ds.Headers(), ds.Records())

		losses := 0
		for _, row := range table.Rows {
			if row.Loss {
				losses++
			}
		}
		assert.Equal(t, 2, losses)
	})

	t.Run("records without coordinates keep their row", func(t *testing.T) {
		t.Parallel()
		ds := loadMissingCoordinates(t)

		table := NewTable(ds.Headers(), ds.Records())

		assert.Equal(t, 3, table.Len())
	})

	t.Run("falls back to canonical columns and typed fields", func(t *testing.T) {
		t.Parallel()
		coord := model.Coordinate{Lat: 50.5, Lon: 4.25}
		recs := []model.Record{record("Agence", -12, &coord)}

		table := NewTable(nil, recs)

		require.Len(t, table.Rows, 1)
		assert.Equal(t, model.Columns(), table.Columns)
		assert.Equal(t, "Agence", table.Rows[0].Cells[0])
		assert.Equal(t, "-12", table.Rows[0].Cells[table.ColumnIndex(model.ColumnProfit)])
		assert.Equal(t, "50.5", table.Rows[0].Cells[table.ColumnIndex(model.ColumnLatitude)])
		assert.True(t, table.Rows[0].Loss)
	})
}

func TestTableFilter(t *testing.T) {
	t.Parallel()

	ds := loadAgencies(t)
	table := NewTable(ds.Headers(), ds.Records())

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "empty query keeps all rows", query: "", want: table.Len()},
		{name: "case insensitive", query: "WATERLOO", want: 1},
		{name: "accent insensitive", query: "chaussee", want: 2},
		{name: "matches any column", query: "1410", want: 1},
		{name: "no match", query: "zzz-no-such-agency", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := table.Filter(tt.query)
			assert.Equal(t, tt.want, got.Len())
			assert.Equal(t, table.Columns, got.Columns)
		})
	}

	t.Run("does not modify the source table", func(t *testing.T) {
		t.Parallel()
		_ = table.Filter("waterloo")
		assert.Equal(t, ds.Len(), table.Len())
	})
}

func TestTableSelect(t *testing.T) {
	t.Parallel()

	ds := loadAgencies(t)
	table := NewTable(ds.Headers(), ds.Records())

	got := table.Select([]int{2, 0, 99})

	require.Equal(t, 2, got.Len())
	assert.Equal(t, 2, got.Rows[0].Index)
	assert.Equal(t, 0, got.Rows[1].Index)
}
