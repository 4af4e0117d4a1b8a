package view

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonas-p/go-shp"
)

// Shapefile names written by WriteShapefiles.
const (
	MarkersShapefile    = "markers.shp"
	ConnectorsShapefile = "connectors.shp"
)

// dBase field names are limited to 10 characters.
var (
	markerFields = []shp.Field{
		shp.StringField("NAME", 128),
		shp.StringField("ADDRESS", 128),
		shp.StringField("LOCALITY", 64),
		shp.FloatField("LAT", 12, 6),
		shp.FloatField("LON", 12, 6),
	}
	connectorFields = []shp.Field{
		shp.StringField("NAME", 128),
	}
)

// WriteShapefiles writes the markers as a point layer and the connectors
// as a polyline layer into dir, which is created if needed. Each layer
// comes with its .shx index and .dbf attribute table.
func (m *Map) WriteShapefiles(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create shapefile directory: %w", err)
	}
	if err := m.writeMarkers(filepath.Join(dir, MarkersShapefile)); err != nil {
		return err
	}
	return m.writeConnectors(filepath.Join(dir, ConnectorsShapefile))
}

func (m *Map) writeMarkers(path string) error {
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer w.Close()

	if err := w.SetFields(markerFields); err != nil {
		return fmt.Errorf("failed to set marker fields: %w", err)
	}
	for _, mk := range m.Markers {
		row := int(w.Write(&shp.Point{X: mk.Position.Lon, Y: mk.Position.Lat}))
		attrs := []interface{}{mk.Name, mk.Address, mk.Locality, mk.Position.Lat, mk.Position.Lon}
		for field, value := range attrs {
			if err := w.WriteAttribute(row, field, value); err != nil {
				return fmt.Errorf("failed to write attribute of %q: %w", mk.Name, err)
			}
		}
	}
	return nil
}

func (m *Map) writeConnectors(path string) error {
	w, err := shp.Create(path, shp.POLYLINE)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer w.Close()

	if err := w.SetFields(connectorFields); err != nil {
		return fmt.Errorf("failed to set connector fields: %w", err)
	}
	for _, cn := range m.Connectors {
		line := shp.NewPolyLine([][]shp.Point{{
			{X: cn.From.Lon, Y: cn.From.Lat},
			{X: cn.To.Lon, Y: cn.To.Lat},
		}})
		row := int(w.Write(line))
		if err := w.WriteAttribute(row, 0, cn.Name); err != nil {
			return fmt.Errorf("failed to write attribute of %q: %w", cn.Name, err)
		}
	}
	return nil
}
