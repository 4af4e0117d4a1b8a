package view

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/nao1215/agencydash/internal/model"
)

// ErrMissingCoordinate marks a record that cannot be placed on the map
// because its latitude or longitude is empty.
var ErrMissingCoordinate = errors.New("record has no coordinate")

// DefaultZoom is the initial map zoom that frames Belgium.
const DefaultZoom = 8

// Feature kinds written to the "kind" GeoJSON property.
const (
	KindReference = "reference"
	KindMarker    = "marker"
	KindConnector = "connector"
)

// Marker is one placed agency.
type Marker struct {
	// Index is the record position in the dataset.
	Index    int              `json:"index"`
	Name     string           `json:"name"`
	Address  string           `json:"address"`
	Locality string           `json:"locality"`
	Position model.Coordinate `json:"position"`
}

// Connector is a straight segment from the reference point to a marker.
type Connector struct {
	// Index is the record position of the marker it ends at.
	Index int              `json:"index"`
	Name  string           `json:"name"`
	From  model.Coordinate `json:"from"`
	To    model.Coordinate `json:"to"`
}

// Exclusion is a record left off the map.
type Exclusion struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Line  int    `json:"line"`
	Err   error  `json:"-"`
}

// Error implements error.
func (e Exclusion) Error() string {
	return fmt.Sprintf("%q (line %d): %v", e.Name, e.Line, e.Err)
}

// Unwrap returns the cause.
func (e Exclusion) Unwrap() error {
	return e.Err
}

// Map is the marker-and-connector map view.
type Map struct {
	Reference  model.Coordinate `json:"reference"`
	Zoom       int              `json:"zoom"`
	Markers    []Marker         `json:"markers"`
	Connectors []Connector      `json:"connectors"`
	Excluded   []Exclusion      `json:"excluded"`
}

// NewMap places every record that has a coordinate and draws a connector
// from ref to each of them. Records without a coordinate are listed in
// Excluded and produce neither a marker nor a connector.
func NewMap(records []model.Record, ref model.Coordinate) *Map {
	m := &Map{
		Reference:  ref,
		Zoom:       DefaultZoom,
		Markers:    make([]Marker, 0, len(records)),
		Connectors: make([]Connector, 0, len(records)),
	}
	for i, r := range records {
		if !r.HasCoordinate() {
			m.Excluded = append(m.Excluded, Exclusion{
				Index: i,
				Name:  r.Name,
				Line:  r.Line,
				Err:   ErrMissingCoordinate,
			})
			continue
		}
		pos := *r.Coordinate
		m.Markers = append(m.Markers, Marker{
			Index:    i,
			Name:     r.Name,
			Address:  r.Address,
			Locality: r.Locality,
			Position: pos,
		})
		m.Connectors = append(m.Connectors, Connector{
			Index: i,
			Name:  r.Name,
			From:  ref,
			To:    pos,
		})
	}
	return m
}

// Placed reports whether the record at index has a marker.
func (m *Map) Placed(index int) bool {
	for _, mk := range m.Markers {
		if mk.Index == index {
			return true
		}
	}
	return false
}

// Err joins the exclusions, or returns nil when every record was placed.
func (m *Map) Err() error {
	if len(m.Excluded) == 0 {
		return nil
	}
	errs := make([]error, len(m.Excluded))
	for i, e := range m.Excluded {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// FeatureCollection returns the map as GeoJSON features: the reference
// point first, then one Point per marker and one LineString per connector.
// Coordinates are written in GeoJSON order (longitude, latitude).
func (m *Map) FeatureCollection() *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, 1+len(m.Markers)+len(m.Connectors)),
	}
	fc.Features = append(fc.Features, &geojson.Feature{
		ID:       "reference",
		Geometry: point(m.Reference),
		Properties: map[string]interface{}{
			"kind": KindReference,
			"name": "Reference point",
		},
	})
	for _, mk := range m.Markers {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       fmt.Sprintf("marker-%d", mk.Index),
			Geometry: point(mk.Position),
			Properties: map[string]interface{}{
				"kind":     KindMarker,
				"index":    mk.Index,
				"name":     mk.Name,
				"address":  mk.Address,
				"locality": mk.Locality,
			},
		})
	}
	for _, cn := range m.Connectors {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       fmt.Sprintf("connector-%d", cn.Index),
			Geometry: segment(cn.From, cn.To),
			Properties: map[string]interface{}{
				"kind":  KindConnector,
				"index": cn.Index,
				"name":  cn.Name,
			},
		})
	}
	return fc
}

// GeoJSON returns the encoded feature collection.
func (m *Map) GeoJSON() ([]byte, error) {
	data, err := json.Marshal(m.FeatureCollection())
	if err != nil {
		return nil, fmt.Errorf("failed to encode map as GeoJSON: %w", err)
	}
	return data, nil
}

func point(c model.Coordinate) *geom.Point {
	return geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{c.Lon, c.Lat})
}

func segment(from, to model.Coordinate) *geom.LineString {
	return geom.NewLineString(geom.XY).MustSetCoords([]geom.Coord{
		{from.Lon, from.Lat},
		{to.Lon, to.Lat},
	})
}
