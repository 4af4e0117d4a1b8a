// Package view builds the three dashboard views from a record sequence:
//
//   - Table: every record as a row, columns equal to the dataset headers
//   - Chart: one bar per agency, bar height equal to its profit after tax
//   - Map: one marker per placed agency and a connector from a reference point
//
// Views are plain values computed from records. They never modify the
// records and do not depend on the HTTP server, so each one can be built
// and tested on its own. Encoders (SVG/PNG, GeoJSON, shapefile) live next to
// the view they encode.
package view
