// Package server serves the agency dashboard over HTTP.
//
// Every request re-runs the render pipeline against the dataset file, so
// the page always reflects the file on disk and no state is shared between
// requests. Routes:
//
//	GET /                 HTML dashboard (table, chart, map)
//	GET /chart.svg        profit chart as SVG
//	GET /chart.png        profit chart as PNG
//	GET /map.geojson      markers and connectors as GeoJSON
//	GET /api/agencies     table rows as JSON
//	GET /health           liveness probe
//
// Load failures answer 500 on every route. On the JSON routes a schema
// mismatch or a malformed row answers 422 instead, and an unknown sort
// column answers 400.
package server
