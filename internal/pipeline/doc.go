// Package pipeline runs the dashboard render: load the dataset, fill
// missing positions, then build the table, chart and map views.
//
// A render is a Pipeline of Steps executed in order against one Dashboard.
// Every user interaction runs a fresh pipeline from the top, so no state is
// shared between renders. When the load step fails the pipeline stops and the
// Dashboard carries the error and no views, so nothing stale or partial can
// be shown.
//
// BatchRenderer renders several dataset files concurrently with errgroup.
package pipeline
