package server

// Route paths.
const (
	RouteIndex    = "/"
	RouteChartSVG = "/chart.svg"
	RouteChartPNG = "/chart.png"
	RouteGeoJSON  = "/map.geojson"
	RouteAgencies = "/api/agencies"
	RouteHealth   = "/health"
)

// Query parameters understood by the table routes.
const (
	ParamQuery = "q"
	ParamSort  = "sort"
	ParamDesc  = "desc"
)

// HeaderRequestID carries the request id in responses.
const HeaderRequestID = "X-Request-Id"
