package server

import (
	"embed"
	"html/template"
	"net/url"
	"strconv"

	"github.com/nao1215/agencydash/internal/config"
	"github.com/nao1215/agencydash/internal/model"
	"github.com/nao1215/agencydash/internal/pipeline"
	"github.com/nao1215/agencydash/internal/view"
)

//go:embed templates/index.html
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

// pageData feeds templates/index.html.
type pageData struct {
	Title   string
	Version string

	// Error is set when the render failed. Nothing else is shown then.
	Error string

	Source string
	Query  string

	Columns []columnLink
	Rows    []view.Row
	Shown   int
	Total   int
	// ProfitColumn is the position of the profit column, or -1.
	ProfitColumn int

	Losses      int
	TotalProfit string

	// HasChart is false when there are no bars, since /chart.svg then
	// answers 404.
	HasChart    bool
	ChartWidth  int
	ChartHeight int

	Reference model.Coordinate
	Zoom      int
	Placed    int
	Excluded  []view.Exclusion
	Filled    int
}

// columnLink is a sortable table header.
type columnLink struct {
	Name   string
	Href   string
	Active bool
	Desc   bool
}

func newPageData(d *pipeline.Dashboard, cfg *config.Config, version string) *pageData {
	p := &pageData{
		Title:   "Belgian Real Estate Agencies",
		Version: version,
		Source:  d.Source,
		Query:   d.Request.Query,
	}
	if d.Failed() {
		p.Error = d.Err.Error()
		return p
	}

	p.Total = len(d.Records)
	p.Rows = d.Rows.Rows
	p.Shown = d.Rows.Len()
	p.ProfitColumn = d.Rows.ColumnIndex(model.ColumnProfit)
	p.Columns = columnLinks(d.Rows.Columns, d.Request)

	var total float64
	for _, r := range d.Records {
		total += r.Profit.Value
		if r.Profit.Negative() {
			p.Losses++
		}
	}
	p.TotalProfit = model.FormatEuro(total)

	p.HasChart = d.Chart != nil && d.Chart.Len() > 0
	p.ChartWidth = cfg.ChartWidth
	p.ChartHeight = cfg.ChartHeight

	p.Reference = d.Map.Reference
	p.Zoom = d.Map.Zoom
	p.Placed = len(d.Map.Markers)
	p.Excluded = d.Map.Excluded
	p.Filled = len(d.Filled)
	return p
}

// columnLinks builds header links that sort by each column. Clicking the
// active column flips the direction.
func columnLinks(columns []string, req pipeline.Request) []columnLink {
	links := make([]columnLink, len(columns))
	for i, c := range columns {
		active := c == req.SortColumn
		desc := active && !req.Descending

		v := url.Values{}
		if req.Query != "" {
			v.Set(ParamQuery, req.Query)
		}
		v.Set(ParamSort, c)
		if desc {
			v.Set(ParamDesc, strconv.FormatBool(true))
		}
		links[i] = columnLink{
			Name:   c,
			Href:   RouteIndex + "?" + v.Encode(),
			Active: active,
			Desc:   active && req.Descending,
		}
	}
	return links
}
