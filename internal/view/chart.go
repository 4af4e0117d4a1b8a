package view

import (
	"errors"
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/nao1215/agencydash/internal/model"
)

// ErrNoBars is returned when a chart without bars is rendered.
var ErrNoBars = errors.New("chart has no bars")

// Default chart canvas size in pixels.
const (
	DefaultChartWidth  = 1024
	DefaultChartHeight = 480
)

// Bar colours. Losses are drawn below the zero baseline in red.
var (
	ProfitColor = drawing.ColorFromHex("1f77b4")
	LossColor   = drawing.ColorFromHex("d62728")
)

// Bar is one agency in the profit chart.
type Bar struct {
	// Label is the agency name.
	Label string `json:"label"`
	// Value is the profit after tax, copied from the record without change.
	Value float64 `json:"value"`
	// Negative marks a loss.
	Negative bool `json:"negative"`
}

// Chart is the profit-after-tax bar chart.
type Chart struct {
	Title string `json:"title"`
	Bars  []Bar  `json:"bars"`
}

// NewChart builds one bar per record, in record order.
// Records sharing a name get one bar each; nothing is aggregated.
func NewChart(records []model.Record) *Chart {
	c := &Chart{
		Title: "Latest profit after tax (€)",
		Bars:  make([]Bar, 0, len(records)),
	}
	for _, r := range records {
		c.Bars = append(c.Bars, Bar{
			Label:    r.Name,
			Value:    r.Profit.Value,
			Negative: r.Profit.Negative(),
		})
	}
	return c
}

// Len returns the number of bars.
func (c *Chart) Len() int {
	return len(c.Bars)
}

// NegativeCount returns how many bars are losses.
func (c *Chart) NegativeCount() int {
	n := 0
	for _, b := range c.Bars {
		if b.Negative {
			n++
		}
	}
	return n
}

// Range returns the value range of the y axis. Zero is always included so
// that positive bars grow up from the baseline and losses hang below it.
func (c *Chart) Range() (lower, upper float64) {
	for _, b := range c.Bars {
		lower = math.Min(lower, b.Value)
		upper = math.Max(upper, b.Value)
	}
	if lower == upper {
		upper = lower + 1
	}
	pad := (upper - lower) * 0.05
	if lower < 0 {
		lower -= pad
	}
	if upper > 0 {
		upper += pad
	}
	return lower, upper
}

// RenderSVG writes the chart as SVG.
func (c *Chart) RenderSVG(w io.Writer, width, height int) error {
	return c.render(chart.SVG, w, width, height)
}

// RenderPNG writes the chart as PNG.
func (c *Chart) RenderPNG(w io.Writer, width, height int) error {
	return c.render(chart.PNG, w, width, height)
}

func (c *Chart) render(provider chart.RendererProvider, w io.Writer, width, height int) error {
	if len(c.Bars) == 0 {
		return ErrNoBars
	}
	if width <= 0 {
		width = DefaultChartWidth
	}
	if height <= 0 {
		height = DefaultChartHeight
	}

	lower, upper := c.Range()
	barWidth, spacing := barGeometry(width, len(c.Bars))

	bc := chart.BarChart{
		Title:  c.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		BarWidth:     barWidth,
		BarSpacing:   spacing,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Name:  "EUR",
			Range: &chart.ContinuousRange{Min: lower, Max: upper},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return model.FormatEuro(f)
				}
				return fmt.Sprint(v)
			},
		},
		Bars: c.values(),
	}

	if err := bc.Render(provider, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// values converts bars into go-chart values with the sign colour applied.
func (c *Chart) values() []chart.Value {
	values := make([]chart.Value, len(c.Bars))
	for i, b := range c.Bars {
		col := ProfitColor
		if b.Negative {
			col = LossColor
		}
		values[i] = chart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: chart.Style{
				FillColor:   col,
				StrokeColor: col,
				StrokeWidth: 1,
			},
		}
	}
	return values
}

// barGeometry spreads n bars over the canvas width.
func barGeometry(width, n int) (barWidth, spacing int) {
	usable := width - 160
	if usable < n*4 {
		usable = n * 4
	}
	slot := usable / n
	barWidth = slot * 3 / 5
	spacing = slot - barWidth
	if barWidth < 2 {
		barWidth = 2
	}
	if spacing < 1 {
		spacing = 1
	}
	return barWidth, spacing
}
