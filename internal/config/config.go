package config

import (
	"net"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/adrg/xdg"

	"github.com/nao1215/agencydash/internal/model"
)

// Default configuration values.
const (
	// DefaultDataFile is the shipped agency dataset, relative to the working directory.
	DefaultDataFile = "data/belgian_real_estate_agents.csv"

	// DefaultAddr is the dashboard listen address. The port is the one
	// dashboard users are used to; loopback keeps the dashboard private.
	DefaultAddr = "127.0.0.1:8501"

	// DefaultDelimiter is the CSV field separator.
	DefaultDelimiter = ','

	// DefaultZoom frames the whole of Belgium around Brussels.
	DefaultZoom = 8

	// DefaultChartWidth and DefaultChartHeight are the chart size in pixels.
	DefaultChartWidth  = 1024
	DefaultChartHeight = 480

	// AppName is the application name used for XDG directory paths.
	AppName = "agencydash"
)

// Chart size bounds accepted by Validate.
const (
	minChartSize = 200
	maxChartSize = 4096
)

// Config holds all configuration options for agencydash.
// It is populated from defaults, then the configuration file, then CLI flags,
// and passed down explicitly rather than kept in global state.
type Config struct {
	// DataFile is the path of the agency CSV file.
	DataFile string

	// Addr is the dashboard listen address in "host:port" format.
	Addr string

	// Delimiter is the CSV field separator.
	Delimiter rune

	// Reference is the map point connectors start from.
	Reference model.Coordinate

	// Zoom is the initial map zoom level.
	Zoom int

	// ChartWidth and ChartHeight are the rendered chart size in pixels.
	ChartWidth  int
	ChartHeight int

	// Localities maps a locality name to a fallback position. It is used only
	// for records whose latitude or longitude cell is empty.
	Localities map[string]model.Coordinate

	// AllowedOrigins lists the origins allowed to call the JSON endpoints.
	// Empty means same-origin only.
	AllowedOrigins []string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the configuration file path given with --config.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		DataFile:    DefaultDataFile,
		Addr:        DefaultAddr,
		Delimiter:   DefaultDelimiter,
		Reference:   model.Brussels,
		Zoom:        DefaultZoom,
		ChartWidth:  DefaultChartWidth,
		ChartHeight: DefaultChartHeight,
		Localities:  map[string]model.Coordinate{},
	}
}

// XDGConfigDir returns the XDG config directory for agencydash.
// On Linux: ~/.config/agencydash
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Apply overrides c with the values set in the configuration file.
// Zero values in f leave c unchanged; localities are merged.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.DataFile != "" {
		c.DataFile = f.DataFile
	}
	if f.Addr != "" {
		c.Addr = f.Addr
	}
	if f.Delimiter != "" {
		r, _ := utf8.DecodeRuneInString(f.Delimiter)
		c.Delimiter = r
	}
	if f.Reference != nil {
		c.Reference = *f.Reference
	}
	if f.Zoom != 0 {
		c.Zoom = f.Zoom
	}
	if f.ChartWidth != 0 {
		c.ChartWidth = f.ChartWidth
	}
	if f.ChartHeight != 0 {
		c.ChartHeight = f.ChartHeight
	}
	if len(f.AllowedOrigins) > 0 {
		c.AllowedOrigins = append([]string(nil), f.AllowedOrigins...)
	}
	if c.Localities == nil {
		c.Localities = make(map[string]model.Coordinate, len(f.Localities))
	}
	for name, pos := range f.Localities {
		c.Localities[name] = pos
	}
}

// Validate checks if the configuration is valid and returns the first problem found.
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return ErrNoDataFile
	}

	_, port, err := net.SplitHostPort(c.Addr)
	if err != nil || port == "" {
		return ErrInvalidAddr
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return ErrInvalidAddr
	}

	switch c.Delimiter {
	case 0, '"', '\r', '\n', utf8.RuneError:
		return ErrInvalidDelimiter
	}

	if _, err := model.NewCoordinate(c.Reference.Lat, c.Reference.Lon); err != nil {
		return ErrInvalidReference
	}

	if c.Zoom < 1 || c.Zoom > 18 {
		return ErrInvalidZoom
	}

	if c.ChartWidth < minChartSize || c.ChartWidth > maxChartSize ||
		c.ChartHeight < minChartSize || c.ChartHeight > maxChartSize {
		return ErrInvalidChartSize
	}

	return nil
}
