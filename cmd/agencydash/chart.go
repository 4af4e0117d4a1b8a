package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/agencydash/internal/pipeline"
)

// Chart image formats.
const (
	chartFormatSVG = "svg"
	chartFormatPNG = "png"
)

// errUnknownChartFormat is returned for a --format other than svg or png.
var errUnknownChartFormat = errors.New("unknown chart format (use svg or png)")

// NewChartCmd creates the chart command.
func NewChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the profit bar chart",
		Long: `Chart renders the latest profit after tax of every agency as a bar chart.

Bars keep the file order of the dataset. Losses are drawn in red below the
zero line; profits are drawn in blue above it.

The format is taken from --format, or from the output file extension, and
defaults to SVG.

Examples:
  # Write an SVG chart to stdout
  agencydash chart > profit.svg

  # Write a large PNG chart
  agencydash chart -o profit.png --width 1600 --height 900`,
		Args: cobra.NoArgs,
		RunE: runChartCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Write the chart to specified file path (default: stdout)")
	cmd.Flags().StringP("format", "f", "", "Image format: svg or png")
	cmd.Flags().Int("width", 0, "Chart width in pixels (default: from configuration)")
	cmd.Flags().Int("height", 0, "Chart height in pixels (default: from configuration)")

	return cmd
}

// chartFormat resolves the image format from the flag or the file extension.
func chartFormat(format, outputPath string) (string, error) {
	if format == "" {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(outputPath), "."))
		if ext == chartFormatPNG {
			return chartFormatPNG, nil
		}
		return chartFormatSVG, nil
	}
	switch f := strings.ToLower(format); f {
	case chartFormatSVG, chartFormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnknownChartFormat, format)
	}
}

// runChartCmd executes the chart command.
func runChartCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	formatFlag, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := chartFormat(formatFlag, outputPath)
	if err != nil {
		return err
	}

	width, err := cmd.Flags().GetInt("width")
	if err != nil {
		return err
	}
	height, err := cmd.Flags().GetInt("height")
	if err != nil {
		return err
	}
	if width > 0 {
		cfg.ChartWidth = width
	}
	if height > 0 {
		cfg.ChartHeight = height
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	d, err := render(ctx, cfg, pipeline.Request{}, logger)
	if err != nil {
		return err
	}

	renderChart := d.Chart.RenderSVG
	if format == chartFormatPNG {
		renderChart = d.Chart.RenderPNG
	}

	if err := writeOutput(cmd, outputPath, func(w io.Writer) error {
		if err := renderChart(w, cfg.ChartWidth, cfg.ChartHeight); err != nil {
			return fmt.Errorf("failed to render chart: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	if n := d.Chart.NegativeCount(); n > 0 {
		logger.Info("chart drawn with losses", "bars", d.Chart.Len(), "losses", n)
	}
	if outputPath != "" && outputPath != stdoutPath {
		fmt.Fprintf(cmd.ErrOrStderr(), "Chart written to: %s\n", outputPath)
	}
	return nil
}
