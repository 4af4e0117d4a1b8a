package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/agencydash/internal/pipeline"
)

// NewMapCmd creates the map command.
func NewMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Export the agency map as GeoJSON or shapefiles",
		Long: `Map exports the map view: the Brussels reference point, one marker per
agency and one connector line from Brussels to each agency.

Agencies without coordinates (after locality fallback) are left off the map
and listed on stderr with their CSV line; they stay in the table and chart.

Examples:
  # Write GeoJSON to stdout
  agencydash map > agencies.geojson

  # Write GeoJSON and shapefiles for a GIS tool
  agencydash map -o out/agencies.geojson --shapefile-dir out/shp`,
		Args: cobra.NoArgs,
		RunE: runMapCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Write GeoJSON to specified file path (default: stdout)")
	cmd.Flags().String("shapefile-dir", "",
		"Also write markers.shp and connectors.shp into this directory")

	return cmd
}

// runMapCmd executes the map command.
func runMapCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	shapefileDir, err := cmd.Flags().GetString("shapefile-dir")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	d, err := render(ctx, cfg, pipeline.Request{}, logger)
	if err != nil {
		return err
	}

	data, err := d.Map.GeoJSON()
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, outputPath, func(w io.Writer) error {
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write GeoJSON: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	if shapefileDir != "" {
		if err := d.Map.WriteShapefiles(shapefileDir); err != nil {
			return err
		}
		logger.Info("shapefiles written", "dir", shapefileDir)
	}

	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "%d of %d agencies on the map", len(d.Map.Markers), len(d.Records))
	if len(d.Filled) > 0 {
		fmt.Fprintf(errOut, " (%d placed by locality)", len(d.Filled))
	}
	fmt.Fprintln(errOut, ".")
	if len(d.Map.Excluded) > 0 {
		fmt.Fprintln(errOut, "Not on the map (no coordinates):")
		for _, e := range d.Map.Excluded {
			fmt.Fprintf(errOut, "  - %s (line %d)\n", e.Name, e.Line)
		}
	}
	return nil
}
