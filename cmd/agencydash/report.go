package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/agencydash/internal/config"
	"github.com/nao1215/agencydash/internal/pipeline"
	"github.com/nao1215/agencydash/internal/report"
)

// errRenderFailed is returned when at least one dataset of a report failed.
var errRenderFailed = errors.New("some datasets failed to render")

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [csv-file...]",
		Short: "Summarize one or more agency datasets",
		Long: `Report prints the headline figures of each dataset: number of agencies,
loss-making agencies, map coverage, total profit and the profit ranking.

Several files are rendered concurrently, for example one file per region.
A file that fails to load is reported as failed and does not stop the
others. Without arguments the configured dataset is used.

With --json each dataset is written as one JSON document per line.

Examples:
  # Summarize the configured dataset
  agencydash report

  # Summarize several regions as Markdown
  agencydash report -m -o regions.md brussels.csv flanders.csv wallonia.csv

  # Include the full agency table
  agencydash report --full`,
		Args: cobra.ArbitraryArgs,
		RunE: runReportCmd,
	}

	addReportFlags(cmd)
	cmd.Flags().Bool("full", false, "Include the agency table, not only the summary")
	cmd.Flags().IntP("concurrency", "p", 0,
		"Maximum number of datasets rendered at once (default: number of CPUs)")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return err
	}
	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	sources := args
	if len(sources) == 0 {
		sources = []string{cfg.DataFile}
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	dashboards, err := renderBatch(cfg, logger, concurrency).RenderAll(ctx, sources, pipeline.Request{})
	if err != nil {
		return fmt.Errorf("report cancelled: %w", err)
	}

	failed := 0
	if err := writeOutput(cmd, outputPath, func(w io.Writer) error {
		rw, err := newBatchReportWriter(cmd, w, cfg.Verbose)
		if err != nil {
			return err
		}
		for i, d := range dashboards {
			if d == nil {
				continue
			}
			if d.Failed() {
				failed++
			}
			if i > 0 {
				if err := separate(cmd, w); err != nil {
					return err
				}
			}
			if full && !d.Failed() {
				_, err = rw.Write(d)
			} else {
				_, err = rw.WriteSummary(report.NewSummary(d))
			}
			if err != nil {
				return fmt.Errorf("failed to write report for %s: %w", d.Source, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errRenderFailed, failed, len(sources))
	}
	return nil
}

// renderBatch creates a batch renderer that runs the standard render on
// each file with cfg's settings.
func renderBatch(cfg *config.Config, logger *slog.Logger, concurrency int) *pipeline.BatchRenderer {
	return pipeline.NewBatchRenderer(
		func() *pipeline.Pipeline {
			return pipeline.NewRenderPipeline(cfg, pipeline.WithLogger(logger))
		},
		pipeline.WithBatchLogger(logger),
		pipeline.WithConcurrency(concurrency),
	)
}

// newBatchReportWriter is newReportWriter with compact JSON, so several
// datasets come out as one document per line.
func newBatchReportWriter(cmd *cobra.Command, out io.Writer, verbose bool) (report.Writer, error) {
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	if jsonOut {
		return report.NewJSONWriter(out, report.WithVersion(getVersion())), nil
	}
	return newReportWriter(cmd, out, verbose)
}

// separate writes the blank line between two text reports.
func separate(cmd *cobra.Command, w io.Writer) error {
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		return nil
	}
	_, err := io.WriteString(w, "\n")
	return err
}
