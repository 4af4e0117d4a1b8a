package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/agencydash/internal/database"
	"github.com/nao1215/agencydash/internal/pipeline"
	"github.com/nao1215/agencydash/internal/report"
)

// NewTableCmd creates the table command.
func NewTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the agency table",
		Long: `Table prints the agency table, optionally searched and sorted.

The search is case- and accent-insensitive and matches any cell of a row,
so "chaussee" finds "Chaussée de Waterloo". Rows keep their file order
unless --sort is given.

Sort columns: ` + strings.Join(database.SortKeys(), ", ") + `

Examples:
  # Print every agency
  agencydash table

  # Search and sort by profit, largest first
  agencydash table -q brussels --sort profit --desc

  # Write a Markdown report
  agencydash table -m -o report.md`,
		Args: cobra.NoArgs,
		RunE: runTableCmd,
	}

	cmd.Flags().StringP("query", "q", "", "Search text matched against every cell")
	cmd.Flags().StringP("sort", "s", "", "Column to sort by")
	cmd.Flags().Bool("desc", false, "Sort in descending order")
	addReportFlags(cmd)

	return cmd
}

// addReportFlags adds the output format flags shared by table and report.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to specified file path (creates directories if needed)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
}

// newReportWriter picks the report writer selected by the format flags.
func newReportWriter(cmd *cobra.Command, out io.Writer, verbose bool) (report.Writer, error) {
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	switch {
	case jsonOut:
		return report.NewJSONWriter(out,
			report.WithPrettyPrint(),
			report.WithVersion(getVersion()),
		), nil
	case markdownOut:
		return report.NewMarkdownWriter(out), nil
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(verbose)), nil
	}
}

// getTableRequest reads the search and sort flags.
func getTableRequest(cmd *cobra.Command) (pipeline.Request, error) {
	var req pipeline.Request
	var err error

	req.Query, err = cmd.Flags().GetString("query")
	if err != nil {
		return req, err
	}
	req.SortColumn, err = cmd.Flags().GetString("sort")
	if err != nil {
		return req, err
	}
	req.Descending, err = cmd.Flags().GetBool("desc")
	if err != nil {
		return req, err
	}
	return req, nil
}

// runTableCmd executes the table command.
func runTableCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	req, err := getTableRequest(cmd)
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	d, err := render(ctx, cfg, req, logger)
	if err != nil {
		return err
	}

	if err := writeOutput(cmd, outputPath, func(w io.Writer) error {
		rw, err := newReportWriter(cmd, w, cfg.Verbose)
		if err != nil {
			return err
		}
		if _, err := rw.Write(d); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	if outputPath != "" && outputPath != stdoutPath {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to: %s\n", outputPath)
	}
	return nil
}
