package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/nao1215/agencydash/internal/database"
	"github.com/nao1215/agencydash/internal/pipeline"
)

// NewQueryCmd creates the query command.
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <select-statement>",
		Short: "Run a read-only SQL query over the agencies",
		Long: `Query loads the dataset into an in-memory SQLite table named "` + database.TableName + `"
and runs a single SELECT statement against it.

Columns: ` + strings.Join(database.SortKeys(), ", ") + `, employees, profit_raw, line, position

Profit is stored in euro as a number, so it can be summed and compared.
Only one SELECT (or WITH ... SELECT) statement is accepted; the table
cannot be changed.

Examples:
  # Loss-making agencies
  agencydash query "SELECT name, profit FROM agencies WHERE profit < 0"

  # Agencies per locality, as JSON
  agencydash query -j "SELECT locality, COUNT(*) AS n FROM agencies GROUP BY locality"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runQueryCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output the result as JSON")
	cmd.Flags().StringP("output", "o", "",
		"Write the result to specified file path (default: stdout)")

	return cmd
}

// runQueryCmd executes the query command.
func runQueryCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	d, err := render(ctx, cfg, pipeline.Request{}, logger)
	if err != nil {
		return err
	}

	idx, err := database.Open(ctx, d.Records)
	if err != nil {
		return err
	}
	defer idx.Close()

	result, err := idx.Query(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	logger.Debug("query complete", "rows", len(result.Rows))

	return writeOutput(cmd, outputPath, func(w io.Writer) error {
		if jsonOut {
			return writeResultJSON(w, result)
		}
		return writeResultTable(w, result)
	})
}

func writeResultJSON(w io.Writer, result *database.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func writeResultTable(w io.Writer, result *database.Result) error {
	table := tablewriter.NewTable(w, tablewriter.WithHeaderAutoFormat(tw.Off))
	table.Header(result.Columns)
	if err := table.Bulk(result.Rows); err != nil {
		return fmt.Errorf("failed to fill table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	_, err := fmt.Fprintf(w, "(%d rows)\n", len(result.Rows))
	return err
}
