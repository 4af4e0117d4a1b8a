package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for agencydash.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agencydash",
		Short: "Dashboard of Belgian real estate agencies",
		Long: `agencydash turns a CSV file of Belgian real estate agencies into a dashboard:
a searchable table, a bar chart of the latest profit after tax, and a map of
head offices connected to Brussels.

Run "agencydash serve" for the browser dashboard, or use the table, chart,
map and report commands to produce the same views from the terminal.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP(flagVerbose, "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP(flagConfig, "c", "",
		"Configuration file path (default: .agencydash in current, XDG config or home directory)")
	cmd.PersistentFlags().StringP(flagData, "d", "",
		"Agency CSV file (default: "+defaultDataFileHelp+")")
	cmd.PersistentFlags().String(flagLogFormat, logFormatText,
		"Log format: text or json")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewTableCmd())
	cmd.AddCommand(NewChartCmd())
	cmd.AddCommand(NewMapCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewQueryCmd())
	cmd.AddCommand(NewBrowseCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
