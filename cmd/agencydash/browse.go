package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nao1215/agencydash/internal/browse"
	"github.com/nao1215/agencydash/internal/pipeline"
)

// errNotTerminal is returned when browse is run without an interactive terminal.
var errNotTerminal = errors.New("browse needs an interactive terminal (try `agencydash table` instead)")

// NewBrowseCmd creates the browse command.
func NewBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the agencies interactively in the terminal",
		Long: `Browse opens an interactive agency list in the terminal.

Keys:
  typing        search every cell (case- and accent-insensitive)
  Backspace     delete the last search character
  Up / Down     move the selection (PageUp / PageDown for a screen)
  Enter         show every field of the selected agency
  Esc           go back, or quit from the list
  Ctrl+C        quit`,
		Args: cobra.NoArgs,
		RunE: runBrowseCmd,
	}
}

// runBrowseCmd executes the browse command.
func runBrowseCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit in int
	if !term.IsTerminal(fd) {
		return errNotTerminal
	}

	d, err := render(cmd.Context(), cfg, pipeline.Request{}, logger)
	if err != nil {
		return err
	}

	height := browse.DefaultHeight
	if _, h, err := term.GetSize(fd); err == nil && h > 0 {
		height = h
	}
	b, err := browse.New(d, browse.WithHeight(height))
	if err != nil {
		return err
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to switch terminal to raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	return b.Run(os.Stdin, cmd.OutOrStdout())
}
