package cmd

import (
	"fmt"
	"os"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Laisky/aws-documentation-mcp/cmd/tui"
)

var tuiCMD = &cobra.Command{
	Use:   "tui",
	Short: "Browse the documentation interactively",
	Long: `Launch an interactive Terminal User Interface (TUI) on top of the
documentation service.

Type a search phrase, or paste a documentation page URL, then press Enter.

Keyboard shortcuts:
  ↑/↓         Navigate results / scroll the page
  Enter       Search / open the selected page
  n / p       Next / previous part of a long page
  r           Pages related to the open page
  Esc         Go back
  ctrl+c      Quit`,
	Args: gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		// keep log output off the terminal the TUI draws on
		if !cmd.Flags().Changed("log-level") {
			_ = cmd.Flags().Set("log-level", "error")
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := runTUI(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCMD.AddCommand(tuiCMD)
}

// runTUI starts the interactive Terminal User Interface and returns any start/run error.
func runTUI(cmd *cobra.Command) error {
	if err := initialize(cmd.Context(), cmd); err != nil {
		return errors.Wrap(err, "init")
	}
	if gconfig.Shared.GetBool("debug") {
		fmt.Fprintln(os.Stderr, "debug logs are written to stderr")
	}

	svc, err := buildService(nil)
	if err != nil {
		return errors.Wrap(err, "build documentation service")
	}

	p := tea.NewProgram(
		tui.NewModel(svc),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	return errors.WithStack(err)
}
