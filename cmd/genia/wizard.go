package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/genia-lsp/genia/internal/tui"
)

var wizardOut string

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Run the interactive wizard in the terminal",
	Long: `Run the three-step wizard in the terminal: describe the command, review
the analysis, then save or copy the finished script.

Keys:
  enter    submit / generate code
  esc      adjust the request
  d        save <COMMAND>.lsp to the output directory
  c        copy the script to the clipboard
  r        start over
  ctrl+k   change the API key
  ctrl+c   quit`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadUserConfig()
		session, gen, err := newSession(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitWithCode(ExitUsage)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := tui.Run(ctx, session, resolveOutputDir(wizardOut, cfg), errorContext(gen)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitWithCode(ExitGeneral)
		}
	},
}

func init() {
	wizardCmd.Flags().StringVarP(&wizardOut, "out", "o", "", "Directory to save .lsp files to")
}
