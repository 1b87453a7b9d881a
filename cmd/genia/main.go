package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/genia-lsp/genia/internal/buildinfo"
	"github.com/genia-lsp/genia/internal/log"
)

var (
	quietFlag   bool
	verboseFlag bool
	debugFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "genia",
	Short: "Generate AutoLISP routines from plain-language requests",
	Long: `genia turns a plain-language description of an AutoCAD command into a
ready-to-load AutoLISP (.lsp) routine.

A request is sent to a generative model, which answers with a step-by-step
analysis and the script. The analysis is shown first; the script is only
finalized after you confirm it.

Front ends:
  genia generate   one-shot generation from the command line
  genia wizard     interactive wizard in the terminal
  genia serve      wizard in the browser on this machine

Before the first request, store an API key with 'genia key set'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		dotenvErr := loadDotEnv(dotEnvFile)
		log.SetDefault(log.NewText(os.Stderr, determineLogLevel()))
		if dotenvErr != nil {
			log.Default().Warn("ignoring .env file", "error", dotenvErr)
		}
		setupTracing()
	},
}

// dotEnvFile is read from the working directory before any command runs.
// Variables already set in the environment win.
const dotEnvFile = ".env"

// loadDotEnv loads path into the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func init() {
	rootCmd.Version = buildinfo.Version()

	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Only print errors")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log each model attempt")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Log debugging detail")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// determineLogLevel picks the level from flags, then GENIA_* variables.
// Within each source debug wins over verbose, and verbose over quiet.
func determineLogLevel() slog.Level {
	switch {
	case debugFlag:
		return slog.LevelDebug
	case verboseFlag:
		return slog.LevelInfo
	case quietFlag:
		return slog.LevelError
	}

	switch {
	case isTruthy(os.Getenv("GENIA_DEBUG")):
		return slog.LevelDebug
	case isTruthy(os.Getenv("GENIA_VERBOSE")):
		return slog.LevelInfo
	case isTruthy(os.Getenv("GENIA_QUIET")):
		return slog.LevelError
	}

	return slog.LevelWarn
}

// isTruthy reports whether an environment value means "enabled".
func isTruthy(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitWithCode(ExitUsage)
	}
	shutdownTracing()
}
