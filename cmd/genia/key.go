package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/genia-lsp/genia/internal/secrets"
)

// Replaced in tests.
var (
	stdinReader     io.Reader = os.Stdin
	stdinIsTerminal           = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	readPassword              = func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) }
)

var keyProvider string

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage generation API keys",
	Long: `Manage the API keys genia sends to the generation backends.

Keys are stored in the [secrets] section of $GENIA_HOME/config.toml.
Environment variables take precedence over stored keys:
  GEMINI_API_KEY, GOOGLE_API_KEY   Gemini
  ANTHROPIC_API_KEY                Claude`,
}

var keySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the API key for a provider",
	Long: `Store the API key for a provider.

The key is read from stdin. On a terminal the input is hidden.

Examples:
  genia key set
  genia key set --provider claude
  echo "$KEY" | genia key set`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		provider := keyProvider
		if provider == "" {
			provider = loadUserConfig().LLMProvider()
		}

		store, err := secrets.NewProviderStore(provider)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitWithCode(ExitUsage)
		}

		value, err := readSecretFromStdin(store.Name())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitWithCode(ExitUsage)
		}

		if err := store.Save(value); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving key: %v\n", err)
			exitWithCode(ExitGeneral)
		}

		printInfof("Saved %s for %s\n", store.Name(), provider)
	},
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which API keys are available",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, k := range secrets.KnownKeys() {
			state := "not set"
			if secrets.IsSet(k.Name) {
				state = "set"
			}
			fmt.Printf("%-18s  %-7s  %s (env: %s)\n", k.Name, state, k.Desc, strings.Join(k.EnvVars, ", "))
		}
	},
}

// readSecretFromStdin reads one line holding a secret. On a terminal the
// user is prompted on stderr and the input is not echoed.
func readSecretFromStdin(name string) (string, error) {
	var line string
	if stdinIsTerminal() {
		fmt.Fprintf(os.Stderr, "Enter %s: ", name)
		b, err := readPassword()
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		line = string(b)
	} else {
		s, err := bufio.NewReader(stdinReader).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		line = s
	}

	value := strings.TrimSpace(line)
	if value == "" {
		return "", fmt.Errorf("empty value for %s", name)
	}
	return value, nil
}

func init() {
	keySetCmd.Flags().StringVar(&keyProvider, "provider", "", "Provider the key belongs to (gemini/claude; default: llm.provider)")

	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyStatusCmd)
}
