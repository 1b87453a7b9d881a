package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/genia-lsp/genia/internal/userconfig"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage genia configuration",
	Long: `Manage genia configuration settings.

Configuration is stored in $GENIA_HOME/config.toml (default ~/.genia).

Available settings:
  llm.provider     Generation backend (gemini/claude)
  llm.models       Comma-separated candidate models, tried in order
  llm.temperature  Sampling temperature (0-2, default 0.5)
  llm.max_tokens   Maximum reply tokens (0 = provider default)
  output_dir       Directory for generated .lsp files

Examples:
  genia config get llm.provider
  genia config set llm.models gemini-2.5-flash,gemini-2.0-flash`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]

		cfg := loadUserConfig()

		value, ok := cfg.Get(key)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown config key: %s\n", key)
			fmt.Fprintf(os.Stderr, "\nAvailable keys:\n")
			printAvailableKeys()
			exitWithCode(ExitUsage)
		}

		fmt.Println(value)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Examples:
  genia config set llm.provider claude
  genia config set llm.temperature 0.3
  genia config set output_dir ~/autocad/lisp`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		value := args[1]

		cfg := loadUserConfig()

		if err := cfg.Set(key, value); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintf(os.Stderr, "\nAvailable keys:\n")
			printAvailableKeys()
			exitWithCode(ExitUsage)
		}

		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			exitWithCode(ExitGeneral)
		}

		current, _ := cfg.Get(key)
		fmt.Printf("%s = %s\n", key, current)
	},
}

func printAvailableKeys() {
	keys := userconfig.AvailableKeys()
	var sortedKeys []string
	for k := range keys {
		sortedKeys = append(sortedKeys, k)
	}
	sort.Strings(sortedKeys)

	for _, k := range sortedKeys {
		fmt.Fprintf(os.Stderr, "  %s - %s\n", k, keys[k])
	}
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
