package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/genia-lsp/genia/internal/config"
	"github.com/genia-lsp/genia/internal/errmsg"
	"github.com/genia-lsp/genia/internal/generate"
	"github.com/genia-lsp/genia/internal/llm"
	"github.com/genia-lsp/genia/internal/log"
	"github.com/genia-lsp/genia/internal/secrets"
	"github.com/genia-lsp/genia/internal/userconfig"
	"github.com/genia-lsp/genia/internal/wizard"
)

// printInfo prints an informational message unless quiet mode is enabled
func printInfo(a ...interface{}) {
	if !quietFlag {
		fmt.Println(a...)
	}
}

// printInfof prints a formatted informational message unless quiet mode is enabled
func printInfof(format string, a ...interface{}) {
	if !quietFlag {
		fmt.Printf(format, a...)
	}
}

// printJSON marshals the given value to JSON and prints it to stdout
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		exitWithCode(ExitGeneral)
	}
}

// printError prints an error to stderr with suggestions if available.
func printError(err error, ctx *errmsg.ErrorContext) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", strings.TrimRight(errmsg.Format(err, ctx), "\n"))
}

// fail prints err and exits with the code matching its kind.
func fail(err error, ctx *errmsg.ErrorContext) {
	printError(err, ctx)
	exitWithCode(exitCodeFor(err))
}

// loadUserConfig loads config.toml or exits.
func loadUserConfig() *userconfig.Config {
	cfg, err := userconfig.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		exitWithCode(ExitGeneral)
	}
	return cfg
}

// newGenerator builds a generator from the user's settings. Breaker trips
// are reported as warnings. extra options are applied last.
func newGenerator(cfg *userconfig.Config, extra ...generate.Option) *generate.Generator {
	logger := log.Default()

	breakers := llm.NewBreakerSet()
	breakers.SetOnTrip(func(model string, failures int) {
		logger.Warn("pausing model after repeated failures",
			"model", model, "failures", failures, "pause", llm.DefaultRecoveryTimeout)
	})

	opts := []generate.Option{
		generate.WithFactory(llm.NewFactory(llm.WithBreakers(breakers))),
		generate.WithProvider(cfg.LLMProvider()),
		generate.WithModels(cfg.LLMModels()),
		generate.WithTemperature(cfg.LLMTemperature()),
		generate.WithMaxTokens(cfg.LLMMaxTokens()),
		generate.WithTimeout(config.GetAPITimeout()),
		generate.WithLogger(logger),
	}
	return generate.New(append(opts, extra...)...)
}

// newSession wires a wizard session to the configured provider's key slot.
func newSession(cfg *userconfig.Config) (*wizard.Session, *generate.Generator, error) {
	store, err := secrets.NewProviderStore(cfg.LLMProvider())
	if err != nil {
		return nil, nil, err
	}
	gen := newGenerator(cfg)
	return wizard.New(gen, store, wizard.WithLogger(log.Default())), gen, nil
}

// errorContext describes the generator for error suggestions.
func errorContext(gen *generate.Generator) *errmsg.ErrorContext {
	return &errmsg.ErrorContext{
		Provider: gen.Provider(),
		Models:   gen.Models(),
	}
}

// resolveOutputDir picks where scripts are written: the flag, then
// GENIA_OUTPUT_DIR, then output_dir from config.toml, then the working
// directory.
func resolveOutputDir(flag string, cfg *userconfig.Config) string {
	if flag != "" {
		return flag
	}
	if os.Getenv(config.EnvOutputDir) != "" {
		if c, err := config.DefaultConfig(); err == nil {
			return c.OutputDir
		}
	}
	if cfg.OutputDir != "" {
		return cfg.OutputDir
	}
	return "."
}
