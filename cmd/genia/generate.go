package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/genia-lsp/genia/internal/artifact"
	"github.com/genia-lsp/genia/internal/autolisp"
	"github.com/genia-lsp/genia/internal/errmsg"
	"github.com/genia-lsp/genia/internal/generate"
	"github.com/genia-lsp/genia/internal/log"
	"github.com/genia-lsp/genia/internal/progress"
	"github.com/genia-lsp/genia/internal/secrets"
)

var (
	generateYes   bool
	generateOut   string
	generateCopy  bool
	generatePrint bool
	generateJSON  bool
)

// errDeclined is returned when the user rejects the analysis.
var errDeclined = errors.New("generation declined")

var generateCmd = &cobra.Command{
	Use:   "generate [request]",
	Short: "Generate an AutoLISP routine from a description",
	Long: `Generate an AutoLISP routine from a plain-language description.

The request is taken from the arguments, or from stdin when none are given.
The model's analysis is printed first and you are asked to confirm before
the script is finalized and written to <COMMAND>.lsp.

The output directory is --out, then GENIA_OUTPUT_DIR, then output_dir from
config.toml, then the current directory.

Examples:
  genia generate "desenhe um retângulo 10x20 na origem"
  genia generate --yes --out ./lisp "numere as polilinhas selecionadas"
  echo "crie um círculo de raio 5" | genia generate --yes --print`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadUserConfig()

		prompt, fromStdin, err := readPrompt(args)
		if err != nil {
			fail(generate.NewError(generate.KindInvalidInput, err), nil)
		}

		baseCtx := &errmsg.ErrorContext{Provider: cfg.LLMProvider()}
		store, err := secrets.NewProviderStore(cfg.LLMProvider())
		if err != nil {
			fail(err, baseCtx)
		}
		apiKey, err := store.Load()
		if err != nil {
			fail(generate.NewError(generate.KindInvalidInput, generate.ErrMissingAPIKey), baseCtx)
		}

		confirm := confirmOnTerminal
		switch {
		case generateJSON:
			confirm = nil
		case generateYes:
			confirm = func(analysis string) bool {
				printAnalysis(analysis)
				return true
			}
		case fromStdin || !stdinIsTerminal():
			fail(generate.NewError(generate.KindInvalidInput,
				errors.New("confirmation needs a terminal: rerun with --yes")), baseCtx)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var runner scriptGenerator
		var gen *generate.Generator
		if generateJSON || quietFlag {
			gen = newGenerator(cfg)
			runner = gen
		} else {
			spin := progress.NewSpinner(os.Stderr)
			gen = newGenerator(cfg, generate.WithAttemptHook(func(model string) {
				spin.SetMessage(fmt.Sprintf("Asking %s...", model))
			}))
			runner = &spinningGenerator{next: gen, spin: spin}
		}

		out, err := generateScript(ctx, runner, generate.Request{Prompt: prompt, APIKey: apiKey},
			confirm, resolveOutputDir(generateOut, cfg))
		log.Default().Info("generation finished", "usage", gen.Usage().String())

		if errors.Is(err, errDeclined) {
			printInfo("Nothing written.")
			return
		}
		if err != nil {
			fail(err, errorContext(gen))
		}

		if generateCopy {
			if err := artifact.Copy(out.Code); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		}

		if generateJSON {
			printJSON(out)
			return
		}
		printInfof("Wrote %s (command %s)\n", out.File, out.Command)
		if generatePrint {
			fmt.Println(out.Code)
		}
	},
}

// scriptGenerator is satisfied by *generate.Generator.
type scriptGenerator interface {
	Generate(ctx context.Context, req generate.Request) (*autolisp.Result, error)
}

// spinningGenerator shows a spinner on stderr while the request runs.
type spinningGenerator struct {
	next scriptGenerator
	spin *progress.Spinner
}

func (g *spinningGenerator) Generate(ctx context.Context, req generate.Request) (*autolisp.Result, error) {
	g.spin.Start("Analyzing request...")
	result, err := g.next.Generate(ctx, req)
	if err != nil {
		g.spin.Stop()
		return nil, err
	}
	g.spin.StopWithMessage("Analysis ready")
	return result, nil
}

// generateOutput is the --json payload.
type generateOutput struct {
	Analysis string `json:"analysis"`
	Code     string `json:"code"`
	Command  string `json:"command"`
	File     string `json:"file"`
}

// generateScript runs one request end to end: analysis, optional
// confirmation, finalization and the file write. A nil confirm accepts.
func generateScript(ctx context.Context, gen scriptGenerator, req generate.Request,
	confirm func(analysis string) bool, outDir string) (*generateOutput, error) {
	result, err := gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	out := &generateOutput{Analysis: result.Analysis}
	if confirm != nil && !confirm(result.Analysis) {
		return out, errDeclined
	}

	code := autolisp.Finalize(result.Code)
	if code == "" {
		return out, generate.NewError(generate.KindExtractionFailure, generate.ErrCodeUnavailable)
	}
	out.Code = code
	out.Command = autolisp.CommandName(code)

	path, err := artifact.Write(outDir, code)
	if err != nil {
		return out, err
	}
	out.File = path
	return out, nil
}

// readPrompt returns the request from args or stdin.
func readPrompt(args []string) (prompt string, fromStdin bool, err error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), false, nil
	}
	if stdinIsTerminal() {
		return "", false, generate.ErrMissingPrompt
	}

	data, err := io.ReadAll(stdinReader)
	if err != nil {
		return "", true, fmt.Errorf("failed to read from stdin: %w", err)
	}
	prompt = strings.TrimSpace(string(data))
	if prompt == "" {
		return "", true, generate.ErrMissingPrompt
	}
	return prompt, true, nil
}

func printAnalysis(analysis string) {
	if generateJSON {
		return
	}
	fmt.Println("Analysis:")
	fmt.Println()
	fmt.Println(strings.TrimSpace(analysis))
	fmt.Println()
}

// confirmOnTerminal prints the analysis and asks whether to continue.
func confirmOnTerminal(analysis string) bool {
	printAnalysis(analysis)
	fmt.Fprint(os.Stderr, "Generate the code? [Y/n] ")
	return askYes(stdinReader)
}

// askYes reads one answer line. Empty means yes.
func askYes(r io.Reader) bool {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes", "s", "sim":
		return true
	}
	return false
}

func init() {
	generateCmd.Flags().BoolVarP(&generateYes, "yes", "y", false, "Skip the confirmation prompt")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Directory to write the .lsp file to")
	generateCmd.Flags().BoolVar(&generateCopy, "copy", false, "Also copy the script to the clipboard")
	generateCmd.Flags().BoolVar(&generatePrint, "print", false, "Also print the script to stdout")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Print {analysis, code, command, file} as JSON (implies --yes)")
}
