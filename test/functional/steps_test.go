package functional

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// keyEnvVars are removed so the host's keys never leak into a scenario.
// They are dropped rather than blanked so a scenario's .env can set them.
var keyEnvVars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "ANTHROPIC_API_KEY"}

func hostEnv() []string {
	env := make([]string, 0, len(os.Environ()))
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		keep := true
		for _, k := range keyEnvVars {
			if name == k {
				keep = false
				break
			}
		}
		if keep {
			env = append(env, kv)
		}
	}
	return env
}

// aDotEnvFileContaining writes a .env file into the scenario's working
// directory. Literal "\n" sequences become newlines.
func aDotEnvFileContaining(ctx context.Context, content string) (context.Context, error) {
	state := getState(ctx)
	if state == nil {
		return ctx, fmt.Errorf("no test state; is the Before hook running?")
	}
	content = strings.ReplaceAll(content, `\n`, "\n")
	return ctx, os.WriteFile(filepath.Join(state.workDir, ".env"), []byte(content+"\n"), 0o600)
}

// aCleanGeniaEnvironment is a no-op because the Before hook already sets up
// the environment. This step exists so feature files read naturally.
func aCleanGeniaEnvironment(ctx context.Context) (context.Context, error) {
	return ctx, nil
}

func iRun(ctx context.Context, command string) (context.Context, error) {
	return run(ctx, command, "")
}

func iRunWithInput(ctx context.Context, command, input string) (context.Context, error) {
	return run(ctx, command, input+"\n")
}

// run executes a command string, replacing "genia" with the test binary path.
func run(ctx context.Context, command, stdin string) (context.Context, error) {
	state := getState(ctx)
	if state == nil {
		return ctx, fmt.Errorf("no test state; is the Before hook running?")
	}

	args := strings.Fields(command)
	if len(args) > 0 && args[0] == "genia" {
		args[0] = state.binPath
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = state.workDir

	env := append(hostEnv(),
		"GENIA_HOME="+state.homeDir,
		"GENIA_OUTPUT_DIR=",
		"GENIA_DEBUG=",
		"GENIA_VERBOSE=",
		"GENIA_QUIET=",
	)
	cmd.Env = env
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	state.stdout = stdout.String()
	state.stderr = stderr.String()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			state.exitCode = exitErr.ExitCode()
		} else {
			return ctx, fmt.Errorf("command execution failed: %w", err)
		}
	} else {
		state.exitCode = 0
	}

	return ctx, nil
}

func theExitCodeIs(ctx context.Context, expected int) error {
	state := getState(ctx)
	if state.exitCode != expected {
		return fmt.Errorf("expected exit code %d, got %d\nstdout: %s\nstderr: %s",
			expected, state.exitCode, state.stdout, state.stderr)
	}
	return nil
}

func theExitCodeIsNot(ctx context.Context, notExpected int) error {
	state := getState(ctx)
	if state.exitCode == notExpected {
		return fmt.Errorf("expected exit code to not be %d\nstdout: %s\nstderr: %s",
			notExpected, state.stdout, state.stderr)
	}
	return nil
}

func theOutputContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if !strings.Contains(state.stdout, text) {
		return fmt.Errorf("expected stdout to contain %q, got:\n%s", text, state.stdout)
	}
	return nil
}

func theOutputDoesNotContain(ctx context.Context, text string) error {
	state := getState(ctx)
	if strings.Contains(state.stdout, text) {
		return fmt.Errorf("expected stdout not to contain %q, got:\n%s", text, state.stdout)
	}
	return nil
}

func theErrorOutputContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if !strings.Contains(state.stderr, text) {
		return fmt.Errorf("expected stderr to contain %q, got:\n%s", text, state.stderr)
	}
	return nil
}

func theErrorOutputDoesNotContain(ctx context.Context, text string) error {
	state := getState(ctx)
	if strings.Contains(state.stderr, text) {
		return fmt.Errorf("expected stderr not to contain %q, got:\n%s", text, state.stderr)
	}
	return nil
}

func theConfigFileContains(ctx context.Context, text string) error {
	state := getState(ctx)
	data, err := os.ReadFile(filepath.Join(state.homeDir, "config.toml"))
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if !strings.Contains(string(data), text) {
		return fmt.Errorf("expected config file to contain %q, got:\n%s", text, data)
	}
	return nil
}

func theConfigFileDoesNotExist(ctx context.Context) error {
	state := getState(ctx)
	path := filepath.Join(state.homeDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("expected %q not to exist", path)
	}
	return nil
}
