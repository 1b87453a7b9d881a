// Package artifact delivers a finalized AutoLISP script to the user as a
// .lsp file or through the system clipboard.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/genia-lsp/genia/internal/autolisp"
)

// ErrNoCode is returned when there is nothing to deliver.
var ErrNoCode = errors.New("no code to deliver")

// ContentType is the MIME type used when the script is offered as a download.
const ContentType = "text/plain; charset=utf-8"

// clipboardWrite is replaced in tests.
var clipboardWrite = clipboard.WriteAll

// Write saves code as dir/<COMMAND>.lsp and returns the file path.
// The directory is created if needed. The file content is exactly code.
func Write(dir, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", ErrNoCode
	}
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, autolisp.FileName(code))
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	return path, nil
}

// Copy places code on the system clipboard verbatim.
func Copy(code string) error {
	if strings.TrimSpace(code) == "" {
		return ErrNoCode
	}
	if err := clipboardWrite(code); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
