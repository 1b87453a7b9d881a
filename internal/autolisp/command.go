package autolisp

import (
	"regexp"
	"strings"
)

const (
	// UnknownCommand is returned when no command name can be derived.
	UnknownCommand = "UNKNOWN"

	// FallbackFileName names artifacts whose command is unknown.
	FallbackFileName = "GenIA.lsp"

	// FileExtension is the extension AutoCAD loads scripts from.
	FileExtension = ".lsp"
)

var (
	headerCommandRe = regexp.MustCompile(`(?i)COMMAND:\s*(\w+)`)
	defunCommandRe  = regexp.MustCompile(`(?i)defun\s+c:(\w+)`)
)

// CommandName derives the AutoCAD command a script defines, upper-cased.
// The ";;; COMMAND: NAME" header wins over "(defun c:NAME"; with neither
// it returns UnknownCommand. The result only labels the artifact.
func CommandName(code string) string {
	if m := headerCommandRe.FindStringSubmatch(code); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := defunCommandRe.FindStringSubmatch(code); m != nil {
		return strings.ToUpper(m[1])
	}
	return UnknownCommand
}

// FileName returns the suggested download name for a script.
func FileName(code string) string {
	name := CommandName(code)
	if name == UnknownCommand {
		return FallbackFileName
	}
	return name + FileExtension
}
