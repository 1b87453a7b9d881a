package autolisp

import (
	"regexp"
	"strings"
)

// scriptStartRe matches the first line of a script: the command header
// comment or the opener of a command-defining function.
var scriptStartRe = regexp.MustCompile(`(?m)^(?:;;; COMMAND:|\(defun\s+[cC]:)`)

// Finalize prepares extracted code for download or copying.
//
// Fence delimiters are stripped again and everything before the earliest
// line starting with ";;; COMMAND:" or "(defun c:" is dropped, so the
// artifact starts at the script itself. Code with neither marker is only
// trimmed. Finalize is idempotent and returns "" for blank input.
func Finalize(code string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}

	clean := strings.TrimSpace(stripFences(code))

	if loc := scriptStartRe.FindStringIndex(clean); loc != nil {
		clean = strings.TrimSpace(clean[loc[0]:])
	}

	return clean
}
