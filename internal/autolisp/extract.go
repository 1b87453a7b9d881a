// Package autolisp turns a free-text model reply into an analysis and an
// AutoLISP script, and prepares that script for download.
//
// AutoLISP is treated as opaque text. Nothing here parses or validates it;
// the package only locates segments and strips markdown around them.
package autolisp

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyResponse is returned when a reply has no non-whitespace content.
var ErrEmptyResponse = errors.New("the API returned an empty response")

// Result is the analysis/code pair recovered from a reply.
type Result struct {
	Analysis string `json:"analysis"`
	Code     string `json:"code"`
}

// HasCode reports whether the code segment holds anything but whitespace.
func (r Result) HasCode() bool {
	return strings.TrimSpace(r.Code) != ""
}

// Outcome records which fallback produced the segments.
type Outcome int

const (
	// OutcomeNone means no code was located; the whole reply is analysis.
	OutcomeNone Outcome = iota
	// OutcomeMarkers means both section markers were present and non-empty.
	OutcomeMarkers
	// OutcomeFencedBlock means the code came from a fenced block.
	OutcomeFencedBlock
	// OutcomeLineScan means the code started at a (defun or ;;; line.
	OutcomeLineScan
)

// String returns the outcome name used in logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeMarkers:
		return "markers"
	case OutcomeFencedBlock:
		return "fenced-block"
	case OutcomeLineScan:
		return "line-scan"
	default:
		return "none"
	}
}

// Section markers the instruction template asks the model to emit.
const (
	AnalysisMarker = "=== ANÁLISE ==="
	CodeMarker     = "=== CÓDIGO ==="
)

var (
	analysisSectionRe = regexp.MustCompile(`(?is)` + regexp.QuoteMeta(AnalysisMarker) + `\s*(.*?)(?:\s*` + regexp.QuoteMeta(CodeMarker) + `|\z)`)
	codeSectionRe     = regexp.MustCompile(`(?is)` + regexp.QuoteMeta(CodeMarker) + `\s*(.*)`)

	// Only the first fenced block is taken as code; the tag is optional.
	firstFenceRe = regexp.MustCompile("(?is)```(?:lisp|autolisp)?\\s*(.*?)```")
	anyFenceRe   = regexp.MustCompile("(?s)```.*?```")
)

// Extract splits a reply into analysis and code.
// A reply with no locatable code yields a Result with empty Code and no
// error; callers decide when that becomes a failure.
func Extract(raw string) (Result, error) {
	res, _, err := ExtractWithOutcome(raw)
	return res, err
}

// ExtractWithOutcome is Extract that also reports which fallback matched.
//
// Fallbacks run in a fixed order and the first that yields both segments
// wins: section markers, then the first fenced block, then a scan for the
// first line opening with "(defun" or ";;;".
func ExtractWithOutcome(raw string) (Result, Outcome, error) {
	if strings.TrimSpace(raw) == "" {
		return Result{}, OutcomeNone, ErrEmptyResponse
	}

	analysis, code := splitByMarkers(raw)
	outcome := OutcomeMarkers

	if analysis == "" || code == "" {
		if m := firstFenceRe.FindStringSubmatch(raw); m != nil {
			code = strings.TrimSpace(m[1])
			analysis = strings.TrimSpace(anyFenceRe.ReplaceAllString(raw, ""))
			outcome = OutcomeFencedBlock
		} else {
			analysis, code, outcome = splitByLineScan(raw)
		}
	}

	return Result{
		Analysis: CleanAnalysis(analysis),
		Code:     strings.TrimSpace(stripFences(code)),
	}, outcome, nil
}

func splitByMarkers(raw string) (analysis, code string) {
	if m := analysisSectionRe.FindStringSubmatch(raw); m != nil {
		analysis = strings.TrimSpace(m[1])
	}
	if m := codeSectionRe.FindStringSubmatch(raw); m != nil {
		code = strings.TrimSpace(m[1])
	}
	return analysis, code
}

// splitByLineScan cuts the reply at the first line that looks like the start
// of a script. A match on the first line does not count: there would be no
// analysis left, so the whole reply is returned as analysis instead.
func splitByLineScan(raw string) (analysis, code string, outcome Outcome) {
	lines := strings.Split(raw, "\n")
	start := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "(defun") || strings.HasPrefix(trimmed, ";;;") {
			start = i
			break
		}
	}

	if start <= 0 {
		return raw, "", OutcomeNone
	}

	analysis = strings.TrimSpace(strings.Join(lines[:start], "\n"))
	code = strings.TrimSpace(strings.Join(lines[start:], "\n"))
	return analysis, code, OutcomeLineScan
}

var fenceReplacer = strings.NewReplacer("```autolisp", "", "```lisp", "", "```", "")

// stripFences removes fence delimiters until none remain. One pass can leave
// a new delimiter behind when stray backticks meet across a removed fence.
func stripFences(s string) string {
	for strings.Contains(s, "```") {
		s = fenceReplacer.Replace(s)
	}
	return s
}
