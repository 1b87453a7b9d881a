package autolisp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_SectionMarkers(t *testing.T) {
	raw := "Claro! Segue a resposta **completa**.\n" +
		"=== ANÁLISE ===\n" +
		"1. Use entmake para o círculo\n" +
		"2. Peça o centro com getpoint\n\n" +
		"=== CÓDIGO ===\n" +
		";;; COMMAND: DRAWCIRCLE\n" +
		"(defun c:drawcircle (/ pt) (princ))\n"

	res, outcome, err := ExtractWithOutcome(raw)
	require.NoError(t, err)

	assert.Equal(t, OutcomeMarkers, outcome)
	assert.Equal(t, "1. Use entmake para o círculo\n2. Peça o centro com getpoint", res.Analysis)
	assert.Equal(t, ";;; COMMAND: DRAWCIRCLE\n(defun c:drawcircle (/ pt) (princ))", res.Code)
	assert.True(t, res.HasCode())
}

func TestExtract_SectionMarkersCaseInsensitive(t *testing.T) {
	raw := "=== análise ===\nDesenha um círculo.\n=== código ===\n(defun c:c1 () nil)"

	res, outcome, err := ExtractWithOutcome(raw)
	require.NoError(t, err)

	assert.Equal(t, OutcomeMarkers, outcome)
	assert.Equal(t, "Desenha um círculo.", res.Analysis)
	assert.Equal(t, "(defun c:c1 () nil)", res.Code)
}

func TestExtract_MarkersWinOverFencedBlock(t *testing.T) {
	raw := "=== ANÁLISE ===\n" +
		"Compare com ```lisp\n(defun c:wrong () nil)\n``` acima.\n" +
		"=== CÓDIGO ===\n" +
		"(defun c:right () nil)"

	res, outcome, err := ExtractWithOutcome(raw)
	require.NoError(t, err)

	assert.Equal(t, OutcomeMarkers, outcome)
	assert.Equal(t, "(defun c:right () nil)", res.Code)
	assert.NotContains(t, res.Analysis, "```")
	assert.NotContains(t, res.Analysis, "c:wrong")
}

func TestExtract_FencesInsideCodeSectionAreStripped(t *testing.T) {
	raw := "=== ANÁLISE ===\nResumo.\n=== CÓDIGO ===\n```lisp\n(defun c:x () nil)\n```"

	res, outcome, err := ExtractWithOutcome(raw)
	require.NoError(t, err)

	assert.Equal(t, OutcomeMarkers, outcome)
	assert.Equal(t, "(defun c:x () nil)", res.Code)
}

func TestExtract_FencedBlock(t *testing.T) {
	raw := "Here is the plan.\n\n" +
		"```lisp\n;;; COMMAND: ADDTEXT\n(defun c:addtext () (princ))\n```\n\n" +
		"Load it with APPLOAD."

	res, outcome, err := ExtractWithOutcome(raw)
	require.NoError(t, err)

	assert.Equal(t, OutcomeFencedBlock, outcome)
	assert.Equal(t, ";;; COMMAND: ADDTEXT\n(defun c:addtext () (princ))", res.Code)
	assert.NotContains(t, res.Analysis, "```")
	assert.Contains(t, res.Analysis, "Here is the plan.")
	assert.Contains(t, res.Analysis, "Load it with APPLOAD.")
	assert.NotContains(t, res.Analysis, "defun")
}

func TestExtract_FencedBlockTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"autolisp tag", "Intro\n```autolisp\n(defun c:a () nil)\n```"},
		{"upper-case tag", "Intro\n```LISP\n(defun c:a () nil)\n```"},
		{"untagged", "Intro\n```\n(defun c:a () nil)\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, outcome, err := ExtractWithOutcome(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, OutcomeFencedBlock, outcome)
			assert.Equal(t, "(defun c:a () nil)", res.Code)
			assert.Equal(t, "Intro", res.Analysis)
		})
	}
}

func TestExtract_FencedBlockUsedWhenOnlyOneMarker(t *testing.T) {
	raw := "=== ANÁLISE ===\nSó a análise.\n```lisp\n(defun c:only () nil)\n```"

	res, outcome, err := ExtractWithOutcome(raw)
	require.NoError(t, err)

	assert.Equal(t, OutcomeFencedBlock, outcome)
	assert.Equal(t, "(defun c:only () nil)", res.Code)
	assert.NotContains(t, res.Analysis, "```")
}

func TestExtract_LineScan(t *testing.T) {
	raw := "Plan:\nStep one\n(defun c:foo ()\n  (princ)\n)"

	res, outcome, err := ExtractWithOutcome(raw)
	require.NoError(t, err)

	assert.Equal(t, OutcomeLineScan, outcome)
	assert.Equal(t, "Plan:\nStep one", res.Analysis)
	assert.Equal(t, "(defun c:foo ()\n  (princ)\n)", res.Code)
}

func TestExtract_LineScanHeaderComment(t *testing.T) {
	raw := "Intro text\n  ;;; COMMAND: BAR\n(defun c:bar () nil)"

	res, outcome, err := ExtractWithOutcome(raw)
	require.NoError(t, err)

	assert.Equal(t, OutcomeLineScan, outcome)
	assert.Equal(t, "Intro text", res.Analysis)
	assert.Equal(t, ";;; COMMAND: BAR\n(defun c:bar () nil)", res.Code)
}

func TestExtract_LineScanMatchOnFirstLineLeavesCodeEmpty(t *testing.T) {
	raw := "(defun c:foo () nil)\nand some words"

	res, outcome, err := ExtractWithOutcome(raw)
	require.NoError(t, err)

	assert.Equal(t, OutcomeNone, outcome)
	assert.Equal(t, "(defun c:foo () nil)\nand some words", res.Analysis)
	assert.Empty(t, res.Code)
	assert.False(t, res.HasCode())
}

func TestExtract_NoCodeIsNotAnError(t *testing.T) {
	raw := "I could not produce a script for that request.\nPlease add details."

	res, err := Extract(raw)
	require.NoError(t, err)

	assert.Equal(t, raw, res.Analysis)
	assert.Empty(t, res.Code)
}

func TestExtract_BlankReply(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t\n"} {
		_, err := Extract(raw)
		assert.True(t, errors.Is(err, ErrEmptyResponse), "raw=%q", raw)
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "markers", OutcomeMarkers.String())
	assert.Equal(t, "fenced-block", OutcomeFencedBlock.String())
	assert.Equal(t, "line-scan", OutcomeLineScan.String())
	assert.Equal(t, "none", OutcomeNone.String())
}

func TestCleanAnalysis(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"headings", "# Title\n### Sub", "Title\nSub"},
		{"emphasis and inline code", "**bold** and *it* and `code`", "bold and it and code"},
		{"bullets", "- a\n* b\n+ c", "• a\n• b\n• c"},
		{"bullet with emphasis", "* item with *emph*", "• item with emph"},
		{"blockquote", "> quoted", "quoted"},
		{"link", "see [docs](https://example.com/a)", "see docs"},
		{"fenced block", "before\n```lisp\n(x)\n```\nafter", "before\n\nafter"},
		{"numbered list untouched", "1. one\n2. two", "1. one\n2. two"},
		{"surrounding whitespace", "  \n text \n ", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanAnalysis(tt.in))
		})
	}
}

func TestStripFencesLeavesNoDelimiter(t *testing.T) {
	inputs := []string{
		"```lisp\n(x)\n```",
		"```autolisp\n(x)\n```",
		"``````",
		"``a```b``",
		"``",
	}
	for _, in := range inputs {
		assert.NotContains(t, stripFences(in), "```", "input=%q", in)
	}
}
