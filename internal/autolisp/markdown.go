package autolisp

import (
	"regexp"
	"strings"
)

// Bullet replaces markdown list markers in cleaned analysis text.
const Bullet = "• "

var (
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	boldRe       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe     = regexp.MustCompile(`\*(.*?)\*`)
	inlineCodeRe = regexp.MustCompile("`(.*?)`")
	listItemRe   = regexp.MustCompile(`(?m)^[-*+]\s+`)
	blockquoteRe = regexp.MustCompile(`(?m)^>\s+`)
	linkRe       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
)

// CleanAnalysis reduces markdown in analysis text to plain text.
//
// Fenced blocks go first so the inline-code pass never sees their
// delimiters, and list markers are rewritten before emphasis so a leading
// "* " is not taken as the start of an italic span.
func CleanAnalysis(s string) string {
	s = anyFenceRe.ReplaceAllString(s, "")
	s = headingRe.ReplaceAllString(s, "")
	s = listItemRe.ReplaceAllString(s, Bullet)
	s = boldRe.ReplaceAllString(s, "$1")
	s = italicRe.ReplaceAllString(s, "$1")
	s = inlineCodeRe.ReplaceAllString(s, "$1")
	s = blockquoteRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
