package main

import (
	"errors"
	"os"

	"github.com/genia-lsp/genia/internal/generate"
)

// Exit codes for different error types.
// These enable scripts to distinguish between failure modes.
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0

	// ExitGeneral indicates a general error
	ExitGeneral = 1

	// ExitUsage indicates invalid arguments, missing input or a missing key
	ExitUsage = 2

	// ExitAuth indicates the API key was rejected
	ExitAuth = 3

	// ExitQuota indicates the account is rate limited or out of quota
	ExitQuota = 4

	// ExitUnavailable indicates no model could serve the request
	ExitUnavailable = 5

	// ExitExtraction indicates the reply held no usable script
	ExitExtraction = 6
)

// exitWithCode flushes traces and exits with the specified exit code
func exitWithCode(code int) {
	shutdownTracing()
	os.Exit(code)
}

// exitCodeFor maps a generation error to its exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, errDeclined) {
		return ExitSuccess
	}

	switch generate.KindOf(err) {
	case generate.KindInvalidInput:
		return ExitUsage
	case generate.KindAuth:
		return ExitAuth
	case generate.KindQuota:
		return ExitQuota
	case generate.KindUnavailable, generate.KindEmptyResponse:
		return ExitUnavailable
	case generate.KindExtractionFailure:
		return ExitExtraction
	}
	return ExitGeneral
}
