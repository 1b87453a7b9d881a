// Package errmsg provides enhanced error message formatting with actionable suggestions.
package errmsg

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/genia-lsp/genia/internal/generate"
)

// ErrorContext provides additional context for error formatting
type ErrorContext struct {
	Provider string // The provider in use ("gemini", "claude")
	Models   []string
}

// Format returns a formatted error message with possible causes and suggestions.
// The context parameter is optional - pass nil for generic formatting.
func Format(err error, ctx *ErrorContext) string {
	if err == nil {
		return ""
	}

	var genErr *generate.Error
	if errors.As(err, &genErr) {
		return formatGenerateError(err.Error(), genErr.Kind, ctx)
	}

	errMsg := err.Error()

	var netErr net.Error
	if errors.As(err, &netErr) {
		return formatNetworkError(netErr)
	}
	if isNetworkError(errMsg) {
		return formatGenericNetworkError(errMsg)
	}
	if isPermissionError(errMsg) {
		return formatPermissionError(errMsg)
	}

	return errMsg
}

func formatGenerateError(errMsg string, kind generate.Kind, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	switch kind {
	case generate.KindInvalidInput:
		sb.WriteString("\nSuggestions:\n")
		sb.WriteString(fmt.Sprintf("  - Describe the command in at least %d characters\n", generate.MinPromptLength))
		sb.WriteString(fmt.Sprintf("  - Store an API key with '%s'\n", keySetCommand(ctx)))

	case generate.KindAuth:
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - The API key was typed or pasted incorrectly\n")
		sb.WriteString("  - The key was revoked or has expired\n")
		sb.WriteString("  - The key belongs to a different provider\n")

		sb.WriteString("\nSuggestions:\n")
		sb.WriteString(fmt.Sprintf("  - Replace the stored key with '%s'\n", keySetCommand(ctx)))
		sb.WriteString("  - Check which key is in use with 'genia key status'\n")

	case generate.KindQuota:
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - Too many requests in a short period\n")
		sb.WriteString("  - The account's free-tier quota is used up\n")

		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Wait a few minutes before retrying\n")
		sb.WriteString("  - Check the quota and billing settings of your account\n")

	case generate.KindUnavailable:
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - Every candidate model was renamed, withdrawn or overloaded\n")
		sb.WriteString("  - Network connectivity issue\n")

		sb.WriteString("\nSuggestions:\n")
		if ctx != nil && len(ctx.Models) > 0 {
			sb.WriteString(fmt.Sprintf("  - Models tried: %s\n", strings.Join(ctx.Models, ", ")))
		}
		sb.WriteString("  - Set current model names with 'genia config set llm.models <a,b,...>'\n")
		sb.WriteString("  - Try again in a few minutes\n")

	case generate.KindEmptyResponse:
		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Submit the request again\n")
		sb.WriteString("  - Rephrase the request with more detail\n")

	case generate.KindExtractionFailure:
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - The model answered with an analysis only\n")
		sb.WriteString("  - The request does not describe a drawing command\n")

		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Rephrase the request and generate again\n")
	}

	return sb.String()
}

func keySetCommand(ctx *ErrorContext) string {
	if ctx != nil && ctx.Provider != "" {
		return fmt.Sprintf("genia key set --provider %s", ctx.Provider)
	}
	return "genia key set"
}

func formatNetworkError(err net.Error) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	if err.Timeout() {
		sb.WriteString("  - Request timed out\n")
		sb.WriteString("  - Slow or unstable network connection\n")
	} else {
		sb.WriteString("  - Network connectivity issue\n")
		sb.WriteString("  - DNS resolution failure\n")
	}
	sb.WriteString("  - Firewall or proxy blocking the connection\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check your internet connection\n")
	if err.Timeout() {
		sb.WriteString("  - Raise GENIA_API_TIMEOUT (for example GENIA_API_TIMEOUT=2m)\n")
	}
	sb.WriteString("  - Try again in a few minutes\n")

	return sb.String()
}

func formatGenericNetworkError(errMsg string) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Network connectivity issue\n")
	sb.WriteString("  - Service temporarily unavailable\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check your internet connection\n")
	sb.WriteString("  - Try again in a few minutes\n")

	return sb.String()
}

func formatPermissionError(errMsg string) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - The output directory is not writable\n")
	sb.WriteString("  - $GENIA_HOME is owned by a different user\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Choose another directory with --out or 'genia config set output_dir <dir>'\n")
	sb.WriteString("  - Check permissions with: ls -la ~/.genia\n")

	return sb.String()
}

// isNetworkError checks if the error message indicates a network issue
func isNetworkError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "network is unreachable") ||
		strings.Contains(lower, "dial tcp") ||
		strings.Contains(lower, "i/o timeout")
}

// isPermissionError checks if the error message indicates a permission issue
func isPermissionError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "permission denied") ||
		strings.Contains(lower, "access denied") ||
		strings.Contains(lower, "operation not permitted")
}
