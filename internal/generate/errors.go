package generate

import (
	"errors"
	"fmt"
)

// Kind classifies a generation failure for the caller.
type Kind int

const (
	// KindUnknown is any error not produced by this package.
	KindUnknown Kind = iota
	// KindInvalidInput covers blank or too-short prompts and a blank key.
	// It is detected before any network call.
	KindInvalidInput
	// KindAuth means the API key was rejected. No other model was tried.
	KindAuth
	// KindQuota means the account hit a quota or rate limit. No other model was tried.
	KindQuota
	// KindUnavailable means every candidate model failed for other reasons.
	KindUnavailable
	// KindEmptyResponse means a model answered with blank text.
	KindEmptyResponse
	// KindExtractionFailure means no usable code could be taken from the reply.
	// It is raised when the user asks for the code, not when the reply arrives.
	KindExtractionFailure
)

// String returns the kind name used in logs and JSON payloads.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindAuth:
		return "auth"
	case KindQuota:
		return "quota"
	case KindUnavailable:
		return "unavailable"
	case KindEmptyResponse:
		return "empty_response"
	case KindExtractionFailure:
		return "extraction_failure"
	default:
		return "unknown"
	}
}

// Validation and extraction sentinels, wrapped in *Error.
var (
	ErrMissingAPIKey   = errors.New("API key not provided")
	ErrMissingPrompt   = errors.New("prompt not provided")
	ErrPromptTooShort  = fmt.Errorf("prompt too short: describe the command in at least %d characters", MinPromptLength)
	ErrCodeUnavailable = errors.New("code not available")
	ErrNoCandidates    = errors.New("no candidate models configured")
	ErrAllSkipped      = errors.New("every candidate model is paused after repeated failures")
)

// Error is a classified generation failure.
type Error struct {
	Kind Kind
	// Model is the candidate that produced the failure, when one did.
	Model string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.summary()
	if e.Model != "" {
		msg += fmt.Sprintf(" (model %s)", e.Model)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnknown
}

// NewError wraps err with a kind. It is used by callers that detect
// failures after generation, such as a missing code segment.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (k Kind) summary() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindAuth:
		return "API key invalid or expired"
	case KindQuota:
		return "quota exceeded"
	case KindUnavailable:
		return "no model available"
	case KindEmptyResponse:
		return "empty response"
	case KindExtractionFailure:
		return "code extraction failed"
	default:
		return "generation failed"
	}
}
