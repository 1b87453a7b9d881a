package llm

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorClass groups provider failures by how the caller should react.
type ErrorClass int

const (
	// ClassOther is any failure worth retrying with the next model.
	ClassOther ErrorClass = iota
	// ClassAuth means the credential was rejected; no model will accept it.
	ClassAuth
	// ClassQuota means the account is rate limited or out of quota.
	ClassQuota
)

// String returns the class name used in logs.
func (c ErrorClass) String() string {
	switch c {
	case ClassAuth:
		return "auth"
	case ClassQuota:
		return "quota"
	default:
		return "other"
	}
}

// Google reports a bad key as HTTP 400 with this ErrorInfo reason.
var authReasons = map[string]bool{
	"API_KEY_INVALID":               true,
	"API_KEY_SERVICE_BLOCKED":       true,
	"API_KEY_HTTP_REFERRER_BLOCKED": true,
	"ACCESS_TOKEN_EXPIRED":          true,
}

var quotaReasons = map[string]bool{
	"RATE_LIMIT_EXCEEDED": true,
	"RESOURCE_EXHAUSTED":  true,
	"QUOTA_EXCEEDED":      true,
	"BILLING_DISABLED":    true,
}

// Classify inspects a provider error. Structured SDK errors are checked
// first (gax APIError, googleapi.Error, gRPC status, Anthropic API error);
// anything else is matched on its message, which catches providers that
// only surface plain text.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassOther
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if c, ok := classifyReason(apiErr.Reason()); ok {
			return c
		}
		if code := apiErr.HTTPCode(); code > 0 {
			if c, ok := classifyHTTP(code); ok {
				return c
			}
		} else if st := apiErr.GRPCStatus(); st != nil {
			if c, ok := classifyGRPC(st.Code()); ok {
				return c
			}
		}
		return classifyMessage(apiErr.Error())
	}

	var httpErr *googleapi.Error
	if errors.As(err, &httpErr) {
		if c, ok := classifyHTTP(httpErr.Code); ok {
			return c
		}
		return classifyMessage(httpErr.Message)
	}

	// The Anthropic error's Error() needs the originating request, so its
	// status code is the only signal read from it.
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		c, _ := classifyHTTP(anthropicErr.StatusCode)
		return c
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.OK {
		if c, ok := classifyGRPC(st.Code()); ok {
			return c
		}
	}

	return classifyMessage(err.Error())
}

func classifyReason(reason string) (ErrorClass, bool) {
	switch {
	case reason == "":
		return ClassOther, false
	case authReasons[reason]:
		return ClassAuth, true
	case quotaReasons[reason]:
		return ClassQuota, true
	}
	return ClassOther, false
}

func classifyHTTP(code int) (ErrorClass, bool) {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ClassAuth, true
	case http.StatusTooManyRequests:
		return ClassQuota, true
	}
	return ClassOther, false
}

func classifyGRPC(code codes.Code) (ErrorClass, bool) {
	switch code {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ClassAuth, true
	case codes.ResourceExhausted:
		return ClassQuota, true
	}
	return ClassOther, false
}

func classifyMessage(msg string) ErrorClass {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "api key"), strings.Contains(msg, "api_key"):
		return ClassAuth
	case strings.Contains(msg, "quota"), strings.Contains(msg, "rate limit"):
		return ClassQuota
	}
	return ClassOther
}
