package llm

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

// User-facing messages for upstream failures
const (
	MsgInvalidCredential  = "Invalid API key"
	MsgRateLimited        = "API rate limit exceeded. Please try again later."
	MsgUnavailable        = "The generation API is temporarily unavailable"
	MsgGenerationFailed   = "Failed to generate skill. Please try again."
	MsgInvalidResponse    = "Invalid response from the generation API"
	MsgGenerationTimedOut = "The generation API did not respond in time"
)

// ClassifyStatus maps an upstream HTTP status code onto the error taxonomy
func ClassifyStatus(statusCode int, cause error) error {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return skills.NewError(skills.KindInvalidCredential, MsgInvalidCredential, cause)
	case statusCode == http.StatusTooManyRequests:
		return skills.NewError(skills.KindUpstreamRateLimit, MsgRateLimited, cause)
	case statusCode >= 500:
		return skills.NewError(skills.KindUpstreamUnavailable, MsgUnavailable, cause)
	default:
		return skills.NewError(skills.KindGenerationFailed, MsgGenerationFailed, cause)
	}
}

// ClassifyTransport maps errors that carry no HTTP status. Deadline expiry
// counts as the upstream being unavailable.
func ClassifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return skills.NewError(skills.KindUpstreamUnavailable, MsgGenerationTimedOut, err)
	}
	return skills.NewError(skills.KindGenerationFailed, MsgGenerationFailed, err)
}

// EmptyResponse reports a response without the expected text payload
func EmptyResponse(cause error) error {
	return skills.NewError(skills.KindGenerationFailed, MsgInvalidResponse, cause)
}
