package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation pipeline
var (
	// ErrUnauthorized is returned when a request carries no valid session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrQuotaExceeded is returned when the user has used up their generation allowance.
	ErrQuotaExceeded = errors.New("generation quota exceeded")

	// ErrInvalidPayload is returned when request fields are missing or out of range.
	// It is always raised before the language model is called.
	ErrInvalidPayload = errors.New("invalid generation request")

	// ErrModelInvocation is returned when the language model call fails at the
	// transport or model level. It is never retried by this package.
	ErrModelInvocation = errors.New("language model invocation failed")

	// ErrContentBlocked is returned when the model refuses the content due to
	// safety filters. It wraps ErrModelInvocation.
	ErrContentBlocked = fmt.Errorf("%w: content blocked by safety filters", ErrModelInvocation)

	// ErrMalformedOutput is returned when no parseable JSON object can be
	// extracted from the model's response.
	ErrMalformedOutput = errors.New("malformed model output")

	// ErrValidationFailed is returned when the parsed model output does not have
	// the shape required for the requested content kind.
	ErrValidationFailed = errors.New("generated content failed validation")

	// ErrPersistenceFailed is returned when generated content could not be stored.
	ErrPersistenceFailed = errors.New("failed to persist generated content")

	// ErrUsageNotRecorded is returned together with a persisted entity when the
	// usage record write failed after the content write succeeded.
	ErrUsageNotRecorded = errors.New("content persisted but usage not recorded")

	// ErrInvalidTransition is returned when a relay event arrives in a state
	// that does not accept it.
	ErrInvalidTransition = errors.New("invalid relay state transition")

	// ErrInvalidConfig is returned when a model client is configured incorrectly.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// NormalizationReason classifies why model output could not be normalized.
type NormalizationReason string

// ParseFailed means no candidate extracted from the text parsed as a JSON object.
const ParseFailed NormalizationReason = "parse_failed"

// NormalizationError reports a failure to turn model text into a ContentEnvelope.
// Text holds the candidate payload that failed to parse, kept for diagnostics.
type NormalizationError struct {
	Reason NormalizationReason
	Text   string
	Err    error
}

// Error implements the error interface.
func (e *NormalizationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMalformedOutput, e.Reason, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *NormalizationError) Unwrap() error {
	return e.Err
}

// Is makes every NormalizationError match ErrMalformedOutput.
func (e *NormalizationError) Is(target error) bool {
	return target == ErrMalformedOutput
}

// ValidationError identifies the first invalid element of generated content.
// Index is -1 when the envelope itself is invalid.
type ValidationError struct {
	Index   int
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s: %s", ErrValidationFailed, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: item %d: %s: %s", ErrValidationFailed, e.Index, e.Field, e.Message)
}

// Is makes every ValidationError match ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
