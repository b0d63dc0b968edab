package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/studygen-api/internal/api/shared"
	"github.com/phrazzld/studygen-api/internal/domain"
	"github.com/phrazzld/studygen-api/internal/generation"
	"github.com/phrazzld/studygen-api/internal/service"
	"github.com/phrazzld/studygen-api/internal/service/auth"
	"github.com/phrazzld/studygen-api/internal/store"
)

// Failure categories reported in the "category" field of error responses.
const (
	CategoryUnauthorized     = "unauthorized"
	CategoryQuotaExceeded    = "quota_exceeded"
	CategoryInvalidPayload   = "invalid_payload"
	CategoryGenerationFailed = "generation_failed"
	CategoryMalformedOutput  = "malformed_model_output"
	CategoryNotFound         = "not_found"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, generation.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, generation.ErrQuotaExceeded):
		return http.StatusTooManyRequests

	// Persistence is checked before the validation sentinels because a store
	// may reject an entity as invalid, which is still a server-side failure.
	case errors.Is(err, generation.ErrPersistenceFailed):
		return http.StatusInternalServerError

	// Bad request errors
	case errors.Is(err, generation.ErrInvalidPayload),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	// Upstream model errors
	case errors.Is(err, generation.ErrModelInvocation),
		errors.Is(err, generation.ErrMalformedOutput),
		errors.Is(err, generation.ErrValidationFailed):
		return http.StatusBadGateway

	// Not found errors
	case errors.Is(err, service.ErrTutorNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCategory returns the failure category reported to clients, or an
// empty string for errors outside the generation pipeline.
func ErrorCategory(err error) string {
	switch {
	case errors.Is(err, generation.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return CategoryUnauthorized
	case errors.Is(err, generation.ErrQuotaExceeded):
		return CategoryQuotaExceeded
	case errors.Is(err, generation.ErrPersistenceFailed):
		return CategoryGenerationFailed
	case errors.Is(err, generation.ErrInvalidPayload),
		errors.Is(err, domain.ErrValidation):
		return CategoryInvalidPayload
	case errors.Is(err, generation.ErrMalformedOutput),
		errors.Is(err, generation.ErrValidationFailed):
		return CategoryMalformedOutput
	case errors.Is(err, generation.ErrModelInvocation):
		return CategoryGenerationFailed
	case errors.Is(err, service.ErrTutorNotFound),
		errors.Is(err, store.ErrNotFound):
		return CategoryNotFound
	default:
		return ""
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"
	case errors.Is(err, generation.ErrUnauthorized),
		errors.Is(err, auth.ErrMissingToken):
		return "Authentication required"

	case errors.Is(err, generation.ErrQuotaExceeded):
		return "Generation quota exceeded, try again later"

	case errors.Is(err, generation.ErrPersistenceFailed):
		return "Failed to save generated content"

	case errors.Is(err, generation.ErrInvalidPayload),
		errors.Is(err, domain.ErrValidation):
		return invalidPayloadMessage(err)

	case errors.Is(err, generation.ErrContentBlocked):
		return "The model declined to generate content for this source"
	case errors.Is(err, generation.ErrModelInvocation):
		return "The language model is unavailable, try again later"
	case errors.Is(err, generation.ErrMalformedOutput),
		errors.Is(err, generation.ErrValidationFailed):
		return "The language model returned an unusable response"

	case errors.Is(err, service.ErrTutorNotFound):
		return "Tutor not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	default:
		return "An unexpected error occurred"
	}
}

// invalidPayloadMessage names the offending field for known request errors.
func invalidPayloadMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptySource):
		return "Invalid source: required field"
	case errors.Is(err, domain.ErrInvalidCount):
		return "Invalid num: out of range"
	case errors.Is(err, domain.ErrEmptyTitle):
		return "Invalid title: required field"
	case errors.Is(err, domain.ErrEmptyDescription):
		return "Invalid description: required field"
	case errors.Is(err, domain.ErrInvalidDifficulty):
		return "Invalid difficulty: invalid value"
	case errors.Is(err, domain.ErrInvalidChatRole):
		return "Invalid role: invalid value"
	case errors.Is(err, domain.ErrEmptyContent):
		return "Invalid content: required field"
	default:
		return "Invalid request"
	}
}

// HandleAPIError writes the error response for err. defaultMsg replaces the
// generic message for unclassified server errors when it is not empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	category := ErrorCategory(err)
	if category == "" && defaultMsg != "" {
		message = defaultMsg
	}

	var opts []shared.ResponseOption
	if category != "" {
		opts = append(opts, shared.WithCategory(category))
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// HandleValidationError writes a 400 invalid_payload response for request
// decoding and struct validation failures.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err,
		shared.WithCategory(CategoryInvalidPayload))
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'GenerateRequest.Num' Error:Field validation for 'Num' failed on the 'max' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid format"
	default:
		return "validation failed"
	}
}
