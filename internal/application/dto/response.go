// Package dto defines the request and response shapes of the HTTP API.
package dto

import (
	"time"

	"github.com/snowch/vast-sp-console/pkg/errors"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorDTO   `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDTO carries a classified failure to the client. Kind is the stable
// machine-readable category; Message is safe to display.
type ErrorDTO struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// SuccessResponse wraps data in the standard envelope.
func SuccessResponse(data interface{}, requestID string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

// ErrorResponse classifies err and wraps it in the standard envelope.
// Unclassified errors surface as Internal with a generic message; their
// detail stays on the server.
func ErrorResponse(err error, requestID string) *APIResponse {
	var errorDTO *ErrorDTO
	if appErr, ok := errors.AsAppError(err); ok {
		errorDTO = &ErrorDTO{
			Kind:    string(appErr.Kind),
			Message: appErr.Message,
		}
	} else {
		errorDTO = &ErrorDTO{
			Kind:    string(errors.KindInternal),
			Message: "internal server error",
		}
	}

	return &APIResponse{
		Success:   false,
		Error:     errorDTO,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

// ValidationErrorResponse reports per-field validation failures as a single
// InvalidArgument error.
func ValidationErrorResponse(fields map[string]string, requestID string) *APIResponse {
	return &APIResponse{
		Success: false,
		Error: &ErrorDTO{
			Kind:    string(errors.KindInvalidArgument),
			Message: "validation failed",
			Details: fields,
		},
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}
