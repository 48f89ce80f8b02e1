package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/libraryloans/internal/domain"
	"github.com/rpggio/libraryloans/internal/domain/loan"
)

// Stable error codes reported to MCP clients.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeIllegalEntity    = "ILLEGAL_ENTITY"
	CodeNotFound         = "NOT_FOUND"
	CodeServiceFailure   = "SERVICE_FAILURE"
	CodeInternal         = "INTERNAL"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Storage failures keep
// their cause out of the message.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		var details any
		if validation.Field != "" {
			details = map[string]string{"field": validation.Field}
		}
		return &APIError{
			Code:         CodeValidationFailed,
			Message:      validation.Error(),
			Details:      details,
			RecoveryHint: "Fix the named field and retry",
		}
	}

	var illegal *domain.IllegalEntityError
	if errors.As(err, &illegal) {
		return &APIError{
			Code:         CodeIllegalEntity,
			Message:      illegal.Error(),
			RecoveryHint: "Check the identifier against a fresh read",
		}
	}

	var failure *domain.ServiceFailure
	if errors.As(err, &failure) {
		return &APIError{
			Code:         CodeServiceFailure,
			Message:      fmt.Sprintf("%s failed", failure.Op),
			RecoveryHint: "Retry later; see server logs",
		}
	}

	return &APIError{Code: CodeInternal, Message: err.Error()}
}

func notFound(entity string, id int64) *APIError {
	return &APIError{
		Code:         CodeNotFound,
		Message:      fmt.Sprintf("%s %d not found", entity, id),
		RecoveryHint: "List records to find a valid id",
	}
}

func invalidInput(field, message string) error {
	return domain.NewValidationError(loan.EntityName, field, message)
}
