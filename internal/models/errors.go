package models

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Error codes exposed to API clients.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeAuthorization  = "AUTHORIZATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	CodeInternal       = "INTERNAL_SERVER_ERROR"
)

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Code    string              `json:"code,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

// AppError represents a classified application error.
type AppError struct {
	Code    string
	Status  int
	Message string
	Details map[string][]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError reports malformed or semantically invalid input.
func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Status: http.StatusBadRequest, Message: message}
}

// NewFieldValidationError reports invalid input with per-field messages.
func NewFieldValidationError(message string, details map[string][]string) *AppError {
	return &AppError{Code: CodeValidation, Status: http.StatusBadRequest, Message: message, Details: details}
}

func NewAuthenticationError(message string) *AppError {
	if message == "" {
		message = "Authentication required"
	}
	return &AppError{Code: CodeAuthentication, Status: http.StatusUnauthorized, Message: message}
}

func NewAuthorizationError(message string) *AppError {
	if message == "" {
		message = "You do not have permission to perform this action"
	}
	return &AppError{Code: CodeAuthorization, Status: http.StatusForbidden, Message: message}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	msg := fmt.Sprintf("%s not found", resource)
	if id != nil {
		msg = fmt.Sprintf("%s with ID %v not found", resource, id)
	}
	return &AppError{Code: CodeNotFound, Status: http.StatusNotFound, Message: msg}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Status: http.StatusConflict, Message: message}
}

func NewRateLimitError(message string) *AppError {
	if message == "" {
		message = "Too many requests, please try again later"
	}
	return &AppError{Code: CodeRateLimit, Status: http.StatusTooManyRequests, Message: message}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
		Err:     err,
	}
}

// AsAppError unwraps err into an *AppError when one is present in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// RespondWithError writes the error envelope. Errors that are not classified
// collapse to a generic 500 so internals never reach the client.
func RespondWithError(c *fiber.Ctx, err error) error {
	if appErr, ok := AsAppError(err); ok {
		status := appErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		message := appErr.Message
		if status >= http.StatusInternalServerError {
			message = "Internal server error"
		}
		return c.Status(status).JSON(ErrorResponse{
			Error:   message,
			Code:    appErr.Code,
			Details: appErr.Details,
		})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorResponse{
			Error: fe.Message,
			Code:  codeForStatus(fe.Code),
		})
	}

	return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
		Error: "Internal server error",
		Code:  CodeInternal,
	})
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return CodeAuthentication
	case status == http.StatusForbidden:
		return CodeAuthorization
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusConflict:
		return CodeConflict
	case status == http.StatusTooManyRequests:
		return CodeRateLimit
	case status >= 400 && status < 500:
		return CodeValidation
	default:
		return CodeInternal
	}
}
