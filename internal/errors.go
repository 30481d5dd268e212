package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeRateLimited  ErrorType = "RATE_LIMITED"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidQuantity  ErrorCode = "INVALID_QUANTITY"
	ErrCodeInvalidStore     ErrorCode = "INVALID_STORE"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidShelf     ErrorCode = "INVALID_SHELF"

	ErrCodeArticleNotFound      ErrorCode = "ARTICLE_NOT_FOUND"
	ErrCodeStoreNotFound        ErrorCode = "STORE_NOT_FOUND"
	ErrCodeRackNotFound         ErrorCode = "RACK_NOT_FOUND"
	ErrCodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	ErrCodeTaskNotFound         ErrorCode = "TASK_NOT_FOUND"
	ErrCodeAnnouncementNotFound ErrorCode = "ANNOUNCEMENT_NOT_FOUND"
	ErrCodeAuditNotFound        ErrorCode = "AUDIT_TEMPLATE_NOT_FOUND"

	ErrCodeDuplicateKey     ErrorCode = "DUPLICATE_KEY"
	ErrCodeHasDependents    ErrorCode = "HAS_DEPENDENTS"
	ErrCodeAlreadyBootstrap ErrorCode = "ALREADY_INITIALIZED"
	ErrCodeCannotDeleteSelf ErrorCode = "CANNOT_DELETE_SELF"

	ErrCodeInsufficientPermission ErrorCode = "INSUFFICIENT_PERMISSION"
	ErrCodeForeignStore           ErrorCode = "FOREIGN_STORE"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTokenRevoked       ErrorCode = "TOKEN_REVOKED"
	ErrCodeTooManyRequests    ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeRemoteUnavailable  ErrorCode = "REMOTE_UNAVAILABLE"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so package-level sentinels work with errors.Is
// even after WithCause produced a copy.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func (e *AppError) WithMessage(message string) *AppError {
	cp := *e
	cp.Message = message
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewRateLimitedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimited,
		Code:       ErrCodeTooManyRequests,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

// NewErrorFromStatus rebuilds an AppError from a bare HTTP status, used when a
// response carries no structured error body.
func NewErrorFromStatus(status int, message string) *AppError {
	if message == "" {
		message = http.StatusText(status)
	}
	e := &AppError{Message: message, StatusCode: status, Code: ErrorCode(strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_")))}
	switch {
	case status == http.StatusBadRequest:
		e.Type = ErrorTypeValidation
	case status == http.StatusUnauthorized:
		e.Type = ErrorTypeUnauthorized
	case status == http.StatusForbidden:
		e.Type = ErrorTypeForbidden
	case status == http.StatusNotFound:
		e.Type = ErrorTypeNotFound
	case status == http.StatusConflict:
		e.Type = ErrorTypeConflict
	case status == http.StatusTooManyRequests:
		e.Type = ErrorTypeRateLimited
	case status >= 500:
		e.Type = ErrorTypeInternal
	default:
		e.Type = ErrorTypeExternal
	}
	return e
}

var (
	ErrDuplicateKey     = NewConflictError("record with this key already exists", ErrCodeDuplicateKey)
	ErrHasDependents    = NewConflictError("record still has dependent records", ErrCodeHasDependents)
	ErrCannotDeleteSelf = NewValidationError("you cannot delete your own account", ErrCodeCannotDeleteSelf)
	ErrAlreadyBootstrap = NewConflictError("database already initialized", ErrCodeAlreadyBootstrap)

	ErrInsufficientPermission = NewForbiddenError("insufficient permissions", ErrCodeInsufficientPermission)
	ErrForeignStore           = NewForbiddenError("access to another store is not allowed", ErrCodeForeignStore)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid username or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrTokenRevoked       = NewUnauthorizedError("Token has been revoked", ErrCodeTokenRevoked)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
