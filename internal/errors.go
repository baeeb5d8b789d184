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
	ErrorTypeValidation       ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound         ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized     ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden        ErrorType = "FORBIDDEN"
	ErrorTypeConflict         ErrorType = "CONFLICT"
	ErrorTypeStoreUnavailable ErrorType = "STORE_UNAVAILABLE"
	ErrorTypeInternal         ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal         ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidBody      ErrorCode = "INVALID_BODY"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"

	// session resolution
	ErrCodeMissingSession  ErrorCode = "MISSING_SESSION"
	ErrCodeInvalidSession  ErrorCode = "INVALID_SESSION"
	ErrCodeSessionExpired  ErrorCode = "SESSION_EXPIRED"
	ErrCodeOrphanedSession ErrorCode = "ORPHANED_SESSION"

	// authorization
	ErrCodeInsufficientPermissions ErrorCode = "INSUFFICIENT_PERMISSIONS"
	ErrCodeNoScopeAssigned         ErrorCode = "NO_SCOPE_ASSIGNED"
	ErrCodeScopeNotPermitted       ErrorCode = "SCOPE_NOT_PERMITTED"
	ErrCodeStoreUnavailable        ErrorCode = "STORE_UNAVAILABLE"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidResetToken  ErrorCode = "INVALID_RESET_TOKEN"
	ErrCodeResetTokenExpired  ErrorCode = "RESET_TOKEN_EXPIRED"
	ErrCodeUnknownEmail       ErrorCode = "UNKNOWN_EMAIL"

	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeEmailTaken         ErrorCode = "EMAIL_TAKEN"
	ErrCodeRoleNotFound       ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeRoleExists         ErrorCode = "ROLE_EXISTS"
	ErrCodeDefaultRole        ErrorCode = "DEFAULT_ROLE_PROTECTED"
	ErrCodePermissionExists   ErrorCode = "PERMISSION_EXISTS"
	ErrCodeUnknownPermission  ErrorCode = "UNKNOWN_PERMISSION"
	ErrCodeUnknownJob         ErrorCode = "UNKNOWN_JOB"
	ErrCodeJobNotFound        ErrorCode = "JOB_NOT_FOUND"
	ErrCodeCVNotFound         ErrorCode = "CV_NOT_FOUND"
	ErrCodeInvalidCV          ErrorCode = "INVALID_CV"
	ErrCodeNoSkills           ErrorCode = "NO_SKILLS"
	ErrCodeAssessmentFailed   ErrorCode = "ASSESSMENT_FAILED"
	ErrCodeLanguageModelError ErrorCode = "LANGUAGE_MODEL_ERROR"
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

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// Is matches on Type and Code so callers can compare against the shared
// sentinels below with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
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
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
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

func NewExternalError(message string, code ErrorCode, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewStoreUnavailableError reports an infrastructural read failure. It is
// terminal for the current operation and never retried here.
func NewStoreUnavailableError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeStoreUnavailable,
		Code:       ErrCodeStoreUnavailable,
		Message:    "entity store unavailable",
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

func NewInsufficientPermissionsError(permission string) *AppError {
	return NewForbiddenError("insufficient permissions", ErrCodeInsufficientPermissions).
		WithDetails(map[string]string{"permission": permission})
}

func NewScopeNotPermittedError(element int64) *AppError {
	return NewForbiddenError("scope element not permitted", ErrCodeScopeNotPermitted).
		WithDetails(map[string]int64{"scope_element": element})
}

// Sentinels. Never call WithCause or WithDetails on these; build a fresh
// error with the constructors instead.
var (
	ErrMissingSession  = NewUnauthorizedError("missing session token", ErrCodeMissingSession)
	ErrInvalidSession  = NewUnauthorizedError("invalid session token", ErrCodeInvalidSession)
	ErrSessionExpired  = NewUnauthorizedError("session expired", ErrCodeSessionExpired)
	ErrOrphanedSession = NewUnauthorizedError("orphaned session", ErrCodeOrphanedSession)
	ErrNoScopeAssigned = NewForbiddenError("no scope assigned", ErrCodeNoScopeAssigned)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid credentials", ErrCodeInvalidCredentials)
	ErrInvalidResetToken  = NewValidationError("Invalid Otp", ErrCodeInvalidResetToken)
	ErrResetTokenExpired  = NewValidationError("Otp expired", ErrCodeResetTokenExpired)
	ErrUnknownEmail       = NewValidationError("Email not found", ErrCodeUnknownEmail)

	ErrUserNotFound  = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrEmailTaken    = NewConflictError("User already exists", ErrCodeEmailTaken)
	ErrRoleNotFound  = NewNotFoundError("Role not found", ErrCodeRoleNotFound)
	ErrRoleExists    = NewConflictError("Role already exists", ErrCodeRoleExists)
	ErrDefaultRole   = NewForbiddenError("The default role cannot be deleted", ErrCodeDefaultRole)
	ErrPermissionDup = NewConflictError("Permission already exists", ErrCodePermissionExists)
	ErrJobNotFound   = NewNotFoundError("Job not found", ErrCodeJobNotFound)
	ErrCVNotFound    = NewNotFoundError("No CV uploaded", ErrCodeCVNotFound)
	ErrNoSkills      = NewValidationError("No skills available for assessment", ErrCodeNoSkills)
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
