package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeInvalidState ErrorType = "INVALID_STATE"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidField     ErrorCode = "INVALID_FIELD"
	ErrCodeInvalidDirection ErrorCode = "INVALID_DIRECTION"

	ErrCodeContractNotFound  ErrorCode = "CONTRACT_NOT_FOUND"
	ErrCodeProfileNotFound   ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeEmployeeNotFound  ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeSettingsNotFound  ErrorCode = "SETTINGS_NOT_FOUND"
	ErrCodeArchiveNotFound   ErrorCode = "ARCHIVE_NOT_FOUND"
	ErrCodeContractNotOwned  ErrorCode = "CONTRACT_NOT_OWNED"
	ErrCodeContractNotActive ErrorCode = "CONTRACT_NOT_APPROVED"
	ErrCodeAlreadyTerminated ErrorCode = "CONTRACT_ALREADY_TERMINATED"
	ErrCodeContractDuplicate ErrorCode = "CONTRACT_ALREADY_EXISTS"
	ErrCodeSharingNotAllowed ErrorCode = "SHARING_NOT_ALLOWED"
	ErrCodeSyncFailed        ErrorCode = "SYNC_FAILED"
	ErrCodeMaterializeFailed ErrorCode = "EMPLOYEE_MATERIALIZE_FAILED"
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
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
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

// NewInvalidStateError covers operations attempted against a contract that is
// not in the status the operation requires.
func NewInvalidStateError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidState,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
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

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
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

var (
	ErrContractNotFound      = NewNotFoundError("contract not found", ErrCodeContractNotFound)
	ErrProfileNotFound       = NewNotFoundError("personal profile not found", ErrCodeProfileNotFound)
	ErrEmployeeNotFound      = NewNotFoundError("employee not found", ErrCodeEmployeeNotFound)
	ErrSettingsNotFound      = NewNotFoundError("data sharing settings not found", ErrCodeSettingsNotFound)
	ErrArchiveNotFound       = NewNotFoundError("retention archive not found", ErrCodeArchiveNotFound)
	ErrContractNotOwned      = NewForbiddenError("contract does not belong to this account", ErrCodeContractNotOwned)
	ErrContractNotApproved   = NewInvalidStateError("contract is not in approved status", ErrCodeContractNotActive)
	ErrAlreadyTerminated     = NewInvalidStateError("contract is already terminated", ErrCodeAlreadyTerminated)
	ErrContractAlreadyExists = NewConflictError("an active contract already exists for this person and company", ErrCodeContractDuplicate)
	ErrSharingNotAllowed     = NewForbiddenError("requested data is not covered by the sharing settings", ErrCodeSharingNotAllowed)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
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
