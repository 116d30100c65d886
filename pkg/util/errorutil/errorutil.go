package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to API callers.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidState      = "INVALID_STATE"
	CodeInvalidCategory   = "INVALID_CATEGORY"
	CodeInvalidTitle      = "INVALID_TITLE"
	CodeInvalidBody       = "INVALID_BODY"
	CodeInvalidAttachment = "INVALID_ATTACHMENT"
	CodeInvalidOperator   = "INVALID_OPERATOR"
	CodeValidation        = "VALIDATION_FAILED"
	CodeConflict          = "CONFLICT"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeInternal          = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks. Matching is by Code only.
var (
	ErrNotFound          = &DomainError{Code: CodeNotFound}
	ErrInvalidState      = &DomainError{Code: CodeInvalidState}
	ErrInvalidCategory   = &DomainError{Code: CodeInvalidCategory}
	ErrInvalidTitle      = &DomainError{Code: CodeInvalidTitle}
	ErrInvalidBody       = &DomainError{Code: CodeInvalidBody}
	ErrInvalidAttachment = &DomainError{Code: CodeInvalidAttachment}
	ErrInvalidOperator   = &DomainError{Code: CodeInvalidOperator}
	ErrValidation        = &DomainError{Code: CodeValidation}
	ErrConflict          = &DomainError{Code: CodeConflict}
	ErrUnauthorized      = &DomainError{Code: CodeUnauthorized}
	ErrForbidden         = &DomainError{Code: CodeForbidden}
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewInvalidState reports an illegal transition from the ticket's current state.
func NewInvalidState(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidState, message, http.StatusConflict, details)
}

func NewInvalidCategory(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidCategory, message, http.StatusUnprocessableEntity, details)
}

func NewInvalidTitle(message string) error {
	return NewDomainError(CodeInvalidTitle, message, http.StatusUnprocessableEntity, nil)
}

func NewInvalidBody(message string) error {
	return NewDomainError(CodeInvalidBody, message, http.StatusUnprocessableEntity, nil)
}

func NewInvalidAttachment(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidAttachment, message, http.StatusUnprocessableEntity, details)
}

func NewInvalidOperator(message string) error {
	return NewDomainError(CodeInvalidOperator, message, http.StatusUnprocessableEntity, nil)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		if domainErr.HTTPStatus == 0 {
			withStatus := *domainErr
			withStatus.HTTPStatus = http.StatusInternalServerError
			return &withStatus
		}
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts an arbitrary error into a DomainError, keeping domain errors intact.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// CodeOf returns the DomainError code carried by err, or CodeInternal.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}
