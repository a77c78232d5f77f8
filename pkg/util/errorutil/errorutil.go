package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error codes surfaced to API clients.
const (
	CodeValidation         = "VALIDATION_FAILED"
	CodeEmptyComment       = "EMPTY_COMMENT"
	CodeInvalidRole        = "INVALID_ROLE"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeAlreadyRegistered  = "ALREADY_REGISTERED"
	CodeInternal           = "INTERNAL_ERROR"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	// Redirect names the view a browser client should fall back to.
	Redirect string
	Err      error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

// NewValidationCode is a validation error with a more specific code.
func NewValidationCode(code, message string) error {
	return NewDomainError(code, message, http.StatusBadRequest, nil)
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

func NewUnauthorized(message string) error {
	return &DomainError{Code: CodeUnauthorized, Message: message, HTTPStatus: http.StatusUnauthorized, Redirect: "/login"}
}

// NewInvalidCredentials never says which half of the pair was wrong.
func NewInvalidCredentials() error {
	return &DomainError{
		Code:       CodeInvalidCredentials,
		Message:    "invalid email or password",
		HTTPStatus: http.StatusUnauthorized,
		Redirect:   "/login",
	}
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewAlreadyRegistered() error {
	return &DomainError{
		Code:       CodeAlreadyRegistered,
		Message:    "email already registered",
		HTTPStatus: http.StatusConflict,
		Redirect:   "/login",
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// WithRedirect returns a copy of err's DomainError pointing at path.
func WithRedirect(err error, path string) error {
	de := ToDomainError(err)
	if de == nil {
		return nil
	}
	copied := *de
	copied.Redirect = path
	return &copied
}

// HasCode reports whether err carries the given DomainError code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	if IsUniqueViolation(err) {
		de := NewConflict("resource already exists", nil).(*DomainError)
		de.Err = err
		return de
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErrorToDomain(fiberErr)
	}
	return NewInternalError(err).(*DomainError)
}

func fiberErrorToDomain(fe *fiber.Error) *DomainError {
	code := CodeInternal
	switch {
	case fe.Code == http.StatusUnauthorized:
		code = CodeUnauthorized
	case fe.Code == http.StatusForbidden:
		code = CodeForbidden
	case fe.Code == http.StatusNotFound:
		code = CodeNotFound
	case fe.Code == http.StatusConflict:
		code = CodeConflict
	case fe.Code >= 400 && fe.Code < 500:
		code = CodeValidation
	}
	return &DomainError{Code: code, Message: fe.Message, HTTPStatus: fe.Code}
}

func MapError(err error) error {
	return ToDomainError(err)
}
