// Package services holds the statistics logic shared by the HTTP API and
// the command line tools.
package services

import (
	"errors"
	"net/http"

	"github.com/epistats/epistats/internal/analytics/incidence"
	"github.com/epistats/epistats/internal/countrycode"
	"github.com/epistats/epistats/internal/dataset"
)

// Error codes
const (
	CodeCountryNotFound = "COUNTRY_NOT_FOUND"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeMissingData     = "MISSING_DATA"
	CodeInternal        = "INTERNAL"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`

	err error
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Unwrap returns the error the ServiceError was built from, if any
func (e *ServiceError) Unwrap() error {
	return e.err
}

// HTTPStatus returns the response status for the error code
func (e *ServiceError) HTTPStatus() int {
	switch e.Code {
	case CodeCountryNotFound:
		return http.StatusNotFound
	case CodeInvalidInput, CodeMissingData:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// ToServiceError classifies err by the sentinel it wraps. A ServiceError
// passes through unchanged and nil stays nil.
func ToServiceError(err error) *ServiceError {
	if err == nil {
		return nil
	}

	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}

	code := CodeInternal
	switch {
	case errors.Is(err, dataset.ErrCountryNotFound),
		errors.Is(err, countrycode.ErrUnknownCountry):
		code = CodeCountryNotFound
	case errors.Is(err, dataset.ErrMissingPopulation),
		errors.Is(err, dataset.ErrYearNotFound),
		errors.Is(err, incidence.ErrInvalidPopulation):
		code = CodeMissingData
	case errors.Is(err, incidence.ErrInvalidWindow),
		errors.Is(err, incidence.ErrLengthMismatch),
		errors.Is(err, incidence.ErrInsufficientData),
		errors.Is(err, incidence.ErrStartYearNotFound):
		code = CodeInvalidInput
	}

	return &ServiceError{Code: code, Message: err.Error(), err: err}
}
