package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/epistats/epistats/internal/analytics/incidence"
	"github.com/epistats/epistats/internal/countrycode"
	"github.com/epistats/epistats/internal/dataset"
)

func TestServiceError_Error(t *testing.T) {
	err := &ServiceError{
		Code:    "TEST_ERROR",
		Message: "Test error message",
	}

	if err.Error() != "Test error message" {
		t.Errorf("Expected 'Test error message', got '%s'", err.Error())
	}
}

func TestNewServiceError(t *testing.T) {
	err := NewServiceError(CodeInvalidInput, "Error message")

	if err.Code != CodeInvalidInput {
		t.Errorf("Expected code '%s', got '%s'", CodeInvalidInput, err.Code)
	}
	if err.Message != "Error message" {
		t.Errorf("Expected message 'Error message', got '%s'", err.Message)
	}
	if err.Details != nil {
		t.Errorf("Expected nil details, got %v", err.Details)
	}
}

func TestNewServiceErrorWithDetails_JSON(t *testing.T) {
	details := map[string]interface{}{
		"field":  "years",
		"reason": "not a number",
	}

	err := NewServiceErrorWithDetails(CodeInvalidInput, "Validation failed", details)

	data, jsonErr := json.Marshal(err)
	if jsonErr != nil {
		t.Fatalf("Failed to marshal: %v", jsonErr)
	}

	s := string(data)
	if !strings.Contains(s, `"code":"INVALID_INPUT"`) {
		t.Errorf("Expected code in JSON, got %s", s)
	}
	if !strings.Contains(s, `"field":"years"`) {
		t.Errorf("Expected details in JSON, got %s", s)
	}
}

func TestToServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"country not found", fmt.Errorf("case table: %w", dataset.ErrCountryNotFound), CodeCountryNotFound},
		{"unknown name", countrycode.ErrUnknownCountry, CodeCountryNotFound},
		{"missing population", fmt.Errorf("x: %w", dataset.ErrMissingPopulation), CodeMissingData},
		{"missing year", dataset.ErrYearNotFound, CodeMissingData},
		{"invalid population", incidence.ErrInvalidPopulation, CodeMissingData},
		{"window", incidence.ErrInvalidWindow, CodeInvalidInput},
		{"short series", incidence.ErrInsufficientData, CodeInvalidInput},
		{"other", errors.New("disk on fire"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := ToServiceError(tt.err)
			if se.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, se.Code)
			}
			if !errors.Is(se, tt.err) {
				t.Errorf("Expected ServiceError to wrap %v", tt.err)
			}
		})
	}

	if ToServiceError(nil) != nil {
		t.Error("Expected nil for nil error")
	}

	original := NewServiceError(CodeInvalidInput, "bad")
	if ToServiceError(fmt.Errorf("wrapped: %w", original)) != original {
		t.Error("Expected wrapped ServiceError to pass through")
	}
}

func TestServiceError_HTTPStatus(t *testing.T) {
	tests := map[string]int{
		CodeCountryNotFound: http.StatusNotFound,
		CodeInvalidInput:    http.StatusBadRequest,
		CodeMissingData:     http.StatusBadRequest,
		CodeInternal:        http.StatusInternalServerError,
		"SOMETHING_ELSE":    http.StatusInternalServerError,
	}

	for code, want := range tests {
		if got := NewServiceError(code, "x").HTTPStatus(); got != want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", code, got, want)
		}
	}
}
