package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

func BadRequest(message string) *APIError {
	return New("BAD_REQUEST", message, "", http.StatusBadRequest)
}

func Unauthorized(message string) *APIError {
	return New("UNAUTHORIZED", message, "", http.StatusUnauthorized)
}

func NotFound(message string) *APIError {
	return New("NOT_FOUND", message, "", http.StatusNotFound)
}

// As unwraps err into an *APIError, reporting whether it was one.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

func Dependency(message string, err error) *APIError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return New("DEPENDENCY_ERROR", message, details, http.StatusInternalServerError)
}
