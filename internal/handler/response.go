package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-account-service/internal/model"
	"go-account-service/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrUserNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "User not found"
	} else if errors.Is(err, model.ErrEmailTaken) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "User with this email already exists"
	} else if errors.Is(err, model.ErrUsernameTaken) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "User with this username already exists"
	} else if errors.Is(err, model.ErrInvalidCredentials) {
		status = http.StatusBadRequest
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid credentials"
	} else if errors.Is(err, model.ErrCodeInvalidOrExpired) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid or expired code"
	} else if errors.Is(err, model.ErrTokenNotFound) || errors.Is(err, model.ErrTokenExpired) ||
		errors.Is(err, model.ErrTokenInvalid) || errors.Is(err, model.ErrTokenSuperseded) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid or expired token"
	} else if errors.Is(err, model.ErrUnauthorized) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	} else {
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}
