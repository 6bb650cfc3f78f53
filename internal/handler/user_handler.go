package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go-account-service/internal/middleware"
	"go-account-service/internal/model"
	"go-account-service/internal/service"
	"go-account-service/pkg/apierror"
)

type UserHandler struct {
	service       *service.UserService
	cookies       CookieConfig
	maxAvatarSize int64
}

func NewUserHandler(service *service.UserService, cookies CookieConfig, maxAvatarSize int64) *UserHandler {
	return &UserHandler{service: service, cookies: cookies, maxAvatarSize: maxAvatarSize}
}

func (h *UserHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	profile, err := h.service.GetDetails(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", profile)
}

func (h *UserHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	profile, err := h.service.GetDetails(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Current user details fetched", profile)
}

func (h *UserHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	var payload model.UpdateDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	profile, err := h.service.UpdateDetails(r.Context(), claims.UserID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User details updated successfully", profile)
}

func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	var payload model.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	if err := h.service.UpdatePassword(r.Context(), claims.UserID, payload.CurrentPassword, payload.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Password updated successfully", nil)
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxAvatarSize)

	file, _, err := r.FormFile("avatar")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, apierror.BadRequest("avatar exceeds the maximum upload size"))
			return
		}
		writeError(w, apierror.BadRequest("no file uploaded"))
		return
	}
	defer file.Close()

	url, err := h.service.UpdateAvatar(r.Context(), claims.UserID, file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Avatar updated successfully", map[string]string{"avatar_url": url})
}

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	if err := h.service.DeleteAccount(r.Context(), claims.UserID); err != nil {
		writeError(w, err)
		return
	}

	h.cookies.clearAuthCookies(w)
	writeSuccess(w, http.StatusOK, "User account deleted successfully", nil)
}
