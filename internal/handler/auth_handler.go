package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-account-service/internal/model"
	"go-account-service/internal/service"
	"go-account-service/pkg/apierror"
)

type AuthHandler struct {
	service *service.AuthService
	cookies CookieConfig
}

func NewAuthHandler(service *service.AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{service: service, cookies: cookies}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	profile, err := h.service.SignUp(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "New user created successfully", profile)
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	profile, err := h.service.VerifyEmail(r.Context(), payload.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Email verified successfully", profile)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	profile, accessToken, refreshToken, err := h.service.SignIn(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cookies.setAuthCookies(w, accessToken, refreshToken)
	writeSuccess(w, http.StatusOK, "Logged in successfully", profile)
}

// Logout always succeeds: its purpose is clearing client state, so a missing
// or garbage refresh cookie is tolerated.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.SignOut(r.Context(), refreshTokenFromRequest(r))

	h.cookies.clearAuthCookies(w)
	writeSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) RecreateAccessToken(w http.ResponseWriter, r *http.Request) {
	accessToken, err := h.service.Refresh(r.Context(), refreshTokenFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	h.cookies.setAccessCookie(w, accessToken)
	writeSuccess(w, http.StatusOK, "Access token refreshed successfully", nil)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	if err := h.service.ForgotPassword(r.Context(), payload.Email); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Password reset link sent to your email", nil)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	token := chi.URLParam(r, "token")
	if err := h.service.ResetPassword(r.Context(), token, payload.Password); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Password reset successful", nil)
}
