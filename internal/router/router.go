package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-account-service/internal/config"
	"go-account-service/internal/handler"
	"go-account-service/internal/middleware"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/api/healthcheck", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1/users", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Post("/signup", authHandler.Signup)
		api.Post("/verify-email", authHandler.VerifyEmail)
		api.Post("/signin", authHandler.Signin)
		api.Post("/logout", authHandler.Logout)
		api.Post("/recreate-access-token", authHandler.RecreateAccessToken)
		api.Post("/forgot-password", authHandler.ForgotPassword)
		api.Post("/reset-password/{token}", authHandler.ResetPassword)

		api.Group(func(private chi.Router) {
			private.Use(authMiddleware.RequireAuth)

			private.Get("/check-auth", userHandler.CheckAuth)
			private.Post("/get-user-details", userHandler.GetDetails)
			private.Post("/update-user-details", userHandler.UpdateDetails)
			private.Post("/update-password", userHandler.UpdatePassword)
			private.Patch("/update-user-avatar", userHandler.UpdateAvatar)
			private.Post("/delete-user-account", userHandler.DeleteAccount)
		})
	})

	return r
}
