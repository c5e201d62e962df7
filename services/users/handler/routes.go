package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/piresc/otpauth/internal/pkg/middleware"
	"github.com/piresc/otpauth/internal/pkg/models"
	nrpkg "github.com/piresc/otpauth/internal/pkg/newrelic"
	"github.com/piresc/otpauth/services/users/handler/http"
)

// Handler coordinates the HTTP handlers of the auth service
type Handler struct {
	userHandler *http.UserHandler
	authHandler *http.AuthHandler
	cfg         *models.Config
}

// NewHandler creates and initializes all handlers
func NewHandler(
	userHandler *http.UserHandler,
	authHandler *http.AuthHandler,
	cfg *models.Config,
) *Handler {
	return &Handler{
		userHandler: userHandler,
		authHandler: authHandler,
		cfg:         cfg,
	}
}

// RegisterRoutes mounts the auth flow under /user
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	userGroup := e.Group("/user")

	// Public routes
	userGroup.POST("/send-otp", nrpkg.TraceHandler("SendOTP", h.authHandler.SendOTP))
	userGroup.POST("/verify-otp", nrpkg.TraceHandler("VerifyOTP", h.authHandler.VerifyOTP))
	userGroup.POST("/register", nrpkg.TraceHandler("Register", h.authHandler.Register))
	userGroup.POST("/login", nrpkg.TraceHandler("Login", h.authHandler.Login))

	// Protected routes
	userGroup.GET("/me", nrpkg.TraceHandler("Me", h.userHandler.Me), middleware.JWTAuthMiddleware(h.cfg.JWT))
}
