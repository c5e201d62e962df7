package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/piresc/otpauth/internal/pkg/logger"
	"github.com/piresc/otpauth/internal/pkg/models"
	"github.com/piresc/otpauth/internal/utils"
	"github.com/piresc/otpauth/services/users"
)

// AuthHandler handles the OTP and credential endpoints
type AuthHandler struct {
	userUC users.UserUC
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userUC users.UserUC) *AuthHandler {
	return &AuthHandler{
		userUC: userUC,
	}
}

// SendOTP handles OTP issuance requests
func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req models.SendOTPRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn("Invalid request payload for send OTP", logger.Err(err))
		return utils.BadRequestResponse(c, msgInvalidPayload)
	}

	if err := h.userUC.SendOTP(c.Request().Context(), req.Email); err != nil {
		return respondError(c, err, "Email is required")
	}

	return utils.MessageResponse(c, http.StatusOK, "OTP sent")
}

// VerifyOTP handles OTP verification requests
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req models.VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn("Invalid request payload for verify OTP", logger.Err(err))
		return utils.BadRequestResponse(c, msgInvalidPayload)
	}

	if err := h.userUC.VerifyOTP(c.Request().Context(), req.Email, req.OTP); err != nil {
		return respondError(c, err, "Invalid OTP")
	}

	return utils.MessageResponse(c, http.StatusOK, "OTP verified")
}

// Register handles signup requests
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn("Invalid request payload for register", logger.Err(err))
		return utils.BadRequestResponse(c, msgInvalidPayload)
	}

	user, err := h.userUC.Register(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, err, "Name, email and password are required")
	}

	return utils.SuccessResponse(c, models.RegisterResponse{
		Msg:  "User registered successfully",
		User: user,
	})
}

// Login handles password login requests
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn("Invalid request payload for login", logger.Err(err))
		return utils.BadRequestResponse(c, msgInvalidPayload)
	}

	resp, err := h.userUC.Login(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, err, "Email and password are required")
	}

	return utils.SuccessResponse(c, models.LoginResponse{
		Msg:       "Login success",
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
		User:      resp.User,
	})
}
