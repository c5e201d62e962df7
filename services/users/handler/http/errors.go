package http

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/piresc/otpauth/internal/pkg/logger"
	"github.com/piresc/otpauth/internal/utils"
	"github.com/piresc/otpauth/services/users"
)

const (
	msgInvalidPayload = "Invalid request payload"
	msgInternal       = "Internal server error"
)

// errorMessages maps flow errors to the fixed text clients show to users.
// ErrInvalidInput is resolved per route.
var errorMessages = []struct {
	err error
	msg string
}{
	{users.ErrInvalidOTP, "Invalid OTP"},
	{users.ErrDuplicateEmail, "Email already used"},
	{users.ErrUserNotFound, "User not found"},
	{users.ErrIncorrectPassword, "Incorrect password"},
	{users.ErrDeliveryFailure, "Failed to send OTP"},
	{users.ErrEmailNotVerified, "Email not verified"},
}

// respondError renders err as {msg}: 400 for flow errors, 500 otherwise
func respondError(c echo.Context, err error, invalidInputMsg string) error {
	if errors.Is(err, users.ErrInvalidInput) {
		return utils.BadRequestResponse(c, invalidInputMsg)
	}
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			return utils.BadRequestResponse(c, m.msg)
		}
	}

	logger.ErrorCtx(c.Request().Context(), "Unexpected error",
		logger.String("path", c.Path()),
		logger.Err(err))
	return utils.InternalServerErrorResponse(c, msgInternal)
}
