package http

import (
	"github.com/labstack/echo/v4"
	"github.com/piresc/otpauth/internal/pkg/logger"
	"github.com/piresc/otpauth/internal/pkg/models"
	"github.com/piresc/otpauth/internal/utils"
	"github.com/piresc/otpauth/services/users"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	userUC users.UserUC
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	userUC users.UserUC,
) *UserHandler {
	return &UserHandler{
		userUC: userUC,
	}
}

// Me returns the profile of the authenticated user
func (h *UserHandler) Me(c echo.Context) error {
	userID, _ := c.Get(logger.ContextKeyUserID).(string)
	if userID == "" {
		return utils.UnauthorizedResponse(c, "Unauthorized")
	}

	user, err := h.userUC.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err, "")
	}

	return utils.SuccessResponse(c, models.ProfileResponse{
		Msg:  "User retrieved successfully",
		User: user,
	})
}
