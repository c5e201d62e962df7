package middleware

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	jwtpkg "github.com/piresc/otpauth/internal/pkg/jwt"
	"github.com/piresc/otpauth/internal/pkg/logger"
	"github.com/piresc/otpauth/internal/pkg/models"
	"github.com/piresc/otpauth/internal/utils"
)

const (
	// ContextKeyClaims holds the validated *jwt.Claims
	ContextKeyClaims = "claims"
	// ContextKeyEmail holds the email carried by the token
	ContextKeyEmail = "email"
)

// JWTAuthMiddleware validates the bearer token and stores the user ID and
// email on the echo context
func JWTAuthMiddleware(config models.JWTConfig) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: ContextKeyClaims,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return jwtpkg.ValidateToken(auth, config.Secret)
		},
		SuccessHandler: func(c echo.Context) {
			claims, ok := c.Get(ContextKeyClaims).(*jwtpkg.Claims)
			if !ok {
				return
			}
			c.Set(logger.ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyEmail, claims.Email)
			SetUserID(c, claims.UserID)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return utils.UnauthorizedResponse(c, "Unauthorized")
		},
	})
}
