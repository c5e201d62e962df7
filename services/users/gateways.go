package users

import (
	"context"

	"github.com/piresc/otpauth/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/piresc/otpauth/services/users UserGW

// UserGW is the notification channel
type UserGW interface {
	// SendEmail returns once the message was accepted for delivery or failed
	SendEmail(ctx context.Context, msg *models.EmailMessage) error
}
