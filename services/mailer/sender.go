package mailer

import (
	"context"

	"github.com/piresc/otpauth/internal/pkg/models"
)

// Sender delivers one email and reports the relay's verdict
type Sender interface {
	Send(ctx context.Context, msg *models.EmailMessage) error
}
