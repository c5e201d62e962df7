package gateway_smtp

import (
	"context"

	"github.com/piresc/otpauth/internal/pkg/mail"
	"github.com/piresc/otpauth/internal/pkg/models"
)

// Mailer delivers one email synchronously
type Mailer interface {
	Send(ctx context.Context, msg *models.EmailMessage) error
}

// SMTPGateway sends email straight to the SMTP relay from the API process
type SMTPGateway struct {
	mailer Mailer
}

// NewSMTPGateway creates a gateway backed by an SMTP sender for cfg
func NewSMTPGateway(cfg models.MailConfig) *SMTPGateway {
	return NewSMTPGatewayWithMailer(mail.NewSender(cfg))
}

// NewSMTPGatewayWithMailer creates a gateway around an existing mailer
func NewSMTPGatewayWithMailer(mailer Mailer) *SMTPGateway {
	return &SMTPGateway{mailer: mailer}
}

// SendEmail delivers msg and returns the relay's error, if any
func (g *SMTPGateway) SendEmail(ctx context.Context, msg *models.EmailMessage) error {
	return g.mailer.Send(ctx, msg)
}
