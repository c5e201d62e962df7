package gateway

import (
	"context"
	"fmt"

	"github.com/piresc/otpauth/internal/pkg/models"
	natspkg "github.com/piresc/otpauth/internal/pkg/nats"
	"github.com/piresc/otpauth/services/users"
	gateway_nats "github.com/piresc/otpauth/services/users/gateway/nats"
	gateway_smtp "github.com/piresc/otpauth/services/users/gateway/smtp"
)

type emailTransport interface {
	SendEmail(ctx context.Context, msg *models.EmailMessage) error
}

// UserGW routes outbound email through the configured transport
type UserGW struct {
	transport emailTransport
}

// NewUserGW creates the notification gateway. natsClient is only required
// when cfg.Transport is nats.
func NewUserGW(cfg models.MailConfig, natsClient *natspkg.Client) (users.UserGW, error) {
	switch cfg.Transport {
	case "", models.MailTransportSMTP:
		return &UserGW{transport: gateway_smtp.NewSMTPGateway(cfg)}, nil
	case models.MailTransportNATS:
		if natsClient == nil {
			return nil, fmt.Errorf("mail transport %q requires a NATS connection", cfg.Transport)
		}
		return &UserGW{transport: gateway_nats.NewNATSGateway(natsClient, cfg.RequestTimeout)}, nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}

// SendEmail forwards to the selected transport
func (g *UserGW) SendEmail(ctx context.Context, msg *models.EmailMessage) error {
	return g.transport.SendEmail(ctx, msg)
}
