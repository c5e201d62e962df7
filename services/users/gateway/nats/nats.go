package gateway_nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/piresc/otpauth/internal/pkg/constants"
	"github.com/piresc/otpauth/internal/pkg/logger"
	"github.com/piresc/otpauth/internal/pkg/models"
	natspkg "github.com/piresc/otpauth/internal/pkg/nats"
	nrpkg "github.com/piresc/otpauth/internal/pkg/newrelic"
)

const defaultRequestTimeout = 10 * time.Second

// NATSGateway hands outbound email to the mailer worker over NATS
// request/reply and waits for its delivery verdict
type NATSGateway struct {
	client  *natspkg.Client
	timeout time.Duration
}

// NewNATSGateway creates a new NATS gateway
func NewNATSGateway(client *natspkg.Client, timeout time.Duration) *NATSGateway {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &NATSGateway{
		client:  client,
		timeout: timeout,
	}
}

// SendEmail requests delivery of msg and fails unless the mailer confirms it
func (g *NATSGateway) SendEmail(ctx context.Context, msg *models.EmailMessage) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var result models.EmailDeliveryResult
	err := nrpkg.WithExternalSegment(ctx, "NATS", "Request", "nats://"+constants.SubjectEmailSend, func() error {
		return g.client.RequestJSON(ctx, constants.SubjectEmailSend, msg, &result)
	})
	if err != nil {
		logger.ErrorCtx(ctx, "Failed to request email delivery",
			logger.Email(msg.To),
			logger.Err(err))
		return fmt.Errorf("failed to request email delivery: %w", err)
	}

	if !result.Delivered {
		reason := result.Error
		if reason == "" {
			reason = "unknown reason"
		}
		logger.WarnCtx(ctx, "Mailer could not deliver email",
			logger.Email(msg.To),
			logger.String("reason", reason))
		return errors.New("mailer could not deliver email: " + reason)
	}

	return nil
}
