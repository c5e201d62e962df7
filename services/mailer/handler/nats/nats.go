package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/otpauth/internal/pkg/constants"
	"github.com/piresc/otpauth/internal/pkg/logger"
	"github.com/piresc/otpauth/internal/pkg/models"
	natspkg "github.com/piresc/otpauth/internal/pkg/nats"
	"github.com/piresc/otpauth/services/mailer"
)

const defaultSendTimeout = 10 * time.Second

// MailerHandler relays email requests from NATS to the SMTP sender and
// replies with the delivery result
type MailerHandler struct {
	sender      mailer.Sender
	natsClient  *natspkg.Client
	nrApp       *newrelic.Application
	sendTimeout time.Duration
	subs        []*nats.Subscription
}

// NewMailerHandler creates a new mailer NATS handler. nrApp may be nil.
func NewMailerHandler(sender mailer.Sender, client *natspkg.Client, nrApp *newrelic.Application, sendTimeout time.Duration) *MailerHandler {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &MailerHandler{
		sender:      sender,
		natsClient:  client,
		nrApp:       nrApp,
		sendTimeout: sendTimeout,
		subs:        make([]*nats.Subscription, 0),
	}
}

// InitNATSConsumers joins the mailer queue group so each request is
// delivered by exactly one worker
func (h *MailerHandler) InitNATSConsumers() error {
	sub, err := h.natsClient.QueueSubscribe(constants.SubjectEmailSend, constants.QueueMailer, func(msg *nats.Msg) {
		result := h.handleEmailSend(msg.Data)
		if err := h.reply(msg, result); err != nil {
			logger.Error("Failed to reply to email request", logger.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to email requests: %w", err)
	}
	h.subs = append(h.subs, sub)

	return nil
}

// Unsubscribe stops consuming; messages already received still complete
func (h *MailerHandler) Unsubscribe() {
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil {
			logger.Warn("Failed to unsubscribe", logger.String("subject", sub.Subject), logger.Err(err))
		}
	}
	h.subs = h.subs[:0]
}

func (h *MailerHandler) handleEmailSend(data []byte) models.EmailDeliveryResult {
	txn := h.nrApp.StartTransaction("EmailSend")
	defer txn.End()
	ctx, cancel := context.WithTimeout(newrelic.NewContext(context.Background(), txn), h.sendTimeout)
	defer cancel()

	var msg models.EmailMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.ErrorCtx(ctx, "Failed to unmarshal email request", logger.Err(err))
		txn.NoticeError(err)
		return models.EmailDeliveryResult{Error: "invalid email request"}
	}
	if msg.To == "" {
		return models.EmailDeliveryResult{Error: "recipient is required"}
	}

	if err := h.sender.Send(ctx, &msg); err != nil {
		txn.NoticeError(err)
		return models.EmailDeliveryResult{Error: err.Error()}
	}

	logger.InfoCtx(ctx, "Email delivered", logger.Email(msg.To))
	return models.EmailDeliveryResult{Delivered: true}
}

func (h *MailerHandler) reply(msg *nats.Msg, result models.EmailDeliveryResult) error {
	if msg.Reply == "" {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return msg.Respond(data)
}
