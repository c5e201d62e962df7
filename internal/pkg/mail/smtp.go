package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/piresc/otpauth/internal/pkg/circuitbreaker"
	"github.com/piresc/otpauth/internal/pkg/logger"
	"github.com/piresc/otpauth/internal/pkg/models"
	nrpkg "github.com/piresc/otpauth/internal/pkg/newrelic"
	gomail "github.com/wneessen/go-mail"
)

// implicitTLSPort is the SMTPS port; every other port upgrades with STARTTLS
// when the server offers it
const implicitTLSPort = 465

const dialTimeout = 10 * time.Second

// Sender delivers HTML email through an authenticated SMTP relay
type Sender struct {
	host     string
	port     int
	username string
	password string
	fromName string

	breaker *circuitbreaker.CircuitBreaker
}

// NewSender creates an SMTP sender from the mail configuration
func NewSender(cfg models.MailConfig) *Sender {
	breakerCfg := circuitbreaker.DefaultConfig("smtp")
	breakerCfg.FailureThreshold = uint32(max(cfg.BreakerFailures, 0))
	if cfg.BreakerCooldown > 0 {
		breakerCfg.Cooldown = cfg.BreakerCooldown
	}

	return &Sender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.Username,
		password: cfg.Password,
		fromName: cfg.FromName,
		breaker:  circuitbreaker.New(breakerCfg),
	}
}

// Send runs one SMTP dialog for msg and returns once the relay accepted or
// rejected it
func (s *Sender) Send(ctx context.Context, msg *models.EmailMessage) error {
	if s.host == "" || s.username == "" {
		return errors.New("smtp not configured")
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return nrpkg.WithExternalSegment(ctx, "SMTP", "SendMail", "smtp://"+addr, func() error {
			return s.send(ctx, msg)
		})
	})
	if err != nil {
		logger.WarnCtx(ctx, "SMTP delivery failed",
			logger.Email(msg.To),
			logger.String("smtp_addr", addr),
			logger.Err(err))
		return fmt.Errorf("smtp send to %s: %w", addr, err)
	}
	return nil
}

func (s *Sender) send(ctx context.Context, msg *models.EmailMessage) error {
	m, err := s.buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := s.newClient()
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, m)
}

func (s *Sender) newClient() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTimeout(dialTimeout),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSConfig(&tls.Config{ServerName: s.host}),
	}
	if s.port == implicitTLSPort {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	return gomail.NewClient(s.host, opts...)
}

func (s *Sender) buildMessage(msg *models.EmailMessage) (*gomail.Msg, error) {
	m := gomail.NewMsg()

	var err error
	if s.fromName != "" {
		err = m.FromFormat(s.fromName, s.username)
	} else {
		err = m.From(s.username)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", s.username, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}

	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	return m, nil
}
