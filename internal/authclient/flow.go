package authclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	httppkg "github.com/piresc/otpauth/internal/pkg/http"
	"github.com/piresc/otpauth/internal/pkg/logger"
	"github.com/piresc/otpauth/internal/pkg/models"
)

// Client-side rejections. Each one is also shown through the Notifier.
var (
	ErrInvalidEmail     = errors.New("email must contain @")
	ErrEmailNotVerified = errors.New("email not verified")
	ErrResendTooSoon    = errors.New("resend not allowed yet")
	ErrStepHidden       = errors.New("step not available in this form")
)

// Notifier shows a one-line message to the user
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// FlowConfig tunes the resend countdown
type FlowConfig struct {
	// ResendAfter is how long the resend button stays hidden, 30s by default
	ResendAfter time.Duration
	// TickInterval is the length of one countdown second, 1s by default
	TickInterval time.Duration
	// OnTimer observes countdown ticks
	OnTimer func(state TimerState, secondsLeft int)
}

// Flow sequences the signup and login steps against the auth API. A Flow
// is driven from one goroutine; only its timer ticks in the background.
type Flow struct {
	api      AuthAPI
	notifier Notifier
	timer    *ResendTimer

	resendSeconds int
	form          FormState
	session       *models.LoginResponse
}

// NewFlow creates a flow showing the signup form
func NewFlow(api AuthAPI, notifier Notifier, cfg FlowConfig) *Flow {
	if cfg.ResendAfter <= 0 {
		cfg.ResendAfter = 30 * time.Second
	}
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	return &Flow{
		api:           api,
		notifier:      notifier,
		timer:         NewResendTimer(cfg.TickInterval, cfg.OnTimer),
		resendSeconds: int(cfg.ResendAfter / time.Second),
	}
}

// State returns a snapshot of the form including the resend countdown
func (f *Flow) State() FormState {
	s := f.form
	s.ResendSeconds = f.timer.SecondsLeft()
	return s
}

func (f *Flow) SetName(name string)         { f.form.Name = name }
func (f *Flow) SetEmail(email string)       { f.form.Email = email }
func (f *Flow) SetOTP(otp string)           { f.form.OTP = otp }
func (f *Flow) SetPassword(password string) { f.form.Password = password }

// ResendAllowed reports whether Send OTP may be pressed again
func (f *Flow) ResendAllowed() bool {
	return f.timer.ResendAllowed()
}

// Timer exposes the resend countdown
func (f *Flow) Timer() *ResendTimer {
	return f.timer
}

// Session returns the last successful login, nil before one
func (f *Flow) Session() *models.LoginResponse {
	return f.session
}

// SendOTP requests a code for the form's email and starts the resend countdown
func (f *Flow) SendOTP(ctx context.Context) error {
	if !f.form.ShowOTPSection() {
		return ErrStepHidden
	}
	if !strings.Contains(f.form.Email, "@") {
		f.notifier.Notify("Please enter a valid email")
		return ErrInvalidEmail
	}
	if !f.timer.ResendAllowed() {
		f.notifier.Notify(fmt.Sprintf("You can resend OTP in %ds", f.timer.SecondsLeft()))
		return ErrResendTooSoon
	}

	f.form.Loading = true
	msg, err := f.api.SendOTP(ctx, f.form.Email)
	f.form.Loading = false
	if err != nil {
		logger.Debug("Send OTP failed", logger.Email(f.form.Email), logger.Err(err))
		f.notifier.Notify(serverMessage(err, "Error sending OTP"))
		return err
	}

	f.form.OTPSent = true
	f.timer.Start(f.resendSeconds)
	f.notifier.Notify(msg)
	return nil
}

// VerifyOTP submits the typed code. On success the password step opens.
func (f *Flow) VerifyOTP(ctx context.Context) error {
	if !f.form.ShowOTPInput() {
		return ErrStepHidden
	}

	f.form.Loading = true
	msg, err := f.api.VerifyOTP(ctx, f.form.Email, f.form.OTP)
	f.form.Loading = false
	if err != nil {
		f.notifier.Notify(serverMessage(err, "Invalid OTP"))
		return err
	}

	f.form.OTPVerified = true
	f.form.OTPSent = false
	f.timer.Stop()
	f.notifier.Notify(msg)
	return nil
}

// Submit logs in or creates the account depending on the form mode
func (f *Flow) Submit(ctx context.Context) error {
	if f.form.IsLogin {
		return f.login(ctx)
	}
	return f.register(ctx)
}

func (f *Flow) login(ctx context.Context) error {
	f.form.Loading = true
	resp, err := f.api.Login(ctx, &models.LoginRequest{
		Email:    f.form.Email,
		Password: f.form.Password,
	})
	f.form.Loading = false
	if err != nil {
		f.notifier.Notify(serverMessage(err, "Login failed"))
		return err
	}

	f.session = resp
	f.notifier.Notify("Login successful!")
	return nil
}

func (f *Flow) register(ctx context.Context) error {
	if !f.form.OTPVerified {
		f.notifier.Notify("Please verify email first")
		return ErrEmailNotVerified
	}

	f.form.Loading = true
	_, err := f.api.Register(ctx, &models.RegisterRequest{
		Name:     f.form.Name,
		Email:    f.form.Email,
		Password: f.form.Password,
	})
	f.form.Loading = false
	if err != nil {
		f.notifier.Notify(serverMessage(err, "Registration failed"))
		return err
	}

	f.notifier.Notify("Account created successfully!")
	return nil
}

// Toggle switches between login and signup, clearing the form and the countdown
func (f *Flow) Toggle() {
	f.form.Toggle()
	f.timer.Stop()
}

// Close stops the countdown goroutine
func (f *Flow) Close() {
	f.timer.Stop()
	f.timer.Wait()
}

func serverMessage(err error, fallback string) string {
	var httpErr *httppkg.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return fallback
}
