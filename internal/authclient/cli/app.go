package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/piresc/otpauth/internal/authclient"
	"github.com/piresc/otpauth/internal/pkg/models"
	"github.com/sirupsen/logrus"
)

// API is the auth service as seen by the terminal client
type API interface {
	authclient.AuthAPI
	Me(ctx context.Context, token string) (*models.ProfileResponse, error)
}

// syncWriter serializes prompt output with countdown notices
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// App is the interactive signup and login form
type App struct {
	api    API
	flow   *authclient.Flow
	reader *bufio.Reader
	out    io.Writer
	log    *logrus.Logger
}

// NewApp wires a form over api reading from in and printing to out
func NewApp(api API, cfg models.ClientConfig, in io.Reader, out io.Writer, log *logrus.Logger) *App {
	if log == nil {
		log = logrus.StandardLogger()
	}
	w := &syncWriter{w: out}
	a := &App{
		api:    api,
		reader: bufio.NewReader(in),
		out:    w,
		log:    log,
	}
	a.flow = authclient.NewFlow(api, authclient.NotifierFunc(a.notify), authclient.FlowConfig{
		ResendAfter: cfg.ResendAfter,
		OnTimer:     a.onTimer,
	})
	return a
}

// Flow exposes the underlying form flow
func (a *App) Flow() *authclient.Flow {
	return a.flow
}

func (a *App) notify(msg string) {
	fmt.Fprintf(a.out, "* %s\n", msg)
}

func (a *App) onTimer(state authclient.TimerState, secondsLeft int) {
	a.log.WithFields(logrus.Fields{
		"state":        state.String(),
		"seconds_left": secondsLeft,
	}).Debug("resend timer")

	if state == authclient.TimerSent {
		fmt.Fprintln(a.out, "* You can resend the OTP now")
	}
}

// Run shows the menu until the user quits, input ends or ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	defer a.flow.Close()

	for ctx.Err() == nil {
		choice, err := GetSimpleText(a.reader, a.menu(), a.out)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		quit, err := a.dispatch(ctx, strings.ToLower(choice))
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
	return nil
}

func (a *App) menu() string {
	state := a.flow.State()
	var sb strings.Builder

	if state.IsLogin {
		sb.WriteString("\n== Login ==\n")
		sb.WriteString("1) Login\n")
		sb.WriteString("2) Show profile\n")
		sb.WriteString("t) Don't have an account? Sign Up\n")
	} else {
		sb.WriteString("\n== Sign Up ==\n")
		if state.ShowOTPSection() {
			switch {
			case !state.OTPSent:
				sb.WriteString("1) Send OTP\n")
			case a.flow.ResendAllowed():
				sb.WriteString("1) Resend OTP\n")
			default:
				fmt.Fprintf(&sb, "   Resend OTP in %ds\n", state.ResendSeconds)
			}
		}
		if state.ShowOTPInput() {
			sb.WriteString("2) Verify OTP\n")
		}
		if state.CanSubmit() {
			sb.WriteString("3) Create account\n")
		}
		sb.WriteString("t) Already have an account? Login\n")
	}
	sb.WriteString("q) Quit")
	return sb.String()
}

func (a *App) dispatch(ctx context.Context, choice string) (bool, error) {
	state := a.flow.State()

	switch {
	case choice == "q":
		return true, nil
	case choice == "t":
		a.flow.Toggle()
		return false, nil
	case state.IsLogin && choice == "1":
		return false, a.login(ctx)
	case state.IsLogin && choice == "2":
		return false, a.profile(ctx)
	case !state.IsLogin && choice == "1":
		return false, a.sendOTP(ctx)
	case !state.IsLogin && choice == "2":
		return false, a.verifyOTP(ctx)
	case !state.IsLogin && choice == "3":
		return false, a.register(ctx)
	}

	fmt.Fprintf(a.out, "Unknown option %q\n", choice)
	return false, nil
}

// Prompt errors end the session; flow errors were already shown to the user.
func (a *App) sendOTP(ctx context.Context) error {
	state := a.flow.State()
	if !state.ShowOTPSection() {
		return nil
	}

	name, err := GetTextWithDefault(a.reader, "Name", state.Name, a.out)
	if err != nil {
		return err
	}
	email, err := GetTextWithDefault(a.reader, "Email", state.Email, a.out)
	if err != nil {
		return err
	}
	a.flow.SetName(name)
	a.flow.SetEmail(email)

	a.logFlowErr("send otp", a.flow.SendOTP(ctx))
	return nil
}

func (a *App) verifyOTP(ctx context.Context) error {
	if !a.flow.State().ShowOTPInput() {
		return nil
	}

	otp, err := GetSimpleText(a.reader, "Enter OTP", a.out)
	if err != nil {
		return err
	}
	a.flow.SetOTP(otp)

	a.logFlowErr("verify otp", a.flow.VerifyOTP(ctx))
	return nil
}

func (a *App) register(ctx context.Context) error {
	if a.flow.State().OTPVerified {
		password, err := GetPassword(a.out)
		if err != nil {
			return err
		}
		a.flow.SetPassword(password)
	}

	a.logFlowErr("register", a.flow.Submit(ctx))
	return nil
}

func (a *App) login(ctx context.Context) error {
	email, err := GetTextWithDefault(a.reader, "Email", a.flow.State().Email, a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	a.flow.SetEmail(email)
	a.flow.SetPassword(password)

	a.logFlowErr("login", a.flow.Submit(ctx))
	return nil
}

func (a *App) profile(ctx context.Context) error {
	session := a.flow.Session()
	if session == nil {
		a.notify("Please login first")
		return nil
	}

	resp, err := a.api.Me(ctx, session.Token)
	if err != nil {
		a.logFlowErr("profile", err)
		a.notify(err.Error())
		return nil
	}

	fmt.Fprintf(a.out, "Name:  %s\nEmail: %s\nID:    %s\n", resp.User.Name, resp.User.Email, resp.User.ID)
	return nil
}

func (a *App) logFlowErr(step string, err error) {
	if err != nil {
		a.log.WithError(err).WithField("step", step).Debug("step failed")
	}
}
