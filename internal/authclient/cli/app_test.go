package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	httppkg "github.com/piresc/otpauth/internal/pkg/http"
	"github.com/piresc/otpauth/internal/pkg/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	code       string
	registered []*models.RegisterRequest
	userID     uuid.UUID
}

func (f *fakeAPI) SendOTP(_ context.Context, email string) (string, error) {
	return "OTP sent", nil
}

func (f *fakeAPI) VerifyOTP(_ context.Context, email, otp string) (string, error) {
	if otp != f.code {
		return "", &httppkg.HTTPError{StatusCode: 400, Message: "Invalid OTP"}
	}
	return "OTP verified", nil
}

func (f *fakeAPI) Register(_ context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	f.registered = append(f.registered, req)
	return &models.RegisterResponse{Msg: "User registered successfully"}, nil
}

func (f *fakeAPI) Login(_ context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if req.Password != "secret" {
		return nil, &httppkg.HTTPError{StatusCode: 400, Message: "Incorrect password"}
	}
	return &models.LoginResponse{Msg: "Login success", Token: "tok"}, nil
}

func (f *fakeAPI) Me(_ context.Context, token string) (*models.ProfileResponse, error) {
	if token != "tok" {
		return nil, &httppkg.HTTPError{StatusCode: 401, Message: "Unauthorized"}
	}
	return &models.ProfileResponse{User: &models.User{ID: f.userID, Name: "A", Email: "a@x.com"}}, nil
}

func stubPassword(t *testing.T, password string) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() { readPassword = orig })
}

func newTestApp(api API, input string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := models.ClientConfig{ResendAfter: time.Hour}
	return NewApp(api, cfg, strings.NewReader(input), out, log), out
}

func TestApp_Signup(t *testing.T) {
	stubPassword(t, "secret")
	api := &fakeAPI{code: "1234"}
	app, out := newTestApp(api, "1\nA\na@x.com\n2\n0000\n2\n1234\n3\nq\n")

	require.NoError(t, app.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, "* OTP sent")
	assert.Contains(t, output, "Resend OTP in 3600s")
	assert.Contains(t, output, "* Invalid OTP")
	assert.Contains(t, output, "* OTP verified")
	assert.Contains(t, output, "* Account created successfully!")
	require.Len(t, api.registered, 1)
	assert.Equal(t, &models.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret"}, api.registered[0])
}

func TestApp_SignupWithoutVerification(t *testing.T) {
	app, out := newTestApp(&fakeAPI{}, "3\nq\n")

	require.NoError(t, app.Run(context.Background()))

	assert.Contains(t, out.String(), "* Please verify email first")
}

func TestApp_InvalidEmail(t *testing.T) {
	app, out := newTestApp(&fakeAPI{}, "1\nA\nnope\nq\n")

	require.NoError(t, app.Run(context.Background()))

	assert.Contains(t, out.String(), "* Please enter a valid email")
	assert.False(t, app.Flow().State().OTPSent)
}

func TestApp_LoginAndProfile(t *testing.T) {
	stubPassword(t, "secret")
	api := &fakeAPI{userID: uuid.New()}
	app, out := newTestApp(api, "t\n2\n1\na@x.com\n2\nq\n")

	require.NoError(t, app.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, "== Login ==")
	assert.Contains(t, output, "* Please login first")
	assert.Contains(t, output, "* Login successful!")
	assert.Contains(t, output, "Email: a@x.com")
	assert.Contains(t, output, api.userID.String())
}

func TestApp_LoginWrongPassword(t *testing.T) {
	stubPassword(t, "wrong")
	app, out := newTestApp(&fakeAPI{}, "t\n1\na@x.com\nq\n")

	require.NoError(t, app.Run(context.Background()))

	assert.Contains(t, out.String(), "* Incorrect password")
	assert.Nil(t, app.Flow().Session())
}

func TestApp_EndsOnEOF(t *testing.T) {
	app, out := newTestApp(&fakeAPI{}, "x\n")

	require.NoError(t, app.Run(context.Background()))

	assert.Contains(t, out.String(), `Unknown option "x"`)
}

func TestApp_PasswordReadError(t *testing.T) {
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }
	defer func() { readPassword = orig }()

	app, _ := newTestApp(&fakeAPI{}, "t\n1\na@x.com\n")

	assert.EqualError(t, app.Run(context.Background()), "not a terminal")
}
