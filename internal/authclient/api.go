package authclient

import (
	"context"

	httppkg "github.com/piresc/otpauth/internal/pkg/http"
	"github.com/piresc/otpauth/internal/pkg/models"
)

// AuthAPI is the server surface the flow drives
type AuthAPI interface {
	SendOTP(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, email, otp string) (string, error)
	Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}

// APIClient talks to the /user endpoints of the auth service. Failed
// requests come back as *httppkg.HTTPError carrying the server's msg.
type APIClient struct {
	client *httppkg.Client
}

// NewAPIClient creates a client for the auth API at cfg.APIURL
func NewAPIClient(cfg models.ClientConfig) *APIClient {
	return &APIClient{
		client: httppkg.NewClient(httppkg.Config{
			BaseURL: cfg.APIURL,
			Timeout: cfg.Timeout,
		}),
	}
}

// SendOTP asks the server to mail a fresh code and returns its message
func (a *APIClient) SendOTP(ctx context.Context, email string) (string, error) {
	var resp models.MessageResponse
	if err := a.client.PostJSON(ctx, "/send-otp", &models.SendOTPRequest{Email: email}, &resp); err != nil {
		return "", err
	}
	return resp.Msg, nil
}

// VerifyOTP submits the code the user typed
func (a *APIClient) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	var resp models.MessageResponse
	err := a.client.PostJSON(ctx, "/verify-otp", &models.VerifyOTPRequest{Email: email, OTP: otp}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Msg, nil
}

func (a *APIClient) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	var resp models.RegisterResponse
	if err := a.client.PostJSON(ctx, "/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *APIClient) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := a.client.PostJSON(ctx, "/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me fetches the profile behind token
func (a *APIClient) Me(ctx context.Context, token string) (*models.ProfileResponse, error) {
	a.client.SetBearerToken(token)
	defer a.client.SetBearerToken("")

	var resp models.ProfileResponse
	if err := a.client.GetJSON(ctx, "/me", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
