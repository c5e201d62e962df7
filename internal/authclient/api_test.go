package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	httppkg "github.com/piresc/otpauth/internal/pkg/http"
	"github.com/piresc/otpauth/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewAPIClient(models.ClientConfig{APIURL: server.URL + "/user", Timeout: 5 * time.Second})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestAPIClient_SendOTP(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/user/send-otp", r.URL.Path)

		var req models.SendOTPRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@x.com", req.Email)

		writeJSON(w, http.StatusOK, models.MessageResponse{Msg: "OTP sent"})
	})

	msg, err := api.SendOTP(context.Background(), "a@x.com")

	require.NoError(t, err)
	assert.Equal(t, "OTP sent", msg)
}

func TestAPIClient_VerifyOTP_Rejected(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/verify-otp", r.URL.Path)

		var req models.VerifyOTPRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.VerifyOTPRequest{Email: "a@x.com", OTP: "0000"}, req)

		writeJSON(w, http.StatusBadRequest, models.MessageResponse{Msg: "Invalid OTP"})
	})

	msg, err := api.VerifyOTP(context.Background(), "a@x.com", "0000")

	assert.Empty(t, msg)
	var httpErr *httppkg.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.EqualError(t, err, "Invalid OTP")
}

func TestAPIClient_Register(t *testing.T) {
	userID := uuid.New()
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/register", r.URL.Path)

		var req models.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "secret", req.Password)

		writeJSON(w, http.StatusOK, models.RegisterResponse{
			Msg:  "User registered successfully",
			User: &models.User{ID: userID, Name: req.Name, Email: req.Email, Verified: true},
		})
	})

	resp, err := api.Register(context.Background(), &models.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret"})

	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", resp.Msg)
	assert.Equal(t, userID, resp.User.ID)
	assert.True(t, resp.User.Verified)
}

func TestAPIClient_LoginAndMe(t *testing.T) {
	userID := uuid.New()
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user/login":
			assert.Empty(t, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, models.LoginResponse{
				Msg:   "Login success",
				Token: "tok",
				User:  &models.User{ID: userID, Email: "a@x.com"},
			})
		case "/user/me":
			if r.Header.Get("Authorization") != "Bearer tok" {
				writeJSON(w, http.StatusUnauthorized, models.MessageResponse{Msg: "Unauthorized"})
				return
			}
			writeJSON(w, http.StatusOK, models.ProfileResponse{
				Msg:  "User retrieved successfully",
				User: &models.User{ID: userID, Email: "a@x.com"},
			})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	login, err := api.Login(ctx, &models.LoginRequest{Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok", login.Token)

	profile, err := api.Me(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, profile.User.ID)

	_, err = api.Me(ctx, "bad")
	assert.EqualError(t, err, "Unauthorized")
}
