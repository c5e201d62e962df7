package users

import (
	"context"

	"github.com/piresc/otpauth/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_usecase.go -package=mocks github.com/piresc/otpauth/services/users UserUC

// UserUC is the auth flow controller: OTP issuance and verification,
// registration and password login
type UserUC interface {
	// handle OTP
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error

	// handle credentials
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)

	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
