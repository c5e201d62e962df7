package users

import (
	"context"

	"github.com/piresc/otpauth/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/piresc/otpauth/services/users UserRepo,OTPLedger,VerificationStore

// UserRepo is the credential store
type UserRepo interface {
	// GetUserByEmail returns ErrUserNotFound when no record exists
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// CreateUser assigns ID and timestamps; returns ErrDuplicateEmail when
	// the email is already registered
	CreateUser(ctx context.Context, user *models.User) error
}

// OTPLedger holds at most one live code per email
type OTPLedger interface {
	// PutOTP stores code for email, replacing any previous entry
	PutOTP(ctx context.Context, email, code string) error
	// PeekOTP reads the live code without removing it
	PeekOTP(ctx context.Context, email string) (code string, found bool, err error)
	// ConsumeOTP removes the entry; removing an absent entry is not an error
	ConsumeOTP(ctx context.Context, email string) error
	// ConsumeOTPIfMatch removes the entry only if it still holds code
	ConsumeOTPIfMatch(ctx context.Context, email, code string) (bool, error)
}

// VerificationStore remembers which emails passed OTP verification and have
// not registered yet
type VerificationStore interface {
	MarkVerified(ctx context.Context, email string) error
	// ConsumeVerified reports whether email was verified and clears the mark
	ConsumeVerified(ctx context.Context, email string) (bool, error)
}
