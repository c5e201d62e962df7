package usecase

import (
	"github.com/piresc/otpauth/internal/pkg/models"
	"github.com/piresc/otpauth/services/users"
)

type UserUC struct {
	userRepo      users.UserRepo
	otpLedger     users.OTPLedger
	verifications users.VerificationStore
	UserGW        users.UserGW
	cfg           *models.Config
}

// NewUserUC creates a new user usecase instance
func NewUserUC(
	userRepo users.UserRepo,
	otpLedger users.OTPLedger,
	verifications users.VerificationStore,
	userGW users.UserGW,
	cfg *models.Config,
) *UserUC {
	return &UserUC{
		userRepo:      userRepo,
		otpLedger:     otpLedger,
		verifications: verifications,
		UserGW:        userGW,
		cfg:           cfg,
	}
}
