package usecase

import (
	"context"

	"github.com/piresc/otpauth/internal/pkg/models"
	nrpkg "github.com/piresc/otpauth/internal/pkg/newrelic"
)

// GetUserByID returns the profile behind an authenticated session
func (u *UserUC) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return nrpkg.TraceUseCaseWithReturn(ctx, "UserUC.GetUserByID", func(ctx context.Context) (*models.User, error) {
		return u.userRepo.GetUserByID(ctx, id)
	})
}
