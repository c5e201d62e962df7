package usecase

import (
	"context"
	"errors"
	"fmt"

	jwtpkg "github.com/piresc/otpauth/internal/pkg/jwt"
	"github.com/piresc/otpauth/internal/pkg/logger"
	"github.com/piresc/otpauth/internal/pkg/models"
	nrpkg "github.com/piresc/otpauth/internal/pkg/newrelic"
	"github.com/piresc/otpauth/internal/utils"
	"github.com/piresc/otpauth/services/users"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpEmailSubject  = "Your OTP Code"
	otpEmailTemplate = "<h2>Your OTP is: <b>%s</b></h2>"

	passwordHashCost = 10
)

// SendOTP issues a fresh code for email, replacing any pending one, and
// mails it. The code only ever leaves through the gateway.
func (u *UserUC) SendOTP(ctx context.Context, email string) error {
	return nrpkg.TraceUseCase(ctx, "UserUC.SendOTP", func(ctx context.Context) error {
		return u.sendOTP(ctx, email)
	})
}

// VerifyOTP checks code against the pending entry for email. A mismatch
// leaves the entry in place so the user can retry; a match consumes it.
func (u *UserUC) VerifyOTP(ctx context.Context, email, code string) error {
	return nrpkg.TraceUseCase(ctx, "UserUC.VerifyOTP", func(ctx context.Context) error {
		return u.verifyOTP(ctx, email, code)
	})
}

// Register creates a verified account for an email that passed VerifyOTP
func (u *UserUC) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	return nrpkg.TraceUseCaseWithReturn(ctx, "UserUC.Register", func(ctx context.Context) (*models.User, error) {
		return u.register(ctx, req)
	})
}

// Login checks the password for email and issues a session token
func (u *UserUC) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	return nrpkg.TraceUseCaseWithReturn(ctx, "UserUC.Login", func(ctx context.Context) (*models.AuthResponse, error) {
		return u.login(ctx, req)
	})
}

func (u *UserUC) sendOTP(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", users.ErrInvalidInput)
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return err
	}

	if err := u.otpLedger.PutOTP(ctx, email, code); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	msg := &models.EmailMessage{
		To:      email,
		Subject: otpEmailSubject,
		HTML:    fmt.Sprintf(otpEmailTemplate, code),
	}
	if err := u.UserGW.SendEmail(ctx, msg); err != nil {
		logger.WarnCtx(ctx, "Failed to deliver OTP",
			logger.Email(email),
			logger.Err(err))
		return fmt.Errorf("%w: %v", users.ErrDeliveryFailure, err)
	}

	logger.InfoCtx(ctx, "OTP sent", logger.Email(email))
	return nil
}

func (u *UserUC) verifyOTP(ctx context.Context, email, code string) error {
	stored, found, err := u.otpLedger.PeekOTP(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to read OTP: %w", err)
	}
	if !found || stored != code {
		return users.ErrInvalidOTP
	}

	// a resend between peek and consume replaces the entry, and the stale
	// code must not remove the new one
	consumed, err := u.otpLedger.ConsumeOTPIfMatch(ctx, email, code)
	if err != nil {
		return fmt.Errorf("failed to consume OTP: %w", err)
	}
	if !consumed {
		return users.ErrInvalidOTP
	}

	if err := u.verifications.MarkVerified(ctx, email); err != nil {
		return fmt.Errorf("failed to record verification: %w", err)
	}

	logger.InfoCtx(ctx, "OTP verified", logger.Email(email))
	return nil
}

func (u *UserUC) register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if req == nil || req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", users.ErrInvalidInput)
	}

	existing, err := u.userRepo.GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil && existing != nil:
		return nil, users.ErrDuplicateEmail
	case err != nil && !errors.Is(err, users.ErrUserNotFound):
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	consumed := false
	if u.cfg.OTP.RequireVerifiedEmail {
		verified, err := u.verifications.ConsumeVerified(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email verification: %w", err)
		}
		if !verified {
			return nil, users.ErrEmailNotVerified
		}
		consumed = true
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Verified: true,
	}
	if err := u.userRepo.CreateUser(ctx, user); err != nil {
		if consumed && !errors.Is(err, users.ErrDuplicateEmail) {
			u.restoreVerification(ctx, req.Email)
		}
		return nil, err
	}

	logger.InfoCtx(ctx, "User registered",
		logger.String("user_id", user.ID.String()),
		logger.Email(user.Email))
	return user, nil
}

func (u *UserUC) login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if req == nil || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", users.ErrInvalidInput)
	}

	user, err := u.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, users.ErrIncorrectPassword
		}
		return nil, fmt.Errorf("failed to compare password: %w", err)
	}

	token, expiresAt, err := jwtpkg.GenerateToken(user.ID, user.Email, u.cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.InfoCtx(ctx, "User logged in", logger.String("user_id", user.ID.String()))
	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// restoreVerification puts back a mark consumed by a registration whose
// insert failed, so the user can retry without a new code
func (u *UserUC) restoreVerification(ctx context.Context, email string) {
	if err := u.verifications.MarkVerified(ctx, email); err != nil {
		logger.WarnCtx(ctx, "Failed to restore email verification",
			logger.Email(email),
			logger.Err(err))
	}
}
