package users

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidOTP        = errors.New("invalid otp")
	ErrDuplicateEmail    = errors.New("email already used")
	ErrUserNotFound      = errors.New("user not found")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrDeliveryFailure   = errors.New("failed to send otp")
	ErrEmailNotVerified  = errors.New("email not verified")
)
