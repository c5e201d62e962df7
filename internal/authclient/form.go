package authclient

// FormState is what the auth form shows. The zero value is the signup form.
type FormState struct {
	Name     string
	Email    string
	OTP      string
	Password string

	IsLogin     bool
	OTPSent     bool
	OTPVerified bool
	Loading     bool

	// ResendSeconds is filled from the resend timer by Flow.State
	ResendSeconds int
}

// Toggle switches between login and signup and clears everything else
func (f *FormState) Toggle() {
	*f = FormState{IsLogin: !f.IsLogin}
}

// ShowOTPSection reports whether the email verification step is visible
func (f FormState) ShowOTPSection() bool {
	return !f.IsLogin && !f.OTPVerified
}

// ShowOTPInput reports whether the code input is visible
func (f FormState) ShowOTPInput() bool {
	return f.ShowOTPSection() && f.OTPSent
}

// ShowPassword reports whether the password step is visible
func (f FormState) ShowPassword() bool {
	return f.IsLogin || f.OTPVerified
}

// CanSubmit reports whether the login or signup button is enabled
func (f FormState) CanSubmit() bool {
	return !f.Loading && (f.IsLogin || f.OTPVerified)
}
