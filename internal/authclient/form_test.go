package authclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormState_Visibility(t *testing.T) {
	tests := []struct {
		name       string
		form       FormState
		otpSection bool
		otpInput   bool
		password   bool
		canSubmit  bool
	}{
		{name: "Fresh signup", form: FormState{}, otpSection: true},
		{name: "Signup with OTP sent", form: FormState{OTPSent: true}, otpSection: true, otpInput: true},
		{name: "Signup verified", form: FormState{OTPVerified: true}, password: true, canSubmit: true},
		{name: "Login", form: FormState{IsLogin: true}, password: true, canSubmit: true},
		{name: "Login while loading", form: FormState{IsLogin: true, Loading: true}, password: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.otpSection, tt.form.ShowOTPSection())
			assert.Equal(t, tt.otpInput, tt.form.ShowOTPInput())
			assert.Equal(t, tt.password, tt.form.ShowPassword())
			assert.Equal(t, tt.canSubmit, tt.form.CanSubmit())
		})
	}
}

func TestFormState_ToggleClearsEverything(t *testing.T) {
	form := FormState{
		Name:          "A",
		Email:         "a@x.com",
		OTP:           "1234",
		Password:      "secret",
		OTPSent:       true,
		OTPVerified:   true,
		Loading:       true,
		ResendSeconds: 12,
	}

	form.Toggle()
	assert.Equal(t, FormState{IsLogin: true}, form)

	form.Email = "b@x.com"
	form.Toggle()
	assert.Equal(t, FormState{}, form)
}
