package constants

// Redis key formats
const (
	KeyUserOTP       = "user_otp:%s"       // Format: user_otp:{email}
	KeyVerifiedEmail = "verified_email:%s" // Format: verified_email:{email}
)
