package models

// MessageResponse is the body of every API reply that carries nothing but a message
type MessageResponse struct {
	Msg string `json:"msg"`
}

// RegisterResponse is returned after a successful signup
type RegisterResponse struct {
	Msg  string `json:"msg"`
	User *User  `json:"user"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Msg       string `json:"msg"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	User      *User  `json:"user"`
}

// ProfileResponse is returned by the authenticated profile route
type ProfileResponse struct {
	Msg  string `json:"msg"`
	User *User  `json:"user"`
}
