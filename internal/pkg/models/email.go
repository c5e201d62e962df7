package models

// EmailMessage is an outbound HTML email
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// EmailDeliveryResult is the mailer's reply to an EmailMessage request
type EmailDeliveryResult struct {
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}
