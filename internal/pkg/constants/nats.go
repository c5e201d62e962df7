package constants

// NATS subjects
const (
	SubjectEmailSend = "notification.email.send"
)

// NATS queue groups
const (
	QueueMailer = "mailer"
)
