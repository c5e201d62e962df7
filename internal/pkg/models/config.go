package models

import "time"

// Config represents application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	JWT      JWTConfig
	Mail     MailConfig
	OTP      OTPConfig
	Client   ClientConfig
	Logger   LoggerConfig
	NewRelic NewRelicConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        int
	Username    string
	Password    string
	Database    string
	SSLMode     string
	MaxConns    int
	IdleConns   int
	AutoMigrate bool
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL string
}

// JWTConfig contains JWT authentication configuration.
// Session tokens always live for SessionTokenTTL.
type JWTConfig struct {
	Secret string
	Issuer string
}

// SessionTokenTTL is the lifetime of a login token
const SessionTokenTTL = 7 * 24 * time.Hour

// Mail transports
const (
	MailTransportSMTP = "smtp"
	MailTransportNATS = "nats"
)

// MailConfig contains outbound mail configuration
type MailConfig struct {
	Transport      string
	SMTPHost       string
	SMTPPort       int
	Username       string
	Password       string
	FromName       string
	RequestTimeout time.Duration

	// BreakerFailures consecutive SMTP failures make the sender fail fast
	// for BreakerCooldown; 0 disables the breaker
	BreakerFailures int
	BreakerCooldown time.Duration
}

// OTP ledger backends
const (
	OTPStoreMemory = "memory"
	OTPStoreRedis  = "redis"
)

// OTPConfig contains OTP ledger and verification configuration
type OTPConfig struct {
	Store                string
	TTL                  time.Duration // 0 keeps codes until overwritten
	VerificationTTL      time.Duration
	RequireVerifiedEmail bool
}

// ClientConfig contains settings for the terminal client
type ClientConfig struct {
	APIURL      string
	Timeout     time.Duration
	ResendAfter time.Duration
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level    string
	FilePath string
	Type     string
}

// NewRelicConfig contains New Relic APM configuration
type NewRelicConfig struct {
	LicenseKey  string
	AppName     string
	Enabled     bool
	LogsEnabled bool
	ForwardLogs bool
}
