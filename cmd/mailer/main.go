package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/piresc/otpauth/internal/pkg/config"
	"github.com/piresc/otpauth/internal/pkg/logger"
	"github.com/piresc/otpauth/internal/pkg/mail"
	natspkg "github.com/piresc/otpauth/internal/pkg/nats"
	nrpkg "github.com/piresc/otpauth/internal/pkg/newrelic"
	"github.com/piresc/otpauth/internal/pkg/retry"
	"github.com/piresc/otpauth/internal/pkg/server"
	natsHandler "github.com/piresc/otpauth/services/mailer/handler/nats"
)

func main() {
	appName := "mailer-service"
	configs := config.InitConfig(config.GetEnv("CONFIG_PATH", "config/mailer.env"))

	nrApp := nrpkg.InitNewRelic(configs)

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nrApp)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	zapLogger.Info("Starting application",
		logger.String("app", appName),
		logger.String("version", configs.App.Version),
		logger.String("smtp_host", configs.Mail.SMTPHost),
		logger.Int("smtp_port", configs.Mail.SMTPPort),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownManager := server.NewShutdownManager(zapLogger)

	// Initialize NATS
	natsClient, err := retry.Do(ctx, "nats", func(ctx context.Context) (*natspkg.Client, error) {
		return natspkg.NewClient(configs.NATS.URL)
	})
	if err != nil {
		zapLogger.Fatal("Failed to connect to NATS", logger.Err(err))
	}
	shutdownManager.Register("nats", func(context.Context) error { return natsClient.Drain() })

	sender := mail.NewSender(configs.Mail)
	mailerHandler := natsHandler.NewMailerHandler(sender, natsClient, nrApp, configs.Mail.RequestTimeout)
	if err := mailerHandler.InitNATSConsumers(); err != nil {
		zapLogger.Fatal("Failed to initialize NATS consumers", logger.Err(err))
	}
	shutdownManager.Register("consumers", func(context.Context) error {
		mailerHandler.Unsubscribe()
		return nil
	})

	zapLogger.Info("Mailer is waiting for email requests")
	<-ctx.Done()
	zapLogger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := shutdownManager.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Error during shutdown", logger.Err(err))
	}

	if nrApp != nil {
		nrApp.Shutdown(10 * time.Second)
	}

	zapLogger.Info("Mailer exiting gracefully")
}
