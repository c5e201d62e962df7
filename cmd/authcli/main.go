package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/piresc/otpauth/internal/authclient"
	"github.com/piresc/otpauth/internal/authclient/cli"
	"github.com/piresc/otpauth/internal/pkg/config"
	"github.com/piresc/otpauth/internal/pkg/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	configs := config.InitConfig(config.GetEnv("CONFIG_PATH", "config/authcli.env"))

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(configs.Logger.Level)
	if err != nil {
		level = logrus.WarnLevel
	}
	log.SetLevel(level)

	// library code logs through zap; keep it off the prompt unless it matters
	zapLogger, err := logger.NewZapLogger(logger.ZapConfig{Level: "error", Service: "authcli", Console: true}, nil)
	if err != nil {
		log.WithError(err).Fatal("failed to create zap logger")
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	log.WithFields(logrus.Fields{
		"api_url":      configs.Client.APIURL,
		"resend_after": configs.Client.ResendAfter,
	}).Debug("starting auth client")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := authclient.NewAPIClient(configs.Client)
	app := cli.NewApp(api, configs.Client, os.Stdin, os.Stdout, log)

	if err := app.Run(ctx); err != nil {
		log.WithError(err).Error("auth client stopped")
		os.Exit(1)
	}
}
