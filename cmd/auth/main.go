package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/piresc/otpauth/internal/pkg/config"
	"github.com/piresc/otpauth/internal/pkg/database"
	"github.com/piresc/otpauth/internal/pkg/health"
	"github.com/piresc/otpauth/internal/pkg/logger"
	"github.com/piresc/otpauth/internal/pkg/middleware"
	"github.com/piresc/otpauth/internal/pkg/models"
	natspkg "github.com/piresc/otpauth/internal/pkg/nats"
	nrpkg "github.com/piresc/otpauth/internal/pkg/newrelic"
	"github.com/piresc/otpauth/internal/pkg/retry"
	"github.com/piresc/otpauth/internal/pkg/server"
	"github.com/piresc/otpauth/internal/utils"
	"github.com/piresc/otpauth/services/users"
	"github.com/piresc/otpauth/services/users/gateway"
	"github.com/piresc/otpauth/services/users/handler"
	httpHandler "github.com/piresc/otpauth/services/users/handler/http"
	"github.com/piresc/otpauth/services/users/repository"
	"github.com/piresc/otpauth/services/users/usecase"
)

func main() {
	appName := "auth-service"
	configs := config.InitConfig(config.GetEnv("CONFIG_PATH", "config/auth.env"))

	nrApp := nrpkg.InitNewRelic(configs)

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nrApp)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	if configs.JWT.Secret == "" {
		zapLogger.Fatal("JWT_SECRET must be set")
	}

	zapLogger.Info("Starting application",
		logger.String("app", appName),
		logger.String("version", configs.App.Version),
		logger.String("environment", configs.App.Environment),
		logger.String("otp_store", configs.OTP.Store),
		logger.String("mail_transport", configs.Mail.Transport),
		logger.Bool("require_verified_email", configs.OTP.RequireVerifiedEmail),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownManager := server.NewShutdownManager(zapLogger)
	healthService := health.NewHealthService()

	// Initialize PostgreSQL database connection
	postgresClient, err := retry.Do(ctx, "postgres", func(ctx context.Context) (*database.PostgresClient, error) {
		return database.NewPostgresClient(configs.Database)
	})
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}
	shutdownManager.Register("postgres", func(context.Context) error { return postgresClient.Close() })
	healthService.AddChecker("postgres", health.PingChecker(postgresClient))

	if configs.Database.AutoMigrate {
		if err := postgresClient.Migrate(ctx); err != nil {
			zapLogger.Fatal("Failed to run migrations", logger.Err(err))
		}
	}

	// Initialize OTP ledger and verification store
	otpLedger, verifications, err := initOTPStores(ctx, configs, shutdownManager, healthService)
	if err != nil {
		zapLogger.Fatal("Failed to initialize OTP store", logger.Err(err))
	}

	// Initialize NATS only when mail is relayed through the mailer
	var natsClient *natspkg.Client
	if configs.Mail.Transport == models.MailTransportNATS {
		natsClient, err = retry.Do(ctx, "nats", func(ctx context.Context) (*natspkg.Client, error) {
			return natspkg.NewClient(configs.NATS.URL)
		})
		if err != nil {
			zapLogger.Fatal("Failed to connect to NATS", logger.Err(err))
		}
		shutdownManager.Register("nats", func(context.Context) error { return natsClient.Drain() })
		healthService.AddChecker("nats", health.ConnectionChecker(natsClient))
	}

	// Initialize repository
	userRepo := repository.NewUserRepo(postgresClient.GetDB())

	// Initialize Gateway
	userGW, err := gateway.NewUserGW(configs.Mail, natsClient)
	if err != nil {
		zapLogger.Fatal("Failed to initialize mail gateway", logger.Err(err))
	}

	// Initialize UseCase
	userUC := usecase.NewUserUC(userRepo, otpLedger, verifications, userGW, configs)

	// Handlers for HTTP
	userHandler := httpHandler.NewUserHandler(userUC)
	authHandler := httpHandler.NewAuthHandler(userUC)
	h := handler.NewHandler(userHandler, authHandler, configs)

	// Initialize Echo router
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = utils.HTTPErrorHandler

	// Add middlewares (panic recovery should be first)
	e.Use(middleware.PanicRecoveryWithZapMiddleware(zapLogger))
	if nrApp != nil {
		e.Use(nrecho.Middleware(nrApp))
	}
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.ZapEchoMiddleware(zapLogger))
	e.Use(echomw.CORS())

	// Register health endpoints
	health.RegisterHealthEndpoints(e, appName, configs.App.Version, healthService)

	// Register service routes
	h.RegisterRoutes(e)

	srv := server.NewGracefulServer(e, zapLogger, configs.Server)
	if err := srv.Run(ctx); err != nil {
		zapLogger.Error("Server stopped with error", logger.Err(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := shutdownManager.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Error during shutdown", logger.Err(err))
	}

	// Shutdown New Relic
	if nrApp != nil {
		zapLogger.Info("Shutting down New Relic...")
		nrApp.Shutdown(10 * time.Second)
	}

	zapLogger.Info("Server exiting gracefully")
}

// initOTPStores builds the OTP ledger and verification store for the
// configured backend
func initOTPStores(ctx context.Context, configs *models.Config, sm *server.ShutdownManager, hs *health.HealthService) (users.OTPLedger, users.VerificationStore, error) {
	switch configs.OTP.Store {
	case "", models.OTPStoreMemory:
		return repository.NewMemoryLedger(configs.OTP.TTL),
			repository.NewMemoryVerificationStore(configs.OTP.VerificationTTL),
			nil
	case models.OTPStoreRedis:
		redisClient, err := retry.Do(ctx, "redis", func(ctx context.Context) (*database.RedisClient, error) {
			return database.NewRedisClient(configs.Redis)
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		sm.Register("redis", func(context.Context) error { return redisClient.Close() })
		hs.AddChecker("redis", health.PingChecker(redisClient))

		return repository.NewRedisLedger(redisClient, configs.OTP.TTL),
			repository.NewRedisVerificationStore(redisClient, configs.OTP.VerificationTTL),
			nil
	default:
		return nil, nil, fmt.Errorf("unknown OTP store %q", configs.OTP.Store)
	}
}
