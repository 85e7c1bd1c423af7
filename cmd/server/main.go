package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"colisapp/internal/cache"
	"colisapp/internal/config"
	"colisapp/internal/database"
	"colisapp/internal/modules/auth"
	"colisapp/internal/modules/envoi"
	"colisapp/internal/modules/location"
	"colisapp/internal/modules/simulation"
	"colisapp/internal/pricing"
	"colisapp/internal/server"
	"colisapp/internal/validation"
	"colisapp/pkg/events"
	"colisapp/pkg/mailer"
	"colisapp/pkg/payment"
)

func setupLogger(env string) *slog.Logger {
	if env == "prod" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := setupLogger(cfg.AppEnv)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	var optionsCache location.Cache
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			// options are still served from the database
			logger.Warn("redis unavailable, option cache disabled", "error", err)
		} else {
			defer rc.Close()
			optionsCache = rc
		}
	}

	var mail mailer.Mailer = mailer.Nop{}
	if cfg.MailFrom != "" {
		ses, err := mailer.NewSES(ctx, cfg.AWSRegion, cfg.MailFrom)
		if err != nil {
			return err
		}
		mail = ses
	}

	var publisher events.Publisher = events.Nop{}
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		producer := events.NewKafkaProducer(brokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher = producer
	}

	validator := validation.New(cfg.ColisMaxPerEnvoi)

	locationRepo := location.NewRepository(db)
	locationSvc := location.NewService(locationRepo, location.NewRouteTableFilter(locationRepo), optionsCache, cfg.OptionsCacheTTL, logger)

	simulationSvc := simulation.NewService(simulation.NewRepository(db), locationSvc, pricing.DefaultTariff, logger)

	envoiSvc := envoi.NewService(
		envoi.NewRepository(db),
		payment.NewStripeService(cfg.StripeAPIKey),
		mail,
		publisher,
		cfg.Currency,
		logger,
	)

	authSvc := auth.NewService(auth.NewRepository(db), cfg.JWTSecret, cfg.JWTTTL)

	e := server.NewRouter(cfg, logger, validator, server.Handlers{
		Auth:       auth.NewHandler(authSvc),
		Location:   location.NewHandler(locationSvc),
		Simulation: simulation.NewHandler(simulationSvc, validator, cfg.CookieSecure),
		Envoi:      envoi.NewHandler(envoiSvc, payment.NewWebhookProcessor(cfg.StripeWebhookSecret)),
	})

	return server.New(e, cfg.ServerPort, logger).Run(ctx)
}
