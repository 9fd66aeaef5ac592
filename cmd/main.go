package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"

	"clubtix/cmd/buildcfg"
	"clubtix/internal/api/api"
	"clubtix/internal/auth"
	"clubtix/internal/media"
	"clubtix/internal/notify"
	"clubtix/internal/payments"
	"clubtix/internal/rabbit"
	"clubtix/internal/repo"
	"clubtix/internal/service"
)

func main() {
	zlog.Init()
	log := zlog.Logger

	cfg := config.New()
	if err := cfg.Load("config.yaml", "", "'"); err != nil {
		log.Fatal().Msgf("failed to load configuration: %v", err)
	}
	serverCfg := buildcfg.BuildServerConfig(cfg, &log)

	masterDSN, slaveDSNs, poolOptions, err := buildcfg.BuildDBConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build DB config")
	}
	db, err := dbpg.New(masterDSN, slaveDSNs, poolOptions)
	if err != nil {
		log.Fatal().Msgf("failed to connect to DB: %v", err)
	}
	if err := db.Master.Ping(); err != nil {
		log.Fatal().Msgf("DB ping failed: %v", err)
	}
	log.Info().Msg("Database connected successfully")

	repository, err := repo.NewRepository(db, &log)
	if err != nil {
		log.Fatal().Msgf("failed to initialize repository: %v", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot get working directory")
	}
	migrationPath := filepath.Join(cwd, "migrations/postgres")
	if err := repository.MigrateUp(migrationPath); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Msg("Migrations applied successfully")

	redisCfg := buildcfg.BuildRedisConfig(cfg)
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Msgf("Redis ping failed: %v", err)
	}
	defer rdb.Close()

	authCfg, err := buildcfg.BuildAuthConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load auth config")
	}
	tokens := auth.NewTokenManager(authCfg.Secret, authCfg.AccessTTL, authCfg.RefreshTTL)
	refreshStore := auth.NewRefreshStore(rdb)

	mediaCfg := buildcfg.BuildMediaConfig(cfg)
	mediaStore, err := media.NewStore(mediaCfg.Root, serverCfg.BaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize media store")
	}

	stripeCfg := buildcfg.BuildStripeConfig(cfg)
	payClient := payments.NewClient(payments.Config{
		SecretKey:  stripeCfg.SecretKey,
		Currency:   stripeCfg.Currency,
		RefreshURL: stripeCfg.RefreshURL,
		ReturnURL:  stripeCfg.ReturnURL,
	})

	rabbitCfg, err := buildcfg.BuildRabbitConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load RabbitMQ config")
	}
	rmq, err := rabbit.NewClient(rabbitCfg.Url, rabbitCfg.Exchange, rabbitCfg.Queue)
	if err != nil {
		log.Fatal().Msgf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rmq.Close()

	smtpCfg := buildcfg.BuildSMTPConfig(cfg)
	mailer := notify.NewMailer(smtpCfg.Host, smtpCfg.Port, smtpCfg.From, smtpCfg.Password)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	reader := notify.NewReader(rmq, mailer)
	reader.Start(workerCtx)

	ticketCfg := buildcfg.BuildTicketConfig(cfg)
	serviceInstance := service.NewService(
		repository,
		&log,
		rmq,
		tokens,
		refreshStore,
		mediaStore,
		payClient,
		service.Options{
			BaseURL:   serverCfg.BaseURL,
			PageSize:  ticketCfg.PageSize,
			ScanGrace: ticketCfg.ScanGrace,
		},
	)

	app := api.NewRouters(&api.Routers{
		Service:    serviceInstance,
		Tokens:     tokens,
		Redis:      rdb,
		MediaRoot:  mediaCfg.Root,
		ScanLimit:  ticketCfg.ScanLimit,
		ScanWindow: ticketCfg.ScanWindow,
	})

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info().Msgf("Starting server on %s", serverCfg.Port)
		if err := app.Run(":" + serverCfg.Port); err != nil {
			serverErrChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signalChan:
		log.Info().Msgf("Received signal %s. Initiating shutdown...", sig)
	case err := <-serverErrChan:
		log.Error().Msgf("Server error: %v", err)
	}

	cancelWorkers()
	reader.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if closer, ok := interface{}(app).(interface{ Close(context.Context) error }); ok {
		if err := closer.Close(shutdownCtx); err != nil {
			log.Error().Msgf("Error shutting down server: %v", err)
		}
	}

	log.Info().Msg("Shutdown complete")
}
