package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fantabuilder/fantasta/internal/gateway"
	"github.com/fantabuilder/fantasta/internal/outbox"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	config, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := setupDatabase()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	clock := clockwork.NewRealClock()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	services := setupServices(db, clock, rng)

	natsURL := config.natsURL()

	publisher, err := outbox.NewJetStreamPublisher(outboxPublisherConfig(natsURL))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create JetStream publisher")
	}
	defer publisher.Close()

	worker := outbox.NewWorker(db, services.OutboxRepo, publisher, outbox.Config{
		PollInterval: config.outboxPollInterval(),
		BatchSize:    config.outboxBatchSize(),
	}, clock)

	connectionManager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	wsHandler := gateway.NewWebSocketHandler(connectionManager, services.Coordinator)

	consumerConfig := gateway.DefaultJetStreamConsumerConfig()
	consumerConfig.URL = natsURL
	consumer, err := gateway.NewEventConsumer(connectionManager, consumerConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event consumer")
	}
	defer consumer.Close()

	server := setupServer(config.serverPort(), services, wsHandler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := worker.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start outbox worker")
	}

	go connectionManager.Start(ctx)

	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("event consumer failed")
		}
	}()

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	if err := worker.Stop(); err != nil {
		log.Error().Err(err).Msg("outbox worker shutdown failed")
	}

	cancel()

	log.Info().Msg("auction server shutdown complete")
}

func outboxPublisherConfig(natsURL string) outbox.JetStreamConfig {
	cfg := outbox.DefaultJetStreamConfig()
	cfg.URL = natsURL
	return cfg
}
