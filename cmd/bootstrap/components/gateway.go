package components

import (
	"context"
	"log/slog"

	"trailer-rental/internal/infra/broker/kafka"
	"trailer-rental/internal/infra/lock"
	"trailer-rental/internal/infra/outbox"
	paymentinfra "trailer-rental/internal/infra/payment"
	"trailer-rental/internal/infra/storage/s3"
	"trailer-rental/internal/pkg/clock"
	"trailer-rental/internal/pkg/config"
	"trailer-rental/internal/usecase/commands"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		fx.Annotate(
			paymentinfra.NewStripeProcessor,
			fx.As(new(commands.PaymentProcessor)),
		),
		fx.Annotate(
			lock.NewLoggingController,
			fx.As(new(commands.LockController)),
		),
		NewPhotoStorage,
	),
)

func NewPhotoStorage(cfg config.Config, logger *slog.Logger) (commands.PhotoStorage, error) {
	if !cfg.Storage.Enabled() {
		logger.Warn("object storage is not configured, return photo uploads are disabled")
		return s3.NoopPhotoStore{}, nil
	}
	return s3.NewPhotoStore(cfg.Storage, logger)
}

var OutboxModule = fx.Module("outbox",
	fx.Invoke(StartOutboxRelay),
)

// StartOutboxRelay drains notification jobs to Kafka for the lifetime of the
// server. Without brokers the jobs stay queued.
func StartOutboxRelay(lc fx.Lifecycle, cfg config.Config, pool *pgxpool.Pool, clk clock.Clock, logger *slog.Logger) error {
	if !cfg.Kafka.Enabled() {
		logger.Info("kafka is not configured, notification relay disabled")
		return nil
	}
	producer, err := kafka.NewProducer(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	relay := outbox.NewRelay(outbox.NewPostgresTransactor(pool, logger), producer, clk, cfg.Kafka, logger)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			relay.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			relay.Stop()
			return producer.Close()
		},
	})
	return nil
}
