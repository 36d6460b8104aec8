package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	clientpkg "github.com/stormhead-org/comments/internal/client"
	eventpkg "github.com/stormhead-org/comments/internal/event"
	"github.com/stormhead-org/comments/internal/media"
	metricspkg "github.com/stormhead-org/comments/internal/metrics"
)

func provideKafkaClient(lifecycle fx.Lifecycle, logger *zap.Logger) (*eventpkg.KafkaClient, error) {
	kafkaClient, err := eventpkg.NewKafkaClient(
		getenv("KAFKA_HOST", "127.0.0.1"),
		getenv("KAFKA_PORT", "9092"),
		getenv("KAFKA_TOPIC", "comments"),
		getenv("KAFKA_GROUP", "comments-worker"),
	)
	if err != nil {
		return nil, err
	}
	lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return kafkaClient.Close()
		},
	})
	return kafkaClient, nil
}

func provideS3Client(logger *zap.Logger) (*clientpkg.S3Client, error) {
	return clientpkg.NewS3Client(
		context.Background(),
		getenv("S3_BUCKET", "comments"),
		os.Getenv("S3_ENDPOINT"),
		os.Getenv("S3_PUBLIC_URL"),
	)
}

// provideDispatcher takes the kafka client so that its hook is registered
// first and closes after the dispatcher has drained; late attaches publish events.
func provideDispatcher(
	lifecycle fx.Lifecycle,
	logger *zap.Logger,
	s3Client *clientpkg.S3Client,
	metrics *metricspkg.Metrics,
	_ *eventpkg.KafkaClient,
) *media.Dispatcher {
	dispatcher := media.NewDispatcher(logger, s3Client, metrics, media.Config{
		Prefix:  getenv("S3_PREFIX", "comments/images"),
		Timeout: getenvDuration(logger, "UPLOAD_TIMEOUT", 2*time.Minute),
		Rate:    getenvFloat(logger, "UPLOAD_RATE", 20),
		Burst:   getenvInt(logger, "UPLOAD_BURST", 10),
	})
	lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return dispatcher.Stop(ctx)
		},
	})
	return dispatcher
}
