package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	apipkg "github.com/stormhead-org/comments/internal/api"
	eventpkg "github.com/stormhead-org/comments/internal/event"
	grpcpkg "github.com/stormhead-org/comments/internal/grpc"
	jwtpkg "github.com/stormhead-org/comments/internal/jwt"
	"github.com/stormhead-org/comments/internal/media"
	metricspkg "github.com/stormhead-org/comments/internal/metrics"
	ormpkg "github.com/stormhead-org/comments/internal/orm"
	"github.com/stormhead-org/comments/internal/services"
	commentpkg "github.com/stormhead-org/comments/internal/services/comment"
	postpkg "github.com/stormhead-org/comments/internal/services/post"
	userpkg "github.com/stormhead-org/comments/internal/services/user"
)

var serverCommand = &cobra.Command{
	Use:   "server",
	Short: "server",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serverCommandImpl()
	},
}

func serverCommandImpl() error {
	loadEnv()

	// Application
	application := fx.New(
		fx.NopLogger,
		fx.Provide(
			// Logger
			newLogger,

			// Config/Secrets from .env
			func(logger *zap.Logger) (*jwtpkg.JWT, error) {
				jwtSecret := os.Getenv("JWT_SECRET")
				if jwtSecret == "" {
					logger.Warn("JWT_SECRET is not set, using development secret")
					jwtSecret = "123456"
				}
				return jwtpkg.NewJWT(jwtSecret), nil
			},
			metricspkg.NewMetrics,

			// Clients
			func(lifecycle fx.Lifecycle, logger *zap.Logger) (*ormpkg.PostgresClient, error) {
				client, err := newPostgresClient(logger)
				if err != nil {
					return nil, err
				}
				lifecycle.Append(fx.Hook{
					OnStop: func(ctx context.Context) error {
						return client.Close()
					},
				})
				return client, nil
			},
			provideKafkaClient,
			provideS3Client,

			// Background image uploads
			provideDispatcher,

			// Services
			func(logger *zap.Logger, db *ormpkg.PostgresClient) services.UserDirectory {
				return userpkg.NewUserService(logger, db)
			},
			func(logger *zap.Logger, db *ormpkg.PostgresClient) services.PostDirectory {
				return postpkg.NewPostService(db, logger)
			},
			func(
				logger *zap.Logger,
				db *ormpkg.PostgresClient,
				users services.UserDirectory,
				posts services.PostDirectory,
				dispatcher *media.Dispatcher,
				kafkaClient *eventpkg.KafkaClient,
				metrics *metricspkg.Metrics,
			) services.CommentService {
				return commentpkg.NewCommentService(logger, db, users, posts, dispatcher, kafkaClient, metrics)
			},

			// HTTP Server
			func(
				lifecycle fx.Lifecycle,
				logger *zap.Logger,
				comments services.CommentService,
				jwt *jwtpkg.JWT,
				metrics *metricspkg.Metrics,
			) *apipkg.Server {
				api := apipkg.New(logger, comments, jwt, metrics, getenv("UPLOAD_DIR", os.TempDir()))
				server := apipkg.NewServer(
					logger,
					getenv("HTTP_HOST", "0.0.0.0"),
					getenv("HTTP_PORT", "8080"),
					api,
				)
				lifecycle.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return server.Start()
					},
					OnStop: func(ctx context.Context) error {
						return server.Stop(ctx)
					},
				})
				return server
			},

			// Health gRPC Server
			func(
				lifecycle fx.Lifecycle,
				logger *zap.Logger,
				db *ormpkg.PostgresClient,
			) (*grpcpkg.GRPC, error) {
				grpcServer, err := grpcpkg.NewGRPC(
					logger,
					db,
					getenv("GRPC_HOST", "0.0.0.0"),
					getenv("GRPC_PORT", "9090"),
				)
				if err != nil {
					return nil, err
				}
				lifecycle.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return grpcServer.Start()
					},
					OnStop: func(ctx context.Context) error {
						return grpcServer.Stop()
					},
				})
				return grpcServer, nil
			},
		),
		fx.Invoke(
			func(*apipkg.Server) {},
			func(*grpcpkg.GRPC) {},
		),
	)
	application.Run()

	err := application.Err()
	if err != nil {
		os.Exit(1)
	}

	return nil
}

func init() {
	rootCommand.AddCommand(serverCommand)
}
