package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// GRPC serves the standard health API and reflection. The overall status
// follows the database: NOT_SERVING while Ping fails.
type GRPC struct {
	logger   *zap.Logger
	host     string
	port     string
	server   *grpc.Server
	health   *health.Server
	database Pinger
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewGRPC(logger *zap.Logger, database Pinger, host string, port string) (*GRPC, error) {
	grpcServer := grpc.NewServer()

	// Health API
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// Reflection API
	reflection.Register(grpcServer)

	return &GRPC{
		logger:   logger,
		host:     host,
		port:     port,
		server:   grpcServer,
		health:   healthServer,
		database: database,
		interval: 10 * time.Second,
	}, nil
}

func (this *GRPC) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%s", this.host, this.port))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	this.cancel = cancel
	this.done = make(chan struct{})
	go this.watch(ctx)

	go func() {
		this.logger.Info("GRPC server started", zap.String("addr", listener.Addr().String()))
		err := this.server.Serve(listener)
		if err != nil {
			this.logger.Error("GRPC server stopped", zap.Error(err))
		}
	}()

	return nil
}

func (this *GRPC) Stop() error {
	if this.cancel != nil {
		this.cancel()
		<-this.done
	}
	this.health.Shutdown()
	this.server.GracefulStop()
	this.logger.Info("GRPC server stopped gracefully")
	return nil
}

func (this *GRPC) watch(ctx context.Context) {
	defer close(this.done)

	ticker := time.NewTicker(this.interval)
	defer ticker.Stop()

	for {
		this.check(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (this *GRPC) check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, this.interval/2)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := this.database.Ping(ctx); err != nil {
		this.logger.Warn("database ping failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	this.health.SetServingStatus("", status)
}
