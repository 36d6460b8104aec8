package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Server struct {
	logger *zap.Logger
	host   string
	port   string
	server *http.Server
}

func NewServer(logger *zap.Logger, host string, port string, api *API) *Server {
	return &Server{
		logger: logger,
		host:   host,
		port:   port,
		server: &http.Server{
			Handler:           api,
			IdleTimeout:       3 * time.Minute,
			ReadHeaderTimeout: time.Minute,
		},
	}
}

func (this *Server) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%s", this.host, this.port))
	if err != nil {
		return err
	}

	go func() {
		this.logger.Info("HTTP server started", zap.String("addr", listener.Addr().String()))
		err := this.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			this.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	return nil
}

func (this *Server) Stop(ctx context.Context) error {
	err := this.server.Shutdown(ctx)
	if err != nil {
		return err
	}
	this.logger.Info("HTTP server stopped gracefully")
	return nil
}
