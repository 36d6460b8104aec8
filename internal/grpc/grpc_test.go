package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1024 * 1024

type fakePinger struct {
	failing atomic.Bool
}

func (p *fakePinger) Ping(ctx context.Context) error {
	if p.failing.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func newBufConnHealthClient(t *testing.T, server *GRPC) healthpb.HealthClient {
	t.Helper()

	lis := bufconn.Listen(bufSize)
	go func() {
		_ = server.server.Serve(lis)
	}()
	t.Cleanup(server.server.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, s string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func TestHealthFollowsDatabase(t *testing.T) {
	pinger := &fakePinger{}
	server, err := NewGRPC(zap.NewNop(), pinger, "127.0.0.1", "0")
	require.NoError(t, err)
	client := newBufConnHealthClient(t, server)
	ctx := context.Background()

	server.check(ctx)
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	pinger.failing.Store(true)
	server.check(ctx)
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}
