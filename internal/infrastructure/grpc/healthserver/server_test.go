package healthserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startBuf(t *testing.T, h *Health) (grpc.DialOption, context.CancelFunc, chan error) {
	t.Helper()
	const bufSize = 1024 * 1024
	lis := bufconn.Listen(bufSize)
	t.Cleanup(func() { _ = lis.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, lis, h, zap.NewNop()) }()
	t.Cleanup(cancel)

	dialer := grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
		return lis.Dial()
	})
	return dialer, cancel, done
}

func TestHealth_ReportsSchedulerStatus(t *testing.T) {
	h := New()
	dialer, _, _ := startBuf(t, h)
	ctx := context.Background()

	st, err := Check(ctx, "bufnet", SchedulerService, time.Second, dialer)
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, st)

	h.SetServing()
	st, err = Check(ctx, "bufnet", SchedulerService, time.Second, dialer)
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, st)

	st, err = Check(ctx, "bufnet", "", time.Second, dialer)
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, st)

	h.SetNotServing()
	st, err = Check(ctx, "bufnet", SchedulerService, time.Second, dialer)
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, st)
}

func TestHealth_UnknownService(t *testing.T) {
	dialer, _, _ := startBuf(t, New())
	_, err := Check(context.Background(), "bufnet", "nope", time.Second, dialer)
	require.Error(t, err)
}

func TestServe_StopsOnCancel(t *testing.T) {
	_, cancel, done := startBuf(t, New())
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
