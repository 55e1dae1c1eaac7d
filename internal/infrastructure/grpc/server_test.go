package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/uxpilot-billing/internal/config"
	apperrors "github.com/wekeepgrowing/uxpilot-billing/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func TestServer_Health(t *testing.T) {
	s := NewServer(&config.Config{}, zap.NewNop())
	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	defer func() { _ = s.Shutdown(context.Background()) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	s.SetServing(false)
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestServer_DisabledWithoutPort(t *testing.T) {
	s := NewServer(&config.Config{}, zap.NewNop())
	assert.NoError(t, s.Start())
}

func TestErrorUnaryInterceptor(t *testing.T) {
	call := func(err error) error {
		_, got := errorUnaryInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/billing.v1.Billing/Consume"},
			func(context.Context, interface{}) (interface{}, error) { return nil, err })
		return got
	}

	assert.NoError(t, call(nil))

	err := call(apperrors.InsufficientCredits("Need 6 credits", nil))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Equal(t, "Need 6 credits", status.Convert(err).Message())

	err = call(apperrors.ProviderUnavailable(assert.AnError))
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.NotContains(t, status.Convert(err).Message(), assert.AnError.Error())

	original := status.Error(codes.NotFound, "no such subscription")
	assert.Equal(t, original, call(original))
}
