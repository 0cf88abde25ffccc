package pmicapi_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptime-industries/pmic-agent/pkg/pmicapi"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type fakeService struct {
	pmicapi.UnimplementedChargerServiceServer
	current uint32
}

func (f *fakeService) GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{"vbus_mv": 5000})
}

func (f *fakeService) SetChargeCurrent(_ context.Context, in *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error) {
	f.current = in.GetValue() / 64 * 64
	return wrapperspb.UInt32(f.current), nil
}

func dial(t *testing.T, srv pmicapi.ChargerServiceServer, opts ...grpc.ServerOption) pmicapi.ChargerServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 16)
	grpcServer := grpc.NewServer(opts...)
	pmicapi.RegisterChargerServiceServer(grpcServer, srv)
	go func() { _ = grpcServer.Serve(lis) }()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return pmicapi.NewChargerServiceClient(conn)
}

func TestChargerServiceRoundTrip(t *testing.T) {
	svc := &fakeService{}
	client := dial(t, svc)
	ctx := context.Background()

	st, err := client.GetStatus(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, float64(5000), st.GetFields()["vbus_mv"].GetNumberValue())

	applied, err := client.SetChargeCurrent(ctx, wrapperspb.UInt32(1000))
	require.NoError(t, err)
	assert.Equal(t, uint32(960), applied.GetValue())
	assert.Equal(t, uint32(960), svc.current)
}

func TestChargerServiceUnimplemented(t *testing.T) {
	client := dial(t, &fakeService{})

	_, err := client.SetCharging(context.Background(), wrapperspb.Bool(true))
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestChargerServiceInterceptor(t *testing.T) {
	var seen []string
	interceptor := func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		seen = append(seen, info.FullMethod)
		return handler(ctx, req)
	}
	client := dial(t, &fakeService{}, grpc.UnaryInterceptor(interceptor))

	_, err := client.GetStatus(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/pmic.v1alpha1.ChargerService/GetStatus"}, seen)
}
