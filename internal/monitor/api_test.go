package monitor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptime-industries/pmic-agent/internal/monitor"
	"github.com/uptime-industries/pmic-agent/pkg/bq25896"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestGrpcServiceGetStatus(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor(t, monitor.DefaultConfig())
	svc := monitor.NewGrpcServiceFor(m)

	res, err := svc.GetStatus(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)

	fields := res.AsMap()
	assert.Equal(t, float64(5000), fields["vbus_mv"])
	assert.Equal(t, float64(3504), fields["vsys_mv"])
	assert.Equal(t, float64(3304), fields["vbat_mv"])
	assert.Equal(t, float64(1000), fields["charge_current_ma"])
	assert.InDelta(t, 44.25, fields["ts_percent"], 0.001)
	assert.Equal(t, true, fields["power_good"])
	assert.Equal(t, "Fast Charging", fields["charge_status"])
	assert.Equal(t, "Battery remove", fields["fault"].(map[string]interface{})["primary"])
}

func TestGrpcServiceGetStatusNTCFault(t *testing.T) {
	t.Parallel()

	m, fake := newTestMonitor(t, monitor.DefaultConfig())
	fake.Set(bq25896.Address, bq25896.RegFault, 0x02)
	svc := monitor.NewGrpcServiceFor(m)

	res, err := svc.GetStatus(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)

	fields := res.AsMap()
	assert.Nil(t, fields["vbat_mv"])
	assert.Contains(t, fields, "charge_status")
	assert.Nil(t, fields["charge_status"])
	fault := fields["fault"].(map[string]interface{})
	assert.Equal(t, "NTC Fault", fault["primary"])
	assert.Equal(t, "Warm", fault["ntc_status"])
	assert.Equal(t, float64(45), fault["ntc_percent"])
}

func TestGrpcServiceGetFaults(t *testing.T) {
	t.Parallel()

	m, fake := newTestMonitor(t, monitor.DefaultConfig())
	fake.Latch(bq25896.Address, bq25896.RegFault, 0xa0)
	svc := monitor.NewGrpcServiceFor(m)

	res, err := svc.GetFaults(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)

	fields := res.AsMap()
	assert.Equal(t, float64(0xa0), fields["raw"])
	assert.Equal(t, "Watchdog Fault", fields["primary"])
	assert.Equal(t, []interface{}{"Watchdog Fault", "Charge Fault"}, fields["faults"])
	assert.Equal(t, "Thermal Shutdown", fields["charge_fault"])
}

func TestGrpcServiceSetters(t *testing.T) {
	t.Parallel()

	m, fake := newTestMonitor(t, monitor.DefaultConfig())
	svc := monitor.NewGrpcServiceFor(m)
	ctx := context.Background()

	res, err := svc.SetChargeCurrent(ctx, wrapperspb.UInt32(1000))
	require.NoError(t, err)
	assert.Equal(t, uint32(960), res.GetValue())

	// values past uint16 saturate and are clamped by the chip
	res, err = svc.SetChargeVoltage(ctx, wrapperspb.UInt32(1<<20))
	require.NoError(t, err)
	assert.Equal(t, uint32(4608), res.GetValue())

	res, err = svc.SetInputCurrentLimit(ctx, wrapperspb.UInt32(0))
	require.NoError(t, err)
	assert.Equal(t, uint32(100), res.GetValue())

	_, err = svc.SetCharging(ctx, wrapperspb.Bool(false))
	require.NoError(t, err)
	assert.Zero(t, fake.Get(bq25896.Address, bq25896.Reg03)&0x10)
}

func TestGrpcServiceTransportError(t *testing.T) {
	t.Parallel()

	m, fake := newTestMonitor(t, monitor.DefaultConfig())
	fake.FailReads(errors.New("bus stuck"))
	svc := monitor.NewGrpcServiceFor(m)

	_, err := svc.GetFaults(context.Background(), &emptypb.Empty{})
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestGrpcServiceWaitForFaultClearCanceled(t *testing.T) {
	t.Parallel()

	m, fake := newTestMonitor(t, monitor.DefaultConfig())
	fake.Set(bq25896.Address, bq25896.RegFault, 0x08)
	svc := monitor.NewGrpcServiceFor(m)

	_, err := svc.GetFaults(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.WaitForFaultClear(ctx, &emptypb.Empty{})
	assert.Equal(t, codes.Canceled, status.Code(err))
}
