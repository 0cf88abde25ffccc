package monitor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptime-industries/pmic-agent/internal/monitor"
	"github.com/uptime-industries/pmic-agent/pkg/bq25896"
	"github.com/uptime-industries/pmic-agent/pkg/bus"
	"github.com/uptime-industries/pmic-agent/pkg/chargepolicy"
	"github.com/uptime-industries/pmic-agent/pkg/log"
	"github.com/uptime-industries/pmic-agent/pkg/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// chanSource delivers one interrupt per value sent on the channel.
type chanSource chan struct{}

func (c chanSource) WaitForInterrupt(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c:
		return nil
	}
}

func newTestMonitor(t *testing.T, cfg monitor.Config) (*monitor.Monitor, *bus.Fake) {
	t.Helper()
	fake := bus.NewFake(bq25896.Address, monitor.SimulatedRegisters())
	m, err := monitor.New(cfg, fake, nil, nil)
	require.NoError(t, err)
	return m, fake
}

func observedContext() (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return log.IntoContext(context.Background(), zap.New(core)), logs
}

func TestSetupAppliesProfile(t *testing.T) {
	t.Parallel()

	m, fake := newTestMonitor(t, monitor.DefaultConfig())
	require.NoError(t, m.Setup(context.Background()))

	dev := bq25896.New(fake, bq25896.Config{})

	read := func(get func() (uint16, error)) uint16 {
		v, err := get()
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, uint16(3300), read(dev.SysPowerDownVoltage))
	assert.Equal(t, uint16(3250), read(dev.InputCurrentLimit))
	assert.Equal(t, uint16(4208), read(dev.ChargeTargetVoltage))
	assert.Equal(t, uint16(64), read(dev.PrechargeCurrent))
	assert.Equal(t, uint16(1024), read(dev.ChargerConstantCurrent))

	assert.Zero(t, fake.Get(bq25896.Address, bq25896.Reg00)&0x40, "ILIM pin must be disabled")

	on, err := dev.MeasurementEnabled()
	require.NoError(t, err)
	assert.True(t, on)
	on, err = dev.ChargingEnabled()
	require.NoError(t, err)
	assert.True(t, on)
	wd, err := dev.WatchdogTimeout()
	require.NoError(t, err)
	assert.Equal(t, bq25896.Watchdog40s, wd)
}

func TestSetupLogsLimitedSetpoint(t *testing.T) {
	t.Parallel()

	cfg := monitor.DefaultConfig()
	cfg.Charger.ChargeCurrent = 1000
	m, _ := newTestMonitor(t, cfg)

	ctx, logs := observedContext()
	require.NoError(t, m.Setup(ctx))

	limited := logs.FilterMessage("Setpoint limited by the charger").All()
	require.Len(t, limited, 1)
	assert.Equal(t, "charge_current", limited[0].ContextMap()["setpoint"])
	assert.Equal(t, uint16(960), limited[0].ContextMap()["applied"])
}

func TestSetupIdentityMismatch(t *testing.T) {
	t.Parallel()

	regs := monitor.SimulatedRegisters()
	regs[bq25896.RegChipID] = 0x01
	fake := bus.NewFake(bq25896.Address, regs)

	m, err := monitor.New(monitor.DefaultConfig(), fake, nil, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, m.Setup(context.Background()), bq25896.ErrIdentityMismatch)
	assert.Empty(t, fake.Writes())
}

func TestHandleInterrupt(t *testing.T) {
	t.Parallel()

	m, fake := newTestMonitor(t, monitor.DefaultConfig())
	ctx, logs := observedContext()
	require.NoError(t, m.Setup(ctx))

	// charge and battery fault together report the charge fault
	fake.Latch(bq25896.Address, bq25896.RegFault, 0x18)
	assert.Equal(t, bq25896.FaultCharge, m.HandleInterrupt(ctx))

	entries := logs.FilterMessage("Charger fault").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Charge Fault", entries[0].ContextMap()["cause"])
	assert.Equal(t, "interrupt", entries[0].ContextMap()["source"])
	assert.Equal(t, "Input Fault", entries[0].ContextMap()["detail"])

	// NTC only, the band comes from the lookup table
	fake.Latch(bq25896.Address, bq25896.RegFault, 0x06)
	assert.Equal(t, bq25896.FaultNTC, m.HandleInterrupt(ctx))

	entries = logs.FilterMessage("Charger fault").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Hot", entries[1].ContextMap()["ntc"])
	assert.Equal(t, uint8(34), entries[1].ContextMap()["ntc_percent"])

	// nothing latched
	assert.Equal(t, bq25896.FaultNone, m.HandleInterrupt(ctx))
	entries = logs.FilterMessage("Charger interrupt").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Battery remove", entries[0].ContextMap()["cause"])
}

func TestPollReportsLatchedFault(t *testing.T) {
	t.Parallel()

	m, fake := newTestMonitor(t, monitor.DefaultConfig())
	ctx, logs := observedContext()
	require.NoError(t, m.Setup(ctx))

	// the poll read clears the latch before the interrupt is handled
	fake.Latch(bq25896.Address, bq25896.RegFault, 0x80)
	m.Poll(ctx)

	entries := logs.FilterMessage("Charger fault").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Watchdog Fault", entries[0].ContextMap()["cause"])
	assert.Equal(t, "poll", entries[0].ContextMap()["source"])

	assert.Equal(t, bq25896.FaultNone, m.HandleInterrupt(ctx))
	assert.Len(t, logs.FilterMessage("Charger fault").All(), 1)

	// a clean poll stays quiet
	m.Poll(ctx)
	assert.Len(t, logs.FilterMessage("Charger fault").All(), 1)
}

func TestRequestsReportLatchedFault(t *testing.T) {
	t.Parallel()

	m, fake := newTestMonitor(t, monitor.DefaultConfig())
	ctx, logs := observedContext()

	fake.Latch(bq25896.Address, bq25896.RegFault, 0x40)
	fs, err := m.FaultStatus(ctx)
	require.NoError(t, err)
	assert.True(t, fs.Boost())

	fake.Latch(bq25896.Address, bq25896.RegFault, 0x08)
	_, err = m.Snapshot(ctx)
	require.NoError(t, err)

	entries := logs.FilterMessage("Charger fault").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Boost Fault", entries[0].ContextMap()["cause"])
	assert.Equal(t, "fault_request", entries[0].ContextMap()["source"])
	assert.Equal(t, "Battery Fault", entries[1].ContextMap()["cause"])
	assert.Equal(t, "status_request", entries[1].ContextMap()["source"])
}

func TestPollFeedsWatchdogAndDerates(t *testing.T) {
	t.Parallel()

	cfg := monitor.DefaultConfig()
	cfg.Derating = &chargepolicy.Config{
		Steps: []chargepolicy.Step{
			{TSPercent: 40, CurrentMilliAmps: 512},
			{TSPercent: 50, CurrentMilliAmps: 1024},
		},
	}
	m, fake := newTestMonitor(t, cfg)
	ctx := context.Background()
	require.NoError(t, m.Setup(ctx))
	writesBefore := len(fake.Writes())

	// TS at 44.25% derates 1024 mA to 729 mA, quantized to 704 mA
	m.Poll(ctx)

	writes := fake.Writes()[writesBefore:]
	require.NotEmpty(t, writes)
	assert.Equal(t, uint8(bq25896.Reg03), writes[0].Reg)
	assert.NotZero(t, writes[0].Val&0x40, "watchdog must be fed")
	assert.Equal(t, byte(11), fake.Get(bq25896.Address, bq25896.Reg04))

	// a second poll with the same temperature writes nothing but the watchdog
	writesBefore = len(fake.Writes())
	m.Poll(ctx)
	assert.Len(t, fake.Writes()[writesBefore:], 1)

	// a manual setpoint overrides derating
	applied, err := m.SetChargeCurrent(ctx, 2000)
	require.NoError(t, err)
	assert.Equal(t, uint16(1984), applied)
	m.Poll(ctx)
	assert.Equal(t, byte(31), fake.Get(bq25896.Address, bq25896.Reg04))
}

func TestSetters(t *testing.T) {
	t.Parallel()

	m, fake := newTestMonitor(t, monitor.DefaultConfig())
	ctx := context.Background()
	require.NoError(t, m.Setup(ctx))

	v, err := m.SetChargeVoltage(ctx, 4400)
	require.NoError(t, err)
	assert.Equal(t, uint16(4400), v)

	v, err = m.SetInputCurrentLimit(ctx, 9999)
	require.NoError(t, err)
	assert.Equal(t, uint16(3250), v)

	require.NoError(t, m.SetCharging(ctx, false))
	assert.Zero(t, fake.Get(bq25896.Address, bq25896.Reg03)&0x10)
	require.NoError(t, m.SetCharging(ctx, true))
	assert.NotZero(t, fake.Get(bq25896.Address, bq25896.Reg03)&0x10)
}

func TestWaitForFaultClear(t *testing.T) {
	t.Parallel()

	m, fake := newTestMonitor(t, monitor.DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// no fault, returns right away
	require.NoError(t, m.WaitForFaultClear(ctx))

	fake.Set(bq25896.Address, bq25896.RegFault, 0x40)
	fs, err := m.FaultStatus(ctx)
	require.NoError(t, err)
	assert.True(t, fs.Boost())

	done := make(chan error, 1)
	go func() {
		done <- m.WaitForFaultClear(ctx)
	}()

	fake.Set(bq25896.Address, bq25896.RegFault, 0x00)
	_, err = m.FaultStatus(ctx)
	require.NoError(t, err)

	assert.NoError(t, <-done)
}

func TestRun(t *testing.T) {
	t.Parallel()

	ticker := util.NewManualTicker()
	clk := &util.MockClock{}
	clk.On("NewTicker", 5*time.Second).Return(ticker)

	fake := bus.NewFake(bq25896.Address, monitor.SimulatedRegisters())
	src := make(chanSource)
	m, err := monitor.New(monitor.DefaultConfig(), fake, src, clk)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(log.IntoContext(context.Background(), zap.NewNop()))
	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx)
	}()

	fake.Latch(bq25896.Address, bq25896.RegFault, 0x80)
	src <- struct{}{}
	// the handler is back waiting once the second interrupt is taken
	src <- struct{}{}

	ticker.Tick(time.Now())
	cancel()
	require.NoError(t, <-done)

	var fed bool
	for _, w := range fake.Writes() {
		if w.Reg == bq25896.Reg03 && w.Val&0x40 != 0 {
			fed = true
		}
	}
	assert.True(t, fed, "poller must feed the watchdog")

	// cleanup re-arms the watchdog
	last := fake.Writes()[len(fake.Writes())-1]
	assert.Equal(t, uint8(bq25896.Reg07), last.Reg)
	clk.AssertExpectations(t)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := monitor.DefaultConfig()
	cfg.Derating = &chargepolicy.Config{}
	_, err := monitor.New(cfg, bus.NewFake(bq25896.Address, nil), nil, nil)
	assert.Error(t, err)

	cfg = monitor.DefaultConfig()
	cfg.Bus.Kind = "spi"
	_, err = monitor.New(cfg, bus.NewFake(bq25896.Address, nil), nil, nil)
	assert.Error(t, err)
}
