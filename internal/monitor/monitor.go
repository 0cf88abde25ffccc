// Package monitor runs the charger: it applies the charge profile, keeps the
// watchdog fed, turns interrupts into log lines and exports telemetry.
package monitor

import (
	"context"
	"errors"
	"sync"

	"github.com/uptime-industries/pmic-agent/pkg/bq25896"
	"github.com/uptime-industries/pmic-agent/pkg/chargepolicy"
	"github.com/uptime-industries/pmic-agent/pkg/irq"
	"github.com/uptime-industries/pmic-agent/pkg/log"
	"github.com/uptime-industries/pmic-agent/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Monitor owns the charger. Every driver call goes through mu since the
// driver itself does not serialize read-modify-write sequences.
type Monitor struct {
	opts  Config
	clock util.Clock
	irq   irq.Source

	mu  sync.Mutex
	dev *bq25896.Device
	// chargeCurrent is the last ICHG value written
	chargeCurrent uint16

	policy chargepolicy.Policy
	state  *faultState
}

// New creates a monitor for the charger on bus. src may be nil, the monitor
// then relies on polling only.
func New(opts Config, bus bq25896.Bus, src irq.Source, clock util.Clock) (*Monitor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = util.RealClock{}
	}

	m := &Monitor{
		opts:  opts,
		clock: clock,
		irq:   src,
		dev:   bq25896.New(bus, bq25896.Config{Address: opts.Bus.Address}),
		state: newFaultState(),
	}

	if opts.Derating != nil {
		policy, err := chargepolicy.NewLinear(*opts.Derating)
		if err != nil {
			return nil, err
		}
		m.policy = policy
	}
	return m, nil
}

// Run initialises the charger and blocks until ctx is canceled or a loop fails.
func (m *Monitor) Run(ctx context.Context) error {
	log.FromContext(ctx).Info("Starting charger monitor", zap.Uint8("address", m.dev.Addr()))

	if err := m.Setup(ctx); err != nil {
		return err
	}
	defer m.cleanup(ctx)

	group, ctx := errgroup.WithContext(ctx)

	if m.irq != nil {
		group.Go(func() error {
			log.FromContext(ctx).Info("Starting interrupt handler")
			return m.runInterruptHandler(ctx)
		})
	}

	group.Go(func() error {
		log.FromContext(ctx).Info("Starting poller", zap.Duration("interval", m.opts.PollInterval))
		return m.runPoller(ctx)
	})

	err := group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// setpoint is one entry of the charge profile.
type setpoint struct {
	name  string
	unit  string
	value uint16
	set   func(uint16) (uint16, error)
}

// Setup verifies the chip and applies the charge profile.
func (m *Monitor) Setup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.dev.Init(); err != nil {
		transportErrorCount.Inc()
		return err
	}
	chipID, _ := m.dev.ChipID()
	log.FromContext(ctx).Info("Charger detected", zap.Uint8("chip_id", chipID))

	c := m.opts.Charger
	setpoints := []setpoint{
		{"sys_min", "mV", c.SysMinVoltage, m.dev.SetSysPowerDownVoltage},
		{"input_current_limit", "mA", c.InputCurrentLimit, m.dev.SetInputCurrentLimit},
		{"charge_voltage", "mV", c.ChargeVoltage, m.dev.SetChargeTargetVoltage},
		{"precharge_current", "mA", c.PrechargeCurrent, m.dev.SetPrechargeCurrent},
		{"charge_current", "mA", c.ChargeCurrent, m.dev.SetChargerConstantCurrent},
	}
	if c.TerminationCurrent != 0 {
		setpoints = append(setpoints, setpoint{"termination_current", "mA", c.TerminationCurrent, m.dev.SetTerminationCurrent})
	}

	for _, sp := range setpoints {
		applied, err := sp.set(sp.value)
		if err != nil {
			transportErrorCount.Inc()
			return err
		}
		logger := log.FromContext(ctx).With(zap.String("setpoint", sp.name), zap.String("unit", sp.unit))
		if applied != sp.value {
			logger.Warn("Setpoint limited by the charger", zap.Uint16("requested", sp.value), zap.Uint16("applied", applied))
		} else {
			logger.Info("Setpoint applied", zap.Uint16("value", applied))
		}
		if sp.name == "charge_current" {
			m.setChargeCurrentLocked(applied)
		}
	}

	wd, err := c.WatchdogTimeout()
	if err != nil {
		return err
	}

	toggles := []struct {
		name    string
		enabled bool
		on, off func() error
	}{
		{"current_limit_pin", c.CurrentLimitPin, m.dev.EnableCurrentLimitPin, m.dev.DisableCurrentLimitPin},
		{"measurement", c.Measurement, m.dev.EnableMeasurement, m.dev.DisableMeasurement},
		{"charging", c.Charging, m.dev.EnableCharging, m.dev.DisableCharging},
	}
	for _, tg := range toggles {
		apply := tg.off
		if tg.enabled {
			apply = tg.on
		}
		if err := apply(); err != nil {
			transportErrorCount.Inc()
			return err
		}
		log.FromContext(ctx).Info("Toggle applied", zap.String("toggle", tg.name), zap.Bool("enabled", tg.enabled))
	}

	if err := m.dev.SetWatchdogTimeout(wd); err != nil {
		transportErrorCount.Inc()
		return err
	}
	log.FromContext(ctx).Info("Watchdog configured", zap.Stringer("timeout", wd))
	return nil
}

// cleanup leaves the chip in a state that is safe without the agent. The
// default watchdog resets the charge parameters once nobody feeds it.
func (m *Monitor) cleanup(ctx context.Context) {
	log.FromContext(ctx).Info("Exiting, re-arming charger watchdog")
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.dev.SetWatchdogTimeout(bq25896.Watchdog40s); err != nil {
		log.FromContext(ctx).Error("Failed to re-arm watchdog", zap.Error(err))
	}
}

func (m *Monitor) runInterruptHandler(ctx context.Context) error {
	for {
		err := m.irq.WaitForInterrupt(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		interruptCount.Inc()
		m.HandleInterrupt(ctx)
	}
}

// HandleInterrupt reads one fault snapshot and logs its primary cause.
func (m *Monitor) HandleInterrupt(ctx context.Context) bq25896.Fault {
	m.mu.Lock()
	fs, err := m.dev.FaultStatus()
	if err != nil {
		m.mu.Unlock()
		transportErrorCount.Inc()
		log.FromContext(ctx).Error("Failed to read fault register", zap.Error(err))
		return bq25896.FaultNone
	}
	st, stErr := m.dev.Status()
	m.mu.Unlock()

	m.state.Update(fs)

	var status *bq25896.Status
	if stErr == nil {
		status = &st
	} else {
		transportErrorCount.Inc()
	}
	m.reportFault(ctx, "interrupt", fs, status)
	return fs.Primary()
}

// reportFault logs and counts the primary cause of a fault register read.
// Reading REG0C clears the latched bits, so every path reading it reports
// through here; source names that path. st may be nil.
func (m *Monitor) reportFault(ctx context.Context, source string, fs bq25896.FaultStatus, st *bq25896.Status) {
	primary := fs.Primary()
	faultCount.WithLabelValues(primary.String()).Inc()

	logger := log.FromContext(ctx).With(
		zap.String("source", source),
		zap.String("cause", primary.String()),
		zap.Uint8("raw", uint8(fs)))
	if st != nil {
		logger = logger.With(zap.Stringer("bus", st.Bus))
		if !fs.NTC() {
			logger = logger.With(zap.Stringer("charge", st.Charge))
		}
	}

	switch primary {
	case bq25896.FaultNone:
		logger.Info("Charger interrupt")
	case bq25896.FaultCharge:
		logger.Warn("Charger fault", zap.Stringer("detail", fs.ChargeFault()))
	case bq25896.FaultNTC:
		band := fs.NTCBand()
		logger.Warn("Charger fault", zap.String("ntc", band.Name), zap.Uint8("ntc_percent", band.Percent))
	default:
		logger.Warn("Charger fault")
	}
}

// reportSnapshotFault reports faults consumed by a read outside the
// interrupt handler. A clean register is not worth a log line there.
func (m *Monitor) reportSnapshotFault(ctx context.Context, source string, snap bq25896.Snapshot, err error) {
	if snap.Fault.Primary() == bq25896.FaultNone {
		return
	}
	var st *bq25896.Status
	if err == nil {
		st = &snap.Status
	}
	m.reportFault(ctx, source, snap.Fault, st)
}

func (m *Monitor) runPoller(ctx context.Context) error {
	ticker := m.clock.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
		}
		m.Poll(ctx)
	}
}

// Poll feeds the watchdog, collects telemetry and applies derating.
func (m *Monitor) Poll(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.dev.FeedWatchdog(); err != nil {
		transportErrorCount.Inc()
		log.FromContext(ctx).Error("Failed to feed watchdog", zap.Error(err))
	}

	snap, err := m.dev.Snapshot()
	m.reportSnapshotFault(ctx, "poll", snap, err)
	if err != nil {
		transportErrorCount.Inc()
		log.FromContext(ctx).Error("Failed to read telemetry", zap.Error(err))
		return
	}
	m.state.Update(snap.Fault)
	recordSnapshot(snap)

	if m.policy == nil {
		return
	}
	target := m.policy.ChargeCurrent(float64(snap.TS_mPct) / 1000)
	if bq25896.FastChargeCurrent.Quantize(target) == m.chargeCurrent {
		return
	}
	applied, err := m.dev.SetChargerConstantCurrent(target)
	if err != nil {
		transportErrorCount.Inc()
		log.FromContext(ctx).Error("Failed to derate charge current", zap.Error(err))
		return
	}
	log.FromContext(ctx).Info("Charge current derated",
		zap.Uint32("ts_milli_percent", snap.TS_mPct), zap.Uint16("current_ma", applied))
	m.setChargeCurrentLocked(applied)
}

func (m *Monitor) setChargeCurrentLocked(mA uint16) {
	m.chargeCurrent = mA
	chargeCurrentSetpoint.Set(float64(mA))
}

func recordSnapshot(s bq25896.Snapshot) {
	vbusVoltage.Set(float64(s.Vbus_mV))
	vsysVoltage.Set(float64(s.Vsys_mV))
	if s.VbatValid {
		vbatVoltage.Set(float64(s.Vbat_mV))
	}
	chargeCurrent.Set(float64(s.ChargeCurr_mA))
	tsPercent.Set(float64(s.TS_mPct) / 1000)

	if s.Status.PowerGood {
		powerGood.Set(1)
	} else {
		powerGood.Set(0)
	}
	chargeStatus.Reset()
	if s.ChargeValid {
		chargeStatus.WithLabelValues(s.Status.Charge.String()).Set(1)
	}
	busStatus.Reset()
	busStatus.WithLabelValues(s.Status.Bus.String()).Set(1)
}

// Snapshot reads status, faults and telemetry from the charger.
func (m *Monitor) Snapshot(ctx context.Context) (bq25896.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.dev.Snapshot()
	m.reportSnapshotFault(ctx, "status_request", snap, err)
	if err != nil {
		transportErrorCount.Inc()
		return snap, err
	}
	m.state.Update(snap.Fault)
	return snap, nil
}

// FaultStatus reads the fault register.
func (m *Monitor) FaultStatus(ctx context.Context) (bq25896.FaultStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fs, err := m.dev.FaultStatus()
	if err != nil {
		transportErrorCount.Inc()
		return 0, err
	}
	m.state.Update(fs)
	if fs.Primary() != bq25896.FaultNone {
		m.reportFault(ctx, "fault_request", fs, nil)
	}
	return fs, nil
}

// SetChargeCurrent pins the fast charge current, derating stays overridden
// until the agent restarts.
func (m *Monitor) SetChargeCurrent(ctx context.Context, mA uint16) (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	applied, err := m.dev.SetChargerConstantCurrent(mA)
	if err != nil {
		transportErrorCount.Inc()
		return 0, err
	}
	if m.policy != nil {
		m.policy.Override(&chargepolicy.OverrideOpts{CurrentMilliAmps: applied})
	}
	m.setChargeCurrentLocked(applied)
	log.FromContext(ctx).Info("Charge current set", zap.Uint16("requested", mA), zap.Uint16("applied", applied))
	return applied, nil
}

func (m *Monitor) SetChargeVoltage(ctx context.Context, mV uint16) (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	applied, err := m.dev.SetChargeTargetVoltage(mV)
	if err != nil {
		transportErrorCount.Inc()
		return 0, err
	}
	log.FromContext(ctx).Info("Charge voltage set", zap.Uint16("requested", mV), zap.Uint16("applied", applied))
	return applied, nil
}

func (m *Monitor) SetInputCurrentLimit(ctx context.Context, mA uint16) (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	applied, err := m.dev.SetInputCurrentLimit(mA)
	if err != nil {
		transportErrorCount.Inc()
		return 0, err
	}
	log.FromContext(ctx).Info("Input current limit set", zap.Uint16("requested", mA), zap.Uint16("applied", applied))
	return applied, nil
}

func (m *Monitor) SetCharging(ctx context.Context, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if enabled {
		err = m.dev.EnableCharging()
	} else {
		err = m.dev.DisableCharging()
	}
	if err != nil {
		transportErrorCount.Inc()
		return err
	}
	log.FromContext(ctx).Info("Charging toggled", zap.Bool("enabled", enabled))
	return nil
}

// WaitForFaultClear blocks until a fault register read reports no fault.
func (m *Monitor) WaitForFaultClear(ctx context.Context) error {
	return m.state.WaitForFaultClear(ctx)
}
