package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/uptime-industries/pmic-agent/pkg/bq25896"
	"github.com/uptime-industries/pmic-agent/pkg/bus"
	"github.com/uptime-industries/pmic-agent/pkg/irq"
	"github.com/uptime-industries/pmic-agent/pkg/log"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/physic"
)

// Transport is the register bus and interrupt source selected by the config.
type Transport struct {
	Bus bq25896.Bus
	// IRQ is nil when only polling is used
	IRQ irq.Source

	run     func(ctx context.Context) error
	closers []io.Closer
}

// OpenTransport opens the bus configured in cfg.Bus and, if configured, the
// interrupt line.
func OpenTransport(ctx context.Context, cfg Config) (*Transport, error) {
	t := &Transport{}

	switch cfg.Bus.Kind {
	case BusKindI2C:
		log.FromContext(ctx).Info("Opening I2C bus", zap.String("device", cfg.Bus.Device))
		p, err := bus.OpenPeriph(cfg.Bus.Device, physic.Frequency(cfg.Bus.SpeedHz)*physic.Hertz)
		if err != nil {
			return nil, err
		}
		t.Bus = p
		t.closers = append(t.closers, p)

		if cfg.IRQ.Line >= 0 {
			log.FromContext(ctx).Info("Watching charger interrupt line",
				zap.String("chip", cfg.IRQ.Chip), zap.Int("line", cfg.IRQ.Line))
			g, err := irq.OpenGPIO(cfg.IRQ.Chip, cfg.IRQ.Line, cfg.IRQ.Debounce)
			if err != nil {
				t.Close()
				return nil, err
			}
			t.IRQ = g
			t.closers = append(t.closers, g)
		}

	case BusKindSerial:
		log.FromContext(ctx).Info("Opening serial I2C bridge", zap.String("port", cfg.Bus.Device))
		s, err := bus.OpenSerial(cfg.Bus.Device, cfg.Bus.Timeout)
		if err != nil {
			return nil, err
		}
		t.Bus = s
		t.IRQ = s
		t.run = s.Run
		t.closers = append(t.closers, s)

	case BusKindSim:
		log.FromContext(ctx).Warn("Using simulated charger")
		t.Bus = bus.NewFake(cfg.Bus.Address, SimulatedRegisters())
		t.IRQ = &irq.Simulated{Interval: cfg.IRQ.SimulatedInterval}

	default:
		return nil, fmt.Errorf("unknown bus kind %q", cfg.Bus.Kind)
	}

	return t, nil
}

// Run drives the transport until ctx is done. Only the serial bridge needs
// a receive loop, for all other transports Run just waits.
func (t *Transport) Run(ctx context.Context) error {
	if t.run == nil {
		<-ctx.Done()
		return nil
	}
	return t.run(ctx)
}

func (t *Transport) Close() error {
	var errs []error
	for i := len(t.closers) - 1; i >= 0; i-- {
		errs = append(errs, t.closers[i].Close())
	}
	t.closers = nil
	return errors.Join(errs...)
}

// SimulatedRegisters is the register file of the simulated charger: a DCP
// adapter fast charging a healthy cell.
func SimulatedRegisters() map[uint8]byte {
	regs := bq25896.ResetDefaults()
	regs[bq25896.Reg0B] = 0x74      // USB DCP, fast charge, power good
	regs[bq25896.Reg0E] = 50        // 3304 mV
	regs[bq25896.Reg0F] = 60        // 3504 mV
	regs[bq25896.Reg10] = 50        // 44.25 %
	regs[bq25896.Reg11] = 0x80 | 24 // 5000 mV
	regs[bq25896.Reg12] = 20        // 1000 mA
	return regs
}
