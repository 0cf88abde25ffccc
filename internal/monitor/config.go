package monitor

import (
	"fmt"
	"time"

	"github.com/uptime-industries/pmic-agent/pkg/bq25896"
	"github.com/uptime-industries/pmic-agent/pkg/chargepolicy"
)

const (
	BusKindI2C    = "i2c"
	BusKindSerial = "serial"
	BusKindSim    = "sim"
)

type BusConfig struct {
	// Kind selects the register transport: i2c, serial or sim
	Kind string `mapstructure:"kind"`
	// Device is the I2C bus name ("1", "/dev/i2c-1") or the serial port of a bridge
	Device string `mapstructure:"device"`
	// Address is the 7-bit I2C address of the charger
	Address uint8 `mapstructure:"address"`
	// SpeedHz sets the I2C clock, 0 keeps the bus default
	SpeedHz int64 `mapstructure:"speed_hz"`
	// Timeout bounds a single register transaction over the serial bridge
	Timeout time.Duration `mapstructure:"timeout"`
}

type IRQConfig struct {
	// Chip is the GPIO chip the INT line is connected to
	Chip string `mapstructure:"chip"`
	// Line is the GPIO offset of INT, negative to rely on polling only
	Line int `mapstructure:"line"`
	// Debounce folds INT edges closer than this into one interrupt
	Debounce time.Duration `mapstructure:"debounce"`
	// SimulatedInterval is the interrupt period with the simulated charger
	SimulatedInterval time.Duration `mapstructure:"simulated_interval"`
}

// ChargerConfig is the charge profile applied on start.
type ChargerConfig struct {
	SysMinVoltage     uint16 `mapstructure:"sys_min_mv"`
	InputCurrentLimit uint16 `mapstructure:"input_current_limit_ma"`
	CurrentLimitPin   bool   `mapstructure:"current_limit_pin"`
	ChargeVoltage     uint16 `mapstructure:"charge_voltage_mv"`
	PrechargeCurrent  uint16 `mapstructure:"precharge_current_ma"`
	ChargeCurrent     uint16 `mapstructure:"charge_current_ma"`
	// TerminationCurrent of 0 keeps the chip default
	TerminationCurrent uint16 `mapstructure:"termination_current_ma"`
	Measurement        bool   `mapstructure:"measurement"`
	Charging           bool   `mapstructure:"charging"`
	// Watchdog is one of disabled, 40s, 80s, 160s
	Watchdog string `mapstructure:"watchdog"`
}

type ListenConfig struct {
	Grpc    string `mapstructure:"grpc"`
	Metrics string `mapstructure:"metrics"`
}

type Config struct {
	Bus     BusConfig     `mapstructure:"bus"`
	IRQ     IRQConfig     `mapstructure:"irq"`
	Charger ChargerConfig `mapstructure:"charger"`

	// PollInterval is the period of watchdog feeding and telemetry collection.
	// It must stay well below the watchdog timeout.
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// Derating enables temperature based charge current derating
	Derating *chargepolicy.Config `mapstructure:"derating"`

	Listen ListenConfig `mapstructure:"listen"`
}

// DefaultConfig returns the configuration used when no config file is present.
// The charge profile matches a single 1S Li-ion cell.
func DefaultConfig() Config {
	return Config{
		Bus: BusConfig{
			Kind:    BusKindI2C,
			Device:  "",
			Address: bq25896.Address,
			Timeout: 250 * time.Millisecond,
		},
		IRQ: IRQConfig{
			Chip:              "gpiochip0",
			Line:              -1,
			Debounce:          10 * time.Millisecond,
			SimulatedInterval: 30 * time.Second,
		},
		Charger: ChargerConfig{
			SysMinVoltage:     3300,
			InputCurrentLimit: 3250,
			CurrentLimitPin:   false,
			ChargeVoltage:     4208,
			PrechargeCurrent:  64,
			ChargeCurrent:     1024,
			Measurement:       true,
			Charging:          true,
			Watchdog:          "40s",
		},
		PollInterval: 5 * time.Second,
		Listen: ListenConfig{
			Grpc:    "unix:///tmp/pmicd.sock",
			Metrics: ":9667",
		},
	}
}

// WatchdogTimeout parses the configured watchdog setting.
func (c ChargerConfig) WatchdogTimeout() (bq25896.WatchdogTimeout, error) {
	for _, wd := range []bq25896.WatchdogTimeout{
		bq25896.WatchdogDisabled,
		bq25896.Watchdog40s,
		bq25896.Watchdog80s,
		bq25896.Watchdog160s,
	} {
		if wd.String() == c.Watchdog {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("invalid watchdog timeout %q", c.Watchdog)
}

// Validate checks settings the chip cannot catch on its own.
func (c Config) Validate() error {
	switch c.Bus.Kind {
	case BusKindI2C, BusKindSerial, BusKindSim:
	default:
		return fmt.Errorf("unknown bus kind %q", c.Bus.Kind)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	wd, err := c.Charger.WatchdogTimeout()
	if err != nil {
		return err
	}
	if wd != bq25896.WatchdogDisabled && c.PollInterval >= watchdogPeriod(wd) {
		return fmt.Errorf("poll interval %s does not feed the %s watchdog in time", c.PollInterval, wd)
	}
	return nil
}

func watchdogPeriod(wd bq25896.WatchdogTimeout) time.Duration {
	switch wd {
	case bq25896.Watchdog40s:
		return 40 * time.Second
	case bq25896.Watchdog80s:
		return 80 * time.Second
	case bq25896.Watchdog160s:
		return 160 * time.Second
	default:
		return 0
	}
}
