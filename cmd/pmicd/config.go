package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/uptime-industries/pmic-agent/internal/monitor"
)

// loadConfig reads pmicd.yaml from /etc/pmicd or the working directory on top
// of the defaults. Every key can be overridden by a PMICD_ environment
// variable, e.g. PMICD_BUS_KIND=sim.
func loadConfig(path string) (monitor.Config, error) {
	cfg := monitor.DefaultConfig()

	v := viper.New()
	setDefaults(v, cfg)

	v.SetEnvPrefix("pmicd")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pmicd")
		v.AddConfigPath("/etc/pmicd")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// setDefaults registers every scalar key so AutomaticEnv can override keys
// missing from the config file.
func setDefaults(v *viper.Viper, cfg monitor.Config) {
	v.SetDefault("bus.kind", cfg.Bus.Kind)
	v.SetDefault("bus.device", cfg.Bus.Device)
	v.SetDefault("bus.address", cfg.Bus.Address)
	v.SetDefault("bus.speed_hz", cfg.Bus.SpeedHz)
	v.SetDefault("bus.timeout", cfg.Bus.Timeout)

	v.SetDefault("irq.chip", cfg.IRQ.Chip)
	v.SetDefault("irq.line", cfg.IRQ.Line)
	v.SetDefault("irq.debounce", cfg.IRQ.Debounce)
	v.SetDefault("irq.simulated_interval", cfg.IRQ.SimulatedInterval)

	v.SetDefault("charger.sys_min_mv", cfg.Charger.SysMinVoltage)
	v.SetDefault("charger.input_current_limit_ma", cfg.Charger.InputCurrentLimit)
	v.SetDefault("charger.current_limit_pin", cfg.Charger.CurrentLimitPin)
	v.SetDefault("charger.charge_voltage_mv", cfg.Charger.ChargeVoltage)
	v.SetDefault("charger.precharge_current_ma", cfg.Charger.PrechargeCurrent)
	v.SetDefault("charger.charge_current_ma", cfg.Charger.ChargeCurrent)
	v.SetDefault("charger.termination_current_ma", cfg.Charger.TerminationCurrent)
	v.SetDefault("charger.measurement", cfg.Charger.Measurement)
	v.SetDefault("charger.charging", cfg.Charger.Charging)
	v.SetDefault("charger.watchdog", cfg.Charger.Watchdog)

	v.SetDefault("poll_interval", cfg.PollInterval)
	v.SetDefault("listen.grpc", cfg.Listen.Grpc)
	v.SetDefault("listen.metrics", cfg.Listen.Metrics)
}
