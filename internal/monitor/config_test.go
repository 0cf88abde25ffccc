package monitor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptime-industries/pmic-agent/internal/monitor"
	"github.com/uptime-industries/pmic-agent/pkg/bq25896"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := monitor.DefaultConfig()
	assert.NoError(t, cfg.Validate())

	wd, err := cfg.Charger.WatchdogTimeout()
	assert.NoError(t, err)
	assert.Equal(t, bq25896.Watchdog40s, wd)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name   string
		modify func(*monitor.Config)
		valid  bool
	}{
		{"serial bridge", func(c *monitor.Config) { c.Bus.Kind = monitor.BusKindSerial }, true},
		{"simulated", func(c *monitor.Config) { c.Bus.Kind = monitor.BusKindSim }, true},
		{"unknown bus", func(c *monitor.Config) { c.Bus.Kind = "spi" }, false},
		{"zero poll interval", func(c *monitor.Config) { c.PollInterval = 0 }, false},
		{"bad watchdog", func(c *monitor.Config) { c.Charger.Watchdog = "30s" }, false},
		{"poll slower than watchdog", func(c *monitor.Config) { c.PollInterval = 40 * time.Second }, false},
		{"slow poll, long watchdog", func(c *monitor.Config) {
			c.PollInterval = 60 * time.Second
			c.Charger.Watchdog = "80s"
		}, true},
		{"slow poll, watchdog disabled", func(c *monitor.Config) {
			c.PollInterval = time.Hour
			c.Charger.Watchdog = "disabled"
		}, true},
	}

	for _, tcl := range testcases {
		tc := tcl
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := monitor.DefaultConfig()
			tc.modify(&cfg)
			if tc.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}
