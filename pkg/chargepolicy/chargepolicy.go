// Package chargepolicy derates the fast-charge current with battery
// temperature as seen by the TS pin.
package chargepolicy

import (
	"fmt"
	"sync"
)

// MaxChargeCurrent is the highest fast-charge current the charger accepts.
const MaxChargeCurrent = 5056

type Policy interface {
	Override(opts *OverrideOpts)
	ChargeCurrent(tsPercent float64) uint16
}

type OverrideOpts struct {
	CurrentMilliAmps uint16 `mapstructure:"current_ma"`
}

type Step struct {
	// TSPercent is the TS pin voltage in percent of REGN. It rises as the
	// battery gets colder.
	TSPercent float64 `mapstructure:"ts_percent"`
	// CurrentMilliAmps is the fast-charge current at this point
	CurrentMilliAmps uint16 `mapstructure:"current_ma"`
}

// Config describes a derating curve.
type Config struct {
	// Steps defines the TS/current points, hottest first
	Steps []Step `mapstructure:"steps"`
}

// linearPolicy interpolates linearly between two points.
type linearPolicy struct {
	mu           sync.Mutex
	overrideOpts *OverrideOpts
	config       Config
}

func NewLinear(config Config) (Policy, error) {
	if len(config.Steps) != 2 {
		return nil, fmt.Errorf("exactly two steps must be defined")
	}
	if config.Steps[0].TSPercent >= config.Steps[1].TSPercent {
		return nil, fmt.Errorf("step 1 TS percentage must be lower than step 2 TS percentage")
	}
	if config.Steps[0].CurrentMilliAmps > config.Steps[1].CurrentMilliAmps {
		return nil, fmt.Errorf("step 1 current must not exceed step 2 current")
	}
	if config.Steps[1].CurrentMilliAmps > MaxChargeCurrent {
		return nil, fmt.Errorf("current must be between 0 and %d mA", MaxChargeCurrent)
	}

	return &linearPolicy{
		config: config,
	}, nil
}

// Override pins the current regardless of temperature, nil removes it.
func (p *linearPolicy) Override(opts *OverrideOpts) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.overrideOpts = opts
}

func (p *linearPolicy) ChargeCurrent(tsPercent float64) uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.overrideOpts != nil {
		return min(p.overrideOpts.CurrentMilliAmps, MaxChargeCurrent)
	}

	lo, hi := p.config.Steps[0], p.config.Steps[1]
	if tsPercent <= lo.TSPercent {
		return lo.CurrentMilliAmps
	}
	if tsPercent >= hi.TSPercent {
		return hi.CurrentMilliAmps
	}

	slope := float64(hi.CurrentMilliAmps-lo.CurrentMilliAmps) / (hi.TSPercent - lo.TSPercent)
	return uint16(float64(lo.CurrentMilliAmps) + slope*(tsPercent-lo.TSPercent))
}
