//go:build !tinygo

package bus

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Periph adapts a periph.io I2C bus, typically a Linux /dev/i2c-N device.
type Periph struct {
	registers
	closer i2c.BusCloser
}

// NewPeriph returns a register transport for an already opened bus. Close
// does not close bus.
func NewPeriph(bus i2c.Bus) *Periph {
	return &Periph{registers: registers{tx: bus}}
}

// OpenPeriph initialises the periph.io host drivers and opens the named I2C
// bus ("" selects the first one, "1" or "/dev/i2c-1" a specific one).
// A speed of 0 leaves the bus default.
func OpenPeriph(name string, speed physic.Frequency) (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}
	if speed != 0 {
		if err := b.SetSpeed(speed); err != nil {
			b.Close()
			return nil, fmt.Errorf("set i2c speed: %w", err)
		}
	}
	return &Periph{registers: registers{tx: b}, closer: b}, nil
}

func (p *Periph) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
