//go:build !linux && !tinygo

package irq

import (
	"errors"
	"time"
)

var ErrUnsupported = errors.New("gpio interrupts are only supported on linux")

type GPIO struct {
	*Notifier
}

func OpenGPIO(_ string, _ int, _ time.Duration) (*GPIO, error) {
	return nil, ErrUnsupported
}

func (g *GPIO) Close() error {
	return nil
}
