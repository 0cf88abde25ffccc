//go:build linux && !tinygo

package irq

import (
	"errors"
	"fmt"
	"time"

	"github.com/uptime-industries/pmic-agent/pkg/util"
	"github.com/warthog618/gpiod"
)

// GPIO watches the INT line through the Linux GPIO character device.
type GPIO struct {
	*Notifier

	chip *gpiod.Chip
	line *gpiod.Line
}

// OpenGPIO requests offset on chipName (e.g. "gpiochip0") as a pulled-up
// input and reports its falling edges. Edges within debounce of the first one
// are folded into a single interrupt.
func OpenGPIO(chipName string, offset int, debounce time.Duration) (*GPIO, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	chip, err := gpiod.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", chipName, err)
	}

	g := &GPIO{
		Notifier: NewNotifier(util.RealClock{}, debounce),
		chip:     chip,
	}

	g.line, err = chip.RequestLine(offset, lineOptions(g.handleEdge)...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request line %d: %w", offset, err)
	}
	return g, nil
}

// lineOptions configures the INT line. No kernel debounce is requested: it
// only reports levels held for the whole period and INT is a 256us pulse.
func lineOptions(handler gpiod.EventHandler) []gpiod.LineReqOption {
	return []gpiod.LineReqOption{
		gpiod.WithEventHandler(handler),
		gpiod.WithFallingEdge,
		gpiod.WithPullUp,
	}
}

func (g *GPIO) handleEdge(gpiod.LineEvent) {
	g.Edge()
}

func (g *GPIO) Close() error {
	return errors.Join(
		g.line.Close(),
		g.chip.Close(),
	)
}
