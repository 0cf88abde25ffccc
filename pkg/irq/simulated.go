package irq

import (
	"context"
	"time"

	"github.com/uptime-industries/pmic-agent/pkg/util"
)

// Simulated raises an interrupt every Interval, used with the simulated
// charger.
type Simulated struct {
	Clock    util.Clock
	Interval time.Duration
}

func (s *Simulated) WaitForInterrupt(ctx context.Context) error {
	clock := s.Clock
	if clock == nil {
		clock = util.RealClock{}
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(s.Interval):
		return nil
	}
}
