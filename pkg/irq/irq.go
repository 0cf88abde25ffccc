// Package irq watches the charger INT line. The BQ25896 pulls it low for
// 256us on every status change or fault.
package irq

import (
	"context"
	"sync"
	"time"

	"github.com/uptime-industries/pmic-agent/pkg/util"
)

const DefaultDebounce = 10 * time.Millisecond

// Source delivers charger interrupts.
type Source interface {
	// WaitForInterrupt blocks until the next interrupt or until ctx is done.
	WaitForInterrupt(ctx context.Context) error
}

// Notifier folds bursts of edges into one notification per debounce
// interval and wakes every waiter. A notification without waiters is kept
// for the next WaitForInterrupt call.
type Notifier struct {
	clock    util.Clock
	interval time.Duration

	mu      sync.Mutex
	pending bool
	waiters int
	missed  bool
	watch   chan struct{}
}

func NewNotifier(clock util.Clock, interval time.Duration) *Notifier {
	if clock == nil {
		clock = util.RealClock{}
	}
	return &Notifier{
		clock:    clock,
		interval: interval,
		watch:    make(chan struct{}),
	}
}

// Edge records a falling edge. It never blocks, so it is safe to call from a
// gpiod event handler.
func (n *Notifier) Edge() {
	n.mu.Lock()
	if n.pending {
		n.mu.Unlock()
		return
	}
	n.pending = true
	n.mu.Unlock()

	go func() {
		<-n.clock.After(n.interval)
		n.mu.Lock()
		defer n.mu.Unlock()
		close(n.watch)
		n.watch = make(chan struct{})
		n.pending = false
		if n.waiters == 0 {
			n.missed = true
		}
	}()
}

func (n *Notifier) WaitForInterrupt(ctx context.Context) error {
	n.mu.Lock()
	if n.missed {
		n.missed = false
		n.mu.Unlock()
		return nil
	}
	watch := n.watch
	n.waiters++
	n.mu.Unlock()

	defer func() {
		n.mu.Lock()
		n.waiters--
		n.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-watch:
		return nil
	}
}
