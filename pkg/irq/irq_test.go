package irq_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/uptime-industries/pmic-agent/pkg/irq"
	"github.com/uptime-industries/pmic-agent/pkg/util"
)

func TestNotifierFoldsBursts(t *testing.T) {
	clk := &util.MockClock{}
	fire := make(chan time.Time)
	clk.On("After", 10*time.Millisecond).Return(fire).Once()

	n := irq.NewNotifier(clk, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	woken := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() { woken <- n.WaitForInterrupt(ctx) }()
	}
	// let both waiters pick up the current watch channel
	time.Sleep(20 * time.Millisecond)

	n.Edge()
	n.Edge()
	n.Edge()
	fire <- time.Now()

	assert.NoError(t, <-woken)
	assert.NoError(t, <-woken)
	clk.AssertNumberOfCalls(t, "After", 1)
}

func TestNotifierWaitCanceled(t *testing.T) {
	n := irq.NewNotifier(nil, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.WaitForInterrupt(ctx), context.Canceled)
}

func TestSimulated(t *testing.T) {
	clk := &util.MockClock{}
	fire := make(chan time.Time, 1)
	fire <- time.Now()
	clk.On("After", mock.Anything).Return(fire)

	src := &irq.Simulated{Clock: clk, Interval: time.Minute}
	assert.NoError(t, src.WaitForInterrupt(context.Background()))
	clk.AssertCalled(t, "After", time.Minute)
}

func TestNotifierKeepsEdgeWithoutWaiter(t *testing.T) {
	clk := &util.MockClock{}
	fire := make(chan time.Time)
	clk.On("After", 10*time.Millisecond).Return(fire)

	n := irq.NewNotifier(clk, 10*time.Millisecond)

	// edge while the handler is busy elsewhere
	n.Edge()
	fire <- time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, n.WaitForInterrupt(ctx))

	// delivered once only
	short, cancelShort := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelShort()
	assert.ErrorIs(t, n.WaitForInterrupt(short), context.DeadlineExceeded)
}
