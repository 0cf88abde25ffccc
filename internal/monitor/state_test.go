package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptime-industries/pmic-agent/pkg/bq25896"
)

func TestFaultState_Update(t *testing.T) {
	t.Parallel()

	state := newFaultState()
	assert.False(t, state.Active())

	state.Update(bq25896.FaultStatus(0x18))
	assert.True(t, state.Active())
	assert.Equal(t, bq25896.FaultCharge, state.Last().Primary())

	state.Update(0)
	assert.False(t, state.Active())
	assert.Equal(t, bq25896.FaultNone, state.Last().Primary())
}

func TestFaultState_WaitForFaultClear_NoFault(t *testing.T) {
	t.Parallel()

	state := newFaultState()
	assert.NoError(t, state.WaitForFaultClear(context.Background()))
}

func TestFaultState_WaitForFaultClear_NoTimeout(t *testing.T) {
	t.Parallel()

	state := newFaultState()

	t.Log("Setting watchdog fault")
	state.Update(bq25896.FaultStatus(0x80))
	assert.True(t, state.Active())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		// Block until the fault is cleared
		t.Log("Waiting for fault clear")
		err := state.WaitForFaultClear(context.Background())
		assert.NoError(t, err)
	}()

	// Give goroutine time to start
	time.Sleep(50 * time.Millisecond)

	// a second fault keeps the waiter blocked
	state.Update(bq25896.FaultStatus(0x40))
	state.Update(0)
	t.Log("Fault cleared")

	wg.Wait()
}

func TestFaultState_WaitForFaultClear_Timeout(t *testing.T) {
	t.Parallel()

	state := newFaultState()

	t.Log("Setting NTC fault")
	state.Update(bq25896.FaultStatus(0x02))
	assert.True(t, state.Active())

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		t.Log("Waiting for fault clear")
		err := state.WaitForFaultClear(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}()

	// Give goroutine time to start.
	time.Sleep(50 * time.Millisecond)

	state.Update(0)
	t.Log("Fault cleared")

	wg.Wait()
}
