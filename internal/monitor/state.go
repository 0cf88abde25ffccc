package monitor

import (
	"context"
	"sync"

	"github.com/uptime-industries/pmic-agent/pkg/bq25896"
)

// faultState tracks the faults seen in the last fault register read.
type faultState struct {
	mutex sync.Mutex

	last      bq25896.FaultStatus
	active    bool
	clearChan chan struct{}
}

func newFaultState() *faultState {
	s := &faultState{
		clearChan: make(chan struct{}),
	}
	s.Update(0)
	return s
}

// Update records a new fault snapshot and wakes WaitForFaultClear callers
// once no fault is left.
func (s *faultState) Update(fs bq25896.FaultStatus) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	wasActive := s.active
	s.last = fs
	s.active = fs.Primary() != bq25896.FaultNone

	if wasActive && !s.active {
		close(s.clearChan)
		s.clearChan = make(chan struct{})
	}

	for _, fault := range bq25896.FaultPriority {
		if fs.Has(fault) {
			faultActive.WithLabelValues(fault.String()).Set(1)
		} else {
			faultActive.WithLabelValues(fault.String()).Set(0)
		}
	}
}

func (s *faultState) Active() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.active
}

func (s *faultState) Last() bq25896.FaultStatus {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.last
}

// WaitForFaultClear returns immediately without an active fault.
func (s *faultState) WaitForFaultClear(ctx context.Context) error {
	s.mutex.Lock()
	if !s.active {
		s.mutex.Unlock()
		return nil
	}
	clearChan := s.clearChan
	s.mutex.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clearChan:
		return nil
	}
}
