//go:build !tinygo

package bus

import (
	"github.com/stretchr/testify/mock"
)

// MockBus implements a mock for the register transport
type MockBus struct {
	mock.Mock
}

func (m *MockBus) ReadRegister(addr, reg uint8) (byte, error) {
	args := m.Called(addr, reg)
	return args.Get(0).(byte), args.Error(1)
}

func (m *MockBus) WriteRegister(addr, reg, val uint8) error {
	args := m.Called(addr, reg, val)
	return args.Error(0)
}
