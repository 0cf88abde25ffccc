package bus_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptime-industries/pmic-agent/pkg/bus"
)

func TestFakeReadWrite(t *testing.T) {
	f := bus.NewFake(0x6b, map[uint8]byte{0x14: 0x02})

	v, err := f.ReadRegister(0x6b, 0x14)
	require.NoError(t, err)
	assert.Equal(t, byte(0x02), v)

	require.NoError(t, f.WriteRegister(0x6b, 0x04, 0x10))
	assert.Equal(t, byte(0x10), f.Get(0x6b, 0x04))
	assert.Equal(t, []bus.Write{{Addr: 0x6b, Reg: 0x04, Val: 0x10}}, f.Writes())
	assert.Equal(t, 1, f.Reads())
}

func TestFakeUnknownAddress(t *testing.T) {
	f := bus.NewFake(0x6b, nil)

	_, err := f.ReadRegister(0x6a, 0x00)
	assert.ErrorIs(t, err, bus.ErrNoDevice)
	assert.ErrorIs(t, f.WriteRegister(0x6a, 0x00, 0x01), bus.ErrNoDevice)
}

func TestFakeLatchAndSelfClearing(t *testing.T) {
	f := bus.NewFake(0x6b, map[uint8]byte{0x0c: 0x00})
	f.Latch(0x6b, 0x0c, 0x80)
	f.SelfClearing(0x6b, 0x03, 0x40)

	v, _ := f.ReadRegister(0x6b, 0x0c)
	assert.Equal(t, byte(0x80), v)
	v, _ = f.ReadRegister(0x6b, 0x0c)
	assert.Equal(t, byte(0x00), v)

	require.NoError(t, f.WriteRegister(0x6b, 0x03, 0x5a))
	assert.Equal(t, byte(0x1a), f.Get(0x6b, 0x03))
	assert.Equal(t, byte(0x5a), f.Writes()[0].Val)
}

func TestFakeFailures(t *testing.T) {
	f := bus.NewFake(0x6b, nil)
	boom := errors.New("boom")

	f.FailReads(boom)
	_, err := f.ReadRegister(0x6b, 0x00)
	assert.ErrorIs(t, err, boom)
	f.FailReads(nil)
	_, err = f.ReadRegister(0x6b, 0x00)
	assert.NoError(t, err)

	f.FailWrites(boom)
	assert.ErrorIs(t, f.WriteRegister(0x6b, 0x00, 0x00), boom)
	assert.Empty(t, f.Writes())
}
