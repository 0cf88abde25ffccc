package bus

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoDevice is returned by Fake for addresses without a registered device.
var ErrNoDevice = errors.New("no device at address")

// Write records one register write seen by Fake.
type Write struct {
	Addr uint8
	Reg  uint8
	Val  uint8
}

// Fake is an in-memory register file. It is used as the simulated transport
// and in tests.
type Fake struct {
	mu       sync.Mutex
	regs     map[uint8]*[256]byte
	writes   []Write
	reads    int
	readErr  error
	writeErr error
	// latched values returned by the next read of a register, then dropped
	latched map[uint8]map[uint8]byte
	// bits that the chip clears right after they were written
	selfClearing map[uint8]map[uint8]byte
}

// NewFake returns a Fake with one device at addr, seeded with regs.
func NewFake(addr uint8, regs map[uint8]byte) *Fake {
	f := &Fake{
		regs:         make(map[uint8]*[256]byte),
		latched:      make(map[uint8]map[uint8]byte),
		selfClearing: make(map[uint8]map[uint8]byte),
	}
	f.AddDevice(addr, regs)
	return f
}

// AddDevice adds a device at addr, seeded with regs.
func (f *Fake) AddDevice(addr uint8, regs map[uint8]byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file := &[256]byte{}
	for reg, val := range regs {
		file[reg] = val
	}
	f.regs[addr] = file
}

// SelfClearing marks bits of a register that read back as 0 after a write.
func (f *Fake) SelfClearing(addr, reg, mask uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selfClearing[addr] == nil {
		f.selfClearing[addr] = make(map[uint8]byte)
	}
	f.selfClearing[addr][reg] |= mask
}

// Latch makes the next read of reg return val once before the stored value.
func (f *Fake) Latch(addr, reg, val uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latched[addr] == nil {
		f.latched[addr] = make(map[uint8]byte)
	}
	f.latched[addr][reg] = val
}

// FailReads makes every following read return err, nil restores reads.
func (f *Fake) FailReads(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

// FailWrites makes every following write return err, nil restores writes.
func (f *Fake) FailWrites(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeErr = err
}

// Set stores val without recording a write.
func (f *Fake) Set(addr, reg, val uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if file, ok := f.regs[addr]; ok {
		file[reg] = val
	}
}

// Get returns the stored value without counting a read.
func (f *Fake) Get(addr, reg uint8) byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if file, ok := f.regs[addr]; ok {
		return file[reg]
	}
	return 0
}

// Writes returns a copy of all recorded writes.
func (f *Fake) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Write(nil), f.writes...)
}

// Reads returns the number of successful reads.
func (f *Fake) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// ReadRegister implements bq25896.Bus.
func (f *Fake) ReadRegister(addr, reg uint8) (byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return 0, f.readErr
	}
	file, ok := f.regs[addr]
	if !ok {
		return 0, fmt.Errorf("read 0x%02x: %w", addr, ErrNoDevice)
	}
	f.reads++
	if l, ok := f.latched[addr][reg]; ok {
		delete(f.latched[addr], reg)
		return l, nil
	}
	return file[reg], nil
}

// WriteRegister implements bq25896.Bus.
func (f *Fake) WriteRegister(addr, reg, val uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	file, ok := f.regs[addr]
	if !ok {
		return fmt.Errorf("write 0x%02x: %w", addr, ErrNoDevice)
	}
	f.writes = append(f.writes, Write{Addr: addr, Reg: reg, Val: val})
	file[reg] = val &^ f.selfClearing[addr][reg]
	return nil
}
