// Package bus provides register transports for the charger driver: I2C through
// TinyGo or periph.io, a serial I2C bridge and an in-memory fake.
package bus

import (
	"tinygo.org/x/drivers"
)

// txer is the combined write-then-read transaction shared by the TinyGo and
// periph.io I2C interfaces.
type txer interface {
	Tx(addr uint16, w, r []byte) error
}

// registers implements byte register access on top of a Tx capable bus.
type registers struct {
	tx txer
}

func (r registers) ReadRegister(addr, reg uint8) (byte, error) {
	buf := make([]byte, 1)
	if err := r.tx.Tx(uint16(addr), []byte{reg}, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (r registers) WriteRegister(addr, reg, val uint8) error {
	return r.tx.Tx(uint16(addr), []byte{reg, val}, nil)
}

// TinyGo adapts a tinygo.org/x/drivers I2C bus, e.g. machine.I2C0.
type TinyGo struct {
	registers
}

// NewTinyGo returns a register transport for bus.
func NewTinyGo(bus drivers.I2C) *TinyGo {
	return &TinyGo{registers{tx: bus}}
}
