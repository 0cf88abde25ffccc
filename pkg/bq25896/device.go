package bq25896

// Bus is the register transport used by the driver. Any I2C, serial bridge or
// simulated implementation satisfying it can be used.
type Bus interface {
	// ReadRegister reads one byte from register reg of the device at addr
	ReadRegister(addr, reg uint8) (byte, error)
	// WriteRegister writes one byte to register reg of the device at addr
	WriteRegister(addr, reg, val uint8) error
}

// Config of a Device.
type Config struct {
	// Address is the 7-bit I2C address, defaults to Address
	Address uint8
}

// Device is a handle to one physical BQ25896.
//
// A Device is not safe for concurrent use: read-modify-write sequences are
// not atomic, callers must serialize access.
type Device struct {
	bus    Bus
	addr   uint8
	chipID uint8
	ready  bool
}

// New returns a handle for the chip at cfg.Address on bus. No bus traffic is
// issued until Init is called.
func New(bus Bus, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = Address
	}
	return &Device{bus: bus, addr: addr}
}

// Addr returns the 7-bit I2C address of the device.
func (d *Device) Addr() uint8 {
	return d.addr
}

// Init reads the chip ID register and verifies the device is a BQ25896. On a
// mismatch no further register access is performed.
func (d *Device) Init() error {
	d.ready = false
	b, err := d.readReg(RegChipID)
	if err != nil {
		return err
	}
	id := fieldDevRev.Extract(b)
	if id != ChipID {
		return &IdentityError{Got: id, Want: ChipID}
	}
	d.chipID = id
	d.ready = true
	return nil
}

// ChipID returns the chip ID cached by Init.
func (d *Device) ChipID() (uint8, error) {
	if !d.ready {
		return 0, ErrNotInitialized
	}
	return d.chipID, nil
}

// PartNumber returns REG14[5:3], 0b000 for the BQ25896.
func (d *Device) PartNumber() (uint8, error) {
	b, err := d.readReg(RegChipID)
	if err != nil {
		return 0, err
	}
	return fieldPartNum.Extract(b), nil
}

func (d *Device) readReg(reg uint8) (byte, error) {
	b, err := d.bus.ReadRegister(d.addr, reg)
	if err != nil {
		return 0, &TransportError{Op: "read", Reg: reg, Err: err}
	}
	return b, nil
}

func (d *Device) writeReg(reg, val uint8) error {
	if err := d.bus.WriteRegister(d.addr, reg, val); err != nil {
		return &TransportError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}

// updateReg updates a register with the given set and clear masks
func (d *Device) updateReg(reg, setMask, clearMask uint8) error {
	cur, err := d.readReg(reg)
	if err != nil {
		return err
	}
	return d.writeReg(reg, (cur|setMask)&^clearMask)
}

func (d *Device) setBit(reg, bit uint8, enabled bool) error {
	if enabled {
		return d.updateReg(reg, 1<<bit, 0)
	}
	return d.updateReg(reg, 0, 1<<bit)
}

func (d *Device) getBit(reg, bit uint8) (bool, error) {
	b, err := d.readReg(reg)
	if err != nil {
		return false, err
	}
	return BitSet(b, bit), nil
}

// readField reads the register holding f and returns the field code.
func (d *Device) readField(f Field) (uint8, error) {
	b, err := d.readReg(f.Reg)
	if err != nil {
		return 0, err
	}
	return f.Extract(b), nil
}

// writeField replaces the bits of f with code, preserving the rest of the register.
func (d *Device) writeField(f Field, code uint8) error {
	cur, err := d.readReg(f.Reg)
	if err != nil {
		return err
	}
	return d.writeReg(f.Reg, f.Pack(cur, code))
}

// setValue clamps and quantizes v, writes it and returns the applied value.
func (d *Device) setValue(f Field, v uint16) (uint16, error) {
	code := f.Encode(v)
	if err := d.writeField(f, code); err != nil {
		return 0, err
	}
	return f.Decode(code), nil
}

func (d *Device) getValue(f Field) (uint16, error) {
	code, err := d.readField(f)
	if err != nil {
		return 0, err
	}
	return f.Decode(code), nil
}
