package bq25896

// Field describes a contiguous bit range inside a register together with the
// linear mapping between its code and a physical value:
//
//	value = Base + code*Step
//
// Base is the value of code 0, Min/Max bound the values the chip accepts.
type Field struct {
	Reg   uint8
	Shift uint8
	Width uint8

	Base uint16
	Step uint16
	Min  uint16
	Max  uint16
}

// mask returns the unshifted mask of the field.
func (f Field) mask() uint8 {
	return uint8((uint16(1) << f.Width) - 1)
}

// MaxCode is the largest code representable in the field.
func (f Field) MaxCode() uint8 {
	return f.mask()
}

// Clamp limits v to [Min, Max].
func (f Field) Clamp(v uint16) uint16 {
	if v < f.Min {
		return f.Min
	}
	if v > f.Max {
		return f.Max
	}
	return v
}

// Encode converts a physical value into a field code. Out of range values are
// clamped and the result is rounded down to the step, so the encoded value
// never exceeds the requested one.
func (f Field) Encode(v uint16) uint8 {
	if f.Step == 0 {
		return 0
	}
	v = f.Clamp(v)
	if v < f.Base {
		return 0
	}
	code := uint32(v-f.Base) / uint32(f.Step)
	if code > uint32(f.MaxCode()) {
		return f.MaxCode()
	}
	return uint8(code)
}

// Decode converts a field code back into the physical value.
func (f Field) Decode(code uint8) uint16 {
	return f.Base + uint16(code&f.mask())*f.Step
}

// Quantize returns the value that actually takes effect when v is written.
func (f Field) Quantize(v uint16) uint16 {
	return f.Decode(f.Encode(v))
}

// Extract returns the field code contained in a raw register byte.
func (f Field) Extract(b byte) uint8 {
	return (b >> f.Shift) & f.mask()
}

// Pack places code into its bit range of b, leaving all other bits untouched.
func (f Field) Pack(b byte, code uint8) byte {
	m := f.mask() << f.Shift
	return (b &^ m) | ((code << f.Shift) & m)
}

// SetBit sets or clears a single bit of b.
func SetBit(b byte, bit uint8, enabled bool) byte {
	if enabled {
		return b | (1 << bit)
	}
	return b &^ (1 << bit)
}

// BitSet reports whether bit is set in b.
func BitSet(b byte, bit uint8) bool {
	return b&(1<<bit) != 0
}
