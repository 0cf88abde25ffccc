package bq25896

// Fault identifies one fault source of REG0C.
type Fault uint8

const (
	FaultNone Fault = iota
	FaultWatchdog
	FaultBoost
	FaultCharge
	FaultBattery
	FaultNTC
)

func (f Fault) String() string {
	switch f {
	case FaultWatchdog:
		return "Watchdog Fault"
	case FaultBoost:
		return "Boost Fault"
	case FaultCharge:
		return "Charge Fault"
	case FaultBattery:
		return "Battery Fault"
	case FaultNTC:
		return "NTC Fault"
	default:
		return "Battery remove"
	}
}

// FaultPriority is the order in which simultaneous faults are reported.
// Primary returns the first asserted entry, FaultNone if none is.
var FaultPriority = [...]Fault{
	FaultWatchdog,
	FaultBoost,
	FaultCharge,
	FaultBattery,
	FaultNTC,
}

// ChargeFault is the detail of CHRG_FAULT, REG0C[5:4].
type ChargeFault uint8

const (
	ChargeFaultNormal ChargeFault = iota
	ChargeFaultInput              // input OVP or VBAT < VBUS < 3.8V
	ChargeFaultThermalShutdown
	ChargeFaultSafetyTimer
)

func (c ChargeFault) String() string {
	switch c {
	case ChargeFaultNormal:
		return "Normal"
	case ChargeFaultInput:
		return "Input Fault"
	case ChargeFaultThermalShutdown:
		return "Thermal Shutdown"
	case ChargeFaultSafetyTimer:
		return "Charge Safety Timer Expiration"
	default:
		return "Unknown"
	}
}

// NTCStatus is the TS pin condition, REG0C[2:0].
type NTCStatus uint8

const (
	NTCNormal  NTCStatus = 0b000
	NTCWarm    NTCStatus = 0b010
	NTCCool    NTCStatus = 0b011
	NTCCold    NTCStatus = 0b101
	NTCHot     NTCStatus = 0b110
	NTCUnknown NTCStatus = 0xFF
)

// NTCBand is one entry of the NTC lookup table.
type NTCBand struct {
	Status NTCStatus
	Name   string
	// Percent is the TS threshold of the band in percent of REGN.
	Percent uint8
}

// ntcBands maps the NTC_FAULT code to its band. Codes not listed are unknown.
var ntcBands = map[uint8]NTCBand{
	uint8(NTCNormal): {Status: NTCNormal, Name: "Normal", Percent: 0},
	uint8(NTCWarm):   {Status: NTCWarm, Name: "Warm", Percent: 45},
	uint8(NTCCool):   {Status: NTCCool, Name: "Cool", Percent: 68},
	uint8(NTCCold):   {Status: NTCCold, Name: "Cold", Percent: 74},
	uint8(NTCHot):    {Status: NTCHot, Name: "Hot", Percent: 34},
}

var ntcUnknownBand = NTCBand{Status: NTCUnknown, Name: "Unknown", Percent: 0}

// LookupNTCBand returns the band of a raw NTC_FAULT code.
func LookupNTCBand(code uint8) NTCBand {
	if band, ok := ntcBands[code&fieldNTCFault.mask()]; ok {
		return band
	}
	return ntcUnknownBand
}

func (s NTCStatus) String() string {
	if s == NTCUnknown {
		return ntcUnknownBand.Name
	}
	return LookupNTCBand(uint8(s)).Name
}

// FaultStatus is a snapshot of REG0C. All predicates evaluate the same
// register read; a new FaultStatus must be read to observe new faults.
type FaultStatus byte

// DecodeFaultStatus wraps a raw REG0C byte.
func DecodeFaultStatus(b byte) FaultStatus {
	return FaultStatus(b)
}

// FaultStatus reads REG0C once. The chip latches faults until this register
// is read.
func (d *Device) FaultStatus() (FaultStatus, error) {
	b, err := d.readReg(RegFault)
	if err != nil {
		return 0, err
	}
	return FaultStatus(b), nil
}

func (f FaultStatus) Watchdog() bool { return BitSet(byte(f), bitWatchdogF) }
func (f FaultStatus) Boost() bool    { return BitSet(byte(f), bitBoostF) }
func (f FaultStatus) Charge() bool   { return fieldChrgFault.Extract(byte(f)) != 0 }
func (f FaultStatus) Battery() bool  { return BitSet(byte(f), bitBatF) }
func (f FaultStatus) NTC() bool      { return fieldNTCFault.Extract(byte(f)) != 0 }

// Has reports whether the given fault is asserted in the snapshot.
func (f FaultStatus) Has(fault Fault) bool {
	switch fault {
	case FaultWatchdog:
		return f.Watchdog()
	case FaultBoost:
		return f.Boost()
	case FaultCharge:
		return f.Charge()
	case FaultBattery:
		return f.Battery()
	case FaultNTC:
		return f.NTC()
	default:
		return false
	}
}

// Primary returns the highest priority asserted fault according to FaultPriority.
func (f FaultStatus) Primary() Fault {
	for _, fault := range FaultPriority {
		if f.Has(fault) {
			return fault
		}
	}
	return FaultNone
}

// Faults returns all asserted faults in priority order.
func (f FaultStatus) Faults() []Fault {
	var out []Fault
	for _, fault := range FaultPriority {
		if f.Has(fault) {
			out = append(out, fault)
		}
	}
	return out
}

// ChargeFault returns the CHRG_FAULT detail.
func (f FaultStatus) ChargeFault() ChargeFault {
	return ChargeFault(fieldChrgFault.Extract(byte(f)))
}

// NTCBand returns the NTC lookup table entry of the snapshot.
func (f FaultStatus) NTCBand() NTCBand {
	return LookupNTCBand(fieldNTCFault.Extract(byte(f)))
}

// NTCStatus returns the decoded TS condition.
func (f FaultStatus) NTCStatus() NTCStatus {
	return f.NTCBand().Status
}

// NTCStatusString returns the name of the TS condition.
func (f FaultStatus) NTCStatusString() string {
	return f.NTCBand().Name
}

// NTCPercentage returns the TS threshold percentage of the current band.
func (f FaultStatus) NTCPercentage() uint8 {
	return f.NTCBand().Percent
}
