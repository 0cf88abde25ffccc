package bq25896

// BusStatus is the detected input source type, REG0B[7:5].
type BusStatus uint8

const (
	BusNoInput BusStatus = iota
	BusUSBSDP
	BusUSBCDP
	BusUSBDCP
	BusHVDCP
	BusUnknownAdapter
	BusNonStandardAdapter
	BusOTG
	BusUnknown
)

func decodeBusStatus(code uint8) BusStatus {
	if code > uint8(BusOTG) {
		return BusUnknown
	}
	return BusStatus(code)
}

func (s BusStatus) String() string {
	switch s {
	case BusNoInput:
		return "No input"
	case BusUSBSDP:
		return "USB Host SDP"
	case BusUSBCDP:
		return "USB CDP"
	case BusUSBDCP:
		return "USB DCP"
	case BusHVDCP:
		return "HVDCP"
	case BusUnknownAdapter:
		return "Unknown Adapter"
	case BusNonStandardAdapter:
		return "Non-Standard Adapter"
	case BusOTG:
		return "OTG"
	default:
		return "Unknown"
	}
}

// ChargeStatus is the charger state, REG0B[4:3].
type ChargeStatus uint8

const (
	ChargeNotCharging ChargeStatus = iota
	ChargePreCharge
	ChargeFastCharge
	ChargeDone
	ChargeUnknown
)

func decodeChargeStatus(code uint8) ChargeStatus {
	if code > uint8(ChargeDone) {
		return ChargeUnknown
	}
	return ChargeStatus(code)
}

func (s ChargeStatus) String() string {
	switch s {
	case ChargeNotCharging:
		return "Not Charging"
	case ChargePreCharge:
		return "Pre-charge"
	case ChargeFastCharge:
		return "Fast Charging"
	case ChargeDone:
		return "Charge Termination Done"
	default:
		return "Unknown"
	}
}

// Status is one decoded snapshot of REG0B.
type Status struct {
	Raw            byte
	Bus            BusStatus
	Charge         ChargeStatus
	PowerGood      bool
	VsysRegulation bool // BAT < SYS_MIN
}

// DecodeStatus decodes a raw REG0B byte.
func DecodeStatus(b byte) Status {
	return Status{
		Raw:            b,
		Bus:            decodeBusStatus(fieldVbusStat.Extract(b)),
		Charge:         decodeChargeStatus(fieldChrgStat.Extract(b)),
		PowerGood:      BitSet(b, bitPowerGood),
		VsysRegulation: BitSet(b, bitVsysStat),
	}
}

// Charging reports whether the chip is in pre-charge or fast charge.
func (s Status) Charging() bool {
	return s.Charge == ChargePreCharge || s.Charge == ChargeFastCharge
}

// Status reads REG0B once and decodes it.
func (d *Device) Status() (Status, error) {
	b, err := d.readReg(RegStatus)
	if err != nil {
		return Status{}, err
	}
	return DecodeStatus(b), nil
}

// BusStatus returns the detected input source type.
func (d *Device) BusStatus() (BusStatus, error) {
	s, err := d.Status()
	if err != nil {
		return BusUnknown, err
	}
	return s.Bus, nil
}

// IsPowerGood reports PG_STAT.
func (d *Device) IsPowerGood() (bool, error) {
	return d.getBit(RegStatus, bitPowerGood)
}
