// Package bq25896 is a driver for the TI BQ25896 I2C controlled single cell
// switch-mode battery charger.
// Based on https://www.ti.com/lit/ds/symlink/bq25896.pdf
package bq25896

const (
	// Address is the default 7-bit I2C address of the BQ25896
	Address = 0x6B

	// ChipID is the device revision reported in REG14[1:0]
	ChipID = 0x02
	// PartNumber is the part number reported in REG14[5:3]
	PartNumber = 0x00
)

// Register addresses
const (
	Reg00 = 0x00 // EN_HIZ, EN_ILIM, IINLIM
	Reg01 = 0x01 // BHOT, BCOLD, VINDPM_OS
	Reg02 = 0x02 // CONV_START, CONV_RATE, BOOST_FREQ, ICO_EN, HVDCP_EN, MAXC_EN, FORCE_DPDM, AUTO_DPDM_EN
	Reg03 = 0x03 // BAT_LOADEN, WD_RST, OTG_CONFIG, CHG_CONFIG, SYS_MIN, MIN_VBAT_SEL
	Reg04 = 0x04 // EN_PUMPX, ICHG
	Reg05 = 0x05 // IPRECHG, ITERM
	Reg06 = 0x06 // VREG, BATLOWV, VRECHG
	Reg07 = 0x07 // EN_TERM, STAT_DIS, WATCHDOG, EN_TIMER, CHG_TIMER, JEITA_ISET
	Reg08 = 0x08 // BAT_COMP, VCLAMP, TREG
	Reg09 = 0x09 // FORCE_ICO, TMR2X_EN, BATFET_DIS, JEITA_VSET, BATFET_DLY, BATFET_RST_EN, PUMPX_UP, PUMPX_DN
	Reg0A = 0x0A // BOOSTV, PFM_OTG_DIS, BOOST_LIM
	Reg0B = 0x0B // VBUS_STAT, CHRG_STAT, PG_STAT, VSYS_STAT (read only)
	Reg0C = 0x0C // WATCHDOG_FAULT, BOOST_FAULT, CHRG_FAULT, BAT_FAULT, NTC_FAULT (read only)
	Reg0D = 0x0D // FORCE_VINDPM, VINDPM
	Reg0E = 0x0E // THERM_STAT, BATV (read only)
	Reg0F = 0x0F // SYSV (read only)
	Reg10 = 0x10 // TSPCT (read only)
	Reg11 = 0x11 // VBUS_GD, VBUSV (read only)
	Reg12 = 0x12 // ICHGR (read only)
	Reg13 = 0x13 // VDPM_STAT, IDPM_STAT, IDPM_LIM (read only)
	Reg14 = 0x14 // REG_RST, ICO_OPTIMIZED, PN, TS_PROFILE, DEV_REV

	RegStatus = Reg0B
	RegFault  = Reg0C
	RegChipID = Reg14
)

// Single bit controls
const (
	bitEnHiZ       = 7 // REG00
	bitEnILim      = 6 // REG00
	bitConvStart   = 7 // REG02
	bitConvRate    = 6 // REG02, continuous conversion
	bitWatchdogRst = 6 // REG03
	bitOTGConfig   = 5 // REG03
	bitChgConfig   = 4 // REG03
	bitEnTerm      = 7 // REG07
	bitBatfetDis   = 5 // REG09
	bitForceVINDPM = 7 // REG0D
	bitVbusGood    = 7 // REG11
	bitRegReset    = 7 // REG14
	bitPowerGood   = 2 // REG0B
	bitVsysStat    = 0 // REG0B
	bitWatchdogF   = 7 // REG0C
	bitBoostF      = 6 // REG0C
	bitBatF        = 3 // REG0C
)

// Multi bit status fields
var (
	fieldVbusStat  = Field{Reg: Reg0B, Shift: 5, Width: 3}
	fieldChrgStat  = Field{Reg: Reg0B, Shift: 3, Width: 2}
	fieldChrgFault = Field{Reg: Reg0C, Shift: 4, Width: 2}
	fieldNTCFault  = Field{Reg: Reg0C, Shift: 0, Width: 3}
	fieldWatchdog  = Field{Reg: Reg07, Shift: 4, Width: 2}
	fieldDevRev    = Field{Reg: Reg14, Shift: 0, Width: 2}
	fieldPartNum   = Field{Reg: Reg14, Shift: 3, Width: 3}
	fieldTSPct     = Field{Reg: Reg10, Shift: 0, Width: 7}
)

// Linear setpoint fields, values in mV or mA
var (
	// InputCurrentLimit (IINLIM), 100-3250 mA in 50 mA steps
	InputCurrentLimit = Field{Reg: Reg00, Shift: 0, Width: 6, Base: 100, Step: 50, Min: 100, Max: 3250}
	// SysPowerDownVoltage (SYS_MIN), 3000-3700 mV in 100 mV steps
	SysPowerDownVoltage = Field{Reg: Reg03, Shift: 1, Width: 3, Base: 3000, Step: 100, Min: 3000, Max: 3700}
	// FastChargeCurrent (ICHG), 0-5056 mA in 64 mA steps
	FastChargeCurrent = Field{Reg: Reg04, Shift: 0, Width: 7, Base: 0, Step: 64, Min: 0, Max: 5056}
	// PrechargeCurrent (IPRECHG), 64-1024 mA in 64 mA steps
	PrechargeCurrent = Field{Reg: Reg05, Shift: 4, Width: 4, Base: 64, Step: 64, Min: 64, Max: 1024}
	// TerminationCurrent (ITERM), 64-1024 mA in 64 mA steps
	TerminationCurrent = Field{Reg: Reg05, Shift: 0, Width: 4, Base: 64, Step: 64, Min: 64, Max: 1024}
	// ChargeTargetVoltage (VREG), 3840-4608 mV in 16 mV steps
	ChargeTargetVoltage = Field{Reg: Reg06, Shift: 2, Width: 6, Base: 3840, Step: 16, Min: 3840, Max: 4608}
	// BoostVoltage (BOOSTV), 4550-5510 mV in 64 mV steps
	BoostVoltage = Field{Reg: Reg0A, Shift: 4, Width: 4, Base: 4550, Step: 64, Min: 4550, Max: 5510}
	// InputVoltageLimit (VINDPM), absolute threshold 3900-15300 mV in 100 mV steps with a 2600 mV offset
	InputVoltageLimit = Field{Reg: Reg0D, Shift: 0, Width: 7, Base: 2600, Step: 100, Min: 3900, Max: 15300}
)

// ADC result fields (read only)
var (
	batteryVoltageADC = Field{Reg: Reg0E, Shift: 0, Width: 7, Base: 2304, Step: 20, Min: 2304, Max: 4844}
	systemVoltageADC  = Field{Reg: Reg0F, Shift: 0, Width: 7, Base: 2304, Step: 20, Min: 2304, Max: 4844}
	vbusVoltageADC    = Field{Reg: Reg11, Shift: 0, Width: 7, Base: 2600, Step: 100, Min: 2600, Max: 15300}
	chargeCurrentADC  = Field{Reg: Reg12, Shift: 0, Width: 7, Base: 0, Step: 50, Min: 0, Max: 6350}
)

// TS percentage of REGN: 21% + code * 0.465%, kept in milli-percent
const (
	tsPctBaseMilli = 21000
	tsPctStepMilli = 465
)

// WatchdogTimeout is the I2C watchdog timer setting in REG07[5:4]
type WatchdogTimeout uint8

const (
	WatchdogDisabled WatchdogTimeout = iota
	Watchdog40s
	Watchdog80s
	Watchdog160s
)

func (w WatchdogTimeout) String() string {
	switch w {
	case WatchdogDisabled:
		return "disabled"
	case Watchdog40s:
		return "40s"
	case Watchdog80s:
		return "80s"
	case Watchdog160s:
		return "160s"
	default:
		return "unknown"
	}
}

// ResetDefaults returns the power-on register values of the BQ25896.
func ResetDefaults() map[uint8]byte {
	return map[uint8]byte{
		Reg00: 0x48, // EN_ILIM, IINLIM 500mA
		Reg01: 0x06,
		Reg02: 0x3D,
		Reg03: 0x1A, // CHG_CONFIG, SYS_MIN 3500mV
		Reg04: 0x20, // ICHG 2048mA
		Reg05: 0x11, // IPRECHG 128mA, ITERM 128mA
		Reg06: 0x5E, // VREG 4208mV, BATLOWV
		Reg07: 0x9D, // EN_TERM, WATCHDOG 40s, EN_TIMER, CHG_TIMER 12h, JEITA_ISET
		Reg08: 0x03,
		Reg09: 0x44,
		Reg0A: 0x93, // BOOSTV 5126mV
		Reg0B: 0x00,
		Reg0C: 0x00,
		Reg0D: 0x12,
		Reg0E: 0x00,
		Reg0F: 0x00,
		Reg10: 0x00,
		Reg11: 0x00,
		Reg12: 0x00,
		Reg13: 0x00,
		Reg14: 0x06, // PN 000, TS_PROFILE, DEV_REV 10
	}
}
