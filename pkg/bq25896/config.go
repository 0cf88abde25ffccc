package bq25896

// Setpoints. Every setter clamps the requested value to the range of the
// field, rounds it down to the field step and returns the value that took
// effect. Getters always read the register.

// SetInputCurrentLimit sets IINLIM in mA, 100-3250 mA, 50 mA steps.
func (d *Device) SetInputCurrentLimit(mA uint16) (uint16, error) {
	return d.setValue(InputCurrentLimit, mA)
}

// InputCurrentLimit returns IINLIM in mA.
func (d *Device) InputCurrentLimit() (uint16, error) {
	return d.getValue(InputCurrentLimit)
}

// SetSysPowerDownVoltage sets the minimum system voltage (SYS_MIN) in mV, 3000-3700 mV, 100 mV steps.
func (d *Device) SetSysPowerDownVoltage(mV uint16) (uint16, error) {
	return d.setValue(SysPowerDownVoltage, mV)
}

// SysPowerDownVoltage returns SYS_MIN in mV.
func (d *Device) SysPowerDownVoltage() (uint16, error) {
	return d.getValue(SysPowerDownVoltage)
}

// SetChargeTargetVoltage sets VREG in mV, 3840-4608 mV, 16 mV steps.
func (d *Device) SetChargeTargetVoltage(mV uint16) (uint16, error) {
	return d.setValue(ChargeTargetVoltage, mV)
}

// ChargeTargetVoltage returns VREG in mV.
func (d *Device) ChargeTargetVoltage() (uint16, error) {
	return d.getValue(ChargeTargetVoltage)
}

// SetPrechargeCurrent sets IPRECHG in mA, 64-1024 mA, 64 mA steps.
func (d *Device) SetPrechargeCurrent(mA uint16) (uint16, error) {
	return d.setValue(PrechargeCurrent, mA)
}

// PrechargeCurrent returns IPRECHG in mA.
func (d *Device) PrechargeCurrent() (uint16, error) {
	return d.getValue(PrechargeCurrent)
}

// SetChargerConstantCurrent sets the fast charge current ICHG in mA, 0-5056 mA,
// 64 mA steps. With the ILIM pin enabled the chip also follows the pin limit.
func (d *Device) SetChargerConstantCurrent(mA uint16) (uint16, error) {
	return d.setValue(FastChargeCurrent, mA)
}

// ChargerConstantCurrent returns ICHG in mA.
func (d *Device) ChargerConstantCurrent() (uint16, error) {
	return d.getValue(FastChargeCurrent)
}

// SetTerminationCurrent sets ITERM in mA, 64-1024 mA, 64 mA steps.
func (d *Device) SetTerminationCurrent(mA uint16) (uint16, error) {
	return d.setValue(TerminationCurrent, mA)
}

// TerminationCurrent returns ITERM in mA.
func (d *Device) TerminationCurrent() (uint16, error) {
	return d.getValue(TerminationCurrent)
}

// SetBoostVoltage sets the OTG boost voltage in mV, 4550-5510 mV, 64 mV steps.
func (d *Device) SetBoostVoltage(mV uint16) (uint16, error) {
	return d.setValue(BoostVoltage, mV)
}

// BoostVoltage returns BOOSTV in mV.
func (d *Device) BoostVoltage() (uint16, error) {
	return d.getValue(BoostVoltage)
}

// SetInputVoltageLimit sets the absolute VINDPM threshold in mV, 3900-15300 mV.
// FORCE_VINDPM is set so the chip uses the written threshold.
func (d *Device) SetInputVoltageLimit(mV uint16) (uint16, error) {
	code := InputVoltageLimit.Encode(mV)
	cur, err := d.readReg(InputVoltageLimit.Reg)
	if err != nil {
		return 0, err
	}
	val := SetBit(InputVoltageLimit.Pack(cur, code), bitForceVINDPM, true)
	if err := d.writeReg(InputVoltageLimit.Reg, val); err != nil {
		return 0, err
	}
	return InputVoltageLimit.Decode(code), nil
}

// InputVoltageLimit returns VINDPM in mV.
func (d *Device) InputVoltageLimit() (uint16, error) {
	return d.getValue(InputVoltageLimit)
}

// Single bit controls, all read-modify-write.

// EnableMeasurement starts continuous ADC conversion (1s period). Voltage and
// current readings require it.
func (d *Device) EnableMeasurement() error {
	return d.setBit(Reg02, bitConvRate, true)
}

// DisableMeasurement stops continuous ADC conversion.
func (d *Device) DisableMeasurement() error {
	return d.setBit(Reg02, bitConvRate, false)
}

// StartConversion triggers a single ADC conversion. CONV_START clears itself
// once the conversion is done.
func (d *Device) StartConversion() error {
	return d.setBit(Reg02, bitConvStart, true)
}

// MeasurementEnabled reports whether continuous conversion is on.
func (d *Device) MeasurementEnabled() (bool, error) {
	return d.getBit(Reg02, bitConvRate)
}

// EnableCharging sets CHG_CONFIG. Leave charging off without a battery.
func (d *Device) EnableCharging() error {
	return d.setBit(Reg03, bitChgConfig, true)
}

// DisableCharging clears CHG_CONFIG.
func (d *Device) DisableCharging() error {
	return d.setBit(Reg03, bitChgConfig, false)
}

// ChargingEnabled reports CHG_CONFIG.
func (d *Device) ChargingEnabled() (bool, error) {
	return d.getBit(Reg03, bitChgConfig)
}

// EnableCurrentLimitPin makes the input current limit follow the ILIM pin.
func (d *Device) EnableCurrentLimitPin() error {
	return d.setBit(Reg00, bitEnILim, true)
}

// DisableCurrentLimitPin makes IINLIM the only input current limit.
func (d *Device) DisableCurrentLimitPin() error {
	return d.setBit(Reg00, bitEnILim, false)
}

// EnableHiZ disconnects the input (high impedance mode).
func (d *Device) EnableHiZ() error {
	return d.setBit(Reg00, bitEnHiZ, true)
}

// DisableHiZ reconnects the input.
func (d *Device) DisableHiZ() error {
	return d.setBit(Reg00, bitEnHiZ, false)
}

// EnableOTG turns on the boost converter.
func (d *Device) EnableOTG() error {
	return d.setBit(Reg03, bitOTGConfig, true)
}

// DisableOTG turns off the boost converter.
func (d *Device) DisableOTG() error {
	return d.setBit(Reg03, bitOTGConfig, false)
}

// EnableTermination enables charge termination at ITERM.
func (d *Device) EnableTermination() error {
	return d.setBit(Reg07, bitEnTerm, true)
}

// DisableTermination disables charge termination.
func (d *Device) DisableTermination() error {
	return d.setBit(Reg07, bitEnTerm, false)
}

// FeedWatchdog resets the I2C watchdog timer. WD_RST clears itself.
func (d *Device) FeedWatchdog() error {
	return d.setBit(Reg03, bitWatchdogRst, true)
}

// SetWatchdogTimeout configures the I2C watchdog. On expiry the chip resets
// its charge parameters to the defaults.
func (d *Device) SetWatchdogTimeout(t WatchdogTimeout) error {
	return d.writeField(fieldWatchdog, uint8(t))
}

// WatchdogTimeout returns the configured watchdog timeout.
func (d *Device) WatchdogTimeout() (WatchdogTimeout, error) {
	code, err := d.readField(fieldWatchdog)
	return WatchdogTimeout(code), err
}

// ShippingMode turns off the BATFET, disconnecting the battery from the system.
func (d *Device) ShippingMode() error {
	return d.setBit(Reg09, bitBatfetDis, true)
}

// Reset resets all registers to their defaults. REG_RST clears itself.
func (d *Device) Reset() error {
	return d.setBit(Reg14, bitRegReset, true)
}
