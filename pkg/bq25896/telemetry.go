package bq25896

// ADC readings. EnableMeasurement must have been called, otherwise the ADC
// registers hold stale values.

// VbusVoltage returns VBUS in mV, 0 when no input is detected.
func (d *Device) VbusVoltage() (uint16, error) {
	b, err := d.readReg(vbusVoltageADC.Reg)
	if err != nil {
		return 0, err
	}
	if !BitSet(b, bitVbusGood) {
		return 0, nil
	}
	return vbusVoltageADC.Decode(vbusVoltageADC.Extract(b)), nil
}

// IsVbusIn reports VBUS_GD.
func (d *Device) IsVbusIn() (bool, error) {
	return d.getBit(vbusVoltageADC.Reg, bitVbusGood)
}

// SystemVoltage returns VSYS in mV.
func (d *Device) SystemVoltage() (uint16, error) {
	return d.getValue(systemVoltageADC)
}

// ChargeCurrent returns the measured charge current ICHGR in mA.
func (d *Device) ChargeCurrent() (uint16, error) {
	return d.getValue(chargeCurrentADC)
}

// TSPercentage returns the TS pin voltage in milli-percent of REGN.
func (d *Device) TSPercentage() (uint32, error) {
	code, err := d.readField(fieldTSPct)
	if err != nil {
		return 0, err
	}
	return tsPctBaseMilli + uint32(code)*tsPctStepMilli, nil
}

// ntcNormal reads the NTC condition from the fault register.
func (d *Device) ntcNormal() (bool, error) {
	fs, err := d.FaultStatus()
	if err != nil {
		return false, err
	}
	return !fs.NTC(), nil
}

// BatteryVoltage returns VBAT in mV.
//
// The chip only reports a meaningful battery voltage while the NTC circuit is
// normal. Otherwise 0 is returned together with ErrReadingUnavailable. This
// reads the fault register, which clears latched faults.
func (d *Device) BatteryVoltage() (uint16, error) {
	ok, err := d.ntcNormal()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrReadingUnavailable
	}
	return d.getValue(batteryVoltageADC)
}

// ChargeStatus returns the charger state. Like BatteryVoltage it is gated on
// the NTC circuit and returns ChargeUnknown with ErrReadingUnavailable when
// the NTC reports abnormal.
func (d *Device) ChargeStatus() (ChargeStatus, error) {
	ok, err := d.ntcNormal()
	if err != nil {
		return ChargeUnknown, err
	}
	if !ok {
		return ChargeUnknown, ErrReadingUnavailable
	}
	s, err := d.Status()
	if err != nil {
		return ChargeUnknown, err
	}
	return s.Charge, nil
}

// IsCharging reports whether the chip is in pre-charge or fast charge.
func (d *Device) IsCharging() (bool, error) {
	s, err := d.ChargeStatus()
	if err != nil {
		return false, err
	}
	return s == ChargePreCharge || s == ChargeFastCharge, nil
}

// Snapshot collects telemetry and status in one pass.
// Readings that fail are left at zero and the first error is returned.
type Snapshot struct {
	Status        Status
	Fault         FaultStatus
	Vbus_mV       uint16
	Vsys_mV       uint16
	Vbat_mV       uint16
	VbatValid     bool
	// ChargeValid is false while the NTC is abnormal, Status.Charge is then
	// ChargeUnknown
	ChargeValid   bool
	ChargeCurr_mA uint16
	TS_mPct       uint32
}

// Snapshot reads the fault register first so its latched value is captured,
// then the status and ADC registers. The battery voltage and the charge state
// are only reported while the NTC circuit is normal.
func (d *Device) Snapshot() (Snapshot, error) {
	var s Snapshot
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	fs, faultErr := d.FaultStatus()
	keep(faultErr)
	s.Fault = fs

	st, stErr := d.Status()
	keep(stErr)
	s.Status = st

	var err error
	s.Vbus_mV, err = d.VbusVoltage()
	keep(err)
	s.Vsys_mV, err = d.SystemVoltage()
	keep(err)
	s.ChargeCurr_mA, err = d.ChargeCurrent()
	keep(err)
	s.TS_mPct, err = d.TSPercentage()
	keep(err)

	ntcNormal := faultErr == nil && !fs.NTC()
	s.ChargeValid = ntcNormal && stErr == nil
	if !s.ChargeValid {
		s.Status.Charge = ChargeUnknown
	}

	if ntcNormal {
		s.Vbat_mV, err = d.getValue(batteryVoltageADC)
		keep(err)
		s.VbatValid = err == nil
	}
	return s, firstErr
}
