package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	vbusVoltage = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pmic",
		Name:      "vbus_millivolts",
		Help:      "Input voltage in mV, 0 without input",
	})
	vsysVoltage = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pmic",
		Name:      "vsys_millivolts",
		Help:      "System voltage in mV",
	})
	vbatVoltage = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pmic",
		Name:      "vbat_millivolts",
		Help:      "Battery voltage in mV, only updated while the NTC is normal",
	})
	chargeCurrent = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pmic",
		Name:      "charge_current_milliamps",
		Help:      "Measured charge current in mA",
	})
	chargeCurrentSetpoint = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pmic",
		Name:      "charge_current_setpoint_milliamps",
		Help:      "Fast charge current applied to the charger in mA",
	})
	tsPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pmic",
		Name:      "ts_percent",
		Help:      "TS pin voltage in percent of REGN",
	})
	powerGood = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pmic",
		Name:      "power_good",
		Help:      "Power good status of the input",
	})
	chargeStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pmic",
		Name:      "charge_status",
		Help:      "Charger state (label values are the charge states)",
	}, []string{"status"})
	busStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pmic",
		Name:      "bus_status",
		Help:      "Detected input source",
	}, []string{"type"})
	faultActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pmic",
		Name:      "fault_active",
		Help:      "Faults reported by the last fault register read",
	}, []string{"fault"})
	faultCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pmic",
		Name:      "faults_count",
		Help:      "Number of interrupts per primary cause",
	}, []string{"fault"})
	interruptCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pmic",
		Name:      "interrupts_count",
		Help:      "Number of charger interrupts handled",
	})
	transportErrorCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pmic",
		Name:      "transport_errors_count",
		Help:      "Number of failed register transactions",
	})
)
