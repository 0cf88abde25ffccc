//go:build tinygo

// i2cbridge is the firmware of a small RP2040 board relaying charger register
// access from a serial line to its I2C bus. It lets pmicd manage a charger on
// hosts without a usable I2C controller.
package main

import (
	"context"
	"machine"
	"time"

	"github.com/uptime-industries/pmic-agent/pkg/bridge"
	"github.com/uptime-industries/pmic-agent/pkg/bus"
	"golang.org/x/sync/errgroup"
)

// intPin is wired to the open-drain INT output of the charger
const intPin = machine.GP14

func main() {
	var srv *bridge.Server
	var err error

	// Configure status LED
	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	machine.LED.Set(false)

	// Configure UART towards the host
	err = machine.UART0.Configure(machine.UARTConfig{TX: machine.UART0_TX_PIN, RX: machine.UART0_RX_PIN})
	if err != nil {
		println("[!] Failed to initialize UART0:", err.Error())
		goto errprint
	}
	machine.UART0.SetBaudRate(bridge.Baudrate)

	// Charger bus
	err = machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	if err != nil {
		println("[!] Failed to initialize I2C0:", err.Error())
		goto errprint
	}

	// INT is active low, pulsed for 256us
	intPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	println("[+] IO initialized, starting bridge...")

	srv = bridge.NewServer(machine.UART0, bus.NewTinyGo(machine.I2C0))
	err = run(context.Background(), srv)

	// Blinking -> something went wrong
errprint:
	ledState := false
	for {
		ledState = !ledState
		machine.LED.Set(ledState)
		// Repeat error message
		println("[FATAL] bridge exited with error:", err)
		time.Sleep(500 * time.Millisecond)
	}
}

func run(parentCtx context.Context, srv *bridge.Server) error {
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	group := errgroup.Group{}

	println("Starting register command loop")
	group.Go(func() error {
		defer cancel()
		return srv.Serve(ctx)
	})

	println("Starting charger interrupt handler")
	interrupted := false
	err := intPin.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		interrupted = true
	})
	if err != nil {
		return err
	}

	group.Go(func() error {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			time.Sleep(10 * time.Millisecond)
			if interrupted {
				interrupted = false
				if err := srv.NotifyInterrupt(ctx); err != nil {
					println(err.Error())
				}
			}
		}
	})

	return group.Wait()
}
