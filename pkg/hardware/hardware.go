package hardware

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"hsc-firmware/pkg/globals"
)

// Board owns the status LED output and the recovery button input. A nil
// Board is valid and inert, so the firmware keeps running on hardware
// without these pins wired.
type Board struct {
	led    gpio.PinIO
	button gpio.PinIO
	ledOn  bool
}

// Init registers the GPIO host drivers and requests both pins
func Init() (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GPIO host: %w", err)
	}

	led := gpioreg.ByName(globals.LEDPinName)
	if led == nil {
		return nil, fmt.Errorf("LED pin %s not found", globals.LEDPinName)
	}
	if err := led.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("failed to configure LED pin: %w", err)
	}

	button := gpioreg.ByName(globals.ButtonPinName)
	if button == nil {
		return nil, fmt.Errorf("button pin %s not found", globals.ButtonPinName)
	}
	if err := button.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to configure button pin: %w", err)
	}

	log.Printf("GPIO initialized (led=%s, button=%s)", globals.LEDPinName, globals.ButtonPinName)

	return &Board{led: led, button: button}, nil
}

// ButtonPressed samples the recovery button. The input is pulled up, so a
// pressed button reads low.
func (b *Board) ButtonPressed() bool {
	if b == nil {
		return false
	}
	return b.button.Read() == gpio.Low
}

// SetLED drives the status LED
func (b *Board) SetLED(on bool) {
	if b == nil {
		return
	}
	b.ledOn = on
	level := gpio.Low
	if on {
		level = gpio.High
	}
	b.led.Out(level)
}

// ToggleLED inverts the status LED
func (b *Board) ToggleLED() {
	if b == nil {
		return
	}
	b.SetLED(!b.ledOn)
}
