package core

import (
	"log"
	"time"

	"hsc-firmware/pkg/globals"
)

// tickButton samples the recovery button once per loop pass. Holding it for
// the full threshold overwrites the stored WiFi password with the recovery
// value and schedules a reboot. The trigger is one-shot per hold: the guard
// only clears when the button is released.
func (c *Core) tickButton(now time.Time) {
	if !c.deps.Hardware.ButtonPressed() {
		c.buttonHeld = false
		c.resetFired = false
		return
	}

	if !c.buttonHeld {
		c.buttonHeld = true
		c.pressStart = now
		return
	}

	if c.resetFired || now.Sub(c.pressStart) < holdThreshold {
		return
	}
	c.resetFired = true

	log.Printf("Recovery button held, resetting WiFi password")
	next := c.cfg
	next.WifiPassword = globals.RecoveryWifiPassword
	if err := c.deps.Store.Save(next); err != nil {
		log.Printf("Failed to persist recovery password: %v", err)
	} else {
		c.cfg = next
	}

	// Acknowledgment flash runs before the reboot fires
	c.flashRemaining = ackFlashCount
	c.lastFlash = time.Time{}
	c.scheduleRebootLocked(ackFlashCount*ackFlashInterval + rebootDelay)
}

// tickIndicator arbitrates the single status LED. Priority per pass:
// acknowledgment flash, then locate blink, otherwise off. With a reboot
// pending and no flash left, the LED is left alone.
func (c *Core) tickIndicator(now time.Time) {
	if c.flashRemaining > 0 {
		if c.lastFlash.IsZero() || now.Sub(c.lastFlash) >= ackFlashInterval {
			c.deps.Hardware.ToggleLED()
			c.flashRemaining--
			c.lastFlash = now
		}
		return
	}

	if c.rebootPending {
		return
	}

	if c.locate {
		if now.Sub(c.lastBlink) >= blinkPeriod {
			c.deps.Hardware.ToggleLED()
			c.lastBlink = now
		}
		return
	}

	c.deps.Hardware.SetLED(false)
}

// tickReboot services a pending reboot once its delay has elapsed. It runs
// first in the loop so a pending reboot wins over any other work.
func (c *Core) tickReboot(now time.Time) bool {
	if !c.rebootPending || now.Before(c.rebootAt) {
		return false
	}
	c.rebootPending = false
	log.Printf("Rebooting")
	c.deps.Reboot()
	return true
}
