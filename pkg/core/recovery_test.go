package core

import (
	"testing"
	"time"

	"hsc-firmware/pkg/config"
	"hsc-firmware/pkg/globals"
)

func TestButtonHoldTriggersCredentialResetOnce(t *testing.T) {
	h := newHarness(t)

	h.hw.pressed = true
	h.step(tickInterval) // press start recorded

	// Just under the threshold: nothing happens
	h.step(holdThreshold - 100*time.Millisecond)
	if h.core.GetConfiguration().WifiPassword != globals.DefaultWifiPassword {
		t.Fatal("password reset before threshold")
	}

	// Crossing the threshold fires exactly once
	h.step(200 * time.Millisecond)
	cfg := h.core.GetConfiguration()
	if cfg.WifiPassword != globals.RecoveryWifiPassword {
		t.Fatalf("password = %q, want recovery value", cfg.WifiPassword)
	}
	if got := h.store.Load(); got.WifiPassword != globals.RecoveryWifiPassword {
		t.Error("recovery password not persisted")
	}
	if !h.core.rebootPending {
		t.Error("credential reset did not schedule a reboot")
	}

	// Overwrite the stored record out of band, keep holding far past the
	// threshold: the same continuous hold must not save again
	marker := config.Defaults()
	marker.Location = "marker"
	if err := h.store.Save(marker); err != nil {
		t.Fatal(err)
	}
	h.core.mu.Lock()
	h.core.rebootPending = false // keep the loop alive for the rest of the hold
	h.core.mu.Unlock()
	for i := 0; i < 100; i++ {
		h.step(tickInterval)
	}
	if got := h.store.Load(); got.Location != "marker" {
		t.Error("continuous hold re-fired the credential reset")
	}
}

func TestButtonReleaseRearmsTrigger(t *testing.T) {
	h := newHarness(t)

	h.hw.pressed = true
	h.step(tickInterval)
	h.step(holdThreshold + tickInterval)
	if !h.core.resetFired {
		t.Fatal("setup: first hold did not fire")
	}

	h.hw.pressed = false
	h.step(tickInterval)

	h.core.mu.Lock()
	fired, held := h.core.resetFired, h.core.buttonHeld
	h.core.mu.Unlock()
	if fired || held {
		t.Error("guard flags not cleared on release")
	}
}

func TestRecoveryAcknowledgmentFlash(t *testing.T) {
	h := newHarness(t)

	h.hw.pressed = true
	h.step(tickInterval)
	h.step(holdThreshold + tickInterval)

	// The flash drains before the scheduled reboot fires
	for i := 0; i < ackFlashCount; i++ {
		h.step(ackFlashInterval)
	}
	if h.hw.toggles != ackFlashCount {
		t.Errorf("LED toggled %d times, want %d", h.hw.toggles, ackFlashCount)
	}
	if h.reboots != 0 {
		t.Error("rebooted before the acknowledgment flash finished")
	}

	h.step(rebootDelay + tickInterval)
	if h.reboots != 1 {
		t.Errorf("reboots = %d, want 1", h.reboots)
	}
}

func TestLocateBlinkCycle(t *testing.T) {
	h := newHarness(t)

	h.core.SetLocate(true)
	if !h.core.LocateActive() {
		t.Fatal("locate flag not set")
	}

	// Observing for over a second shows at least one full on/off cycle
	toggles := 0
	last := h.hw.ledOn
	for elapsed := time.Duration(0); elapsed <= 1200*time.Millisecond; elapsed += tickInterval {
		h.step(tickInterval)
		if h.hw.ledOn != last {
			toggles++
			last = h.hw.ledOn
		}
	}
	if toggles < 2 {
		t.Errorf("observed %d toggles in ~1.2s, want at least 2", toggles)
	}

	// Clearing locate forces the LED off within one loop pass
	h.core.SetLocate(false)
	h.step(tickInterval)
	if h.hw.ledOn {
		t.Error("LED still on after locate cleared")
	}
}

func TestIndicatorOffWhenIdle(t *testing.T) {
	h := newHarness(t)

	for i := 0; i < 5; i++ {
		h.step(tickInterval)
	}
	if h.hw.ledOn {
		t.Error("LED on with no locate and no flash")
	}
	if h.hw.toggles != 0 {
		t.Errorf("LED toggled %d times while idle", h.hw.toggles)
	}
}

func TestLocateFlagResetsOnBoot(t *testing.T) {
	h := newHarness(t)
	if h.core.LocateActive() {
		t.Error("locate active on a fresh core")
	}
}
