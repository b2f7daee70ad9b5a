package core

import (
	"strings"
	"testing"
	"time"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m 00s"},
		{59 * time.Second, "0m 59s"},
		{14*time.Minute + 5*time.Second, "14m 05s"},
		{3*time.Hour + 14*time.Minute + 5*time.Second, "3h 14m 05s"},
		{2*24*time.Hour + 3*time.Hour + 14*time.Minute + 59*time.Second, "2d 03h 14m"},
		{24 * time.Hour, "1d 00h 00m"},
		{time.Hour, "1h 00m 00s"},
	}

	for _, tt := range tests {
		if got := formatUptime(tt.d); got != tt.want {
			t.Errorf("formatUptime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestSnapshotSignalUnavailableWhenDisconnected(t *testing.T) {
	h := newHarness(t)
	h.wifi.signal = -55
	h.wifi.hasSignal = true

	// Not connected: signal must read as unavailable even if the radio
	// would report one
	snap := h.core.GetStatusSnapshot()
	if snap.Signal != "N/A" {
		t.Errorf("signal = %q while disconnected, want N/A", snap.Signal)
	}

	h.wifi.connected = true
	h.step(tickInterval)
	h.step(wifiPollInterval)

	snap = h.core.GetStatusSnapshot()
	if snap.Signal != "-55 dBm" {
		t.Errorf("signal = %q, want -55 dBm", snap.Signal)
	}
}

func TestSnapshotTimeNotSynced(t *testing.T) {
	h := newHarness(t)

	snap := h.core.GetStatusSnapshot()
	if snap.Time != "Not synced" {
		t.Errorf("time = %q, want Not synced", snap.Time)
	}

	h.core.deps.TimeSynced = func() bool { return true }
	snap = h.core.GetStatusSnapshot()
	if want := h.clock.Format("01-02-06 15:04:05"); snap.Time != want {
		t.Errorf("time = %q, want %q", snap.Time, want)
	}
}

func TestSnapshotUptime(t *testing.T) {
	h := newHarness(t)

	h.clock = h.clock.Add(3*time.Hour + 14*time.Minute + 5*time.Second)
	snap := h.core.GetStatusSnapshot()
	if snap.Uptime != "3h 14m 05s" {
		t.Errorf("uptime = %q, want 3h 14m 05s", snap.Uptime)
	}

	if snap.FreeMemory == "" {
		t.Error("free memory string empty")
	}
	if snap.FreeMemory != "N/A" && !strings.HasSuffix(snap.FreeMemory, " MB") {
		t.Errorf("free memory = %q, want a MB figure", snap.FreeMemory)
	}
}
