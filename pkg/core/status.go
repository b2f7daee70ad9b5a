package core

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot is the display-ready view of runtime state. Building one reads
// counters only, so callers may request it at arbitrary frequency.
type Snapshot struct {
	Uptime     string `json:"uptime"`
	Signal     string `json:"rssi"`
	FreeMemory string `json:"free_memory"`
	Time       string `json:"runtime"`
}

// GetStatusSnapshot derives the current status strings
func (c *Core) GetStatusSnapshot() Snapshot {
	c.mu.Lock()
	wifiUp := c.wifiState == WifiConnected
	start := c.startTime
	c.mu.Unlock()

	snap := Snapshot{
		Uptime:     formatUptime(c.now().Sub(start)),
		Signal:     "N/A",
		FreeMemory: "N/A",
		Time:       "Not synced",
	}

	if wifiUp {
		if dbm, ok := c.deps.Wifi.SignalDBM(); ok {
			snap.Signal = fmt.Sprintf("%d dBm", dbm)
		}
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		snap.FreeMemory = fmt.Sprintf("%.1f MB", float64(vm.Available)/(1024*1024))
	}

	if c.deps.TimeSynced != nil && c.deps.TimeSynced() {
		snap.Time = c.now().Format("01-02-06 15:04:05")
	}

	return snap
}

// formatUptime renders elapsed time using the coarsest two non-zero units,
// e.g. "2d 03h 14m", "3h 14m 05s", "14m 05s"
func formatUptime(d time.Duration) string {
	seconds := int64(d.Seconds())
	days := seconds / 86400
	seconds %= 86400
	hours := seconds / 3600
	seconds %= 3600
	minutes := seconds / 60
	seconds %= 60

	if days > 0 {
		return fmt.Sprintf("%dd %02dh %02dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %02ds", minutes, seconds)
}
