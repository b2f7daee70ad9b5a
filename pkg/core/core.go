package core

import (
	"fmt"
	"log"
	"sync"
	"time"

	"hsc-firmware/pkg/config"
)

const (
	tickInterval = 50 * time.Millisecond

	wifiAttemptLimit = 20
	wifiPollInterval = 500 * time.Millisecond

	mqttRetryDelay = 5 * time.Second

	holdThreshold    = 3 * time.Second
	blinkPeriod      = 500 * time.Millisecond
	ackFlashCount    = 10
	ackFlashInterval = 100 * time.Millisecond

	rebootDelay = time.Second
)

// Deps are the collaborators the core drives. Everything behind an
// interface here is replaced by a fake in tests.
type Deps struct {
	Store         *config.Store
	Wifi          WifiLink
	AP            FallbackAP
	NewBroker     BrokerFactory
	Hardware      ButtonLED
	Reboot        func()
	StartTimeSync func() error
	TimeSynced    func() bool
}

// Core owns all mutable firmware state: the current configuration, both
// connection states, the locate flag and the pending reboot. External
// callers only ever get copies out or replace whole records in.
type Core struct {
	mu   sync.Mutex
	deps Deps
	cfg  config.Settings

	wifiState    WifiState
	wifiAttempts int
	lastWifiPoll time.Time
	wifiWasUp    bool

	mqttState       MQTTState
	broker          Broker
	nextMQTTAttempt time.Time

	locate    bool
	lastBlink time.Time

	buttonHeld bool
	pressStart time.Time
	resetFired bool

	flashRemaining int
	lastFlash      time.Time

	rebootPending bool
	rebootAt      time.Time

	startTime time.Time
	now       func() time.Time
}

// New loads the persisted configuration and returns a core ready to run
func New(deps Deps) *Core {
	c := &Core{
		deps:      deps,
		cfg:       deps.Store.Load(),
		startTime: time.Now(),
		now:       time.Now,
	}
	return c
}

// GetConfiguration returns a copy of the current configuration
func (c *Core) GetConfiguration() config.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Update carries a partial settings change. Nil fields keep their current
// value, mirroring the JSON body the settings API accepts.
type Update struct {
	WifiSSID     *string `json:"wifi_ssid"`
	WifiPassword *string `json:"wifi_password"`
	MQTTServer   *string `json:"mqtt_server"`
	MQTTPort     *int    `json:"mqtt_port"`
	MQTTUser     *string `json:"mqtt_user"`
	MQTTPassword *string `json:"mqtt_password"`
	BoardID      *int    `json:"board_id"`
	Location     *string `json:"location"`
}

// SetConfiguration merges the update over the current record, persists it
// and schedules a reboot. Any settings change requires a restart to take
// effect. On failure the previous configuration stays authoritative.
func (c *Core) SetConfiguration(update Update) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.cfg
	if update.WifiSSID != nil {
		next.WifiSSID = *update.WifiSSID
	}
	if update.WifiPassword != nil {
		next.WifiPassword = *update.WifiPassword
	}
	if update.MQTTServer != nil {
		next.MQTTServer = *update.MQTTServer
	}
	if update.MQTTPort != nil {
		next.MQTTPort = *update.MQTTPort
	}
	if update.MQTTUser != nil {
		next.MQTTUser = *update.MQTTUser
	}
	if update.MQTTPassword != nil {
		next.MQTTPassword = *update.MQTTPassword
	}
	if update.BoardID != nil {
		next.BoardID = *update.BoardID
	}
	if update.Location != nil {
		next.Location = *update.Location
	}

	if err := c.deps.Store.Save(next); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	c.cfg = next
	log.Printf("Settings saved, scheduling reboot")
	c.scheduleRebootLocked(rebootDelay)
	return nil
}

// ResetConfiguration restores defaults and schedules a reboot
func (c *Core) ResetConfiguration() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.deps.Store.Reset(); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}

	c.cfg = config.Defaults()
	log.Printf("Settings reset to defaults, scheduling reboot")
	c.scheduleRebootLocked(rebootDelay)
	return nil
}

// SetLocate switches the locate blink on or off. Runtime only, never
// persisted.
func (c *Core) SetLocate(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locate = active
	log.Printf("Locate toggled to: %t", active)
}

// LocateActive reports the current locate flag
func (c *Core) LocateActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locate
}

// RequestReboot schedules a restart for the next loop pass, leaving time
// for the caller's response to flush first
func (c *Core) RequestReboot() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduleRebootLocked(rebootDelay)
}

func (c *Core) scheduleRebootLocked(after time.Duration) {
	c.rebootPending = true
	c.rebootAt = c.now().Add(after)
}

// ConnectivitySummary is the display-facing view of the connection state
type ConnectivitySummary struct {
	SSID          string `json:"ssid"`
	IsConfigured  bool   `json:"is_configured"`
	MQTTConnected bool   `json:"mqtt_connected"`
}

func (c *Core) GetConnectivitySummary() ConnectivitySummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ConnectivitySummary{
		SSID:          c.cfg.WifiSSID,
		IsConfigured:  c.cfg.BoardID != 0,
		MQTTConnected: c.mqttState == MQTTConnected,
	}
}

// WifiStateNow returns the current station state
func (c *Core) WifiStateNow() WifiState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wifiState
}

// MQTTStateNow returns the current broker state
func (c *Core) MQTTStateNow() MQTTState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mqttState
}

// DeviceName derives the announce/client identity from the board id
func DeviceName(boardID int) string {
	return fmt.Sprintf("HSC-Device-%d", boardID)
}
