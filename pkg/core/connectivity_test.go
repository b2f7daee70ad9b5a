package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"hsc-firmware/pkg/config"
)

func TestWifiAssociationSucceedsAfterPolling(t *testing.T) {
	h := newHarness(t)

	h.step(tickInterval)
	if h.core.WifiStateNow() != WifiConnecting {
		t.Fatalf("state after boot tick = %v, want connecting", h.core.WifiStateNow())
	}
	if h.wifi.beginCalls != 1 {
		t.Fatalf("Begin called %d times, want 1", h.wifi.beginCalls)
	}

	// Associates on the third poll
	h.step(wifiPollInterval)
	h.step(wifiPollInterval)
	h.wifi.connected = true
	h.step(wifiPollInterval)

	if h.core.WifiStateNow() != WifiConnected {
		t.Fatalf("state = %v, want connected", h.core.WifiStateNow())
	}
	if h.timeSyncs != 1 {
		t.Errorf("time sync started %d times, want 1", h.timeSyncs)
	}
	if h.ap.started {
		t.Error("fallback AP started despite successful association")
	}
}

func TestWifiAttemptLimitEntersAPFallback(t *testing.T) {
	h := newHarness(t)
	h.configure(t, func(s *config.Settings) { s.BoardID = 7 })

	h.step(tickInterval)
	for i := 0; i < wifiAttemptLimit; i++ {
		h.step(wifiPollInterval)
	}

	if h.core.WifiStateNow() != WifiAPFallback {
		t.Fatalf("state = %v, want ap-fallback", h.core.WifiStateNow())
	}
	if !h.ap.started {
		t.Error("fallback AP not started")
	}

	// MQTT never attempted without a station link
	if h.brokerCalls != 0 {
		t.Errorf("broker factory called %d times, want 0", h.brokerCalls)
	}
	if state := h.core.MQTTStateNow(); state == MQTTConnecting || state == MQTTConnected {
		t.Errorf("mqtt state = %v with no WiFi", state)
	}

	// AP fallback is terminal for this boot cycle
	h.wifi.connected = true
	for i := 0; i < 10; i++ {
		h.step(wifiPollInterval)
	}
	if h.core.WifiStateNow() != WifiAPFallback {
		t.Error("left ap-fallback without a reboot")
	}
}

func TestUnconfiguredBoardNeverTouchesBroker(t *testing.T) {
	h := newHarness(t)
	h.wifi.connected = true

	// Quantified over every reachable station state
	for _, state := range []WifiState{WifiDisconnected, WifiConnecting, WifiConnected, WifiAPFallback} {
		h.core.mu.Lock()
		h.core.wifiState = state
		h.core.tickMQTT(h.clock)
		h.core.mu.Unlock()

		if got := h.core.MQTTStateNow(); got != MQTTUnconfigured {
			t.Errorf("wifi %v: mqtt state = %v, want unconfigured", state, got)
		}
	}

	if h.brokerCalls != 0 {
		t.Errorf("broker factory called %d times for board id 0", h.brokerCalls)
	}
}

func TestMQTTConnectPublishesPresence(t *testing.T) {
	h := newHarness(t)
	h.configure(t, func(s *config.Settings) {
		s.BoardID = 7
		s.MQTTServer = "broker.local"
	})
	h.wifi.connected = true

	h.step(tickInterval)
	h.step(wifiPollInterval)
	h.step(tickInterval)

	if h.core.MQTTStateNow() != MQTTConnected {
		t.Fatalf("mqtt state = %v, want connected", h.core.MQTTStateNow())
	}

	if len(h.broker.published) != 2 {
		t.Fatalf("published %d messages, want 2", len(h.broker.published))
	}

	announce := h.broker.published[0]
	if announce.topic != "hsc/device/announce" || !announce.retained {
		t.Errorf("announce = %+v, want retained on hsc/device/announce", announce)
	}
	if want := "HSC-Device-7,hsc-a1b2c3,192.168.1.50"; announce.payload != want {
		t.Errorf("announce payload = %q, want %q", announce.payload, want)
	}

	status := h.broker.published[1]
	if status.topic != "hsc/device/status/7" || status.retained || status.payload != "online" {
		t.Errorf("status = %+v, want non-retained online on hsc/device/status/7", status)
	}
}

func TestMQTTRetrySpacing(t *testing.T) {
	h := newHarness(t)
	h.configure(t, func(s *config.Settings) { s.BoardID = 7 })
	h.wifi.connected = true
	h.broker.connectErr = errors.New("connection refused")

	h.step(tickInterval)
	h.step(wifiPollInterval)
	h.step(tickInterval)
	if h.brokerCalls != 1 {
		t.Fatalf("connect attempts = %d, want 1", h.brokerCalls)
	}

	// No tight retry loop: nothing for almost five seconds
	for i := 0; i < 9; i++ {
		h.step(500 * time.Millisecond)
	}
	if h.brokerCalls != 1 {
		t.Fatalf("retried after %v, want 5s spacing", time.Duration(9)*500*time.Millisecond)
	}

	h.step(time.Second)
	if h.brokerCalls != 2 {
		t.Fatalf("connect attempts = %d after backoff elapsed, want 2", h.brokerCalls)
	}
}

func TestWifiLossImpliesMQTTDisconnect(t *testing.T) {
	h := newHarness(t)
	h.configure(t, func(s *config.Settings) { s.BoardID = 7 })
	h.wifi.connected = true

	h.step(tickInterval)
	h.step(wifiPollInterval)
	h.step(tickInterval)
	if h.core.MQTTStateNow() != MQTTConnected {
		t.Fatal("setup: mqtt not connected")
	}

	h.wifi.connected = false
	h.step(tickInterval)

	if h.core.WifiStateNow() != WifiConnecting {
		t.Errorf("wifi state = %v after link loss, want connecting", h.core.WifiStateNow())
	}
	if h.core.MQTTStateNow() != MQTTDisconnected {
		t.Errorf("mqtt state = %v after link loss, want disconnected", h.core.MQTTStateNow())
	}
	if h.broker.disconnects != 1 {
		t.Errorf("broker disconnects = %d, want 1", h.broker.disconnects)
	}

	// No reconnect attempt until the station link is back
	calls := h.brokerCalls
	for i := 0; i < 20; i++ {
		h.step(time.Second)
	}
	if h.brokerCalls != calls {
		t.Error("attempted MQTT reconnect without WiFi")
	}
}

func TestStateStrings(t *testing.T) {
	pairs := []struct {
		got, want string
	}{
		{WifiAPFallback.String(), "ap-fallback"},
		{MQTTUnconfigured.String(), "unconfigured"},
		{fmt.Sprint(WifiConnected), "connected"},
	}
	for _, p := range pairs {
		if p.got != p.want {
			t.Errorf("got %q, want %q", p.got, p.want)
		}
	}
}
