package core

import (
	"fmt"
	"log"
	"time"
)

// tickConnectivity advances the WiFi and MQTT state machines by one step.
// Waiting is itself a state with a recorded next-eligible timestamp, so a
// tick never spins: the only blocking call is the explicit broker connect
// attempt, bounded by its own timeout.
func (c *Core) tickConnectivity(now time.Time) {
	c.tickWifi(now)
	c.tickMQTT(now)
}

func (c *Core) tickWifi(now time.Time) {
	switch c.wifiState {
	case WifiDisconnected:
		log.Printf("Connecting to %s", c.cfg.WifiSSID)
		if err := c.deps.Wifi.Begin(c.cfg.WifiSSID, c.cfg.WifiPassword); err != nil {
			log.Printf("Failed to start association: %v", err)
		}
		c.wifiState = WifiConnecting
		c.wifiAttempts = 0
		c.lastWifiPoll = now

	case WifiConnecting:
		if now.Sub(c.lastWifiPoll) < wifiPollInterval {
			return
		}
		c.lastWifiPoll = now

		if c.deps.Wifi.Connected() {
			c.wifiState = WifiConnected
			c.wifiWasUp = true
			log.Printf("WiFi connected, IP address: %s", c.deps.Wifi.IPAddress())
			if c.deps.StartTimeSync != nil {
				if err := c.deps.StartTimeSync(); err != nil {
					log.Printf("Failed to start time sync: %v", err)
				}
			}
			return
		}

		c.wifiAttempts++
		if c.wifiAttempts >= wifiAttemptLimit && !c.wifiWasUp {
			log.Printf("Failed to connect to WiFi, starting fallback AP")
			c.wifiState = WifiAPFallback
			if err := c.deps.AP.Start(); err != nil {
				log.Printf("Failed to start fallback AP: %v", err)
			}
		}

	case WifiConnected:
		if !c.deps.Wifi.Connected() {
			// wpa_supplicant keeps retrying on its own, so a lost link goes
			// back to CONNECTING without an attempt limit. AP fallback is
			// only entered when the boot-time association never succeeded.
			log.Printf("WiFi link lost, waiting for reassociation")
			c.wifiState = WifiConnecting
			c.wifiAttempts = 0
			c.lastWifiPoll = now
		}

	case WifiAPFallback:
		// Terminal until reboot
	}
}

func (c *Core) tickMQTT(now time.Time) {
	// A board id of 0 is the unconfigured sentinel: never touch the broker
	if c.cfg.BoardID == 0 {
		if c.mqttState != MQTTUnconfigured {
			c.dropBroker()
			c.mqttState = MQTTUnconfigured
		}
		return
	}

	if c.mqttState == MQTTUnconfigured {
		c.mqttState = MQTTDisconnected
	}

	// Station link is a precondition for any broker state
	if c.wifiState != WifiConnected {
		if c.mqttState == MQTTConnected || c.mqttState == MQTTConnecting {
			log.Printf("WiFi down, dropping MQTT session")
			c.dropBroker()
			c.mqttState = MQTTDisconnected
		}
		return
	}

	if c.mqttState == MQTTConnected {
		if c.broker == nil || !c.broker.IsConnected() {
			log.Printf("MQTT connection lost")
			c.dropBroker()
			c.mqttState = MQTTDisconnected
			c.nextMQTTAttempt = now.Add(mqttRetryDelay)
		}
		return
	}

	if now.Before(c.nextMQTTAttempt) {
		return
	}

	c.mqttState = MQTTConnecting
	clientID := DeviceName(c.cfg.BoardID)
	log.Printf("Attempting MQTT connection to %s:%d as %s", c.cfg.MQTTServer, c.cfg.MQTTPort, clientID)

	broker := c.deps.NewBroker(c.cfg.MQTTServer, c.cfg.MQTTPort, clientID, c.cfg.MQTTUser, c.cfg.MQTTPassword)
	if err := broker.Connect(); err != nil {
		log.Printf("MQTT connect failed: %v, next attempt in %v", err, mqttRetryDelay)
		c.mqttState = MQTTDisconnected
		c.nextMQTTAttempt = now.Add(mqttRetryDelay)
		return
	}

	c.broker = broker
	c.mqttState = MQTTConnected
	log.Printf("MQTT connected")
	c.publishPresence(clientID)
}

// publishPresence announces the device on (re)connect: a retained
// announcement with identity and address, plus a non-retained online status
func (c *Core) publishPresence(clientID string) {
	announce := fmt.Sprintf("%s,%s,%s", clientID, c.deps.Wifi.Hostname(), c.deps.Wifi.IPAddress())
	if err := c.broker.Publish("hsc/device/announce", true, announce); err != nil {
		log.Printf("Failed to publish announcement: %v", err)
	}

	statusTopic := fmt.Sprintf("hsc/device/status/%d", c.cfg.BoardID)
	if err := c.broker.Publish(statusTopic, false, "online"); err != nil {
		log.Printf("Failed to publish online status: %v", err)
	}
}

func (c *Core) dropBroker() {
	if c.broker != nil {
		c.broker.Disconnect()
		c.broker = nil
	}
}
