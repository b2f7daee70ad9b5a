package core

// WifiState tracks the station link lifecycle
type WifiState int

const (
	WifiDisconnected WifiState = iota
	WifiConnecting
	WifiConnected
	WifiAPFallback
)

func (s WifiState) String() string {
	switch s {
	case WifiDisconnected:
		return "disconnected"
	case WifiConnecting:
		return "connecting"
	case WifiConnected:
		return "connected"
	case WifiAPFallback:
		return "ap-fallback"
	default:
		return "unknown"
	}
}

// MQTTState tracks the broker session. It may only be connecting or
// connected while the station link is up and a board id is set.
type MQTTState int

const (
	MQTTUnconfigured MQTTState = iota
	MQTTDisconnected
	MQTTConnecting
	MQTTConnected
)

func (s MQTTState) String() string {
	switch s {
	case MQTTUnconfigured:
		return "unconfigured"
	case MQTTDisconnected:
		return "disconnected"
	case MQTTConnecting:
		return "connecting"
	case MQTTConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// WifiLink is the station-mode surface the state machine drives
type WifiLink interface {
	Begin(ssid, password string) error
	Connected() bool
	SignalDBM() (int, bool)
	IPAddress() string
	Hostname() string
}

// FallbackAP brings up the recovery access point
type FallbackAP interface {
	Start() error
}

// Broker is a single MQTT session
type Broker interface {
	Connect() error
	IsConnected() bool
	Publish(topic string, retained bool, payload string) error
	Disconnect()
}

// BrokerFactory builds a broker session from the current configuration
type BrokerFactory func(server string, port int, clientID, user, password string) Broker

// ButtonLED is the recovery button input and status LED output
type ButtonLED interface {
	ButtonPressed() bool
	SetLED(on bool)
	ToggleLED()
}
