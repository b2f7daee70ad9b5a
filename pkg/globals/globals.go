package globals

// FirmwareVersion is set at build time via -ldflags
var FirmwareVersion = "0.1.0"

// Writable data directory
var DataDir = "/data"

// Firmware data
var FirmwareDataDir = DataDir + "/.hsc-firmware"

// Config
var ConfigPath = FirmwareDataDir + "/config.json"

// Logs
var LogsPath = FirmwareDataDir + "/logs.json"

// WpaSupplicantPath for WiFi credentials
var WpaSupplicantPath = "/etc/wpa_supplicant/wpa_supplicant.conf"

// Compiled-in configuration defaults, used on first boot and after a reset
const (
	DefaultWifiSSID     = "LocoNet"
	DefaultWifiPassword = "MyTrainRoom"
	DefaultMQTTServer   = "mqtt.internal"
	DefaultMQTTPort     = 1883
)

// RecoveryWifiPassword is forced into the stored credentials when the
// recovery button is held
const RecoveryWifiPassword = "password"

// Fallback access point brought up when station association fails
const (
	FallbackAPSSID     = "HSC-Setup"
	FallbackAPPassword = "password"
	FallbackAPAddress  = "192.168.4.1"
)

// GPIO pin names (periph.io gpioreg names)
const (
	LEDPinName    = "GPIO2"
	ButtonPinName = "GPIO4"
)

// WirelessInterface is the station/AP interface
const WirelessInterface = "wlan0"

// HTTPAddr for the configuration UI and API
const HTTPAddr = ":80"
