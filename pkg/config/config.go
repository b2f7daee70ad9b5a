package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"hsc-firmware/pkg/globals"
)

// Settings is the single persisted configuration record. A board_id of 0
// means the device is unconfigured and MQTT stays disabled.
type Settings struct {
	WifiSSID     string `json:"wifi_ssid"`
	WifiPassword string `json:"wifi_password"`
	MQTTServer   string `json:"mqtt_server"`
	MQTTPort     int    `json:"mqtt_port"`
	MQTTUser     string `json:"mqtt_user"`
	MQTTPassword string `json:"mqtt_password"`
	BoardID      int    `json:"board_id"`
	Location     string `json:"location"`
}

// Defaults returns the compiled-in record used on first boot and after reset
func Defaults() Settings {
	return Settings{
		WifiSSID:     globals.DefaultWifiSSID,
		WifiPassword: globals.DefaultWifiPassword,
		MQTTServer:   globals.DefaultMQTTServer,
		MQTTPort:     globals.DefaultMQTTPort,
		MQTTUser:     "",
		MQTTPassword: "",
		BoardID:      0,
		Location:     "",
	}
}

// Store reads and writes the settings record on non-volatile storage
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Initialize creates the data directory. Failure is non-fatal: the store
// then serves defaults and rejects writes until storage comes back.
func (s *Store) Initialize() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// Load returns the persisted record, or defaults when the file is absent or
// unreadable. Fields missing from the file keep their default values. Load
// never fails.
func (s *Store) Load() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := Defaults()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return settings
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		// Corrupt record degrades to defaults rather than propagating
		return Defaults()
	}

	if err := validate(settings); err != nil {
		return Defaults()
	}

	return settings
}

// Save validates and atomically persists the record. On failure the file on
// disk is untouched and a subsequent Load returns the previous record.
func (s *Store) Save(settings Settings) error {
	if err := validate(settings); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to a temp file in the same directory, then rename over the old
	// record so no partial write is ever visible to Load
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to commit config: %w", err)
	}

	return nil
}

// Reset overwrites the stored record with the compiled-in defaults
func (s *Store) Reset() error {
	return s.Save(Defaults())
}

// validate enforces field constraints. Empty SSID or server are legal and
// simply prevent connectivity.
func validate(settings Settings) error {
	if settings.MQTTPort < 1 || settings.MQTTPort > 65535 {
		return fmt.Errorf("mqtt_port %d out of range", settings.MQTTPort)
	}
	if settings.BoardID < 0 {
		return fmt.Errorf("board_id %d must not be negative", settings.BoardID)
	}
	return nil
}
