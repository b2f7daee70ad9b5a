package wifi

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"hsc-firmware/pkg/globals"
)

var signalRe = regexp.MustCompile(`signal:\s*(-?\d+)\s*dBm`)

// Station drives wlan0 in client mode via wpa_supplicant. Association is
// asynchronous: Begin writes credentials and kicks off wpa_supplicant, and
// the caller polls Connected until it gives up.
type Station struct {
	mu    sync.Mutex
	iface string
}

func NewStation() *Station {
	return &Station{iface: globals.WirelessInterface}
}

// Begin replaces the stored wpa_supplicant network block and triggers a
// reconfigure. It returns once the attempt is started, not once associated.
func (s *Station) Begin(ssid, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	escapedSSID := strings.ReplaceAll(ssid, `\`, `\\`)
	escapedSSID = strings.ReplaceAll(escapedSSID, `"`, `\"`)

	var network []byte
	if password == "" {
		network = []byte(fmt.Sprintf("network={\n\tssid=\"%s\"\n\tkey_mgmt=NONE\n}\n", escapedSSID))
	} else {
		// wpa_passphrase reads the passphrase from stdin to avoid injection
		cmd := exec.Command("wpa_passphrase", escapedSSID)
		cmd.Stdin = strings.NewReader(password)
		out, err := cmd.Output()
		if err != nil {
			return fmt.Errorf("failed to generate network block: %w", err)
		}
		network = out
	}

	header := "ctrl_interface=DIR=/var/run/wpa_supplicant GROUP=netdev\nupdate_config=1\n\n"
	writeCmd := exec.Command("sudo", "tee", globals.WpaSupplicantPath)
	writeCmd.Stdin = bytes.NewReader(append([]byte(header), network...))
	writeCmd.Stdout = nil
	if err := writeCmd.Run(); err != nil {
		return fmt.Errorf("failed to save wpa_supplicant config: %w", err)
	}

	if err := exec.Command("wpa_cli", "-i", s.iface, "reconfigure").Run(); err != nil {
		return fmt.Errorf("failed to reconfigure: %w", err)
	}

	return nil
}

// Connected reports whether the interface is associated with a network
func (s *Station) Connected() bool {
	output, err := exec.Command("iwgetid", "-r").Output()
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(output))) > 0
}

// SignalDBM returns the current link signal level. ok is false when the
// interface is not associated.
func (s *Station) SignalDBM() (int, bool) {
	output, err := exec.Command("iw", "dev", s.iface, "link").Output()
	if err != nil {
		return 0, false
	}
	match := signalRe.FindStringSubmatch(string(output))
	if len(match) < 2 {
		return 0, false
	}
	dbm, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return dbm, true
}

// IPAddress returns the interface's IPv4 address, or "" when unassigned
func (s *Station) IPAddress() string {
	output, err := exec.Command("ip", "-4", "-o", "addr", "show", "dev", s.iface).Output()
	if err != nil {
		return ""
	}
	fields := strings.Fields(string(output))
	for i, f := range fields {
		if f == "inet" && i+1 < len(fields) {
			addr, _, found := strings.Cut(fields[i+1], "/")
			if found {
				return addr
			}
			return fields[i+1]
		}
	}
	return ""
}

// Hostname derives a stable device hostname from the last three octets of
// the interface MAC, e.g. "hsc-a1b2c3"
func (s *Station) Hostname() string {
	data, err := os.ReadFile("/sys/class/net/" + s.iface + "/address")
	if err != nil {
		return "hsc-unknown"
	}
	octets := strings.Split(strings.TrimSpace(string(data)), ":")
	if len(octets) != 6 {
		return "hsc-unknown"
	}
	return "hsc-" + strings.Join(octets[3:], "")
}
