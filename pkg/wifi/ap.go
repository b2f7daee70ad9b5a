package wifi

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"hsc-firmware/pkg/globals"
)

// AP hosts the fallback access point so the configuration UI stays
// reachable when station association fails. It stays up until reboot.
type AP struct {
	mu         sync.Mutex
	running    bool
	hostapdCmd *exec.Cmd
	dnsmasqCmd *exec.Cmd
}

func NewAP() *AP {
	return &AP{}
}

// Start brings up the access point with the fixed recovery SSID
func (a *AP) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return nil
	}

	iface := globals.WirelessInterface

	// Stop any client-mode wpa_supplicant first
	exec.Command("sudo", "killall", "wpa_supplicant").Run()

	// Configure the interface with a static address
	if err := exec.Command("sudo", "ip", "addr", "flush", "dev", iface).Run(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", iface, err)
	}
	if err := exec.Command("sudo", "ip", "addr", "add", globals.FallbackAPAddress+"/24", "dev", iface).Run(); err != nil {
		return fmt.Errorf("failed to set IP: %w", err)
	}
	if err := exec.Command("sudo", "ip", "link", "set", iface, "up").Run(); err != nil {
		return fmt.Errorf("failed to bring up %s: %w", iface, err)
	}

	if err := a.startDNSMasq(); err != nil {
		return fmt.Errorf("failed to start dnsmasq: %w", err)
	}
	if err := a.startHostAPD(); err != nil {
		return fmt.Errorf("failed to start hostapd: %w", err)
	}

	a.running = true
	return nil
}

// Stop tears down the access point
func (a *AP) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return nil
	}

	var lastErr error

	if a.hostapdCmd != nil && a.hostapdCmd.Process != nil {
		if err := a.hostapdCmd.Process.Kill(); err != nil {
			lastErr = fmt.Errorf("failed to kill hostapd: %w", err)
		}
		a.hostapdCmd = nil
	}

	if a.dnsmasqCmd != nil && a.dnsmasqCmd.Process != nil {
		if err := a.dnsmasqCmd.Process.Kill(); err != nil {
			lastErr = fmt.Errorf("failed to kill dnsmasq: %w", err)
		}
		a.dnsmasqCmd = nil
	}

	if err := exec.Command("sudo", "ip", "link", "set", globals.WirelessInterface, "down").Run(); err != nil {
		lastErr = fmt.Errorf("failed to bring down %s: %w", globals.WirelessInterface, err)
	}

	a.running = false
	return lastErr
}

func (a *AP) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

func (a *AP) startDNSMasq() error {
	conf := fmt.Sprintf(`interface=%s
dhcp-range=192.168.4.2,192.168.4.20,255.255.255.0,24h
domain=wlan
`, globals.WirelessInterface)

	cmd := exec.Command("sudo", "tee", "/tmp/dnsmasq.conf")
	cmd.Stdin = strings.NewReader(conf)
	if err := cmd.Run(); err != nil {
		return err
	}

	a.dnsmasqCmd = exec.Command("sudo", "dnsmasq", "-C", "/tmp/dnsmasq.conf", "--no-daemon")
	return a.dnsmasqCmd.Start()
}

func (a *AP) startHostAPD() error {
	conf := fmt.Sprintf(`interface=%s
driver=nl80211
ssid=%s
hw_mode=g
channel=7
wmm_enabled=0
macaddr_acl=0
auth_algs=1
ignore_broadcast_ssid=0
wpa=2
wpa_passphrase=%s
wpa_key_mgmt=WPA-PSK
rsn_pairwise=CCMP
`, globals.WirelessInterface, globals.FallbackAPSSID, globals.FallbackAPPassword)

	cmd := exec.Command("sudo", "tee", "/tmp/hostapd.conf")
	cmd.Stdin = strings.NewReader(conf)
	if err := cmd.Run(); err != nil {
		return err
	}

	a.hostapdCmd = exec.Command("sudo", "hostapd", "/tmp/hostapd.conf")
	return a.hostapdCmd.Start()
}
