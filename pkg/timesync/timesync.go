package timesync

import (
	"os/exec"
	"strings"
	"sync"
	"time"
)

const checkInterval = 5 * time.Second

var (
	mu          sync.Mutex
	lastCheck   time.Time
	lastSynced  bool
	startIssued bool
)

// Start asks the system time daemon to begin NTP synchronization. Best
// effort: a failure just leaves the clock unsynchronized.
func Start() error {
	mu.Lock()
	defer mu.Unlock()

	if startIssued {
		return nil
	}
	startIssued = true

	return exec.Command("sudo", "timedatectl", "set-ntp", "true").Run()
}

// Synced reports whether wall-clock time has been synchronized. The query
// shells out, so results are cached briefly because status pages may poll
// this at arbitrary frequency.
func Synced() bool {
	mu.Lock()
	defer mu.Unlock()

	if time.Since(lastCheck) < checkInterval {
		return lastSynced
	}

	output, err := exec.Command("timedatectl", "show", "--property=NTPSynchronized", "--value").Output()
	lastCheck = time.Now()
	lastSynced = err == nil && strings.TrimSpace(string(output)) == "yes"
	return lastSynced
}
