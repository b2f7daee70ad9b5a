package core

import (
	"context"
	"time"
)

// Run drives the cooperative control loop until the context is cancelled.
// All state transitions happen on this goroutine; the API layer only ever
// calls the locked contract methods.
func (c *Core) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			c.dropBroker()
			c.mu.Unlock()
			return nil
		case <-ticker.C:
			c.tick(c.now())
		}
	}
}

// tick is one pass of the control loop
func (c *Core) tick(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tickReboot(now) {
		return
	}
	c.tickButton(now)
	c.tickIndicator(now)
	c.tickConnectivity(now)
}
