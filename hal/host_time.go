//go:build !baremetal

package hal

import (
	"sync"
	"time"
)

// hostDelay stands in for the SysTick delay.
type hostDelay struct {
	sleep func(time.Duration)
}

func (d hostDelay) DelayMs(ms uint32) { d.sleep(time.Duration(ms) * time.Millisecond) }
func (d hostDelay) DelayNs(ns uint32) { d.sleep(time.Duration(ns)) }

// VirtualClock is a sleep function that advances instead of blocking.
type VirtualClock struct {
	mu  sync.Mutex
	now time.Duration
}

func (c *VirtualClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

// Elapsed is the total time slept.
func (c *VirtualClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}
