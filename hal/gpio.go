//go:build !baremetal

package hal

import (
	"fmt"
	"sync"

	"h7tft/board"
)

// virtualPin is a simulated push-pull output.
type virtualPin struct {
	mu    sync.Mutex
	pin   board.Pin
	role  board.Role
	level bool
	edges int

	// logger is nil unless edge logging is enabled.
	logger Logger
}

func newVirtualPin(pin board.Pin, role board.Role, logger Logger) *virtualPin {
	return &virtualPin{pin: pin, role: role, logger: logger}
}

func (p *virtualPin) Set(high bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if high != p.level {
		p.edges++
		if p.logger != nil {
			p.logger.WriteLineString(fmt.Sprintf("gpio: %s (%s): %s", p.pin, p.role, levelName(high)))
		}
	}
	p.level = high
	return nil
}

func (p *virtualPin) Level() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Edges counts level changes since the pin was claimed.
func (p *virtualPin) Edges() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.edges
}

func levelName(high bool) string {
	if high {
		return "HIGH"
	}
	return "LOW"
}
