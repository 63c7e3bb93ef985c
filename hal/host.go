//go:build !baremetal

package hal

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"sync"
	"time"

	"h7tft/board"
	"h7tft/clock"
	"h7tft/display"

	"periph.io/x/conn/v3/physic"
)

// HostConfig tunes the simulated board.
type HostConfig struct {
	// Verbose logs every pin edge.
	Verbose bool
	// Sleep replaces time.Sleep for the delay provider.
	Sleep func(time.Duration)
	// Out receives log lines. Defaults to stdout.
	Out io.Writer
	// SysCK is the frequency the simulated core runs at after reset. Zero
	// means it follows whatever BringUp plans.
	SysCK physic.Frequency
}

type hostHAL struct {
	logger *hostLogger
	delay  hostDelay
	bring  bringUp

	verbose bool
	sysck   physic.Frequency

	mu    sync.Mutex
	pins  map[board.Pin]*virtualPin
	panel *hostPanel

	idleOnce sync.Once
	idled    chan struct{}
}

// New returns a host HAL implementation.
func New() HAL {
	return newHost(HostConfig{})
}

// Sim exposes the simulated board to the host runners and tests.
type Sim interface {
	HAL

	// Idled is closed once the sketch reaches Idle.
	Idled() <-chan struct{}
	PanelImage() (*image.RGBA, bool)
	PanelPixel(x, y int) (uint16, bool)
	PanelDraws() (draws, presents int)
	PinLevel(p board.Pin) (level, ok bool)
	PinEdges(p board.Pin) int
}

// NewHost returns a host HAL with cfg applied.
func NewHost(cfg HostConfig) Sim {
	return newHost(cfg)
}

func newHost(cfg HostConfig) *hostHAL {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &hostHAL{
		logger:  &hostLogger{w: out},
		delay:   hostDelay{sleep: sleep},
		verbose: cfg.Verbose,
		sysck:   cfg.SysCK,
		pins:    make(map[board.Pin]*virtualPin),
		idled:   make(chan struct{}),
	}
}

func (h *hostHAL) Logger() Logger { return h.logger }
func (h *hostHAL) Delay() Delay   { return h.delay }

func (h *hostHAL) BringUp(cfg clock.Config) (clock.Clocks, error) {
	return h.bring.freeze(h.logger, cfg, h.sysck)
}

func (h *hostHAL) newPin(p board.Pin, role board.Role) *virtualPin {
	var l Logger
	if h.verbose {
		l = h.logger
	}
	vp := newVirtualPin(p, role, l)
	h.mu.Lock()
	h.pins[p] = vp
	h.mu.Unlock()
	return vp
}

func (h *hostHAL) OutputPin(p board.Pin, role board.Role) (OutputPin, error) {
	if err := h.bring.claimPin(p, role); err != nil {
		return nil, err
	}
	return h.newPin(p, role), nil
}

func (h *hostHAL) OpenDisplay(b board.Binding, opts display.Options) (Display, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	rate, err := h.bring.claimDisplay(b, opts.Model.String())
	if err != nil {
		return nil, err
	}
	if h.verbose {
		h.logger.WriteLineString(fmt.Sprintf("spi%d: %v mode %v", b.SPI.Bus, rate, b.SPI.Mode))
	}

	for _, a := range b.Assignments() {
		if a.Role != board.RoleRST && a.Role != board.RoleBacklight {
			h.newPin(a.Pin, a.Role)
		}
	}
	rst := h.newPin(b.RST, board.RoleRST)
	bl := h.newPin(b.Backlight, board.RoleBacklight)
	panel := newHostPanel(opts, rst, bl, h.delay)

	h.mu.Lock()
	h.panel = panel
	h.mu.Unlock()
	return hostDisplay{panel: panel, backlight: bl}, nil
}

func (h *hostHAL) Idle(ctx context.Context) error {
	h.idleOnce.Do(func() { close(h.idled) })
	<-ctx.Done()
	return ctx.Err()
}

func (h *hostHAL) Idled() <-chan struct{} { return h.idled }

func (h *hostHAL) currentPanel() *hostPanel {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.panel
}

func (h *hostHAL) pin(p board.Pin) *virtualPin {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pins[p]
}

func (h *hostHAL) PanelImage() (*image.RGBA, bool) {
	p := h.currentPanel()
	if p == nil {
		return nil, false
	}
	return p.Image(), true
}

func (h *hostHAL) PanelPixel(x, y int) (uint16, bool) {
	p := h.currentPanel()
	if p == nil || x < 0 || y < 0 || x >= int(p.width) || y >= int(p.height) {
		return 0, false
	}
	return p.Pixel(x, y), true
}

func (h *hostHAL) PanelDraws() (draws, presents int) {
	p := h.currentPanel()
	if p == nil {
		return 0, 0
	}
	return p.Draws()
}

func (h *hostHAL) PinLevel(p board.Pin) (level, ok bool) {
	vp := h.pin(p)
	if vp == nil {
		return false, false
	}
	return vp.Level(), true
}

func (h *hostHAL) PinEdges(p board.Pin) int {
	vp := h.pin(p)
	if vp == nil {
		return 0
	}
	return vp.Edges()
}

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
