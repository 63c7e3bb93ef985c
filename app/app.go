package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"h7tft/clock"
	"h7tft/display"
	"h7tft/hal"
	"h7tft/led"
)

// Sketch names one of the bring-up programs.
type Sketch string

const (
	SketchBlinky Sketch = "blinky"
	SketchLCD    Sketch = "lcd"
	SketchMIPI   Sketch = "mipidsi"
)

var ErrUnknownSketch = errors.New("app: unknown sketch")

// Sketches lists every sketch in menu order.
var Sketches = []Sketch{SketchBlinky, SketchLCD, SketchMIPI}

func ParseSketch(s string) (Sketch, error) {
	for _, k := range Sketches {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownSketch, s)
}

type Config struct {
	Sketch Sketch
	// Brightness is handed to the backlight PWM helper. Values above
	// led.MaxBrightness are ignored and the default stays.
	Brightness uint8
	// PWMFrames is how many 10 ms PWM frames run before the panel comes up.
	PWMFrames int

	// BlinkPeriod is the blinky half period; BlinkCount bounds the number of
	// on/off cycles, zero blinks until cancelled.
	BlinkPeriod time.Duration
	BlinkCount  int

	// Clocks overrides the display sketches' 96/48 MHz request when SysCK is set.
	Clocks clock.Config
}

func DefaultConfig() Config {
	return Config{
		Sketch:      SketchLCD,
		Brightness:  led.DefaultBrightness,
		PWMFrames:   1,
		BlinkPeriod: 500 * time.Millisecond,
	}
}

// Run starts the default sketch and blocks forever (TinyGo entrypoint).
func Run(h hal.HAL) {
	RunWithConfig(h, DefaultConfig())
}

func RunWithConfig(h hal.HAL, cfg Config) {
	// Start only returns once its context ends; any sketch error has
	// already been logged and drawn by then.
	_ = Start(context.Background(), h, cfg)
	select {}
}

// Start runs the configured sketch and then idles until ctx is done. A
// sketch error goes through the fatal path before idling and is returned
// once ctx ends.
func Start(ctx context.Context, h hal.HAL, cfg Config) error {
	r := &runner{h: h, cfg: cfg}
	if err := r.sketch(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		r.fatal(err)
		_ = h.Idle(ctx)
		return err
	}
	return h.Idle(ctx)
}

type runner struct {
	h   hal.HAL
	cfg Config

	// panel is set once a display is initialised so the fatal path can use it.
	panel display.Panel
}

func (r *runner) sketch(ctx context.Context) error {
	switch r.cfg.Sketch {
	case SketchBlinky:
		return r.blinky(ctx)
	case SketchLCD:
		return r.lcdTest(ctx, lcdSketch)
	case SketchMIPI:
		return r.lcdTest(ctx, mipiSketch)
	default:
		return fmt.Errorf("%w %q", ErrUnknownSketch, r.cfg.Sketch)
	}
}

func (r *runner) log(s string) {
	if l := r.h.Logger(); l != nil {
		l.WriteLineString(s)
	}
}
