//go:build !baremetal

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"h7tft/app"
	"h7tft/hal"
	"h7tft/internal/buildinfo"
	"h7tft/x/mathx"
)

func main() {
	cfg := app.DefaultConfig()
	var (
		sketch     string
		brightness uint
		scale      int
		version    bool
		headless   hal.HeadlessConfig
	)
	names := make([]string, len(app.Sketches))
	for i, s := range app.Sketches {
		names[i] = string(s)
	}
	flag.StringVar(&sketch, "sketch", string(cfg.Sketch), "Sketch to run: "+strings.Join(names, ", ")+".")
	flag.UintVar(&brightness, "brightness", uint(cfg.Brightness), "Backlight PWM level, 0-10.")
	flag.IntVar(&cfg.PWMFrames, "pwm-frames", cfg.PWMFrames, "PWM frames before the panel comes up.")
	flag.BoolVar(&headless.Enabled, "headless", false, "Run without a window.")
	flag.StringVar(&headless.Out, "out", "", "Write the panel to this PNG once the sketch idles (headless).")
	flag.DurationVar(&headless.Timeout, "timeout", 0, "Stop after this long in headless mode (0 = until idle).")
	flag.IntVar(&scale, "scale", 4, "Window scale factor.")
	flag.BoolVar(&headless.Host.Verbose, "v", false, "Log every pin edge.")
	flag.BoolVar(&version, "version", false, "Print the build version and exit.")
	flag.Parse()

	if version {
		fmt.Println(buildinfo.Short())
		return
	}

	s, err := app.ParseSketch(sketch)
	if err != nil {
		fail(err)
	}
	cfg.Sketch = s
	// Out-of-range values still reach the helper, which ignores them.
	cfg.Brightness = uint8(mathx.Clamp(brightness, 0, 255))

	run := func(ctx context.Context, h hal.HAL) error {
		return app.Start(ctx, h, cfg)
	}

	if headless.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, run, headless); err != nil {
			fail(err)
		}
		return
	}

	if err := hal.RunWindow(run, hal.WindowConfig{
		Scale: scale,
		LED:   app.BlinkyLED,
		Host:  headless.Host,
	}); err != nil && !errors.Is(err, context.Canceled) {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
