package app

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"h7tft/assets"
	"h7tft/board"
	"h7tft/clock"
	"h7tft/display"
	"h7tft/led"

	"periph.io/x/conn/v3/physic"
)

var (
	blinkyClocks  = clock.Config{SysCK: 100 * physic.MegaHertz}
	displayClocks = clock.Config{SysCK: 96 * physic.MegaHertz, PLL1Q: 48 * physic.MegaHertz}
)

// BlinkyLED is the user LED driven by the blinky sketch.
var BlinkyLED = board.PE3

func (r *runner) blinky(ctx context.Context) error {
	if _, err := r.h.BringUp(blinkyClocks); err != nil {
		return err
	}
	r.log("h7tft example - Blinky")

	pin, err := r.h.OutputPin(BlinkyLED, board.RoleLED)
	if err != nil {
		return err
	}
	ms := uint32(r.cfg.BlinkPeriod.Milliseconds())
	if ms == 0 {
		ms = 500
	}

	d := r.h.Delay()
	for n := 0; r.cfg.BlinkCount <= 0 || n < r.cfg.BlinkCount; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := pin.Set(true); err != nil {
			return fmt.Errorf("led: %w", err)
		}
		d.DelayMs(ms)
		if err := pin.Set(false); err != nil {
			return fmt.Errorf("led: %w", err)
		}
		d.DelayMs(ms)
	}
	return nil
}

// lcdPlan is the per-wiring part of the display sketches.
type lcdPlan struct {
	binding board.Binding
	options display.Options
	ferris  image.Point
	// logo draws the BMP logo at the origin after ferris.
	logo bool
	// done is logged once drawing succeeds, if set.
	done string
}

var (
	lcdSketch = lcdPlan{
		binding: board.LCDBinding,
		options: display.LCDOptions,
		ferris:  image.Pt(34, 8),
		logo:    true,
		done:    "lcd test finished.",
	}
	mipiSketch = lcdPlan{
		binding: board.MIPIBinding,
		options: display.MIPIOptions,
		ferris:  image.Pt(0, 0),
	}
)

var black = color.RGBA{A: 0xFF}

func (r *runner) lcdTest(ctx context.Context, plan lcdPlan) error {
	want := r.cfg.Clocks
	if want.SysCK == 0 {
		want = displayClocks
	}
	c, err := r.h.BringUp(want)
	if err != nil {
		return err
	}
	if !clock.Within(c.SysCK, want.SysCK, clock.HSITolerance) {
		return fmt.Errorf("rcc: sys_ck %v, want %v", c.SysCK, want.SysCK)
	}

	disp, err := r.h.OpenDisplay(plan.binding, plan.options)
	if err != nil {
		return err
	}

	bl := led.New(disp.Backlight())
	bl.SetBrightness(r.cfg.Brightness)
	if err := bl.Run(ctx, r.h.Delay(), r.cfg.PWMFrames); err != nil {
		return err
	}

	s, err := display.Open(disp.Panel(), plan.options)
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	r.panel = disp.Panel()

	if err := s.Clear(black); err != nil {
		return err
	}

	r.log("draw ferris")
	if err := s.DrawRaw(assets.Ferris(), plan.ferris); err != nil {
		return err
	}

	if plan.logo {
		r.log("draw bitmap")
		logo, err := assets.Logo()
		if err != nil {
			return err
		}
		if err := s.DrawImage(logo, image.Pt(0, 0)); err != nil {
			return err
		}
	}

	if plan.done != "" {
		r.log(plan.done)
	}
	return nil
}
