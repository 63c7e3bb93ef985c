package hal

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"h7tft/board"
	"h7tft/clock"
	"h7tft/display"

	"periph.io/x/conn/v3/physic"
)

var displayClocks = clock.Config{SysCK: 96 * physic.MegaHertz, PLL1Q: 48 * physic.MegaHertz}

func newTestHost(t *testing.T) (*hostHAL, *bytes.Buffer, *VirtualClock) {
	t.Helper()
	var out bytes.Buffer
	vc := &VirtualClock{}
	return newHost(HostConfig{Out: &out, Sleep: vc.Sleep}), &out, vc
}

func TestBringUpTakesOnce(t *testing.T) {
	h, out, _ := newTestHost(t)
	c, err := h.BringUp(displayClocks)
	if err != nil {
		t.Fatalf("BringUp: %v", err)
	}
	if c.SysCK != 96*physic.MegaHertz {
		t.Fatalf("sys_ck = %v", c.SysCK)
	}
	if got := out.String(); got != "Setup PWR...\nSetup RCC...\n" {
		t.Fatalf("log = %q", got)
	}
	if _, err := h.BringUp(displayClocks); !errors.Is(err, board.ErrTaken) {
		t.Fatalf("second BringUp err = %v, want ErrTaken", err)
	}
}

func TestBringUpRejectsBadClocks(t *testing.T) {
	h, _, _ := newTestHost(t)
	if _, err := h.BringUp(clock.Config{SysCK: 900 * physic.MegaHertz}); err == nil {
		t.Fatal("expected error for 900MHz sys_ck")
	}
}

func TestBringUpRetryAfterBadConfig(t *testing.T) {
	h, _, _ := newTestHost(t)
	if _, err := h.BringUp(clock.Config{SysCK: 450 * physic.MegaHertz}); err == nil {
		t.Fatal("expected error for unreachable sys_ck")
	}
	if _, err := h.BringUp(displayClocks); err != nil {
		t.Fatalf("BringUp after rejected config: %v", err)
	}
}

func TestBringUpChecksRunningClock(t *testing.T) {
	tests := []struct {
		name    string
		running physic.Frequency
		wantErr bool
	}{
		{"follows plan", 0, false},
		{"within tolerance", 96500 * physic.KiloHertz, false},
		{"still on hsi", 64 * physic.MegaHertz, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			h := newHost(HostConfig{Out: &out, Sleep: (&VirtualClock{}).Sleep, SysCK: tt.running})
			_, err := h.BringUp(displayClocks)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("BringUp: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrClockMismatch) || !strings.HasPrefix(err.Error(), "rcc: ") {
				t.Fatalf("BringUp err = %v, want rcc: ErrClockMismatch", err)
			}
			if _, err := h.OutputPin(board.PE3, board.RoleLED); !errors.Is(err, ErrNotBroughtUp) {
				t.Fatalf("OutputPin err = %v, want ErrNotBroughtUp", err)
			}
		})
	}
}

func TestOutputPinNeedsBringUp(t *testing.T) {
	h, _, _ := newTestHost(t)
	if _, err := h.OutputPin(board.PE3, board.RoleLED); !errors.Is(err, ErrNotBroughtUp) {
		t.Fatalf("OutputPin err = %v, want ErrNotBroughtUp", err)
	}
}

func TestOutputPinExclusive(t *testing.T) {
	h, _, _ := newTestHost(t)
	if _, err := h.BringUp(displayClocks); err != nil {
		t.Fatalf("BringUp: %v", err)
	}
	pin, err := h.OutputPin(board.PE3, board.RoleLED)
	if err != nil {
		t.Fatalf("OutputPin: %v", err)
	}
	if _, err := h.OutputPin(board.PE3, board.RoleLED); !errors.Is(err, board.ErrPinInUse) {
		t.Fatalf("second OutputPin err = %v, want ErrPinInUse", err)
	}

	for _, level := range []bool{true, true, false, true} {
		if err := pin.Set(level); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	if got := h.PinEdges(board.PE3); got != 3 {
		t.Fatalf("edges = %d, want 3", got)
	}
	if level, ok := h.PinLevel(board.PE3); !ok || !level {
		t.Fatalf("PinLevel = %v, %v; want high", level, ok)
	}
}

func TestVerbosePinLogging(t *testing.T) {
	var out bytes.Buffer
	h := newHost(HostConfig{Out: &out, Sleep: (&VirtualClock{}).Sleep, Verbose: true})
	if _, err := h.BringUp(displayClocks); err != nil {
		t.Fatalf("BringUp: %v", err)
	}
	pin, err := h.OutputPin(board.PE3, board.RoleLED)
	if err != nil {
		t.Fatalf("OutputPin: %v", err)
	}
	_ = pin.Set(true)
	if !strings.Contains(out.String(), "gpio: PE3 (led): HIGH") {
		t.Fatalf("log = %q", out.String())
	}
}

func TestOpenDisplayOwnsBinding(t *testing.T) {
	h, _, _ := newTestHost(t)
	if _, err := h.BringUp(displayClocks); err != nil {
		t.Fatalf("BringUp: %v", err)
	}
	if _, err := h.OpenDisplay(board.LCDBinding, display.LCDOptions); err != nil {
		t.Fatalf("OpenDisplay: %v", err)
	}
	if _, err := h.OutputPin(board.PE10, board.RoleLED); !errors.Is(err, board.ErrPinInUse) {
		t.Fatalf("OutputPin(PE10) err = %v, want ErrPinInUse", err)
	}
	if _, err := h.OpenDisplay(board.MIPIBinding, display.MIPIOptions); !errors.Is(err, board.ErrBusInUse) {
		t.Fatalf("second OpenDisplay err = %v, want ErrBusInUse", err)
	}
}

func TestHostPanelInit(t *testing.T) {
	h, _, vc := newTestHost(t)
	if _, err := h.BringUp(displayClocks); err != nil {
		t.Fatalf("BringUp: %v", err)
	}
	d, err := h.OpenDisplay(board.LCDBinding, display.LCDOptions)
	if err != nil {
		t.Fatalf("OpenDisplay: %v", err)
	}
	p := d.Panel()
	if w, hh := p.Size(); w != 0 || hh != 0 {
		t.Fatalf("Size before Init = %dx%d, want 0x0", w, hh)
	}
	if err := p.Display(); err == nil {
		t.Fatal("expected Display error before Init")
	}
	if err := p.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if w, hh := p.Size(); w != 160 || hh != 80 {
		t.Fatalf("Size = %dx%d, want 160x80", w, hh)
	}
	// Pins start low: high, low, high.
	if got := h.PinEdges(board.PE15); got != 3 {
		t.Fatalf("reset edges = %d, want 3", got)
	}
	if level, _ := h.PinLevel(board.PE10); !level {
		t.Fatal("backlight off after Init")
	}
	if got := vc.Elapsed(); got != 175*time.Millisecond {
		t.Fatalf("reset took %v, want 175ms", got)
	}
}

func TestHostPanelDraw(t *testing.T) {
	h, _, _ := newTestHost(t)
	if _, err := h.BringUp(displayClocks); err != nil {
		t.Fatalf("BringUp: %v", err)
	}
	d, err := h.OpenDisplay(board.LCDBinding, display.LCDOptions)
	if err != nil {
		t.Fatalf("OpenDisplay: %v", err)
	}
	p := d.Panel()
	if err := p.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if v, _ := h.PanelPixel(0, 0); v != 0xA5A5 {
		t.Fatalf("fresh RAM = %#04x, want 0xa5a5", v)
	}

	p.FillScreen(color.RGBA{A: 255})
	if err := p.DrawRGBBitmap8(10, 5, []byte{0xF8, 0x00, 0x07, 0xE0}, 2, 1); err != nil {
		t.Fatalf("DrawRGBBitmap8: %v", err)
	}
	if v, _ := h.PanelPixel(10, 5); v != 0xF800 {
		t.Fatalf("pixel (10,5) = %#04x, want 0xf800", v)
	}
	if v, _ := h.PanelPixel(11, 5); v != 0x07E0 {
		t.Fatalf("pixel (11,5) = %#04x, want 0x07e0", v)
	}
	if v, _ := h.PanelPixel(12, 5); v != 0 {
		t.Fatalf("pixel (12,5) = %#04x, want 0", v)
	}
	if err := p.DrawRGBBitmap8(159, 0, []byte{0, 0, 0, 0}, 2, 1); err == nil {
		t.Fatal("expected out of range error")
	}
	if draws, _ := h.PanelDraws(); draws != 1 {
		t.Fatalf("draws = %d, want 1", draws)
	}
}

func TestIdleSignalsAndCancels(t *testing.T) {
	h, _, _ := newTestHost(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Idle(ctx) }()

	select {
	case <-h.Idled():
	case <-time.After(5 * time.Second):
		t.Fatal("Idle did not signal")
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Idle err = %v, want context.Canceled", err)
	}
}

func TestDelayUsesSleep(t *testing.T) {
	h, _, vc := newTestHost(t)
	h.Delay().DelayMs(3)
	h.Delay().DelayNs(500)
	if got := vc.Elapsed(); got != 3*time.Millisecond+500*time.Nanosecond {
		t.Fatalf("elapsed = %v", got)
	}
}

func TestRunHeadlessWritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.png")
	run := func(ctx context.Context, h HAL) error {
		if _, err := h.BringUp(displayClocks); err != nil {
			return err
		}
		d, err := h.OpenDisplay(board.MIPIBinding, display.MIPIOptions)
		if err != nil {
			return err
		}
		if err := d.Panel().Init(); err != nil {
			return err
		}
		d.Panel().FillScreen(color.RGBA{R: 255, A: 255})
		return h.Idle(ctx)
	}
	cfg := HeadlessConfig{
		Enabled: true,
		Timeout: 10 * time.Second,
		Out:     out,
		Host:    HostConfig{Out: &bytes.Buffer{}, Sleep: (&VirtualClock{}).Sleep},
	}
	if err := RunHeadless(context.Background(), run, cfg); err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 80 || b.Dy() != 160 {
		t.Fatalf("png bounds = %v, want 80x160", b)
	}
	if r, g, b, _ := img.At(40, 80).RGBA(); r>>8 != 0xFF || g != 0 || b != 0 {
		t.Fatalf("png pixel = %d,%d,%d, want red", r>>8, g, b)
	}
}

func TestRunHeadlessReturnsSketchError(t *testing.T) {
	boom := errors.New("boom")
	run := func(ctx context.Context, h HAL) error { return boom }
	cfg := HeadlessConfig{Host: HostConfig{Out: &bytes.Buffer{}}}
	if err := RunHeadless(context.Background(), run, cfg); !errors.Is(err, boom) {
		t.Fatalf("RunHeadless err = %v, want boom", err)
	}
}
