//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"image"

	"h7tft/board"
	"h7tft/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// WindowConfig controls the desktop simulator window.
type WindowConfig struct {
	Scale int
	// LED is shown as a lamp while no panel is open.
	LED  board.Pin
	Host HostConfig
}

// RunWindow starts a desktop window that shows the simulated panel while the
// sketch runs. It blocks until the window closes or the sketch fails.
func RunWindow(run func(context.Context, HAL) error, cfg WindowConfig) error {
	if cfg.Scale <= 0 {
		cfg.Scale = 4
	}
	h := newHost(cfg.Host)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- run(ctx, h) }()

	g := &hostGame{h: h, errc: errc, led: cfg.LED}
	ebiten.SetWindowTitle("h7tft (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(160*cfg.Scale, 160*cfg.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h    *hostHAL
	errc chan error
	led  board.Pin

	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
}

func (g *hostGame) Update() error {
	select {
	case err := <-g.errc:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	default:
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	p := g.h.currentPanel()
	if p == nil {
		g.drawLED(screen)
		return
	}
	w, h := int(p.width), int(p.height)
	if g.img == nil || g.img.Bounds().Dx() != w || g.img.Bounds().Dy() != h {
		g.img = image.NewRGBA(image.Rect(0, 0, w, h))
		g.scratch = make([]byte, len(p.buf))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(w, h)
	}

	p.snapshotRGB565(g.scratch)
	rgb565ToRGBA(g.img.Pix, g.scratch)
	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) drawLED(screen *ebiten.Image) {
	if level, ok := g.h.PinLevel(g.led); ok && level {
		screen.Fill(ledOn)
		return
	}
	screen.Fill(ledOff)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if p := g.h.currentPanel(); p != nil {
		return int(p.width), int(p.height)
	}
	return 16, 16
}
