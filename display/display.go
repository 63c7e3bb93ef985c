// Package display runs a drawing session on an ST7735 panel.
//
// The panel driver is external: anything that can reset and initialise the
// controller, fill it and accept big-endian RGB565 rectangles satisfies
// Panel. The session adds geometry checks and clipping on top.
package display

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/pixel"
)

var ErrNotInitialized = errors.New("display: not initialized")

// Panel is the driver contract.
type Panel interface {
	drivers.Displayer

	// Init pulses RESET and sends the controller init sequence.
	Init() error
	FillScreen(c color.RGBA)
	// DrawRGBBitmap8 writes big-endian RGB565 pixels into a w*h window at (x, y).
	DrawRGBBitmap8(x, y int16, data []uint8, w, h int16) error
}

// Session owns a panel for the rest of the program.
type Session struct {
	p     Panel
	opts  Options
	ready bool
}

func Open(p Panel, opts Options) (*Session, error) {
	if p == nil {
		return nil, errors.New("display: nil panel")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Session{p: p, opts: opts}, nil
}

func (s *Session) Options() Options { return s.opts }

func (s *Session) Size() (w, h int16) { return s.opts.Width, s.opts.Height }

// Init resets and configures the controller.
func (s *Session) Init() error {
	if err := s.p.Init(); err != nil {
		return fmt.Errorf("display: init: %w", err)
	}
	if w, h := s.p.Size(); w != s.opts.Width || h != s.opts.Height {
		return fmt.Errorf("display: panel reports %dx%d, want %dx%d", w, h, s.opts.Width, s.opts.Height)
	}
	s.ready = true
	return nil
}

// Clear fills the whole panel with c.
func (s *Session) Clear(c color.RGBA) error {
	if !s.ready {
		return ErrNotInitialized
	}
	s.p.FillScreen(c)
	if err := s.p.Display(); err != nil {
		return fmt.Errorf("display: clear: %w", err)
	}
	return nil
}

// visible is the part of r, placed at at, that lands on the panel.
func (s *Session) visible(r image.Rectangle, at image.Point) image.Rectangle {
	screen := image.Rect(0, 0, int(s.opts.Width), int(s.opts.Height))
	return r.Sub(r.Min).Add(at).Intersect(screen)
}

// DrawRaw blits img with its top-left corner at at. Pixels off the panel
// are clipped.
func (s *Session) DrawRaw(img RawImage, at image.Point) error {
	if !s.ready {
		return ErrNotInitialized
	}
	if img.Width <= 0 || len(img.Data)%(2*img.Width) != 0 {
		return fmt.Errorf("display: raw image of %d bytes is not %d pixels wide", len(img.Data), img.Width)
	}
	vis := s.visible(img.Bounds(), at)
	if vis.Empty() {
		return nil
	}

	buf := make([]byte, 0, vis.Dx()*vis.Dy()*2)
	for y := vis.Min.Y; y < vis.Max.Y; y++ {
		for x := vis.Min.X; x < vis.Max.X; x++ {
			p := img.RGB565At(x-at.X, y-at.Y)
			buf = append(buf, byte(p>>8), byte(p))
		}
	}
	return s.blit(vis, buf)
}

// DrawImage converts img to RGB565 and blits it with its top-left corner at at.
func (s *Session) DrawImage(img image.Image, at image.Point) error {
	if !s.ready {
		return ErrNotInitialized
	}
	b := img.Bounds()
	vis := s.visible(b, at)
	if vis.Empty() {
		return nil
	}

	buf := pixel.NewImage[pixel.RGB565BE](vis.Dx(), vis.Dy())
	for y := vis.Min.Y; y < vis.Max.Y; y++ {
		for x := vis.Min.X; x < vis.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+x-at.X, b.Min.Y+y-at.Y)).(color.RGBA)
			buf.Set(x-vis.Min.X, y-vis.Min.Y, pixel.NewColor[pixel.RGB565BE](c.R, c.G, c.B))
		}
	}
	return s.blit(vis, buf.RawBuffer())
}

func (s *Session) blit(r image.Rectangle, data []byte) error {
	err := s.p.DrawRGBBitmap8(int16(r.Min.X), int16(r.Min.Y), data, int16(r.Dx()), int16(r.Dy()))
	if err != nil {
		return fmt.Errorf("display: draw %v: %w", r, err)
	}
	if err := s.p.Display(); err != nil {
		return fmt.Errorf("display: flush: %w", err)
	}
	return nil
}
