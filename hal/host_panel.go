//go:build !baremetal

package hal

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"h7tft/display"
)

var errPanelNotReady = errors.New("panel: not initialized")

// hostPanel simulates an ST7735 behind its driver: controller RAM as seen
// through the configured rotation, stored as little-endian RGB565.
type hostPanel struct {
	mu     sync.Mutex
	width  int16
	height int16
	stride int
	buf    []byte

	opts      display.Options
	rst       *virtualPin
	backlight *virtualPin
	delay     Delay

	ready    bool
	draws    int
	presents int
}

func newHostPanel(opts display.Options, rst, backlight *virtualPin, delay Delay) *hostPanel {
	stride := int(opts.Width) * 2
	p := &hostPanel{
		width:     opts.Width,
		height:    opts.Height,
		stride:    stride,
		buf:       make([]byte, stride*int(opts.Height)),
		opts:      opts,
		rst:       rst,
		backlight: backlight,
		delay:     delay,
	}
	// Controller RAM is undefined after power-on.
	for i := range p.buf {
		p.buf[i] = 0xA5
	}
	return p
}

// Init mirrors the driver's reset pulse and turns the backlight on.
func (p *hostPanel) Init() error {
	_ = p.rst.Set(true)
	p.delay.DelayMs(5)
	_ = p.rst.Set(false)
	p.delay.DelayMs(20)
	_ = p.rst.Set(true)
	p.delay.DelayMs(150)
	_ = p.backlight.Set(true)

	p.mu.Lock()
	p.ready = true
	p.mu.Unlock()
	return nil
}

func (p *hostPanel) Size() (x, y int16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return 0, 0
	}
	return p.width, p.height
}

func (p *hostPanel) SetPixel(x, y int16, c color.RGBA) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready || x < 0 || y < 0 || x >= p.width || y >= p.height {
		return
	}
	p.put(int(x), int(y), display.RGB565(c.R, c.G, c.B))
}

func (p *hostPanel) put(x, y int, v uint16) {
	off := y*p.stride + x*2
	p.buf[off] = byte(v)
	p.buf[off+1] = byte(v >> 8)
}

func (p *hostPanel) FillScreen(c color.RGBA) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return
	}
	pixel := display.RGB565(c.R, c.G, c.B)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(p.buf); i += 2 {
		p.buf[i] = lo
		p.buf[i+1] = hi
	}
}

// DrawRGBBitmap8 takes big-endian pixels, as they go out on the wire.
func (p *hostPanel) DrawRGBBitmap8(x, y int16, data []uint8, w, h int16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return errPanelNotReady
	}
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > p.width || y+h > p.height {
		return errors.New("panel: window out of range")
	}
	if len(data) < int(w)*int(h)*2 {
		return errors.New("panel: short pixel data")
	}
	i := 0
	for row := 0; row < int(h); row++ {
		for col := 0; col < int(w); col++ {
			p.put(int(x)+col, int(y)+row, uint16(data[i])<<8|uint16(data[i+1]))
			i += 2
		}
	}
	p.draws++
	return nil
}

func (p *hostPanel) Display() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return errPanelNotReady
	}
	p.presents++
	return nil
}

// Pixel reads back controller RAM at (x, y).
func (p *hostPanel) Pixel(x, y int) uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	off := y*p.stride + x*2
	return uint16(p.buf[off]) | uint16(p.buf[off+1])<<8
}

// Draws counts bitmap writes, Presents counts flushes.
func (p *hostPanel) Draws() (draws, presents int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draws, p.presents
}

func (p *hostPanel) snapshotRGB565(dst []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	copy(dst, p.buf)
}

// Image converts the panel contents to RGBA.
func (p *hostPanel) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(p.width), int(p.height)))
	src := make([]byte, len(p.buf))
	p.snapshotRGB565(src)
	rgb565ToRGBA(img.Pix, src)
	return img
}

func rgb565ToRGBA(dst, src []byte) {
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		c := display.RGBAFrom565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = c.R
		dst[j+1] = c.G
		dst[j+2] = c.B
		dst[j+3] = 0xFF
	}
}

type hostDisplay struct {
	panel     *hostPanel
	backlight *virtualPin
}

func (d hostDisplay) Panel() display.Panel { return d.panel }
func (d hostDisplay) Backlight() OutputPin { return d.backlight }
