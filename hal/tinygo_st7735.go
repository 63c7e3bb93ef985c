//go:build tinygo && baremetal

package hal

import (
	"image/color"

	"tinygo.org/x/drivers/st7735"
)

// st7735Panel adapts the ST7735 driver to display.Panel.
type st7735Panel struct {
	dev    *st7735.Device
	cfg    st7735.Config
	bgr    bool
	invert bool
}

func (p *st7735Panel) Init() error {
	p.dev.Configure(p.cfg)
	// MADCTL carries the colour order, so it is rewritten after Configure.
	p.dev.IsBGR(p.bgr)
	if err := p.dev.SetRotation(p.cfg.Rotation); err != nil {
		return err
	}
	p.dev.InvertColors(p.invert)
	return nil
}

func (p *st7735Panel) Size() (x, y int16)                { return p.dev.Size() }
func (p *st7735Panel) SetPixel(x, y int16, c color.RGBA) { p.dev.SetPixel(x, y, c) }
func (p *st7735Panel) Display() error                    { return p.dev.Display() }
func (p *st7735Panel) FillScreen(c color.RGBA)           { p.dev.FillScreen(c) }

func (p *st7735Panel) DrawRGBBitmap8(x, y int16, data []uint8, w, h int16) error {
	return p.dev.DrawRGBBitmap8(x, y, data, w, h)
}
