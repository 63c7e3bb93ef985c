package display

import (
	"encoding/binary"
	"image"
	"image/color"
)

// RawImage is headerless RGB565 pixel data, rows packed without padding.
type RawImage struct {
	Data  []byte
	Width int
	Order binary.ByteOrder
}

// NewRawLE wraps little-endian RGB565 data of the given width.
func NewRawLE(data []byte, width int) RawImage {
	return RawImage{Data: data, Width: width, Order: binary.LittleEndian}
}

func (r RawImage) Height() int {
	if r.Width <= 0 {
		return 0
	}
	return len(r.Data) / 2 / r.Width
}

func (r RawImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height())
}

func (r RawImage) ColorModel() color.Model { return color.RGBAModel }

// RGB565At returns the pixel at (x, y), or 0 outside the image.
func (r RawImage) RGB565At(x, y int) uint16 {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height() {
		return 0
	}
	off := (y*r.Width + x) * 2
	return r.Order.Uint16(r.Data[off : off+2])
}

func (r RawImage) At(x, y int) color.Color {
	return RGBAFrom565(r.RGB565At(x, y))
}

// RGB565 packs an 8-bit colour as rrrrrggggggbbbbb.
func RGB565(r, g, b uint8) uint16 {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>2) & 0x3F
	bb := uint16(b>>3) & 0x1F
	return (rr << 11) | (gg << 5) | bb
}

// RGBAFrom565 expands an RGB565 value. RGB565(RGBAFrom565(v)) == v.
func RGBAFrom565(p uint16) color.RGBA {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F
	return color.RGBA{
		R: uint8((rr * 255) / 31),
		G: uint8((gg * 255) / 63),
		B: uint8((bb * 255) / 31),
		A: 0xFF,
	}
}
