// Package assets holds the images compiled into the firmware.
package assets

import (
	"bytes"
	_ "embed"
	"fmt"
	"image"

	"h7tft/display"

	"golang.org/x/image/bmp"
)

const FerrisWidth = 86

//go:embed ferris.raw
var ferrisRaw []byte

//go:embed rust.bmp
var rustBMP []byte

// Ferris is the crab mascot as little-endian RGB565, 86x64.
func Ferris() display.RawImage {
	return display.NewRawLE(ferrisRaw, FerrisWidth)
}

// Logo decodes the rust logo BMP.
func Logo() (image.Image, error) {
	img, err := bmp.Decode(bytes.NewReader(rustBMP))
	if err != nil {
		return nil, fmt.Errorf("assets: decode rust.bmp: %w", err)
	}
	return img, nil
}
