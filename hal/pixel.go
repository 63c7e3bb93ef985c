//go:build !baremetal

package hal

import "image/color"

var (
	ledOn  = color.RGBA{R: 0x20, G: 0xE0, B: 0x40, A: 0xFF}
	ledOff = color.RGBA{R: 0x10, G: 0x20, B: 0x10, A: 0xFF}
)
