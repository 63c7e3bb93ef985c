package display

import (
	"fmt"

	"h7tft/x/mathx"

	"tinygo.org/x/drivers"
)

// Controller RAM of the ST7735; the 80x160 glass sits inside it.
const (
	ControllerColumns = 132
	ControllerRows    = 162
)

type Model uint8

const (
	ModelST7735s Model = iota + 1
)

func (m Model) String() string {
	switch m {
	case ModelST7735s:
		return "ST7735s"
	}
	return fmt.Sprintf("Model(%d)", uint8(m))
}

// ColorOrder is the subpixel order the glass is wired for.
type ColorOrder uint8

const (
	RGB ColorOrder = iota
	BGR
)

func (o ColorOrder) String() string {
	if o == BGR {
		return "bgr"
	}
	return "rgb"
}

// Offset positions the glass inside controller RAM, in unrotated
// (portrait) coordinates. The driver applies it for every rotation.
type Offset struct {
	Column int16
	Row    int16
}

// Options fix the panel geometry for the lifetime of a session. Width and
// Height are as seen after rotation.
type Options struct {
	Model      Model
	Width      int16
	Height     int16
	ColorOrder ColorOrder
	Rotation   drivers.Rotation
	Invert     bool
	Offset     Offset
}

var (
	// LCDOptions is the landscape-swapped layout: 160x80, rotated 270°,
	// BGR glass with inverted colours.
	LCDOptions = Options{
		Model:      ModelST7735s,
		Width:      160,
		Height:     80,
		ColorOrder: BGR,
		Rotation:   drivers.Rotation270,
		Invert:     true,
		Offset:     Offset{Column: 26, Row: 1},
	}

	// MIPIOptions is the portrait layout: 80x160, RGB glass.
	MIPIOptions = Options{
		Model:      ModelST7735s,
		Width:      80,
		Height:     160,
		ColorOrder: RGB,
		Rotation:   drivers.Rotation0,
		Offset:     Offset{Column: 26, Row: 1},
	}
)

// Rotated reports whether the rotation swaps width and height.
func (o Options) Rotated() bool {
	return o.Rotation == drivers.Rotation90 || o.Rotation == drivers.Rotation270
}

// NativeSize is the unrotated glass size.
func (o Options) NativeSize() (w, h int16) {
	if o.Rotated() {
		return o.Height, o.Width
	}
	return o.Width, o.Height
}

func (o Options) Validate() error {
	if o.Model != ModelST7735s {
		return fmt.Errorf("display: unsupported model %v", o.Model)
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("display: invalid size %dx%d", o.Width, o.Height)
	}
	if !mathx.Between(o.Rotation, drivers.Rotation0, drivers.Rotation270) {
		return fmt.Errorf("display: invalid rotation %d", o.Rotation)
	}
	if o.ColorOrder != RGB && o.ColorOrder != BGR {
		return fmt.Errorf("display: invalid colour order %d", o.ColorOrder)
	}
	w, h := o.NativeSize()
	if o.Offset.Column < 0 || int(w)+int(o.Offset.Column) > ControllerColumns {
		return fmt.Errorf("display: %d columns at offset %d exceed controller width %d", w, o.Offset.Column, ControllerColumns)
	}
	if o.Offset.Row < 0 || int(h)+int(o.Offset.Row) > ControllerRows {
		return fmt.Errorf("display: %d rows at offset %d exceed controller height %d", h, o.Offset.Row, ControllerRows)
	}
	return nil
}
