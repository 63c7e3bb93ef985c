//go:build tinygo && baremetal && stm32h7

package hal

import (
	"context"
	"device/stm32"
	"fmt"
	"machine"

	"h7tft/board"
	"h7tft/clock"
	"h7tft/display"

	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers/st7735"
)

// SPI4 pins on port E use alternate function 5.
const afSPI4 = 5

type h7HAL struct {
	logger *serialLogger
	delay  sysTickDelay
	bring  bringUp
}

// New returns the STM32H7 HAL.
//
// Console: machine.Serial. Display: SPI4 on port E.
func New() HAL {
	return &h7HAL{logger: &serialLogger{}}
}

func (h *h7HAL) Logger() Logger { return h.logger }
func (h *h7HAL) Delay() Delay   { return h.delay }

// BringUp plans the clock tree. The TinyGo runtime programs RCC before main,
// so the plan has to match the frequency it actually runs at.
func (h *h7HAL) BringUp(cfg clock.Config) (clock.Clocks, error) {
	running := physic.Frequency(machine.CPUFrequency()) * physic.Hertz
	return h.bring.freeze(h.logger, cfg, running)
}

func (h *h7HAL) OutputPin(p board.Pin, role board.Role) (OutputPin, error) {
	if err := h.bring.claimPin(p, role); err != nil {
		return nil, err
	}
	return pinOut{pin: configureOutput(p)}, nil
}

func (h *h7HAL) OpenDisplay(b board.Binding, opts display.Options) (Display, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if b.SPI.Bus != 4 {
		return nil, fmt.Errorf("spi%d: %w", b.SPI.Bus, ErrNotImplemented)
	}
	rate, err := h.bring.claimDisplay(b, opts.Model.String())
	if err != nil {
		return nil, err
	}

	bus := &machine.SPI{Bus: stm32.SPI4, AltFuncSelector: afSPI4}
	err = bus.Configure(machine.SPIConfig{
		Frequency: uint32(rate / physic.Hertz),
		SCK:       machinePin(b.SCK),
		SDO:       machinePin(b.MOSI),
		SDI:       machine.NoPin,
		Mode:      machine.Mode0,
	})
	if err != nil {
		return nil, fmt.Errorf("spi%d: %w", b.SPI.Bus, err)
	}

	bl := machinePin(b.Backlight)
	dev := st7735.New(bus, machinePin(b.RST), machinePin(b.DC), machinePin(b.CS), bl)
	w, hgt := opts.NativeSize()
	p := &st7735Panel{
		dev: &dev,
		cfg: st7735.Config{
			Width:        w,
			Height:       hgt,
			Rotation:     opts.Rotation,
			Model:        st7735.MINI80x160,
			ColumnOffset: opts.Offset.Column,
			RowOffset:    opts.Offset.Row,
		},
		bgr:    opts.ColorOrder == display.BGR,
		invert: opts.Invert,
	}
	return h7Display{panel: p, backlight: pinOut{pin: bl}}, nil
}

func (h *h7HAL) Idle(ctx context.Context) error { return wfi(ctx) }

type h7Display struct {
	panel     *st7735Panel
	backlight pinOut
}

func (d h7Display) Panel() display.Panel { return d.panel }
func (d h7Display) Backlight() OutputPin { return d.backlight }
