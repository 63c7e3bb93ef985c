package hal

import (
	"fmt"

	"h7tft/board"
	"h7tft/clock"

	"periph.io/x/conn/v3/physic"
)

// bringUp is the board state shared by every HAL flavour.
type bringUp struct {
	dev    board.Device
	periph *board.Peripherals
	clocks clock.Clocks
}

// freeze validates cfg, takes the peripherals and checks the plan against
// running, the sys_ck the core actually runs at. A zero running skips the
// check.
func (b *bringUp) freeze(l Logger, cfg clock.Config, running physic.Frequency) (clock.Clocks, error) {
	if _, err := clock.Power(cfg.SysCK); err != nil {
		return clock.Clocks{}, fmt.Errorf("pwr: %w", err)
	}
	c, err := clock.Freeze(cfg)
	if err != nil {
		return clock.Clocks{}, fmt.Errorf("rcc: %w", err)
	}

	p, err := b.dev.Take()
	if err != nil {
		return clock.Clocks{}, err
	}
	b.periph = p

	l.WriteLineString("Setup PWR...")
	l.WriteLineString("Setup RCC...")
	if running != 0 && !clock.Within(running, c.SysCK, clock.HSITolerance) {
		return clock.Clocks{}, fmt.Errorf("rcc: %w: running %v, planned %v", ErrClockMismatch, running, c.SysCK)
	}
	b.clocks = c
	return c, nil
}

func (b *bringUp) peripherals() (*board.Peripherals, error) {
	if b.periph == nil || b.clocks.SysCK == 0 {
		return nil, ErrNotBroughtUp
	}
	return b.periph, nil
}

func (b *bringUp) claimPin(p board.Pin, role board.Role) error {
	periph, err := b.peripherals()
	if err != nil {
		return err
	}
	return periph.Pins.Claim(p, role)
}

// claimDisplay claims the binding and returns the SPI rate the bus will run at.
func (b *bringUp) claimDisplay(bind board.Binding, owner string) (physic.Frequency, error) {
	periph, err := b.peripherals()
	if err != nil {
		return 0, err
	}
	_, rate, err := b.clocks.SPIPrescaler(bind.SPI.Bus, bind.SPI.Frequency)
	if err != nil {
		return 0, err
	}
	if err := periph.Pins.ClaimBinding(bind, owner); err != nil {
		return 0, err
	}
	return rate, nil
}
