package hal

import (
	"context"
	"errors"

	"h7tft/board"
	"h7tft/clock"
	"h7tft/display"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// OutputPin is a push-pull output.
type OutputPin interface {
	Set(high bool) error
}

// Delay blocks the caller. It is only valid after BringUp.
type Delay interface {
	DelayMs(ms uint32)
	DelayNs(ns uint32)
}

// Display is a bound but not yet initialised panel plus its backlight line.
type Display interface {
	Panel() display.Panel
	Backlight() OutputPin
}

var (
	ErrNotImplemented = errors.New("not implemented")
	ErrNotBroughtUp   = errors.New("hal: bring-up not done")
	// ErrClockMismatch means the core runs at a sys_ck other than the plan.
	ErrClockMismatch = errors.New("sys_ck off plan")
)

// HAL provides the only contact point between the sketches and the board.
type HAL interface {
	Logger() Logger

	// BringUp takes the device peripherals and freezes power and clocks.
	BringUp(cfg clock.Config) (clock.Clocks, error)
	Delay() Delay

	// OutputPin claims p for role and configures it as a push-pull output.
	OutputPin(p board.Pin, role board.Role) (OutputPin, error)
	// OpenDisplay claims the binding's pins and bus, configures the SPI
	// master and constructs the panel driver.
	OpenDisplay(b board.Binding, opts display.Options) (Display, error)

	// Idle halts until ctx is done. On the MCU ctx is never done.
	Idle(ctx context.Context) error
}
