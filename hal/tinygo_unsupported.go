//go:build tinygo && baremetal && !stm32h7

package hal

import (
	"context"

	"h7tft/board"
	"h7tft/clock"
	"h7tft/display"
)

// unsupportedHAL keeps the console alive on boards without a pin map so the
// fatal report still reaches the debug console.
type unsupportedHAL struct {
	logger *serialLogger
}

func New() HAL {
	return &unsupportedHAL{logger: &serialLogger{}}
}

func (h *unsupportedHAL) Logger() Logger { return h.logger }
func (h *unsupportedHAL) Delay() Delay   { return sysTickDelay{} }

func (h *unsupportedHAL) BringUp(clock.Config) (clock.Clocks, error) {
	return clock.Clocks{}, ErrNotImplemented
}

func (h *unsupportedHAL) OutputPin(board.Pin, board.Role) (OutputPin, error) {
	return nil, ErrNotImplemented
}

func (h *unsupportedHAL) OpenDisplay(board.Binding, display.Options) (Display, error) {
	return nil, ErrNotImplemented
}

func (h *unsupportedHAL) Idle(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
