// Package led dims an LED with a blocking software PWM.
//
// One Update call emits a single 10 ms frame: ten 1 ms steps, the first
// Brightness of them high. Callers repeat Update to hold the level.
package led

import "context"

const (
	MaxBrightness     = 10
	DefaultBrightness = 5

	frameSteps = 10
)

// Pin is a push-pull output.
type Pin interface {
	Set(high bool) error
}

// Delay blocks for whole milliseconds.
type Delay interface {
	DelayMs(ms uint32)
}

type LED struct {
	pin        Pin
	brightness uint8
}

func New(pin Pin) *LED {
	return &LED{pin: pin, brightness: DefaultBrightness}
}

// SetBrightness accepts v in [0, MaxBrightness]; other values are ignored.
func (l *LED) SetBrightness(v uint8) {
	if v <= MaxBrightness {
		l.brightness = v
	}
}

func (l *LED) Brightness() uint8 { return l.brightness }

// Update emits one PWM frame. Pin errors are dropped: a missed edge only
// dims one step and there is nothing to recover.
func (l *LED) Update(d Delay) {
	for count := uint8(0); count < frameSteps; count++ {
		_ = l.pin.Set(count < l.brightness)
		d.DelayMs(1)
	}
}

// Run emits frames until ctx is done, or frames have been emitted when frames > 0.
func (l *LED) Run(ctx context.Context, d Delay, frames int) error {
	for n := 0; frames <= 0 || n < frames; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.Update(d)
	}
	return nil
}
