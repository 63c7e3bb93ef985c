//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"

	"h7tft/board"
)

type serialLogger struct{}

// WriteLineString writes to the debug console (semihosting or UART,
// whichever the target routes machine.Serial to).
func (l *serialLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		machine.Serial.WriteByte(s[i])
	}
	machine.Serial.WriteByte('\r')
	machine.Serial.WriteByte('\n')
}

func (l *serialLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		machine.Serial.WriteByte(b[i])
	}
	machine.Serial.WriteByte('\r')
	machine.Serial.WriteByte('\n')
}

// sysTickDelay sleeps on the runtime tick timer.
type sysTickDelay struct{}

func (sysTickDelay) DelayMs(ms uint32) { time.Sleep(time.Duration(ms) * time.Millisecond) }
func (sysTickDelay) DelayNs(ns uint32) { time.Sleep(time.Duration(ns)) }

type pinOut struct {
	pin machine.Pin
}

func (p pinOut) Set(high bool) error {
	p.pin.Set(high)
	return nil
}

func machinePin(p board.Pin) machine.Pin {
	return machine.Pin(p.Index())
}

func configureOutput(p board.Pin) machine.Pin {
	mp := machinePin(p)
	mp.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return mp
}
