//go:build tinygo && baremetal && cortexm

package hal

import (
	"context"
	"device/arm"
)

// wfi sleeps until an interrupt. None are enabled, so it never returns.
func wfi(_ context.Context) error {
	for {
		arm.Asm("wfi")
	}
}
