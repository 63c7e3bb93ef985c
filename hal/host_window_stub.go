//go:build !baremetal && (tinygo || !cgo)

package hal

import (
	"context"
	"errors"

	"h7tft/board"
)

// WindowConfig mirrors the cgo build so callers compile either way.
type WindowConfig struct {
	Scale int
	LED   board.Pin
	Host  HostConfig
}

func RunWindow(_ func(context.Context, HAL) error, _ WindowConfig) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
