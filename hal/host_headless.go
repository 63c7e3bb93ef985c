//go:build !baremetal

package hal

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	// Timeout stops sketches that never idle (blinky). Zero waits forever.
	Timeout time.Duration
	// Out is a PNG path for the panel contents once the sketch idles.
	Out  string
	Host HostConfig
}

// RunHeadless runs a sketch without opening a window. It returns once the
// sketch reaches Idle, fails, or ctx/Timeout ends it.
func RunHeadless(ctx context.Context, run func(context.Context, HAL) error, cfg HeadlessConfig) error {
	h := newHost(cfg.Host)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cfg.Timeout > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, cfg.Timeout)
		defer stop()
	}

	errc := make(chan error, 1)
	go func() { errc <- run(ctx, h) }()

	var err error
	select {
	case <-h.Idled():
		cancel()
		err = <-errc
	case err = <-errc:
	case <-ctx.Done():
		err = <-errc
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return err
	}

	if cfg.Out != "" {
		if err := writePNG(h, cfg.Out); err != nil {
			return err
		}
	}
	return nil
}

func writePNG(h *hostHAL, path string) error {
	img, ok := h.PanelImage()
	if !ok {
		return fmt.Errorf("png %q: sketch opened no display", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %q: %w", path, err)
	}
	return f.Close()
}
