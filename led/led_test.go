package led

import (
	"context"
	"errors"
	"testing"
)

type step struct {
	high bool
	ms   uint32
}

// recorder is both the pin and the delay: it pairs each level with the
// delay that followed it.
type recorder struct {
	level bool
	steps []step
	err   error
}

func (r *recorder) Set(high bool) error {
	r.level = high
	return r.err
}

func (r *recorder) DelayMs(ms uint32) {
	r.steps = append(r.steps, step{high: r.level, ms: ms})
}

func (r *recorder) count() (high, low int, total uint32) {
	for _, s := range r.steps {
		if s.high {
			high++
		} else {
			low++
		}
		total += s.ms
	}
	return
}

func TestDefaultBrightness(t *testing.T) {
	l := New(&recorder{})
	if got := l.Brightness(); got != 5 {
		t.Fatalf("Brightness() = %d, want 5", got)
	}
}

func TestUpdateDutyCycle(t *testing.T) {
	for v := uint8(0); v <= MaxBrightness; v++ {
		r := &recorder{}
		l := New(r)
		l.SetBrightness(v)
		l.Update(r)

		high, low, total := r.count()
		if high != int(v) || low != 10-int(v) {
			t.Fatalf("brightness %d: high=%d low=%d", v, high, low)
		}
		if total != 10 {
			t.Fatalf("brightness %d: frame %d ms, want 10", v, total)
		}
		for i, s := range r.steps {
			if s.ms != 1 {
				t.Fatalf("brightness %d: step %d lasted %d ms", v, i, s.ms)
			}
			// High steps come first.
			if s.high != (i < int(v)) {
				t.Fatalf("brightness %d: step %d high=%v", v, i, s.high)
			}
		}
	}
}

func TestSetBrightnessRejectsOutOfRange(t *testing.T) {
	l := New(&recorder{})
	l.SetBrightness(7)
	for _, v := range []uint8{11, 12, 100, 255} {
		l.SetBrightness(v)
		if got := l.Brightness(); got != 7 {
			t.Fatalf("SetBrightness(%d): Brightness() = %d, want 7", v, got)
		}
	}
}

func TestUpdateSwallowsPinErrors(t *testing.T) {
	r := &recorder{err: errors.New("gpio: pin PE10: stuck")}
	l := New(r)
	l.Update(r)
	if len(r.steps) != 10 {
		t.Fatalf("got %d steps, want 10", len(r.steps))
	}
}

func TestRunFrames(t *testing.T) {
	r := &recorder{}
	l := New(r)
	if err := l.Run(context.Background(), r, 3); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, _, total := r.count(); total != 30 {
		t.Fatalf("3 frames took %d ms, want 30", total)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Run(ctx, r, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run on cancelled ctx err = %v", err)
	}
}
