package clock

import (
	"errors"
	"fmt"
	"math"

	"h7tft/x/mathx"

	"periph.io/x/conn/v3/physic"
)

const (
	// HSI is the internal oscillator feeding PLL1.
	HSI = 64 * physic.MegaHertz

	// HSITolerance is the factory-trimmed accuracy of the HSI over temperature.
	HSITolerance = 0.01

	// MaxSysCK is the highest sys_ck the family supports (VOS0).
	MaxSysCK = 480 * physic.MegaHertz

	vcoMin  = 192 * physic.MegaHertz
	vcoMax  = 836 * physic.MegaHertz
	hclkMax = 240 * physic.MegaHertz
	pclkMax = 100 * physic.MegaHertz

	// DIVM keeps the PLL reference within 2..16 MHz.
	divMMin = 4
	divMMax = 32
	divNMin = 4
	divNMax = 512
	divMax  = 128
)

var (
	ErrNoSolution = errors.New("clock: no pll1 solution")
	ErrPLL1QOff   = errors.New("clock: pll1_q disabled")
)

// VoltageScale is the core regulator output scale (PWR_D3CR.VOS).
type VoltageScale uint8

const (
	VOS0 VoltageScale = iota
	VOS1
	VOS2
	VOS3
)

func (v VoltageScale) String() string {
	switch v {
	case VOS0:
		return "VOS0"
	case VOS1:
		return "VOS1"
	case VOS2:
		return "VOS2"
	case VOS3:
		return "VOS3"
	}
	return fmt.Sprintf("VoltageScale(%d)", uint8(v))
}

// Config is the requested clock tree.
type Config struct {
	SysCK physic.Frequency
	// PLL1Q is the auxiliary output (USB/SPI123 kernel clock). Zero leaves it off.
	PLL1Q physic.Frequency
}

// PLL holds the PLL1 dividers. DivQ is zero when the Q output is disabled.
type PLL struct {
	DivM uint32
	DivN uint32
	DivP uint32
	DivQ uint32
	VCO  physic.Frequency
}

// Clocks is a frozen clock tree.
type Clocks struct {
	SysCK physic.Frequency
	HCLK  physic.Frequency
	PCLK1 physic.Frequency
	PCLK2 physic.Frequency
	PCLK3 physic.Frequency
	PCLK4 physic.Frequency
	PLL1Q physic.Frequency

	PLL          PLL
	HPRE         uint32
	PPRE         uint32
	Scale        VoltageScale
	FlashLatency uint8
}

// Power returns the voltage scale needed to run at sys.
func Power(sys physic.Frequency) (VoltageScale, error) {
	if sys <= 0 {
		return 0, fmt.Errorf("clock: sys_ck %v must be positive", sys)
	}
	if sys > MaxSysCK {
		return 0, fmt.Errorf("clock: sys_ck %v above %v", sys, MaxSysCK)
	}
	return scaleFor(sys), nil
}

// Freeze validates cfg and computes the resulting clock tree.
func Freeze(cfg Config) (Clocks, error) {
	if _, err := Power(cfg.SysCK); err != nil {
		return Clocks{}, err
	}
	if cfg.PLL1Q < 0 {
		return Clocks{}, fmt.Errorf("clock: pll1_q %v must not be negative", cfg.PLL1Q)
	}

	pll, err := solvePLL1(cfg.SysCK, cfg.PLL1Q)
	if err != nil {
		return Clocks{}, err
	}

	c := Clocks{
		SysCK: pll.VCO / physic.Frequency(pll.DivP),
		PLL:   pll,
		HPRE:  1,
		PPRE:  1,
	}
	if pll.DivQ != 0 {
		c.PLL1Q = pll.VCO / physic.Frequency(pll.DivQ)
	}
	for c.SysCK/physic.Frequency(c.HPRE) > hclkMax {
		c.HPRE *= 2
	}
	c.HCLK = c.SysCK / physic.Frequency(c.HPRE)
	for c.HCLK/physic.Frequency(c.PPRE) > pclkMax {
		c.PPRE *= 2
	}
	pclk := c.HCLK / physic.Frequency(c.PPRE)
	c.PCLK1, c.PCLK2, c.PCLK3, c.PCLK4 = pclk, pclk, pclk, pclk

	c.Scale = scaleFor(c.SysCK)
	c.FlashLatency, err = flashLatency(c.Scale, c.HCLK)
	if err != nil {
		return Clocks{}, err
	}
	return c, nil
}

// solvePLL1 searches DIVM, DIVN, DIVP and DIVQ for the outputs closest to
// sys and q. Both must land within HSITolerance. On ties the first candidate
// wins: the 2 MHz reference, then the lowest VCO.
func solvePLL1(sys, q physic.Frequency) (PLL, error) {
	var best PLL
	bestErr := math.Inf(1)
	for m := divMMax; m >= divMMin; m-- {
		ref := HSI / physic.Frequency(m)
		for n := divNMin; n <= divNMax; n++ {
			vco := ref * physic.Frequency(n)
			if vco < vcoMin {
				continue
			}
			if vco > vcoMax {
				break
			}
			pll, e, ok := fitOutputs(vco, sys, q)
			if !ok || e >= bestErr {
				continue
			}
			pll.DivM, pll.DivN = uint32(m), uint32(n)
			best, bestErr = pll, e
		}
	}
	if math.IsInf(bestErr, 1) {
		return PLL{}, fmt.Errorf("%w: sys_ck %v pll1_q %v", ErrNoSolution, sys, q)
	}
	return best, nil
}

// fitOutputs picks the P and Q dividers for one VCO and returns the summed
// relative error of both outputs.
func fitOutputs(vco, sys, q physic.Frequency) (PLL, float64, bool) {
	pll := PLL{VCO: vco}
	p, ok := nearestDiv(vco, sys, 2, true)
	if !ok {
		return PLL{}, 0, false
	}
	pll.DivP = p
	e := relErr(vco/physic.Frequency(p), sys)
	if q > 0 {
		dq, ok := nearestDiv(vco, q, 1, false)
		if !ok {
			return PLL{}, 0, false
		}
		pll.DivQ = dq
		e += relErr(vco/physic.Frequency(dq), q)
	}
	return pll, e, true
}

// nearestDiv returns the divider in [lo, divMax] whose output is closest to
// want, provided that output is within HSITolerance.
func nearestDiv(vco, want physic.Frequency, lo int64, even bool) (uint32, bool) {
	d0 := int64(vco / want)
	var best int64
	bestErr := math.Inf(1)
	for d := d0 - 1; d <= d0+2; d++ {
		if !mathx.Between(d, lo, divMax) || (even && d%2 != 0) {
			continue
		}
		got := vco / physic.Frequency(d)
		if !Within(got, want, HSITolerance) {
			continue
		}
		if e := relErr(got, want); e < bestErr {
			best, bestErr = d, e
		}
	}
	return uint32(best), best != 0
}

func relErr(got, want physic.Frequency) float64 {
	return float64(mathx.Max(got, want)-mathx.Min(got, want)) / float64(want)
}

func scaleFor(sys physic.Frequency) VoltageScale {
	switch {
	case sys <= 200*physic.MegaHertz:
		return VOS3
	case sys <= 300*physic.MegaHertz:
		return VOS2
	case sys <= 400*physic.MegaHertz:
		return VOS1
	}
	return VOS0
}

// Maximum AXI clock per flash wait state, per voltage scale (MHz).
var latencyTable = map[VoltageScale][]int64{
	VOS0: {70, 140, 185, 210, 225, 240},
	VOS1: {70, 140, 185, 210, 225},
	VOS2: {55, 110, 165, 225},
	VOS3: {45, 90, 135, 180, 225},
}

func flashLatency(scale VoltageScale, axi physic.Frequency) (uint8, error) {
	for ws, limit := range latencyTable[scale] {
		if axi <= physic.Frequency(limit)*physic.MegaHertz {
			return uint8(ws), nil
		}
	}
	return 0, fmt.Errorf("clock: axi clock %v too fast for %v", axi, scale)
}

// SPIKernel returns the kernel clock feeding SPI bus n with default mux settings.
func (c Clocks) SPIKernel(bus int) (physic.Frequency, error) {
	switch bus {
	case 1, 2, 3:
		if c.PLL1Q == 0 {
			return 0, fmt.Errorf("spi%d: %w", bus, ErrPLL1QOff)
		}
		return c.PLL1Q, nil
	case 4, 5:
		return c.PCLK2, nil
	case 6:
		return c.PCLK4, nil
	}
	return 0, fmt.Errorf("clock: unknown spi bus %d", bus)
}

// SPIPrescaler picks the power-of-two baud divider (2..256) giving the
// fastest SPI clock not above want.
func (c Clocks) SPIPrescaler(bus int, want physic.Frequency) (uint32, physic.Frequency, error) {
	if want <= 0 {
		return 0, 0, fmt.Errorf("clock: spi%d rate %v must be positive", bus, want)
	}
	ker, err := c.SPIKernel(bus)
	if err != nil {
		return 0, 0, err
	}
	for div := uint32(2); div <= 256; div *= 2 {
		if got := ker / physic.Frequency(div); got <= want {
			return div, got, nil
		}
	}
	return 0, 0, fmt.Errorf("clock: spi%d cannot reach %v from %v", bus, want, ker)
}

func (c Clocks) String() string {
	return fmt.Sprintf("sys_ck=%v hclk=%v pclk=%v pll1_q=%v %v ws=%d",
		c.SysCK, c.HCLK, c.PCLK2, c.PLL1Q, c.Scale, c.FlashLatency)
}

// Within reports whether got lies within tol (a fraction) of want.
func Within(got, want physic.Frequency, tol float64) bool {
	d := mathx.Max(got, want) - mathx.Min(got, want)
	return float64(d) <= tol*float64(want)
}
