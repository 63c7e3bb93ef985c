package board

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// MaxSPIFrequency is the ST7735 write-cycle ceiling.
const MaxSPIFrequency = 15 * physic.MegaHertz

// SPIConfig selects the SPI master and its timing.
type SPIConfig struct {
	Bus       int
	Frequency physic.Frequency
	Mode      spi.Mode
}

// Binding assigns pins to a write-only SPI display. There is no MISO.
type Binding struct {
	SCK       Pin
	MOSI      Pin
	DC        Pin
	CS        Pin
	RST       Pin
	Backlight Pin
	SPI       SPIConfig
}

// Assignment pairs a pin with its role.
type Assignment struct {
	Pin  Pin
	Role Role
}

var (
	// LCDBinding drives the panel with RESET on PE15 and the LED/backlight on PE10.
	LCDBinding = Binding{
		SCK:       PE12,
		MOSI:      PE14,
		DC:        PE13,
		CS:        PE11,
		RST:       PE15,
		Backlight: PE10,
		SPI:       SPIConfig{Bus: 4, Frequency: 3 * physic.MegaHertz, Mode: spi.Mode0},
	}

	// MIPIBinding swaps RESET and backlight: RESET on PE10, backlight on PE15.
	MIPIBinding = Binding{
		SCK:       PE12,
		MOSI:      PE14,
		DC:        PE13,
		CS:        PE11,
		RST:       PE10,
		Backlight: PE15,
		SPI:       SPIConfig{Bus: 4, Frequency: 3 * physic.MegaHertz, Mode: spi.Mode0},
	}
)

func (b Binding) Assignments() []Assignment {
	return []Assignment{
		{b.SCK, RoleSCK},
		{b.MOSI, RoleMOSI},
		{b.DC, RoleDC},
		{b.CS, RoleCS},
		{b.RST, RoleRST},
		{b.Backlight, RoleBacklight},
	}
}

// Validate rejects missing or shared pins and SPI settings the panel cannot take.
func (b Binding) Validate() error {
	seen := make(map[Pin]Role, 6)
	for _, a := range b.Assignments() {
		if !a.Pin.Valid() {
			return fmt.Errorf("board: %s: %w", a.Role, ErrInvalidPin)
		}
		if other, ok := seen[a.Pin]; ok {
			return fmt.Errorf("board: pin %s bound to both %s and %s", a.Pin, other, a.Role)
		}
		seen[a.Pin] = a.Role
	}
	if b.SPI.Bus < 1 || b.SPI.Bus > 6 {
		return fmt.Errorf("board: unknown spi bus %d", b.SPI.Bus)
	}
	if b.SPI.Mode != spi.Mode0 {
		return fmt.Errorf("board: spi mode %v unsupported, panel needs %v", b.SPI.Mode, spi.Mode0)
	}
	if b.SPI.Frequency <= 0 || b.SPI.Frequency > MaxSPIFrequency {
		return fmt.Errorf("board: spi rate %v outside (0, %v]", b.SPI.Frequency, MaxSPIFrequency)
	}
	return nil
}
