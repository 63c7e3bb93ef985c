// Package board tracks ownership of the MCU peripherals.
//
// Every GPIO pin and SPI bus has exactly one owner from the moment it is
// claimed until reset. A second claim is a configuration bug and fails.
package board

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	ErrTaken      = errors.New("board: peripherals already taken")
	ErrPinInUse   = errors.New("pin in use")
	ErrBusInUse   = errors.New("bus in use")
	ErrInvalidPin = errors.New("invalid pin")
)

// Pin names a GPIO by port letter and number, e.g. Pin{'E', 12} is PE12.
type Pin struct {
	Port byte
	Num  uint8
}

// NoPin is the zero Pin.
var NoPin = Pin{}

var (
	PE3  = Pin{'E', 3}
	PE10 = Pin{'E', 10}
	PE11 = Pin{'E', 11}
	PE12 = Pin{'E', 12}
	PE13 = Pin{'E', 13}
	PE14 = Pin{'E', 14}
	PE15 = Pin{'E', 15}
)

func (p Pin) Valid() bool { return p.Port >= 'A' && p.Port <= 'K' && p.Num < 16 }

func (p Pin) String() string {
	if !p.Valid() {
		return "NoPin"
	}
	return fmt.Sprintf("P%c%d", p.Port, p.Num)
}

// Index is the flat pin number used by the MCU runtime (PA0 = 0, PB0 = 16, ...).
func (p Pin) Index() uint8 { return (p.Port-'A')*16 + p.Num }

// Role is what a claimed pin is used for.
type Role uint8

const (
	RoleNone Role = iota
	RoleSCK
	RoleMOSI
	RoleDC
	RoleCS
	RoleRST
	RoleBacklight
	RoleLED
)

var roleNames = [...]string{"none", "sck", "mosi", "dc", "cs", "rst", "backlight", "led"}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// Registry records pin and bus owners.
type Registry struct {
	mu    sync.Mutex
	pins  map[Pin]Role
	buses map[int]string
}

func newRegistry() *Registry {
	return &Registry{pins: make(map[Pin]Role), buses: make(map[int]string)}
}

// Claim assigns p to role.
func (r *Registry) Claim(p Pin, role Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claimLocked(p, role)
}

func (r *Registry) claimLocked(p Pin, role Role) error {
	if !p.Valid() {
		return fmt.Errorf("gpio: pin %v: %w", p, ErrInvalidPin)
	}
	if old, ok := r.pins[p]; ok {
		return fmt.Errorf("gpio: pin %s: %w (held as %s)", p, ErrPinInUse, old)
	}
	r.pins[p] = role
	return nil
}

// ClaimBus assigns SPI bus n to owner.
func (r *Registry) ClaimBus(n int, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.buses[n]; ok {
		return fmt.Errorf("spi%d: %w (held by %s)", n, ErrBusInUse, old)
	}
	r.buses[n] = owner
	return nil
}

// Owner reports the role p was claimed for.
func (r *Registry) Owner(p Pin) (Role, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.pins[p]
	return role, ok
}

// ClaimBinding claims the bus and every pin of b, or nothing.
func (r *Registry) ClaimBinding(b Binding, owner string) error {
	if err := b.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.buses[b.SPI.Bus]; ok {
		return fmt.Errorf("spi%d: %w (held by %s)", b.SPI.Bus, ErrBusInUse, old)
	}
	as := b.Assignments()
	for _, a := range as {
		if old, ok := r.pins[a.Pin]; ok {
			return fmt.Errorf("gpio: pin %s: %w (held as %s)", a.Pin, ErrPinInUse, old)
		}
	}
	for _, a := range as {
		r.pins[a.Pin] = a.Role
	}
	r.buses[b.SPI.Bus] = owner
	return nil
}

// Peripherals is the device peripheral set handed out by Take.
type Peripherals struct {
	Pins *Registry
}

// Device hands out its peripherals once.
type Device struct {
	taken atomic.Bool
	p     Peripherals
}

// Take returns the peripheral set. Only the first call succeeds.
func (d *Device) Take() (*Peripherals, error) {
	if !d.taken.CompareAndSwap(false, true) {
		return nil, ErrTaken
	}
	d.p = Peripherals{Pins: newRegistry()}
	return &d.p, nil
}
