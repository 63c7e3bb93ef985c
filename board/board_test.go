package board

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

func TestTakeOnce(t *testing.T) {
	var d Device
	p, err := d.Take()
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if p == nil || p.Pins == nil {
		t.Fatal("expected peripherals")
	}
	if _, err := d.Take(); !errors.Is(err, ErrTaken) {
		t.Fatalf("second Take err = %v, want ErrTaken", err)
	}
}

func TestPinString(t *testing.T) {
	if got := PE12.String(); got != "PE12" {
		t.Fatalf("PE12.String() = %q", got)
	}
	if got := NoPin.String(); got != "NoPin" {
		t.Fatalf("NoPin.String() = %q", got)
	}
	if got := PE12.Index(); got != 4*16+12 {
		t.Fatalf("PE12.Index() = %d", got)
	}
}

func TestClaimExclusive(t *testing.T) {
	r := newRegistry()
	if err := r.Claim(PE3, RoleLED); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	err := r.Claim(PE3, RoleCS)
	if !errors.Is(err, ErrPinInUse) {
		t.Fatalf("second Claim err = %v, want ErrPinInUse", err)
	}
	if role, ok := r.Owner(PE3); !ok || role != RoleLED {
		t.Fatalf("Owner(PE3) = %v, %v; want led", role, ok)
	}
	if err := r.Claim(NoPin, RoleLED); !errors.Is(err, ErrInvalidPin) {
		t.Fatalf("Claim(NoPin) err = %v, want ErrInvalidPin", err)
	}
}

func TestClaimBindingAllOrNothing(t *testing.T) {
	r := newRegistry()
	if err := r.Claim(PE13, RoleLED); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if err := r.ClaimBinding(LCDBinding, "st7735"); !errors.Is(err, ErrPinInUse) {
		t.Fatalf("ClaimBinding err = %v, want ErrPinInUse", err)
	}
	if _, ok := r.Owner(PE12); ok {
		t.Fatal("PE12 claimed by a failed binding")
	}

	r = newRegistry()
	if err := r.ClaimBinding(LCDBinding, "st7735"); err != nil {
		t.Fatalf("ClaimBinding: %v", err)
	}
	if role, _ := r.Owner(PE10); role != RoleBacklight {
		t.Fatalf("PE10 role = %v, want backlight", role)
	}
	if err := r.ClaimBinding(MIPIBinding, "mipidsi"); !errors.Is(err, ErrBusInUse) {
		t.Fatalf("second ClaimBinding err = %v, want ErrBusInUse", err)
	}
	if err := r.ClaimBus(4, "other"); !errors.Is(err, ErrBusInUse) {
		t.Fatalf("ClaimBus err = %v, want ErrBusInUse", err)
	}
}

func TestBindingValidate(t *testing.T) {
	dup := LCDBinding
	dup.Backlight = dup.RST

	missing := LCDBinding
	missing.DC = NoPin

	mode3 := LCDBinding
	mode3.SPI.Mode = spi.Mode3

	fast := LCDBinding
	fast.SPI.Frequency = 20 * physic.MegaHertz

	bus := LCDBinding
	bus.SPI.Bus = 9

	tests := []struct {
		name    string
		b       Binding
		wantErr bool
	}{
		{"lcd preset", LCDBinding, false},
		{"mipi preset", MIPIBinding, false},
		{"shared pin", dup, true},
		{"missing dc", missing, true},
		{"mode 3", mode3, true},
		{"above panel ceiling", fast, true},
		{"unknown bus", bus, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.b.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
