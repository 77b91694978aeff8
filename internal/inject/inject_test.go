package inject

import (
	"errors"
	"testing"

	"github.com/chaz8081/autoclicker/internal/input"
)

// stubbed returns an Injector whose robotgo calls are recorded instead of sent.
func stubbed(t *testing.T, button string) (*Injector, *[]string) {
	t.Helper()
	inj, err := NewInjector(button)
	if err != nil {
		t.Fatalf("NewInjector(%q) error = %v", button, err)
	}
	var calls []string
	inj.click = func(btn string) { calls = append(calls, "click "+btn) }
	inj.toggle = func(btn, dir string) error {
		calls = append(calls, "toggle "+btn+" "+dir)
		return nil
	}
	return inj, &calls
}

func TestNewInjectorRejectsUnknownButton(t *testing.T) {
	if _, err := NewInjector("x2"); err == nil {
		t.Error("NewInjector should fail for an unknown button")
	}
}

func TestInjectorClick(t *testing.T) {
	inj, calls := stubbed(t, "right")
	if inj.Button() != input.ButtonRight {
		t.Errorf("Button() = %q, want %q", inj.Button(), input.ButtonRight)
	}

	for i := 0; i < 3; i++ {
		if err := inj.Click(); err != nil {
			t.Fatalf("Click() error = %v", err)
		}
	}

	if len(*calls) != 3 || (*calls)[0] != "click right" {
		t.Errorf("calls = %v, want 3x \"click right\"", *calls)
	}
}

func TestInjectorRelease(t *testing.T) {
	inj, calls := stubbed(t, "left")
	if err := inj.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if len(*calls) != 1 || (*calls)[0] != "toggle left up" {
		t.Errorf("calls = %v, want [toggle left up]", *calls)
	}
}

func TestInjectorReleaseError(t *testing.T) {
	inj, _ := stubbed(t, "middle")
	inj.toggle = func(string, string) error { return errors.New("no display") }
	if err := inj.Release(); err == nil {
		t.Error("Release() should surface the robotgo error")
	}
}
