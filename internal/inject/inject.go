// Package inject produces synthetic mouse clicks through robotgo.
package inject

import (
	"fmt"

	"github.com/go-vgo/robotgo"

	"github.com/chaz8081/autoclicker/internal/input"
)

// Injector clicks a single mouse button.
type Injector struct {
	button input.Button

	// swapped out in tests
	click  func(button string)
	toggle func(button, dir string) error
}

// Compile-time interface satisfaction check.
var _ input.Actuator = (*Injector)(nil)

// NewInjector creates an Injector for the given button.
// button must be "left", "right" or "middle".
func NewInjector(button string) (*Injector, error) {
	b, err := input.ParseButton(button)
	if err != nil {
		return nil, fmt.Errorf("inject: %w", err)
	}
	return &Injector{
		button: b,
		click:  func(btn string) { robotgo.Click(btn) },
		toggle: func(btn, dir string) error { return robotgo.Toggle(btn, dir) },
	}, nil
}

// Button returns the configured button.
func (inj *Injector) Button() input.Button {
	return inj.button
}

// Click presses and releases the button once.
func (inj *Injector) Click() error {
	inj.click(string(inj.button))
	return nil
}

// Release forces the button up. Safe to call when it is not held.
func (inj *Injector) Release() error {
	if err := inj.toggle(string(inj.button), "up"); err != nil {
		return fmt.Errorf("inject: release %s: %w", inj.button, err)
	}
	return nil
}
