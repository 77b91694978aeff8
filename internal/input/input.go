// Package input defines the backend the clicker polls for key state and
// drives for synthetic clicks, plus the key-spec parsing shared by every
// driver.
package input

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnknownKey is returned when a key spec cannot be mapped to a key.
	ErrUnknownKey = errors.New("unknown key")
	// ErrUnsupported is returned when a driver is not available on this platform.
	ErrUnsupported = errors.New("backend not supported on this platform")
)

// Key is an opaque, driver-specific key identifier.
type Key uint16

// KeyState reports whether a key is currently held.
type KeyState interface {
	IsKeyDown(k Key) (bool, error)
}

// Actuator produces the repeating action and can neutralize it.
type Actuator interface {
	// Click performs one full press and release of the configured button.
	Click() error
	// Release sends a button-up so the device is left in a neutral state.
	Release() error
}

// Resolver maps user-facing key specs to driver keys and back.
type Resolver interface {
	Resolve(spec string) (Key, error)
	Name(k Key) string
}

// Backend is everything the clicker needs from the OS.
type Backend interface {
	KeyState
	Actuator
	Resolver
	Close() error
}

// Button is the mouse button an Actuator presses.
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "middle"
)

// ParseButton validates a button name.
func ParseButton(s string) (Button, error) {
	switch b := Button(strings.ToLower(strings.TrimSpace(s))); b {
	case ButtonLeft, ButtonRight, ButtonMiddle:
		return b, nil
	}
	return "", fmt.Errorf("button must be \"left\", \"right\" or \"middle\", got %q", s)
}

// SpecKind classifies a key spec.
type SpecKind int

const (
	// SpecCode is a raw hexadecimal key code such as "0x12".
	SpecCode SpecKind = iota
	// SpecName is a named key such as "alt" or "f5".
	SpecName
	// SpecChar is a single printable character.
	SpecChar
)

// KeySpec is a parsed key spec.
type KeySpec struct {
	Kind SpecKind
	Code uint16 // SpecCode
	Name string // SpecName, lowercase
	Char rune   // SpecChar
}

// VirtualKeys maps key names to Windows virtual-key codes. The name set is
// also the vocabulary accepted by ParseKeySpec on every platform.
var VirtualKeys = map[string]uint16{
	"backspace": 0x08,
	"tab":       0x09,
	"enter":     0x0D,
	"shift":     0x10,
	"ctrl":      0x11,
	"alt":       0x12,
	"pause":     0x13,
	"capslock":  0x14,
	"esc":       0x1B,
	"space":     0x20,
	"pageup":    0x21,
	"pagedown":  0x22,
	"end":       0x23,
	"home":      0x24,
	"left":      0x25,
	"up":        0x26,
	"right":     0x27,
	"down":      0x28,
	"insert":    0x2D,
	"delete":    0x2E,
	"f1":        0x70,
	"f2":        0x71,
	"f3":        0x72,
	"f4":        0x73,
	"f5":        0x74,
	"f6":        0x75,
	"f7":        0x76,
	"f8":        0x77,
	"f9":        0x78,
	"f10":       0x79,
	"f11":       0x7A,
	"f12":       0x7B,
	"lshift":    0xA0,
	"rshift":    0xA1,
	"lctrl":     0xA2,
	"rctrl":     0xA3,
	"lalt":      0xA4,
	"ralt":      0xA5,
}

var keyAliases = map[string]string{
	"control": "ctrl",
	"escape":  "esc",
	"return":  "enter",
	"menu":    "alt",
	"del":     "delete",
	"ins":     "insert",
	"pgup":    "pageup",
	"pgdn":    "pagedown",
}

// ParseKeySpec classifies spec as a hex code, a named key or a single
// character. Matching of names is case-insensitive.
func ParseKeySpec(spec string) (KeySpec, error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return KeySpec{}, fmt.Errorf("%w: empty key", ErrUnknownKey)
	}

	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return KeySpec{Kind: SpecChar, Char: r}, nil
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") {
		code, err := strconv.ParseUint(lower[2:], 16, 16)
		if err != nil || code == 0 {
			return KeySpec{}, fmt.Errorf("%w: invalid hexadecimal key code %q", ErrUnknownKey, spec)
		}
		return KeySpec{Kind: SpecCode, Code: uint16(code)}, nil
	}

	if alias, ok := keyAliases[lower]; ok {
		lower = alias
	}
	if _, ok := VirtualKeys[lower]; ok {
		return KeySpec{Kind: SpecName, Name: lower}, nil
	}

	return KeySpec{}, fmt.Errorf("%w: %q is not a single character, a hex code or a known key name", ErrUnknownKey, spec)
}

// FormatKey renders a key as a hex code, used when a driver has no name for it.
func FormatKey(k Key) string {
	return fmt.Sprintf("0x%02X", uint16(k))
}

type composite struct {
	KeyState
	Actuator
	Resolver
	closers []func() error
}

// Compose builds a Backend from separately implemented halves. closers run
// in order on Close.
func Compose(keys KeyState, actions Actuator, resolver Resolver, closers ...func() error) Backend {
	return &composite{
		KeyState: keys,
		Actuator: actions,
		Resolver: resolver,
		closers:  closers,
	}
}

func (c *composite) Close() error {
	var errs []error
	for _, fn := range c.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
