//go:build windows

package input

import (
	"fmt"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetAsyncKeyState = user32.NewProc("GetAsyncKeyState")
	procVkKeyScanW       = user32.NewProc("VkKeyScanW")
	procMapVirtualKeyW   = user32.NewProc("MapVirtualKeyW")
	procGetKeyNameTextW  = user32.NewProc("GetKeyNameTextW")
	procSendInput        = user32.NewProc("SendInput")
)

const (
	keyPressedMask = 0x8000
	vkMask         = 0xFF

	inputMouse = 0

	mouseeventfLeftDown   = 0x0002
	mouseeventfLeftUp     = 0x0004
	mouseeventfRightDown  = 0x0008
	mouseeventfRightUp    = 0x0010
	mouseeventfMiddleDown = 0x0020
	mouseeventfMiddleUp   = 0x0040
)

type mouseInput struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// sendInput mirrors the C INPUT struct; the union is sized by MOUSEINPUT,
// its largest member.
type sendInput struct {
	Type uint32
	Mi   mouseInput
}

// Win32 polls GetAsyncKeyState and synthesizes clicks with SendInput.
type Win32 struct {
	down, up uint32
}

// Compile-time interface satisfaction check.
var _ Backend = (*Win32)(nil)

// NewWin32 loads user32 and returns a driver clicking the given button.
func NewWin32(button Button) (*Win32, error) {
	for _, p := range []*windows.LazyProc{procGetAsyncKeyState, procVkKeyScanW, procMapVirtualKeyW, procGetKeyNameTextW, procSendInput} {
		if err := p.Find(); err != nil {
			return nil, fmt.Errorf("win32: load %s: %w", p.Name, err)
		}
	}

	w := &Win32{}
	switch button {
	case ButtonRight:
		w.down, w.up = mouseeventfRightDown, mouseeventfRightUp
	case ButtonMiddle:
		w.down, w.up = mouseeventfMiddleDown, mouseeventfMiddleUp
	default:
		w.down, w.up = mouseeventfLeftDown, mouseeventfLeftUp
	}
	return w, nil
}

// IsKeyDown reports whether the most significant bit of the async key state is set.
func (w *Win32) IsKeyDown(k Key) (bool, error) {
	if k == 0 || k > vkMask {
		return false, fmt.Errorf("win32: %w: invalid virtual key code %s", ErrUnknownKey, FormatKey(k))
	}
	ret, _, _ := procGetAsyncKeyState.Call(uintptr(k))
	return ret&keyPressedMask != 0, nil
}

// Click sends button down and up as a single SendInput event.
func (w *Win32) Click() error {
	return w.send(w.down | w.up)
}

// Release sends a button-up.
func (w *Win32) Release() error {
	return w.send(w.up)
}

func (w *Win32) send(flags uint32) error {
	in := sendInput{
		Type: inputMouse,
		Mi:   mouseInput{DwFlags: flags},
	}
	n, _, err := procSendInput.Call(
		1,
		uintptr(unsafe.Pointer(&in)),
		unsafe.Sizeof(in),
	)
	if n != 1 {
		return fmt.Errorf("win32: SendInput: %w", err)
	}
	return nil
}

// Resolve maps a key spec to a virtual-key code. Characters go through
// VkKeyScanW, so "s" and "S" resolve to the same key.
func (w *Win32) Resolve(spec string) (Key, error) {
	ks, err := ParseKeySpec(spec)
	if err != nil {
		return 0, fmt.Errorf("win32: %w", err)
	}

	switch ks.Kind {
	case SpecCode:
		if ks.Code > vkMask {
			return 0, fmt.Errorf("win32: %w: virtual key code %s out of range", ErrUnknownKey, FormatKey(Key(ks.Code)))
		}
		return Key(ks.Code), nil
	case SpecName:
		return Key(VirtualKeys[ks.Name]), nil
	}

	units := utf16.Encode([]rune{ks.Char})
	if len(units) != 1 {
		return 0, fmt.Errorf("win32: %w: no virtual key for %q", ErrUnknownKey, ks.Char)
	}
	ret, _, _ := procVkKeyScanW.Call(uintptr(units[0]))
	if int16(ret) == -1 {
		return 0, fmt.Errorf("win32: %w: no virtual key for %q", ErrUnknownKey, ks.Char)
	}
	return Key(ret & vkMask), nil
}

// Name asks the keyboard layout for a human-readable key name.
func (w *Win32) Name(k Key) string {
	scan, _, _ := procMapVirtualKeyW.Call(uintptr(k), 0)
	buf := make([]uint16, 64)
	n, _, _ := procGetKeyNameTextW.Call(scan<<16, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return FormatKey(k)
	}
	return windows.UTF16ToString(buf[:n])
}

// Close is a no-op; user32 stays loaded for the life of the process.
func (w *Win32) Close() error {
	return nil
}
