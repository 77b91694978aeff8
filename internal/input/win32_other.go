//go:build !windows

package input

// Win32 is only available on Windows.
type Win32 struct{}

// NewWin32 always fails off Windows; use the hook backend instead.
func NewWin32(Button) (*Win32, error) {
	return nil, ErrUnsupported
}

func (*Win32) IsKeyDown(Key) (bool, error) { return false, ErrUnsupported }
func (*Win32) Click() error                { return ErrUnsupported }
func (*Win32) Release() error              { return ErrUnsupported }
func (*Win32) Resolve(string) (Key, error) { return 0, ErrUnsupported }
func (*Win32) Name(k Key) string           { return FormatKey(k) }
func (*Win32) Close() error                { return nil }
