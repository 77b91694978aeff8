package hotkey

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/chaz8081/autoclicker/internal/input"
)

// upperResolver resolves single characters case-insensitively, like VkKeyScanW.
type upperResolver struct{}

func (upperResolver) Resolve(spec string) (input.Key, error) {
	if len(spec) != 1 {
		return 0, fmt.Errorf("%w: %q", input.ErrUnknownKey, spec)
	}
	return input.Key(strings.ToUpper(spec)[0]), nil
}

func (upperResolver) Name(k input.Key) string { return string(rune(k)) }

func specs(start, pause, quit, safe string) map[Control]string {
	return map[Control]string{Start: start, Pause: pause, Quit: quit, Safe: safe}
}

func TestResolve(t *testing.T) {
	b, err := Resolve(upperResolver{}, specs("s", "P", "q", "a"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if b.Key(Start) != 'S' || b.Key(Pause) != 'P' || b.Key(Quit) != 'Q' || b.Key(Safe) != 'A' {
		t.Errorf("unexpected keys: %+v", b)
	}
	if got := b.Get(Start); got.Spec != "s" || got.Control != Start {
		t.Errorf("Get(Start) = %+v", got)
	}
}

func TestResolveReportsEveryFailure(t *testing.T) {
	_, err := Resolve(upperResolver{}, map[Control]string{Start: "xx", Pause: "p", Quit: "yy"})
	if err == nil {
		t.Fatal("Resolve() should fail")
	}
	if !errors.Is(err, input.ErrUnknownKey) {
		t.Errorf("error = %v, want ErrUnknownKey", err)
	}
	msg := err.Error()
	for _, want := range []string{"start key", "quit key", "safe key: not configured"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestCheckDuplicates(t *testing.T) {
	tests := []struct {
		name    string
		specs   map[Control]string
		allow   bool
		wantErr bool
	}{
		{"distinct", specs("s", "p", "q", "a"), false, false},
		{"start equals quit", specs("s", "p", "s", "a"), false, true},
		{"start equals quit allowed", specs("s", "p", "s", "a"), true, false},
		{"case folded duplicate", specs("s", "p", "S", "a"), false, true},
		{"safe equals pause", specs("s", "p", "q", "p"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Resolve(upperResolver{}, tt.specs)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			err = b.CheckDuplicates(tt.allow)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckDuplicates(%v) error = %v, wantErr %v", tt.allow, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrDuplicateKey) {
				t.Errorf("error = %v, want ErrDuplicateKey", err)
			}
		})
	}
}

func TestCheckDuplicatesNamesControls(t *testing.T) {
	b, _ := Resolve(upperResolver{}, specs("s", "p", "s", "a"))
	err := b.CheckDuplicates(false)
	if err == nil || !strings.Contains(err.Error(), "start, quit") {
		t.Errorf("error = %v, want mention of start, quit", err)
	}
}

func TestControlString(t *testing.T) {
	want := map[Control]string{Start: "start", Pause: "pause", Quit: "quit", Safe: "safe", Control(9): "control(9)"}
	for c, s := range want {
		if c.String() != s {
			t.Errorf("Control(%d).String() = %q, want %q", int(c), c.String(), s)
		}
	}
}
