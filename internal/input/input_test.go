package input

import (
	"errors"
	"testing"
)

func TestParseKeySpec(t *testing.T) {
	tests := []struct {
		spec string
		want KeySpec
	}{
		{"S", KeySpec{Kind: SpecChar, Char: 'S'}},
		{"q", KeySpec{Kind: SpecChar, Char: 'q'}},
		{"1", KeySpec{Kind: SpecChar, Char: '1'}},
		{"0x12", KeySpec{Kind: SpecCode, Code: 0x12}},
		{"0XA4", KeySpec{Kind: SpecCode, Code: 0xA4}},
		{"alt", KeySpec{Kind: SpecName, Name: "alt"}},
		{"Ctrl", KeySpec{Kind: SpecName, Name: "ctrl"}},
		{"control", KeySpec{Kind: SpecName, Name: "ctrl"}},
		{"Escape", KeySpec{Kind: SpecName, Name: "esc"}},
		{" f5 ", KeySpec{Kind: SpecName, Name: "f5"}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ParseKeySpec(tt.spec)
			if err != nil {
				t.Fatalf("ParseKeySpec(%q) error = %v", tt.spec, err)
			}
			if got != tt.want {
				t.Errorf("ParseKeySpec(%q) = %+v, want %+v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestParseKeySpecErrors(t *testing.T) {
	for _, spec := range []string{"", "   ", "0x", "0xZZ", "0x0", "0x10000", "notakey", "ab"} {
		t.Run(spec, func(t *testing.T) {
			_, err := ParseKeySpec(spec)
			if !errors.Is(err, ErrUnknownKey) {
				t.Errorf("ParseKeySpec(%q) error = %v, want ErrUnknownKey", spec, err)
			}
		})
	}
}

func TestFormatKey(t *testing.T) {
	if got := FormatKey(0x12); got != "0x12" {
		t.Errorf("FormatKey(0x12) = %q, want %q", got, "0x12")
	}
	if got := FormatKey(0x7B); got != "0x7B" {
		t.Errorf("FormatKey(0x7B) = %q, want %q", got, "0x7B")
	}
}

type stubKeys struct{}

func (stubKeys) IsKeyDown(Key) (bool, error) { return true, nil }

type stubActions struct{ clicks, releases int }

func (s *stubActions) Click() error   { s.clicks++; return nil }
func (s *stubActions) Release() error { s.releases++; return nil }

type stubResolver struct{}

func (stubResolver) Resolve(string) (Key, error) { return 7, nil }
func (stubResolver) Name(Key) string             { return "seven" }

func TestComposeDelegatesAndClosesInOrder(t *testing.T) {
	actions := &stubActions{}
	var order []string
	first := func() error { order = append(order, "first"); return nil }
	second := func() error { order = append(order, "second"); return errors.New("boom") }

	b := Compose(stubKeys{}, actions, stubResolver{}, first, second)

	if down, _ := b.IsKeyDown(1); !down {
		t.Error("IsKeyDown should delegate to the key state half")
	}
	if err := b.Click(); err != nil {
		t.Fatalf("Click() error = %v", err)
	}
	if err := b.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if actions.clicks != 1 || actions.releases != 1 {
		t.Errorf("clicks=%d releases=%d, want 1 and 1", actions.clicks, actions.releases)
	}
	if k, _ := b.Resolve("x"); k != 7 || b.Name(k) != "seven" {
		t.Errorf("resolver not delegated: key=%d name=%q", k, b.Name(k))
	}

	err := b.Close()
	if err == nil || err.Error() != "boom" {
		t.Errorf("Close() error = %v, want boom", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("close order = %v, want [first second]", order)
	}
}

func TestParseButton(t *testing.T) {
	tests := []struct {
		in      string
		want    Button
		wantErr bool
	}{
		{"left", ButtonLeft, false},
		{"Right", ButtonRight, false},
		{" middle ", ButtonMiddle, false},
		{"", "", true},
		{"x1", "", true},
	}
	for _, tt := range tests {
		got, err := ParseButton(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseButton(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseButton(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
