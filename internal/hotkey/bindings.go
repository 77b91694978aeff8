package hotkey

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chaz8081/autoclicker/internal/input"
)

// ErrDuplicateKey is returned when two controls resolve to the same key.
var ErrDuplicateKey = errors.New("duplicate key binding")

// Control is a logical button of the clicker.
type Control int

const (
	Start Control = iota
	Pause
	Quit
	Safe

	numControls
)

// Controls lists every control in binding order.
var Controls = [numControls]Control{Start, Pause, Quit, Safe}

func (c Control) String() string {
	switch c {
	case Start:
		return "start"
	case Pause:
		return "pause"
	case Quit:
		return "quit"
	case Safe:
		return "safe"
	}
	return fmt.Sprintf("control(%d)", int(c))
}

// Binding maps a control to its resolved backend key.
type Binding struct {
	Control Control
	Spec    string
	Key     input.Key
}

// Bindings is the full resolved key map. It is immutable once returned by
// Resolve and may be shared freely.
type Bindings struct {
	b [numControls]Binding
}

// Resolve maps every control's key spec through r. All failures are
// reported together. A missing control is an error.
func Resolve(r input.Resolver, specs map[Control]string) (Bindings, error) {
	var (
		out  Bindings
		errs []error
	)
	for _, c := range Controls {
		spec, ok := specs[c]
		if !ok {
			errs = append(errs, fmt.Errorf("%s key: not configured", c))
			continue
		}
		k, err := r.Resolve(spec)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s key %q: %w", c, spec, err))
			continue
		}
		out.b[c] = Binding{Control: c, Spec: spec, Key: k}
	}
	if len(errs) > 0 {
		return Bindings{}, errors.Join(errs...)
	}
	return out, nil
}

// Get returns the binding for c.
func (b Bindings) Get(c Control) Binding {
	return b.b[c]
}

// Key returns the resolved key for c.
func (b Bindings) Key(c Control) input.Key {
	return b.b[c].Key
}

// CheckDuplicates fails with ErrDuplicateKey when two controls share a
// key, unless allow is set.
func (b Bindings) CheckDuplicates(allow bool) error {
	if allow {
		return nil
	}

	seen := make(map[input.Key][]string, numControls)
	var order []input.Key
	for _, c := range Controls {
		k := b.b[c].Key
		if _, ok := seen[k]; !ok {
			order = append(order, k)
		}
		seen[k] = append(seen[k], c.String())
	}

	var errs []error
	for _, k := range order {
		if names := seen[k]; len(names) > 1 {
			errs = append(errs, fmt.Errorf("%w: %s share key %s", ErrDuplicateKey, strings.Join(names, ", "), input.FormatKey(k)))
		}
	}
	return errors.Join(errs...)
}
