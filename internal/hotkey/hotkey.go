// Package hotkey turns sampled key state into start/pause/quit edges.
//
// It also provides Tracker, a global key-state source built on gohook for
// the hook backend, as an alternative to polling GetAsyncKeyState.
package hotkey

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"

	"github.com/chaz8081/autoclicker/internal/input"
)

// Tracker keeps the set of currently held keys from global hook events.
type Tracker struct {
	mu      sync.RWMutex
	pressed map[uint16]bool
	names   map[uint16]string
	done    chan struct{}
	once    sync.Once
}

// Compile-time interface satisfaction checks.
var (
	_ input.KeyState = (*Tracker)(nil)
	_ input.Resolver = (*Tracker)(nil)
)

// NewTracker creates a Tracker. Call Start to begin receiving events.
func NewTracker() *Tracker {
	return &Tracker{
		pressed: make(map[uint16]bool),
		names:   reverseKeycodes(),
		done:    make(chan struct{}),
	}
}

// Start consumes global hook events until Stop is called.
// It blocks; run it in a goroutine.
func (t *Tracker) Start() {
	evChan := hook.Start()
	go func() {
		<-t.done
		hook.End()
	}()

	for {
		select {
		case <-t.done:
			return
		case ev, ok := <-evChan:
			if !ok {
				return
			}
			t.handle(ev)
		}
	}
}

// handle updates the pressed set. KeyDown is the "typed" event and may
// carry no keycode, so only events with one are tracked.
func (t *Tracker) handle(ev hook.Event) {
	if ev.Keycode == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	switch ev.Kind {
	case hook.KeyDown, hook.KeyHold:
		t.pressed[ev.Keycode] = true
	case hook.KeyUp:
		delete(t.pressed, ev.Keycode)
	}
}

// IsKeyDown reports whether k is held according to the last hook events.
func (t *Tracker) IsKeyDown(k input.Key) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pressed[uint16(k)], nil
}

// Resolve maps a key spec to a gohook keycode. Hex specs are taken as raw
// keycodes.
func (t *Tracker) Resolve(spec string) (input.Key, error) {
	ks, err := input.ParseKeySpec(spec)
	if err != nil {
		return 0, fmt.Errorf("hotkey: %w", err)
	}

	var name string
	switch ks.Kind {
	case input.SpecCode:
		return input.Key(ks.Code), nil
	case input.SpecName:
		name = ks.Name
	default:
		name = strings.ToLower(string(ks.Char))
	}

	code, ok := hook.Keycode[name]
	if !ok || code == 0 {
		return 0, fmt.Errorf("hotkey: %w: no hook keycode for %q", input.ErrUnknownKey, spec)
	}
	return input.Key(code), nil
}

// Name returns the gohook name of k, or its hex code.
func (t *Tracker) Name(k input.Key) string {
	if n, ok := t.names[uint16(k)]; ok {
		return strings.ToUpper(n)
	}
	return input.FormatKey(k)
}

// Stop terminates the hook. It is safe to call multiple times.
func (t *Tracker) Stop() error {
	t.once.Do(func() {
		close(t.done)
	})
	return nil
}

// reverseKeycodes picks the shortest (then alphabetically first) name for
// each keycode so Name is stable.
func reverseKeycodes() map[uint16]string {
	keys := make([]string, 0, len(hook.Keycode))
	for name := range hook.Keycode {
		keys = append(keys, name)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})

	out := make(map[uint16]string, len(keys))
	for _, name := range keys {
		code := hook.Keycode[name]
		if _, ok := out[code]; !ok {
			out[code] = name
		}
	}
	return out
}
