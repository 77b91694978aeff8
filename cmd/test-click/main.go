// Command test-click is a manual test for synthetic clicks.
// It waits 3 seconds, clicks a few times, then forces the button up.
// Point the mouse at something harmless before the countdown finishes.
//
// Usage:
//
//	go run ./cmd/test-click [--backend win32|hook] [--button left|right|middle] [--count 5]
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/chaz8081/autoclicker/internal/config"
	"github.com/chaz8081/autoclicker/internal/inject"
	"github.com/chaz8081/autoclicker/internal/input"
)

func main() {
	backendName := flag.String("backend", config.DefaultBackend(), "click backend: win32 or hook")
	button := flag.String("button", "left", "mouse button: left, right or middle")
	count := flag.Int("count", 5, "number of clicks")
	interval := flag.Duration("interval", 200*time.Millisecond, "delay between clicks")
	flag.Parse()

	act, err := newActuator(*backendName, *button)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Will send %d %s clicks using %q in 3 seconds...\n", *count, *button, *backendName)
	fmt.Println("Point the mouse somewhere safe now!")

	for i := 3; i > 0; i-- {
		fmt.Printf("%d...\n", i)
		time.Sleep(time.Second)
	}

	for i := 0; i < *count; i++ {
		if err := act.Click(); err != nil {
			fmt.Printf("Error: %v\n", err)
			break
		}
		time.Sleep(*interval)
	}

	if err := act.Release(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println("\nDone!")
}

func newActuator(backend, button string) (input.Actuator, error) {
	switch backend {
	case "win32":
		b, err := input.ParseButton(button)
		if err != nil {
			return nil, err
		}
		return input.NewWin32(b)
	case "hook":
		return inject.NewInjector(button)
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}
