// Command test-keys is a manual test for key sampling and edge detection.
// Run it, then press the configured keys to see rising edges.
// Press Ctrl+C to exit.
//
// Usage:
//
//	go run ./cmd/test-keys [--backend win32|hook] [--safe-mode] [--keys S,P,Q,0x12]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chaz8081/autoclicker/internal/config"
	"github.com/chaz8081/autoclicker/internal/hotkey"
	"github.com/chaz8081/autoclicker/internal/inject"
	"github.com/chaz8081/autoclicker/internal/input"
)

func main() {
	backendName := flag.String("backend", config.DefaultBackend(), "input backend: win32 or hook")
	keys := flag.String("keys", "S,P,Q,0x12", "start,pause,quit,safe key specs")
	safeMode := flag.Bool("safe-mode", false, "gate start and quit on the safe key")
	flag.Parse()

	parts := strings.Split(*keys, ",")
	if len(parts) != 4 {
		fmt.Println("Error: --keys needs four comma-separated specs")
		os.Exit(1)
	}

	backend, err := openBackend(*backendName)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	bindings, err := hotkey.Resolve(backend, map[hotkey.Control]string{
		hotkey.Start: parts[0],
		hotkey.Pause: parts[1],
		hotkey.Quit:  parts[2],
		hotkey.Safe:  parts[3],
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, c := range hotkey.Controls {
		b := bindings.Get(c)
		fmt.Printf("  %-5s %-6q -> %s (%s)\n", c, b.Spec, input.FormatKey(b.Key), backend.Name(b.Key))
	}
	if err := bindings.CheckDuplicates(false); err != nil {
		fmt.Printf("Warning: %v\n", err)
	}
	fmt.Printf("Sampling with %s backend (safe mode %v)...\n", *backendName, *safeMode)
	fmt.Println("Press Ctrl+C to exit.")

	// Handle Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var edges hotkey.EdgeState
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nShutting down...")
			return
		case <-ticker.C:
		}

		safe, err := backend.IsKeyDown(bindings.Key(hotkey.Safe))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		for _, c := range []hotkey.Control{hotkey.Start, hotkey.Pause, hotkey.Quit} {
			down, err := backend.IsKeyDown(bindings.Key(c))
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			gated := *safeMode && c != hotkey.Pause
			if edges.Sample(c, down, gated, safe) {
				fmt.Printf(">>> %s edge\n", strings.ToUpper(c.String()))
			}
		}
	}
}

func openBackend(name string) (input.Backend, error) {
	switch name {
	case "win32":
		return input.NewWin32(input.ButtonLeft)
	case "hook":
		inj, err := inject.NewInjector(string(input.ButtonLeft))
		if err != nil {
			return nil, err
		}
		tracker := hotkey.NewTracker()
		go tracker.Start()
		return input.Compose(tracker, inj, tracker, tracker.Stop), nil
	}
	return nil, fmt.Errorf("unknown backend %q", name)
}
