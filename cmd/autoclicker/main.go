// Command autoclicker clicks a mouse button at a fixed rate while a
// start/pause/quit key scheme, optionally guarded by a held safe key,
// controls it.
//
// Usage:
//
//	autoclicker [-rate 20 | -timeout 50] [-start-key S] [-pause-key P] [-quit-key Q]
//	            [-safe-key 0x12] [-safe-mode=false] [-button left] [-backend win32|hook]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/chaz8081/autoclicker/internal/clicker"
	"github.com/chaz8081/autoclicker/internal/config"
	"github.com/chaz8081/autoclicker/internal/hotkey"
	"github.com/chaz8081/autoclicker/internal/inject"
	"github.com/chaz8081/autoclicker/internal/input"
	"github.com/chaz8081/autoclicker/internal/logging"
	"github.com/chaz8081/autoclicker/internal/prompt"
)

const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Signal handling for graceful shutdown, including during setup
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flags := newFlags("autoclicker")
	if err := flags.parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitError
	}

	// Load configuration
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		log.Printf("config: %v", err)
		return exitError
	}
	if err := flags.apply(cfg); err != nil {
		log.Printf("flags: %v", err)
		return exitError
	}

	lf, err := logging.Open(cfg.LogFile, config.ParseLogLevel(cfg.LogLevel))
	if err != nil {
		log.Printf("log file: %v", err)
		return exitError
	}
	logger := lf.Logger()
	logArguments(logger, cfg)

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if err := confirmHighRate(ctx, cfg, os.Stdin, os.Stdout, interactive); err != nil {
		if errors.Is(err, clicker.ErrInterrupted) {
			logger.Warn("Interrupted by keyboard!")
			if cerr := lf.Close(); cerr != nil {
				log.Printf("log file: %v", cerr)
			}
			return exitInterrupted
		}
		return failSetup(logger, lf, fmt.Errorf("config validation: %w", err))
	}

	printBanner(cfg, lf.Path())

	backend, err := newBackend(cfg, logger)
	if err != nil {
		return failSetup(logger, lf, err)
	}

	bindings, err := hotkey.Resolve(backend, map[hotkey.Control]string{
		hotkey.Start: cfg.Keys.Start,
		hotkey.Pause: cfg.Keys.Pause,
		hotkey.Quit:  cfg.Keys.Quit,
		hotkey.Safe:  cfg.Keys.Safe,
	})
	if err == nil {
		err = bindings.CheckDuplicates(cfg.Keys.AllowDuplicates)
	}
	if err != nil {
		if cerr := backend.Close(); cerr != nil {
			logger.Error("backend close failed", "error", cerr)
		}
		return failSetup(logger, lf, err)
	}

	ctrl := clicker.New(backend, bindings, controllerOptions(cfg), os.Stdout, logger)
	ctrl.OnCleanup(lf.Close)

	defer func() {
		if r := recover(); r != nil {
			loc := panicLocation()
			logger.Error("panic", "value", r, "stack", string(debug.Stack()))
			fmt.Printf("\n An exception occurred: %v.\n", r)
			fmt.Printf("%s\nCheck the complete traceback at: %s.\n", loc, lf.Path())
			if err := ctrl.Cleanup(); err != nil {
				// The log file may already be closed by Cleanup.
				logger.Error("cleanup failed", "error", err)
				fmt.Printf("Cleanup failed: %v\n", err)
			}
			panic(r)
		}
	}()

	// An interrupt that arrived during setup is seen on Run's first poll.
	return exitCode(ctrl.Run(ctx), lf.Path(), os.Stdout)
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	// Try default config path
	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		log.Printf("Config loaded from %s", defaultPath)
		return cfg, nil
	}

	// No config file, use defaults
	return config.Default(), nil
}

// confirmHighRate validates cfg. When the only problem is a rate above
// config.MaxRate and the session is interactive, the user may accept it.
// Cancelling ctx while the question is open returns clicker.ErrInterrupted.
func confirmHighRate(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, interactive bool) error {
	err := cfg.Validate()
	if err == nil || !interactive || !config.OnlyRateTooHigh(err) {
		return err
	}

	q := fmt.Sprintf("A rate of %.4g clicks/s is above %v and can make the machine hard to control. Continue?", cfg.Click.Rate, config.MaxRate)
	answer := make(chan prompt.Result, 1)
	go func() { answer <- prompt.Confirm(in, out, q, 3) }()

	var res prompt.Result
	select {
	case <-ctx.Done():
		return clicker.ErrInterrupted
	case res = <-answer:
	}

	switch res {
	case prompt.Accepted:
		cfg.Click.AllowHighRate = true
		return cfg.Validate()
	case prompt.Exhausted:
		return fmt.Errorf("%w (no valid answer given)", err)
	}
	return err
}

// newBackend builds the input backend named by cfg.Backend.
func newBackend(cfg *config.Config, logger *slog.Logger) (input.Backend, error) {
	switch cfg.Backend {
	case "win32":
		btn, err := input.ParseButton(cfg.Click.Button)
		if err != nil {
			return nil, err
		}
		w, err := input.NewWin32(btn)
		if err != nil {
			return nil, fmt.Errorf("win32 backend: %w", err)
		}
		logger.Info("Backend selected", "backend", "win32", "button", btn)
		return w, nil

	case "hook":
		inj, err := inject.NewInjector(cfg.Click.Button)
		if err != nil {
			return nil, err
		}
		tracker := hotkey.NewTracker()
		go tracker.Start()
		logger.Info("Backend selected", "backend", "hook", "button", inj.Button())
		return input.Compose(tracker, inj, tracker, tracker.Stop), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func controllerOptions(cfg *config.Config) clicker.Options {
	return clicker.Options{
		Interval: cfg.Click.Interval(),
		IdlePoll: cfg.Timing.IdlePoll,
		Debounce: cfg.Timing.Debounce,
		Poll:     cfg.Timing.Poll,
		SafeMode: cfg.SafeMode,
	}
}

func logArguments(logger *slog.Logger, cfg *config.Config) {
	logger.Info("Parsed arguments",
		"rate", cfg.Click.Rate,
		"interval", cfg.Click.Interval(),
		"button", cfg.Click.Button,
		"start_key", cfg.Keys.Start,
		"pause_key", cfg.Keys.Pause,
		"quit_key", cfg.Keys.Quit,
		"safe_key", cfg.Keys.Safe,
		"safe_mode", cfg.SafeMode,
		"allow_duplicates", cfg.Keys.AllowDuplicates,
		"allow_high_rate", cfg.Click.AllowHighRate,
		"backend", cfg.Backend,
		"debounce", cfg.Timing.Debounce,
		"idle_poll", cfg.Timing.IdlePoll,
		"poll", cfg.Timing.Poll,
	)
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config, logPath string) {
	fmt.Println("=== autoclicker ===")
	fmt.Printf("  Rate:    %.4g clicks/s (%s)\n", cfg.Click.Rate, cfg.Click.Interval())
	fmt.Printf("  Button:  %s\n", cfg.Click.Button)
	fmt.Printf("  Backend: %s\n", cfg.Backend)
	fmt.Printf("  Log:     %s (%s)\n", logPath, cfg.LogLevel)
	fmt.Println("===================")
}

// failSetup reports an error that happened before the control loop
// started and closes the log.
func failSetup(logger *slog.Logger, lf *logging.File, err error) int {
	logger.Error("setup failed", "error", err)
	fmt.Printf("\n An exception occurred: %v.\nCheck the log at: %s.\n", err, lf.Path())
	if cerr := lf.Close(); cerr != nil {
		log.Printf("log file: %v", cerr)
	}
	return exitError
}

// exitCode maps the result of Controller.Run to a process exit code.
func exitCode(err error, logPath string, out io.Writer) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, clicker.ErrInterrupted):
		return exitInterrupted
	}
	fmt.Fprintf(out, "\n An exception occurred: %v.\nCheck the log at: %s.\n", err, logPath)
	return exitError
}

// panicLocation returns the file and line that raised the current panic.
// It must be called from the deferred recover function.
func panicLocation() string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	sawPanic := false
	for {
		fr, more := frames.Next()
		switch {
		case fr.Function == "runtime.gopanic":
			sawPanic = true
		case sawPanic && !strings.HasPrefix(fr.Function, "runtime."):
			return fmt.Sprintf("File: %s, line no.: %d.", fr.File, fr.Line)
		}
		if !more {
			return "File: unknown."
		}
	}
}
