package main

import (
	"errors"
	"flag"

	"github.com/chaz8081/autoclicker/internal/config"
)

// cliFlags holds the command-line overrides. Only flags that were set on
// the command line replace config values.
type cliFlags struct {
	fs *flag.FlagSet

	configPath      string
	rate            float64
	timeout         float64
	startKey        string
	pauseKey        string
	quitKey         string
	safeKey         string
	safeMode        bool
	allowDuplicates bool
	cautionOverride bool
	button          string
	backend         string
	logFile         string
	logLevel        string
}

func newFlags(name string) *cliFlags {
	f := &cliFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	fs := f.fs
	fs.StringVar(&f.configPath, "config", "", "path to config file (default: ~/.config/autoclicker/config.yaml)")
	fs.Float64Var(&f.rate, "rate", 0, "clicks per second")
	fs.Float64Var(&f.timeout, "timeout", 0, "milliseconds between clicks (alternative to -rate)")
	fs.StringVar(&f.startKey, "start-key", "", "key that starts/resumes clicking (single character)")
	fs.StringVar(&f.pauseKey, "pause-key", "", "key that pauses clicking (single character)")
	fs.StringVar(&f.quitKey, "quit-key", "", "key that quits (single character)")
	fs.StringVar(&f.safeKey, "safe-key", "", "key held to enable start and quit in safe mode (hex code, key name or character)")
	fs.BoolVar(&f.safeMode, "safe-mode", true, "require the safe key for start and quit")
	fs.BoolVar(&f.allowDuplicates, "allow-duplicates", false, "allow several controls to share a key")
	fs.BoolVar(&f.cautionOverride, "caution-override", false, "accept rates above the safe maximum without asking")
	fs.StringVar(&f.button, "button", "", "mouse button: left, right or middle")
	fs.StringVar(&f.backend, "backend", "", "input backend: win32 or hook")
	fs.StringVar(&f.logFile, "log-file", "", "event log path")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
	return f
}

func (f *cliFlags) parse(args []string) error {
	return f.fs.Parse(args)
}

// apply overlays the explicitly set flags onto cfg.
func (f *cliFlags) apply(cfg *config.Config) error {
	set := make(map[string]bool)
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["rate"] && set["timeout"] {
		return errors.New("-rate and -timeout cannot be used together")
	}
	if set["rate"] {
		cfg.Click.Rate = f.rate
	}
	if set["timeout"] {
		cfg.Click.Rate = config.RateFromTimeout(f.timeout)
	}

	strs := []struct {
		name string
		src  string
		dst  *string
	}{
		{"start-key", f.startKey, &cfg.Keys.Start},
		{"pause-key", f.pauseKey, &cfg.Keys.Pause},
		{"quit-key", f.quitKey, &cfg.Keys.Quit},
		{"safe-key", f.safeKey, &cfg.Keys.Safe},
		{"button", f.button, &cfg.Click.Button},
		{"backend", f.backend, &cfg.Backend},
		{"log-file", f.logFile, &cfg.LogFile},
		{"log-level", f.logLevel, &cfg.LogLevel},
	}
	for _, s := range strs {
		if set[s.name] {
			*s.dst = s.src
		}
	}

	if set["safe-mode"] {
		cfg.SafeMode = f.safeMode
	}
	if set["allow-duplicates"] {
		cfg.Keys.AllowDuplicates = f.allowDuplicates
	}
	if set["caution-override"] {
		cfg.Click.AllowHighRate = f.cautionOverride
	}
	return nil
}
