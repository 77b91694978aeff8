// Package clicker runs the control state machine and the action loop.
//
// Two goroutines cooperate through a single atomic State. The control loop
// (Run, Step) samples the start, pause and quit keys, detects edges and
// applies transitions. The action loop clicks while the state is Clicking.
// Cleanup stops both and leaves the backend released.
package clicker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chaz8081/autoclicker/internal/hotkey"
	"github.com/chaz8081/autoclicker/internal/input"
)

// ErrInterrupted is returned by Run when its context is cancelled.
var ErrInterrupted = errors.New("interrupted")

// State is the run state shared by the control and action loops.
type State int32

const (
	StateIdle State = iota
	StateClicking
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateClicking:
		return "clicking"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Transition is the outcome of one Step.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionStarted
	TransitionPaused
	TransitionQuit
)

func (t Transition) String() string {
	switch t {
	case TransitionNone:
		return "none"
	case TransitionStarted:
		return "started"
	case TransitionPaused:
		return "paused"
	case TransitionQuit:
		return "quit"
	}
	return fmt.Sprintf("transition(%d)", int(t))
}

// Options tunes the loops.
type Options struct {
	Interval time.Duration // delay after each click
	IdlePoll time.Duration // action loop re-check period while idle
	Debounce time.Duration // control loop pause after each accepted transition
	Poll     time.Duration // control loop sampling period
	SafeMode bool          // start and quit need the safe key held
}

// DefaultOptions returns the stock timing: 42ms between clicks, 200ms idle
// poll, 69ms debounce and 1ms sampling, with safe mode on.
func DefaultOptions() Options {
	return Options{
		Interval: 42 * time.Millisecond,
		IdlePoll: 200 * time.Millisecond,
		Debounce: 69 * time.Millisecond,
		Poll:     time.Millisecond,
		SafeMode: true,
	}
}

// Controller owns the run state, the edge history and the backend for the
// lifetime of one run.
type Controller struct {
	backend  input.Backend
	bindings hotkey.Bindings
	opts     Options
	out      io.Writer
	logger   *slog.Logger

	state atomic.Int32
	edges hotkey.EdgeState // control loop only

	quit     chan struct{}
	quitOnce sync.Once
	wake     chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool

	failMu  sync.Mutex
	failErr error

	clicks atomic.Int64

	closers     []func() error
	cleanupOnce sync.Once
	cleanupErr  error

	sleep func(time.Duration)
}

// New creates a Controller in the Idle state. A nil out or logger discards
// output.
func New(backend input.Backend, bindings hotkey.Bindings, opts Options, out io.Writer, logger *slog.Logger) *Controller {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Controller{
		backend:  backend,
		bindings: bindings,
		opts:     opts,
		out:      out,
		logger:   logger,
		quit:     make(chan struct{}),
		wake:     make(chan struct{}, 1),
		sleep:    time.Sleep,
	}
	c.state.Store(int32(StateIdle))
	return c
}

// OnCleanup registers fn to run at the end of Cleanup. Closers run in
// registration order. It must be called before Run.
func (c *Controller) OnCleanup(fn func() error) {
	c.closers = append(c.closers, fn)
}

// State returns the current run state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Clicks returns the number of actions performed so far.
func (c *Controller) Clicks() int64 {
	return c.clicks.Load()
}

// Err returns the first backend error seen by either loop, if any.
func (c *Controller) Err() error {
	c.failMu.Lock()
	defer c.failMu.Unlock()
	return c.failErr
}

// Banner prints the key hints shown before the control loop starts.
func (c *Controller) Banner() {
	name := func(ctl hotkey.Control) string {
		return c.backend.Name(c.bindings.Key(ctl))
	}
	if c.opts.SafeMode {
		fmt.Fprintf(c.out, "Safe mode is enabled. Hold the safe key '%s' to use the start and quit keys.\n", name(hotkey.Safe))
	}
	fmt.Fprintf(c.out, "Press '%s' to start/resume clicking, '%s' to pause, and '%s' to quit.\n",
		name(hotkey.Start), name(hotkey.Pause), name(hotkey.Quit))
}

// Run starts the action loop, prints the banner and samples keys every
// Poll until the state becomes Terminated. It always runs Cleanup before
// returning. The result is nil on a normal quit, ErrInterrupted when ctx
// is cancelled, or the first backend error.
func (c *Controller) Run(ctx context.Context) error {
	c.startActionLoop()
	c.Banner()

	timer := time.NewTimer(c.opts.Poll)
	defer timer.Stop()

	for c.State() != StateTerminated {
		if _, err := c.Step(ctx); err != nil {
			c.fail(err)
			break
		}
		if c.State() == StateTerminated {
			break
		}

		timer.Reset(c.opts.Poll)
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out, "\nInterrupted by keyboard!")
			c.logger.Warn("Interrupted by keyboard!")
			if err := c.Cleanup(); err != nil {
				c.logger.Error("cleanup failed", "error", err)
			}
			return ErrInterrupted
		case <-c.quit:
		case <-timer.C:
		}
	}

	cleanupErr := c.Cleanup()
	if err := c.Err(); err != nil {
		return errors.Join(err, cleanupErr)
	}
	return cleanupErr
}

// Step runs one sampling iteration: start, then pause, then quit. Each
// accepted transition stores the new state, prints a status line and then
// blocks the caller for the debounce period. The returned Transition is
// the last one accepted in this iteration.
func (c *Controller) Step(ctx context.Context) (Transition, error) {
	if c.State() == StateTerminated {
		return TransitionNone, nil
	}
	tr := TransitionNone

	fired, err := c.sample(hotkey.Start, c.opts.SafeMode)
	if err != nil {
		return tr, err
	}
	if fired && c.state.CompareAndSwap(int32(StateIdle), int32(StateClicking)) {
		c.signalWake()
		fmt.Fprint(c.out, "Clicking started.\r")
		c.logger.Info("Clicking started")
		c.debounce(ctx)
		tr = TransitionStarted
	}

	// Pause is never gated so it always works while clicking.
	fired, err = c.sample(hotkey.Pause, false)
	if err != nil {
		return tr, err
	}
	if fired && c.state.CompareAndSwap(int32(StateClicking), int32(StateIdle)) {
		fmt.Fprint(c.out, "Clicking paused.\r")
		c.logger.Info("Clicking paused")
		c.debounce(ctx)
		tr = TransitionPaused
	}

	fired, err = c.sample(hotkey.Quit, c.opts.SafeMode)
	if err != nil {
		return tr, err
	}
	if fired && c.terminate() {
		fmt.Fprint(c.out, "\nQuitting...\n")
		c.logger.Info("Quitting", "clicks", c.Clicks())
		c.debounce(ctx)
		tr = TransitionQuit
	}

	return tr, nil
}

// Cleanup stops the action loop and releases the backend. Only the first
// call does any work; later calls return its result.
func (c *Controller) Cleanup() error {
	c.cleanupOnce.Do(func() {
		c.terminate()
		c.wg.Wait()

		c.logger.Info("Total clicks", "clicks", c.Clicks())

		var errs []error
		if err := c.backend.Release(); err != nil {
			c.logger.Error("release failed", "error", err)
			errs = append(errs, fmt.Errorf("clicker: release: %w", err))
		}
		if err := c.backend.Close(); err != nil {
			c.logger.Error("backend close failed", "error", err)
			errs = append(errs, fmt.Errorf("clicker: close backend: %w", err))
		}

		fmt.Fprintln(c.out, "Resources are cleaned up.")
		c.logger.Info("Resources are cleaned up.")

		for _, fn := range c.closers {
			if err := fn(); err != nil {
				errs = append(errs, err)
			}
		}
		c.cleanupErr = errors.Join(errs...)
	})
	return c.cleanupErr
}

// sample reads c's key and, when gated, the safe key, and feeds them
// through the edge detector.
func (c *Controller) sample(ctl hotkey.Control, gated bool) (bool, error) {
	satisfied := true
	if gated {
		down, err := c.backend.IsKeyDown(c.bindings.Key(hotkey.Safe))
		if err != nil {
			return false, fmt.Errorf("clicker: read safe key: %w", err)
		}
		satisfied = down
	}
	down, err := c.backend.IsKeyDown(c.bindings.Key(ctl))
	if err != nil {
		return false, fmt.Errorf("clicker: read %s key: %w", ctl, err)
	}
	return c.edges.Sample(ctl, down, gated, satisfied), nil
}

// debounce blocks the control loop only. The action loop keeps its own
// schedule.
func (c *Controller) debounce(ctx context.Context) {
	if c.opts.Debounce <= 0 || ctx.Err() != nil {
		return
	}
	c.sleep(c.opts.Debounce)
}

// terminate stores Terminated and signals the action loop. It reports
// whether this call made the change.
func (c *Controller) terminate() bool {
	prev := State(c.state.Swap(int32(StateTerminated)))
	c.quitOnce.Do(func() { close(c.quit) })
	return prev != StateTerminated
}

func (c *Controller) fail(err error) {
	c.failMu.Lock()
	if c.failErr == nil {
		c.failErr = err
		c.logger.Error("backend failure", "error", err)
	}
	c.failMu.Unlock()
	c.terminate()
}

func (c *Controller) signalWake() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Controller) startActionLoop() {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	c.wg.Add(1)
	go c.actionLoop()
}

// actionLoop clicks once per Interval while Clicking and idles otherwise.
// The state is re-read after every wait, so at most one click can follow
// a pause or quit. A panic in the backend is turned into a failure so Run
// still cleans up.
func (c *Controller) actionLoop() {
	defer c.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			c.fail(fmt.Errorf("clicker: click panic: %v\n%s", r, debug.Stack()))
		}
	}()
	for {
		switch c.State() {
		case StateTerminated:
			return
		case StateClicking:
			if err := c.backend.Click(); err != nil {
				c.fail(fmt.Errorf("clicker: click: %w", err))
				return
			}
			c.clicks.Add(1)
			if !c.wait(c.opts.Interval, nil) {
				return
			}
		default:
			if !c.wait(c.opts.IdlePoll, c.wake) {
				return
			}
		}
	}
}

// wait sleeps for d, returning early on wake. It returns false once the
// quit channel is closed.
func (c *Controller) wait(d time.Duration, wake <-chan struct{}) bool {
	if d <= 0 {
		select {
		case <-c.quit:
			return false
		default:
			return true
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-c.quit:
		return false
	case <-wake:
		return true
	case <-t.C:
		return true
	}
}
