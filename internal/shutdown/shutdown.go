package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Shutdownable is a component that can be closed during shutdown.
type Shutdownable interface {
	Close() error
}

// ShutdownFunc is a cleanup step that honours the shutdown deadline.
type ShutdownFunc func(ctx context.Context) error

// Priorities used by gridtab. Lower values shut down first.
const (
	PriorityHTTPServer = 10 // Stop accepting new transform requests
	PriorityScheduler  = 20 // Stop the inbox job and wait for a running pass
	PriorityStorage    = 80 // Storage backends last
)

// Coordinator runs registered shutdown steps in priority order, once.
type Coordinator struct {
	timeout time.Duration
	logger  zerolog.Logger

	mu    sync.Mutex
	steps []step

	shutdownOnce sync.Once
	triggerOnce  sync.Once
	shutdownCh   chan struct{}
	err          error
}

type step struct {
	name     string
	priority int
	run      ShutdownFunc
}

// New creates a coordinator whose whole shutdown must finish within timeout.
func New(timeout time.Duration, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		timeout:    timeout,
		logger:     logger.With().Str("component", "shutdown").Logger(),
		shutdownCh: make(chan struct{}),
	}
}

// Register adds a component closed at the given priority.
func (c *Coordinator) Register(name string, component Shutdownable, priority int) {
	c.RegisterHook(name, func(context.Context) error { return component.Close() }, priority)
}

// RegisterHook adds a cleanup function run at the given priority. Steps with
// equal priority run in registration order.
func (c *Coordinator) RegisterHook(name string, hook ShutdownFunc, priority int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.steps = append(c.steps, step{name: name, priority: priority, run: hook})
	c.logger.Debug().
		Str("name", name).
		Int("priority", priority).
		Msg("Registered shutdown step")
}

// WaitForSignal blocks until SIGINT, SIGTERM or SIGQUIT arrives or
// TriggerShutdown is called.
func (c *Coordinator) WaitForSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		c.logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		return sig
	case <-c.shutdownCh:
		return syscall.SIGTERM
	}
}

// TriggerShutdown releases WaitForSignal. Safe for concurrent use.
func (c *Coordinator) TriggerShutdown() {
	c.triggerOnce.Do(func() {
		c.logger.Info().Msg("Programmatic shutdown triggered")
		close(c.shutdownCh)
	})
}

// Shutdown runs every step once. The first step error is returned; a step that
// fails does not stop the remaining ones, the deadline does.
func (c *Coordinator) Shutdown() error {
	c.shutdownOnce.Do(func() {
		c.triggerOnce.Do(func() { close(c.shutdownCh) })

		c.mu.Lock()
		steps := make([]step, len(c.steps))
		copy(steps, c.steps)
		c.mu.Unlock()
		sort.SliceStable(steps, func(i, j int) bool { return steps[i].priority < steps[j].priority })

		c.logger.Info().
			Dur("timeout", c.timeout).
			Int("steps", len(steps)).
			Msg("Starting graceful shutdown")

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		start := time.Now()

		for _, s := range steps {
			if ctx.Err() != nil {
				c.logger.Warn().Str("step", s.name).Msg("Shutdown timeout reached, skipping remaining steps")
				c.err = ctx.Err()
				return
			}
			if err := s.run(ctx); err != nil {
				c.logger.Error().Err(err).Str("step", s.name).Msg("Shutdown step failed")
				if c.err == nil {
					c.err = err
				}
				continue
			}
			c.logger.Debug().Str("step", s.name).Msg("Shutdown step complete")
		}

		c.logger.Info().Dur("duration", time.Since(start)).Msg("Graceful shutdown complete")
	})
	return c.err
}
