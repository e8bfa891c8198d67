package control

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Supervisor runs named watcher loops, recovers panics, and optionally
// restarts a halted loop after a fixed backoff.
type Supervisor struct {
	log *slog.Logger
	wg  sync.WaitGroup
}

// NewSupervisor creates a supervisor.
func NewSupervisor(log *slog.Logger) *Supervisor {
	if log == nil {
		log = slog.Default()
	}
	return &Supervisor{log: log}
}

// Go runs fn under supervision in its own goroutine. A nil return or
// context cancellation ends supervision. When fn returns an error (a halted
// watcher) and backoff > 0, fn is restarted after the backoff; with backoff
// 0 the halt is final and only logged.
func (s *Supervisor) Go(
	ctx context.Context,
	name string,
	backoff time.Duration,
	fn func(context.Context) error,
) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			err := s.run(ctx, fn)
			if ctx.Err() != nil || err == nil {
				return
			}
			if backoff <= 0 {
				s.log.Error("supervised task halted", "name", name, "error", err)
				return
			}
			s.log.Error(
				"supervised task halted, restarting",
				"name", name, "error", err, "backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}
	}()
}

func (s *Supervisor) run(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn(ctx)
}

// Wait blocks until every supervised task has exited.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}
