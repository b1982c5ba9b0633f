package session

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSpec is the cron schedule used when none is configured.
const DefaultSweepSpec = "@every 1m"

// Sweeper periodically evicts expired tokens from an Authority.
type Sweeper struct {
	cron *cron.Cron
	auth *Authority
	spec string
}

// NewSweeper returns a Sweeper for auth on the given cron spec.
func NewSweeper(auth *Authority, spec string) *Sweeper {
	if spec == "" {
		spec = DefaultSweepSpec
	}
	return &Sweeper{
		cron: cron.New(),
		auth: auth,
		spec: spec,
	}
}

// Start registers the sweep job and starts the scheduler.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.run)
	if err != nil {
		return fmt.Errorf("session: schedule sweep %q: %w", s.spec, err)
	}
	s.cron.Start()
	slog.Info("session sweeper started", "spec", s.spec)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) run() {
	if n := s.auth.Sweep(); n > 0 {
		slog.Debug("expired sessions evicted", "count", n, "active", s.auth.Active())
	}
}
