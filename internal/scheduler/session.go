package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher renews an upstream session, e.g. the Yahoo cookie/crumb pair.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type SessionRefresherConfig struct {
	Spec    string        // cron spec, e.g. "@every 30m"
	Timeout time.Duration // per refresh attempt
	Warmup  bool          // refresh once immediately on Start
}

// SessionRefresher runs Refresh on a cron schedule so request handlers rarely
// pay the handshake cost themselves.
type SessionRefresher struct {
	target Refresher
	cfg    SessionRefresherConfig

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	runs    int
	lastErr error
}

func NewSessionRefresher(target Refresher, cfg SessionRefresherConfig) *SessionRefresher {
	if cfg.Spec == "" {
		cfg.Spec = "@every 30m"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SessionRefresher{target: target, cfg: cfg}
}

func (s *SessionRefresher) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		fmt.Println("[SCHEDULER] Already running")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.cfg.Spec, s.refresh); err != nil {
		return fmt.Errorf("register session refresh %q: %w", s.cfg.Spec, err)
	}
	c.Start()
	s.cron = c
	s.running = true

	if s.cfg.Warmup {
		go s.refresh()
	}

	fmt.Printf("[SCHEDULER] Started (session refresh %s)\n", s.cfg.Spec)
	return nil
}

// Stop halts the schedule and waits for an in-flight refresh to finish.
func (s *SessionRefresher) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	c := s.cron
	s.cron = nil
	s.running = false
	s.mu.Unlock()

	<-c.Stop().Done()
	fmt.Println("[SCHEDULER] Stopped")
}

func (s *SessionRefresher) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RefreshNow manually triggers a refresh outside the normal schedule.
func (s *SessionRefresher) RefreshNow(ctx context.Context) error {
	fmt.Println("[SCHEDULER] Manual session refresh triggered")
	return s.record(s.target.Refresh(ctx))
}

// Stats reports how many refreshes ran and the outcome of the last one.
func (s *SessionRefresher) Stats() (runs int, lastErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs, s.lastErr
}

func (s *SessionRefresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	if err := s.record(s.target.Refresh(ctx)); err != nil {
		fmt.Printf("[SCHEDULER] Session refresh failed: %v\n", err)
	}
}

func (s *SessionRefresher) record(err error) error {
	s.mu.Lock()
	s.runs++
	s.lastErr = err
	s.mu.Unlock()
	return err
}
