package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"telegram-casino-bot/internal/config"
)

// Resetter resets every jackpot pool.
type Resetter interface {
	ResetAll(ctx context.Context) (int, error)
}

// ResetScheduler resets jackpots at fixed wall-clock times each day.
type ResetScheduler struct {
	cron     *cron.Cron
	resetter Resetter
	loc      *time.Location
	timeout  time.Duration

	mu        sync.Mutex
	lastFired map[config.ClockTime]string
}

// NewResetScheduler registers one cron entry per reset time in loc.
func NewResetScheduler(resetter Resetter, clocks []config.ClockTime, loc *time.Location) (*ResetScheduler, error) {
	s := &ResetScheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		resetter:  resetter,
		loc:       loc,
		timeout:   30 * time.Second,
		lastFired: make(map[config.ClockTime]string),
	}

	for _, ct := range clocks {
		spec := fmt.Sprintf("%d %d * * *", ct.Minute, ct.Hour)
		if _, err := s.cron.AddJob(spec, resetJob{s: s, at: ct}); err != nil {
			return nil, fmt.Errorf("schedule jackpot reset %s: %w", ct, err)
		}
	}
	return s, nil
}

type resetJob struct {
	s  *ResetScheduler
	at config.ClockTime
}

func (j resetJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.s.timeout)
	defer cancel()
	j.s.fire(ctx, j.at, time.Now())
}

// fire resets the pools unless this slot already fired in the same minute.
// It reports whether a reset ran.
func (s *ResetScheduler) fire(ctx context.Context, at config.ClockTime, now time.Time) bool {
	minute := now.In(s.loc).Format("2006-01-02 15:04")

	s.mu.Lock()
	if s.lastFired[at] == minute {
		s.mu.Unlock()
		return false
	}
	s.lastFired[at] = minute
	s.mu.Unlock()

	n, err := s.resetter.ResetAll(ctx)
	if err != nil {
		log.Error().Err(err).Str("at", at.String()).Int("reset", n).Msg("Jackpot reset failed")
		return true
	}
	log.Info().Str("at", at.String()).Int("pools", n).Msg("Jackpots reset")
	return true
}

// Entries returns the number of scheduled reset times.
func (s *ResetScheduler) Entries() int {
	return len(s.cron.Entries())
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// a running reset to finish.
func (s *ResetScheduler) Run(ctx context.Context) error {
	s.cron.Start()
	log.Info().Int("entries", s.Entries()).Str("timezone", s.loc.String()).Msg("Jackpot reset scheduler started")
	<-ctx.Done()
	<-s.cron.Stop().Done()
	log.Info().Msg("Jackpot reset scheduler stopped")
	return nil
}
