package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"VNIndexAgent/internal/logger"
)

// Hooks are the actions the scheduler drives.
type Hooks interface {
	// Briefing runs a fired daily trigger. It is called on its own goroutine.
	Briefing(ctx context.Context, t Trigger, day string)
	// SimulateTick applies one simulated price step.
	SimulateTick()
	// RefreshPrices fetches authoritative quotes.
	RefreshPrices(ctx context.Context)
	// Review runs the periodic diversification review.
	Review(ctx context.Context)
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron       *cron.Cron
	Controller *Controller
	Hooks      Hooks
	Ctx        context.Context

	loc *time.Location
	now func() time.Time
	wg  sync.WaitGroup
	log zerolog.Logger
}

// NewScheduler creates a new Scheduler evaluating wall-clock triggers in loc.
func NewScheduler(ctx context.Context, ctl *Controller, hooks Hooks, loc *time.Location, log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	cl := logger.CronLogger{Log: log}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		Controller: ctl,
		Hooks:      hooks,
		Ctx:        ctx,
		loc:        loc,
		now:        time.Now,
		log:        log,
	}
}

// RegisterAll registers the controller tick and the optional refresh and review jobs.
// Empty cron expressions are skipped.
func (s *Scheduler) RegisterAll(tick time.Duration, refreshCron, reviewCron string) error {
	cl := logger.CronLogger{Log: s.log}
	tickJob := cron.NewChain(cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(func() {
		s.Tick(s.now())
	}))
	if _, err := s.Cron.AddJob(fmt.Sprintf("@every %s", tick), tickJob); err != nil {
		return fmt.Errorf("register tick: %w", err)
	}

	if refreshCron != "" {
		refreshJob := cron.NewChain(cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(func() {
			s.Hooks.RefreshPrices(s.Ctx)
		}))
		if _, err := s.Cron.AddJob(refreshCron, refreshJob); err != nil {
			return fmt.Errorf("register refresh task: %w", err)
		}
	}
	if reviewCron != "" {
		if _, err := s.Cron.AddFunc(reviewCron, func() { s.Hooks.Review(s.Ctx) }); err != nil {
			return fmt.Errorf("register review task: %w", err)
		}
	}
	return nil
}

// Tick runs one controller step: fire due daily triggers, then apply one simulated
// price step. Briefings run in the background so a slow model call never delays
// the next tick.
func (s *Scheduler) Tick(now time.Time) {
	now = now.In(s.loc)
	for _, t := range s.Controller.Due(now) {
		day := now.Format(DateLayout)
		s.log.Info().Str("trigger", t.Name).Str("day", day).Msg("daily trigger fired")
		s.wg.Add(1)
		go func(t Trigger) {
			defer s.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.log.Error().Interface("panic", r).Str("trigger", t.Name).Msg("briefing panicked")
				}
			}()
			s.Hooks.Briefing(s.Ctx, t, day)
		}(t)
	}
	s.Hooks.SimulateTick()
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs and briefings.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.wg.Wait()
	s.log.Info().Msg("scheduler stopped")
}

// Wait blocks until background briefings started so far have finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
