// Package scheduler runs bulk sweeps on a cron schedule or on demand, then
// records and reports their summaries.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"PriceLineup/internal/model"
	"PriceLineup/internal/notifier"
	"PriceLineup/internal/recorder"
)

// ErrBusy is returned when a sweep is requested while another one runs.
var ErrBusy = errors.New("a sweep is already running")

// ErrStopped is returned when a sweep is requested after Stop.
var ErrStopped = errors.New("scheduler is stopping")

// reportTimeout bounds delivery of a report after the run context ended.
const reportTimeout = 30 * time.Second

// Sweeper runs one bulk sweep.
type Sweeper interface {
	Run(ctx context.Context) ([]model.Outcome, error)
}

// Notifier delivers sweep reports.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages cron-driven and manual sweeps. At most one sweep runs
// at a time, so no symbol is ever fetched by two calls at once.
type Scheduler struct {
	Cron     *cron.Cron
	Sweeper  Sweeper
	Notifier Notifier // nil disables reports
	Recorder recorder.Recorder
	Ctx      context.Context
	Now      func() time.Time

	running sync.Mutex

	mu      sync.Mutex
	stopped bool
	manual  sync.WaitGroup // sweeps started by HandleCommand
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sw Sweeper, n Notifier, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		Sweeper:  sw,
		Notifier: n,
		Recorder: rec,
		Ctx:      ctx,
		Now:      time.Now,
	}
}

// Register adds the sweep job for a cron spec (with seconds field).
func (s *Scheduler) Register(sweepCron string) error {
	if _, err := s.Cron.AddFunc(sweepCron, s.cronSweep); err != nil {
		return fmt.Errorf("register sweep task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler, refuses new manual sweeps and waits for
// running sweeps, cron-driven or manual, to finish recording.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	<-s.Cron.Stop().Done()
	s.manual.Wait()
	log.Println("[INFO] scheduler stopped")
}

// Go runs a manual sweep in the background. Stop waits for it.
func (s *Scheduler) Go(mode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	if s.Busy() {
		return ErrBusy
	}
	s.manual.Add(1)
	go func() {
		defer s.manual.Done()
		if _, err := s.RunNow(mode); err != nil {
			log.Printf("[ERROR] %s sweep: %v", mode, err)
		}
	}()
	return nil
}

func (s *Scheduler) cronSweep() {
	if _, err := s.RunNow("cron"); err != nil {
		log.Printf("[ERROR] scheduled sweep: %v", err)
	}
}

// RunNow executes a sweep immediately. The summary is recorded and sent even
// when the sweep was interrupted; the returned error is the interruption.
func (s *Scheduler) RunNow(mode string) (*model.RunSummary, error) {
	if !s.running.TryLock() {
		return nil, ErrBusy
	}
	defer s.running.Unlock()

	now := s.Now
	if now == nil {
		now = time.Now
	}

	log.Printf("[INFO] running %s sweep", mode)
	started := now()
	outcomes, err := s.Sweeper.Run(s.Ctx)

	sum := model.Summarize(outcomes)
	sum.ID = uuid.NewString()
	sum.Mode = mode
	sum.StartedAt = started
	sum.FinishedAt = now()
	sum.Aborted = err != nil
	log.Printf("[INFO] sweep %s finished: saved=%d skipped=%d failed=%d aborted=%v",
		sum.ID, sum.Saved, sum.Skipped, sum.Failed, sum.Aborted)

	if rerr := s.Recorder.RecordRun(&sum); rerr != nil {
		log.Printf("[ERROR] record sweep: %v", rerr)
	}
	s.trySend(notifier.FormatSweepReport(&sum))
	return &sum, err
}

// Busy reports whether a sweep is running.
func (s *Scheduler) Busy() bool {
	if s.running.TryLock() {
		s.running.Unlock()
		return false
	}
	return true
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/sweep":
		if err := s.Go("chat"); err != nil {
			return err.Error()
		}
		return "🚀 Sweep started"
	case "/runs":
		runs, err := s.Recorder.RecentRuns(5)
		if err != nil {
			log.Printf("[ERROR] load runs: %v", err)
			return "❌ Could not load sweep history"
		}
		return notifier.FormatRunHistory(runs)
	case "/status":
		if s.Busy() {
			return "⏳ A sweep is running"
		}
		return "💤 Idle"
	default:
		return "Available commands:\n• /sweep\n• /runs\n• /status"
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.Ctx), reportTimeout)
	defer cancel()
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
