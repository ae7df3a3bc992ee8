package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/liftlog/api/internal/middleware"
	"github.com/liftlog/api/internal/repository"
)

// AutoCompleteScheduler periodically closes workouts that were left in
// progress for longer than the configured duration. Completion is one-way;
// the scheduler never reopens a workout.
type AutoCompleteScheduler struct {
	repo     *repository.WorkoutRepo
	interval time.Duration
	after    time.Duration

	mu        sync.Mutex
	running   bool
	lastRun   time.Time
	lastCount int64
	totalDone int64
	stopChan  chan struct{}
}

type Config struct {
	// Interval between sweeps.
	Interval time.Duration
	// After is how long a workout may stay in progress before it is closed.
	After time.Duration
}

func NewAutoCompleteScheduler(repo *repository.WorkoutRepo, cfg Config) *AutoCompleteScheduler {
	if cfg.Interval == 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.After == 0 {
		cfg.After = 6 * time.Hour
	}

	return &AutoCompleteScheduler{
		repo:     repo,
		interval: cfg.Interval,
		after:    cfg.After,
		stopChan: make(chan struct{}),
	}
}

func (s *AutoCompleteScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Printf("[Scheduler] Auto-complete sweep every %v, cutoff %v", s.interval, s.after)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.setRunning(false)
			return
		case <-s.stopChan:
			s.setRunning(false)
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *AutoCompleteScheduler) Stop() {
	close(s.stopChan)
}

func (s *AutoCompleteScheduler) runOnce(ctx context.Context) {
	now := time.Now()
	count, err := s.repo.AutoCompleteStale(ctx, now.Add(-s.after), now)
	if err != nil {
		log.Printf("[Scheduler] Auto-complete sweep failed: %v", err)
		return
	}

	if count > 0 {
		log.Printf("[Scheduler] Auto-completed %d stale workouts", count)
		for i := int64(0); i < count; i++ {
			middleware.RecordWorkoutCompleted("scheduler")
		}
	}

	s.mu.Lock()
	s.lastRun = now
	s.lastCount = count
	s.totalDone += count
	s.mu.Unlock()
}

func (s *AutoCompleteScheduler) setRunning(running bool) {
	s.mu.Lock()
	s.running = running
	s.mu.Unlock()
}

// GetStatus returns a snapshot for the status endpoint.
func (s *AutoCompleteScheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]interface{}{
		"enabled":        true,
		"running":        s.running,
		"interval":       s.interval.String(),
		"completeAfter":  s.after.String(),
		"lastRun":        s.lastRun,
		"lastRunClosed":  s.lastCount,
		"totalCompleted": s.totalDone,
	}
}
