// Package scheduler runs periodic maintenance jobs for the evaluation cache.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yourusername/trio-ev/internal/evaluator"
	"github.com/yourusername/trio-ev/internal/logger"
)

// minStatsInterval keeps the stats job from flooding the log.
const minStatsInterval = 5

// Scheduler manages scheduled cache jobs
type Scheduler struct {
	cron      *cron.Cron
	cache     *evaluator.EvaluationCache
	logger    *logger.CalculatorLogger
	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a new scheduler
func NewScheduler(cache *evaluator.EvaluationCache, log *logger.CalculatorLogger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		cache:  cache,
		logger: log,
		jobIDs: make([]cron.EntryID, 0),
	}
}

// ScheduleCacheStats logs cache statistics every intervalSeconds.
func (s *Scheduler) ScheduleCacheStats(intervalSeconds int) error {
	if intervalSeconds < minStatsInterval {
		intervalSeconds = minStatsInterval
	}
	return s.addJob(fmt.Sprintf("@every %ds", intervalSeconds), s.ReportCacheStats)
}

// ScheduleCacheFlush empties the cache on a standard five-field cron schedule.
func (s *Scheduler) ScheduleCacheFlush(cronExpression string) error {
	return s.addJob(cronExpression, s.FlushCache)
}

func (s *Scheduler) addJob(spec string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("schedule", spec).Info("Scheduled cache job")

	return nil
}

// ReportCacheStats logs the current cache statistics.
func (s *Scheduler) ReportCacheStats() {
	hits, misses, ratio := s.cache.Stats()
	s.logger.LogCacheStats(hits, misses, ratio, s.cache.ItemCount())
}

// FlushCache empties the cache and resets its counters.
func (s *Scheduler) FlushCache() {
	items := s.cache.ItemCount()
	s.cache.Clear()
	s.logger.WithField("cache_items", items).Info("Evaluation cache flushed")
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
