package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/coworkhub/coworking-backend/internal/metrics"
)

const jobTimeout = 5 * time.Minute

// EventPruner deletes payment events older than a cutoff
type EventPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// QueueMeter reports the length of the outbound email queue
type QueueMeter interface {
	Queued() bool
	QueueLength(ctx context.Context) (int64, error)
}

// LimiterJanitor evicts idle rate limiter entries
type LimiterJanitor interface {
	Cleanup() int
}

// CronService manages scheduled background jobs
type CronService struct {
	cron      *cron.Cron
	events    EventPruner
	queue     QueueMeter
	limiter   LimiterJanitor
	retention time.Duration
	logger    *logrus.Logger
}

// NewCronService creates a new CronService
func NewCronService(events EventPruner, queue QueueMeter, limiter LimiterJanitor, retention time.Duration, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:      cron.New(cron.WithSeconds()),
		events:    events,
		queue:     queue,
		limiter:   limiter,
		retention: retention,
		logger:    logger,
	}
}

// Start starts all cron jobs
func (s *CronService) Start() error {
	// Cron format: second minute hour day month weekday
	if _, err := s.cron.AddFunc("0 * * * * *", s.housekeepingJob); err != nil {
		return fmt.Errorf("failed to schedule housekeeping job: %w", err)
	}
	s.logger.Info("Scheduled: housekeeping (every minute)")

	// "0 0 3 * * *" = At 3:00 AM every day
	if _, err := s.cron.AddFunc("0 0 3 * * *", s.prunePaymentEventsJob); err != nil {
		return fmt.Errorf("failed to schedule payment event pruning job: %w", err)
	}
	s.logger.WithField("retention", s.retention.String()).Info("Scheduled: prune payment events (daily at 3:00 AM)")

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops all cron jobs and waits for running ones
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

// housekeepingJob refreshes the email queue gauge and evicts idle limiter entries
func (s *CronService) housekeepingJob() {
	if s.limiter != nil {
		if removed := s.limiter.Cleanup(); removed > 0 {
			s.logger.WithField("removed", removed).Debug("Evicted idle rate limiter entries")
		}
	}

	if s.queue == nil || !s.queue.Queued() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	length, err := s.queue.QueueLength(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read email queue length")
		return
	}
	metrics.SetEmailQueueLength(length)
}

// prunePaymentEventsJob removes payment events past the retention window
func (s *CronService) prunePaymentEventsJob() {
	if _, err := s.PrunePaymentEvents(); err != nil {
		s.logger.WithError(err).Error("Failed to prune payment events")
	}
}

// PrunePaymentEvents runs the retention cleanup immediately
func (s *CronService) PrunePaymentEvents() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	startTime := time.Now()
	cutoff := startTime.Add(-s.retention)

	deleted, err := s.events.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	metrics.RecordPaymentEventsPruned(deleted)

	s.logger.WithFields(logrus.Fields{
		"deleted":  deleted,
		"cutoff":   cutoff.Format(time.RFC3339),
		"duration": time.Since(startTime).String(),
	}).Info("Pruned payment events")

	return deleted, nil
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
