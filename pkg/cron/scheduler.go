// Package cron runs the scheduled workflow sweep using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"

	"github.com/finhelm/statement-api/internal/domain/transaction"
)

// DefaultSchedule runs the sweep daily at 2:00 AM.
const DefaultSchedule = "0 2 * * *"

var (
	monthsTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "statement_workflow_months_total",
		Help: "Months with statement data, per year.",
	}, []string{"year"})
	monthsProcessed = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "statement_workflow_months_processed",
		Help: "Months marked processed, per year.",
	}, []string{"year"})
	yearCompleted = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "statement_workflow_year_completed",
		Help: "Whether every month of the year is processed (0 or 1).",
	}, []string{"year"})
)

// Scheduler periodically walks workflow status across all years and
// publishes the progress gauges.
type Scheduler struct {
	cron     *cron.Cron
	store    transaction.Store
	schedule string
	logger   *slog.Logger
}

// NewScheduler creates the sweep scheduler. An empty schedule falls back to
// the daily default.
func NewScheduler(store transaction.Store, schedule string, logger *slog.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	// Standard 5-field format, no seconds.
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		store:    store,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the sweep job and begins the schedule.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("workflow sweep scheduled",
		slog.String("schedule", s.schedule),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop halts the schedule; the returned context is done once any running
// sweep drains.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("workflow sweep stopping")
	return s.cron.Stop()
}

// RunNow sweeps immediately, outside the schedule.
func (s *Scheduler) RunNow() {
	s.sweep()
}

func (s *Scheduler) sweep() {
	start := time.Now()

	years := s.store.Years()
	processed := 0
	for _, year := range years {
		status := s.store.WorkflowStatus(year)
		monthsTotal.WithLabelValues(year).Set(float64(status.TotalMonths))
		monthsProcessed.WithLabelValues(year).Set(float64(status.ProcessedMonths))

		completed := 0.0
		if status.Completed {
			completed = 1
		}
		yearCompleted.WithLabelValues(year).Set(completed)
		processed += status.ProcessedMonths
	}

	s.logger.Info("workflow sweep completed",
		slog.Int("years", len(years)),
		slog.Int("processed_months", processed),
		slog.Duration("duration", time.Since(start)),
	)
}
