package jobs

import (
	"context"
	"time"

	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

const (
	DefaultRetentionSchedule = "0 0 3 * * *"
	DefaultRetention         = 30 * 24 * time.Hour

	retentionRunTimeout = 5 * time.Minute
)

// TrackingPurger deletes tracking samples recorded before a cutoff.
type TrackingPurger interface {
	Handle(ctx context.Context, cmd commands.PurgeTrackingHistoryCommand) (int64, error)
}

// TrackingRetentionJob deletes tracking samples older than the retention period.
// The schedule is a cron expression with a seconds field.
type TrackingRetentionJob struct {
	purger    TrackingPurger
	clock     ports.Clock
	schedule  string
	retention time.Duration
	cron      *cron.Cron
	log       logger.Logger
}

// NewTrackingRetentionJob creates the job. Empty schedule and non-positive
// retention fall back to the defaults.
func NewTrackingRetentionJob(
	purger TrackingPurger,
	clock ports.Clock,
	schedule string,
	retention time.Duration,
	log logger.Logger,
) *TrackingRetentionJob {
	if schedule == "" {
		schedule = DefaultRetentionSchedule
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &TrackingRetentionJob{
		purger:    purger,
		clock:     clock,
		schedule:  schedule,
		retention: retention,
		cron:      cron.New(cron.WithSeconds()),
		log:       log.With(logger.String("component", "tracking_retention_job")),
	}
}

// Start registers the purge on the schedule and starts the scheduler.
func (j *TrackingRetentionJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.log.Info("tracking retention job started",
		logger.String("schedule", j.schedule),
		logger.Duration("retention", j.retention),
	)
	return nil
}

func (j *TrackingRetentionJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), retentionRunTimeout)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		j.log.Error("tracking retention job failed", logger.Error(err))
	}
}

// RunOnce purges once and returns the number of deleted samples.
func (j *TrackingRetentionJob) RunOnce(ctx context.Context) (int64, error) {
	cmd, err := commands.NewPurgeTrackingHistoryCommandForRetention(j.clock.Now(), j.retention)
	if err != nil {
		return 0, err
	}

	deleted, err := j.purger.Handle(ctx, cmd)
	if err != nil {
		return 0, err
	}

	j.log.Info("tracking history purged",
		logger.Int64("deleted", deleted),
		logger.Time("older_than", cmd.OlderThan()),
	)
	return deleted, nil
}

// Stop stops the scheduler and waits for a running purge to finish.
func (j *TrackingRetentionJob) Stop() {
	<-j.cron.Stop().Done()
	j.log.Info("tracking retention job stopped")
}
