// Package jobs provides scheduled background tasks for the fleet service.
//
// Jobs are cron-based and use github.com/robfig/cron/v3 with the seconds
// field enabled.
//
// # Available Jobs
//
// TrackingRetentionJob deletes tracking samples older than the configured
// retention period. It runs daily at 03:00 by default ("0 0 3 * * *").
//
// # Usage
//
//	retention := jobs.NewTrackingRetentionJob(purgeHandler, clock, schedule, 30*24*time.Hour, log)
//	jobManager := jobs.NewJobManager(retention)
//
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed purge is logged and retried on the next tick. A job that fails
// to start stops any job already running.
package jobs
