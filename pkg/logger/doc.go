// Package logger builds the slog loggers used across the notification
// pipeline.
//
// New creates a *slog.Logger from functional options. The handler is either
// slog.NewJSONHandler (production, staging) or slog.NewTextHandler
// (development) and is wrapped in a decorator that pulls request- or
// job-scoped values out of context.Context on every record.
//
// Attribute helpers in attr.go keep key names stable so the worker's
// "job finished" events can be queried by job_id, recipient_id,
// notification_type and outcome regardless of which component logged them.
//
//	log := logger.New(logger.WithEnvironment(cfg.Env, "notifyworker"))
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "notification job finished",
//	    logger.JobID(job.ID),
//	    logger.Recipient(job.RecipientID),
//	    logger.Outcome(logger.OutcomeDelivered),
//	)
package logger
