// Package schedule runs named background tasks on cron schedules.
//
// It is a thin wrapper over robfig/cron that routes cron's logging through
// log/slog and recovers task panics, so a misbehaving task never takes the
// scheduler (or the process) down.
package schedule
