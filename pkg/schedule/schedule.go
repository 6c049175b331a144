package schedule

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Task is a unit of scheduled work. Panics are recovered by the scheduler
// chain; error handling is the task's own responsibility.
type Task func()

// Scheduler runs named tasks on cron schedules.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

// New creates a stopped Scheduler. Panicking tasks are recovered and logged
// rather than taking the process down.
func New(log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	cl := &cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		log: log,
	}
}

// Add schedules task under the given cron spec. Standard five-field specs and
// @-descriptors ("@hourly", "@every 10m") are accepted.
func (s *Scheduler) Add(spec, name string, task Task) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, func() {
		s.log.Debug("scheduled task started", slog.String("task", name))
		task()
	})
}

// Start begins running scheduled tasks in their own goroutines.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling new runs. The returned context is done once all
// in-flight tasks have completed.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	log *slog.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
