package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Task is a periodic maintenance job.
type Task struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

// Janitor runs maintenance tasks on a fixed interval until ctx is done.
type Janitor struct {
	interval time.Duration
	tasks    []Task
	logger   *zap.Logger
}

// NewJanitor builds a janitor; a non-positive interval defaults to one minute.
func NewJanitor(interval time.Duration, logger *zap.Logger, tasks ...Task) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{interval: interval, tasks: tasks, logger: logger}
}

// Run blocks until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce executes every task a single time.
func (j *Janitor) RunOnce(ctx context.Context) {
	for _, task := range j.tasks {
		n, err := task.Run(ctx)
		if err != nil {
			j.logger.Warn("janitor task failed", zap.String("task", task.Name), zap.Error(err))
			continue
		}
		if n > 0 {
			j.logger.Debug("janitor task done", zap.String("task", task.Name), zap.Int64("removed", n))
		}
	}
}
