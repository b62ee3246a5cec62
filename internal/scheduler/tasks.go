package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edgard/wonderfulgo/internal/config"
	"github.com/edgard/wonderfulgo/internal/database"
)

// TaskFunc is the signature of every scheduled task.
type TaskFunc func(ctx context.Context) error

// TaskDeps contains the dependencies of scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Maintainer
}

// RegisterTasks returns every known task keyed by the name used in the
// scheduler config section.
func RegisterTasks(deps TaskDeps) map[string]TaskFunc {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return map[string]TaskFunc{
		config.MaintenanceTask: newSQLMaintenanceTask(deps),
	}
}

func newSQLMaintenanceTask(deps TaskDeps) TaskFunc {
	log := deps.Logger.With("task", config.MaintenanceTask)

	return func(ctx context.Context) error {
		startTime := time.Now()
		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "SQL maintenance failed", "error", err, "duration", time.Since(startTime))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}
		log.InfoContext(ctx, "SQL maintenance completed", "duration", time.Since(startTime))
		return nil
	}
}
