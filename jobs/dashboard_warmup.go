package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vertice-erp/vertice-erp/internal/dashboard"
)

// DashboardWarmupJob pre-populates the stats cache.
type DashboardWarmupJob struct {
	Dashboard *dashboard.Service
	Logger    *slog.Logger
}

// Handle recomputes and stores the current month's stats.
func (j *DashboardWarmupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	start := time.Now()
	if err := j.Dashboard.Warm(ctx); err != nil {
		j.Logger.Error("dashboard warmup", slog.Any("error", err))
		return err
	}
	j.Logger.Info("dashboard warmup", slog.Duration("took", time.Since(start)))
	return nil
}
