package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/rielbooks/rielbooks/internal/accounting/reports"
)

// ReportsWarmupJob precomputes the default reports into the cache.
type ReportsWarmupJob struct {
	service *reports.Service
	logger  *slog.Logger
}

func NewReportsWarmupJob(service *reports.Service, logger *slog.Logger) *ReportsWarmupJob {
	return &ReportsWarmupJob{service: service, logger: logger}
}

// Handle processes TaskReportsWarmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	start := time.Now()
	params := reports.Params{Currency: payload.Currency}
	if _, err := j.service.TrialBalance(ctx, params); err != nil {
		return err
	}
	if _, err := j.service.BalanceSheet(ctx, params); err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("reports warmup complete",
			slog.String("currency", payload.Currency),
			slog.Duration("took", time.Since(start)))
	}
	return nil
}
