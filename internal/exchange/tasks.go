package exchange

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// TaskTypeRefresh identifies the periodic rate cache warm task.
const TaskTypeRefresh = "exchange:refresh"

// NewRefreshTask builds the task enqueued by the scheduler. It carries no
// payload; the handler re-reads the active route pairs on every run.
func NewRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskTypeRefresh, nil)
}

// PairSource lists the origin/destination pairs worth keeping warm.
type PairSource interface {
	ListPairs(ctx context.Context) ([][2]string, error)
}

// RefreshHandler processes TaskTypeRefresh by resolving every active pair so
// display traffic hits a warm cache.
type RefreshHandler struct {
	Rates  *Service
	Pairs  PairSource
	Logger zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (h *RefreshHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	pairs, err := h.Pairs.ListPairs(ctx)
	if err != nil {
		h.Logger.Error().Err(err).Msg("list route pairs for rate refresh")
		return err
	}
	warmed := h.Rates.Warm(ctx, pairs)
	h.Logger.Info().
		Int("pairs", len(pairs)).
		Int("warmed", warmed).
		Msg("exchange rate cache refreshed")
	return nil
}
