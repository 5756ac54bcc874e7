package watcher

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/vipul43/yatco-sync/internal/models"
	"go.uber.org/zap"
)

// Runner is the part of the sync service the watcher drives
type Runner interface {
	Run(ctx context.Context, mode models.SyncMode) models.SyncStatus
	HasResumableCheckpoint(ctx context.Context) (models.SyncMode, bool)
}

// Watcher serializes scheduled and manually triggered sync runs
type Watcher struct {
	runner   Runner
	schedule cron.Schedule // nil disables scheduled runs
	mode     models.SyncMode
	triggers chan models.SyncMode
	log      *zap.Logger
}

// New parses expr as a standard cron expression or descriptor ("@every 1h").
// An empty expr leaves only manual triggers.
func New(runner Runner, expr string, mode models.SyncMode, log *zap.Logger) (*Watcher, error) {
	w := &Watcher{
		runner:   runner,
		mode:     mode,
		triggers: make(chan models.SyncMode, 1),
		log:      log,
	}
	if expr != "" {
		schedule, err := cron.ParseStandard(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid sync schedule %q: %w", expr, err)
		}
		w.schedule = schedule
	}
	return w, nil
}

// Trigger queues a run. It returns false when a run is already queued.
func (w *Watcher) Trigger(mode models.SyncMode) bool {
	select {
	case w.triggers <- mode:
		return true
	default:
		return false
	}
}

// Start resumes an interrupted run, then executes queued runs until ctx is done
func (w *Watcher) Start(ctx context.Context) error {
	w.log.Info("Starting sync watcher", zap.String("mode", string(w.mode)))

	if mode, ok := w.runner.HasResumableCheckpoint(ctx); ok {
		w.log.Info("Found checkpoint from a previous run, resuming", zap.String("mode", string(mode)))
		w.Trigger(mode)
	}

	if w.schedule != nil {
		c := cron.New()
		c.Schedule(w.schedule, cron.FuncJob(func() {
			if !w.Trigger(w.mode) {
				w.log.Info("Scheduled sync skipped, a run is already queued")
			}
		}))
		c.Start()
		defer c.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Sync watcher shutting down")
			return ctx.Err()
		case mode := <-w.triggers:
			st := w.runner.Run(ctx, mode)
			fields := []zap.Field{
				zap.String("run_id", st.RunID),
				zap.String("state", string(st.State)),
				zap.String("message", st.Message),
			}
			if st.State.Terminal() {
				w.log.Info("Sync run finished", fields...)
			} else {
				w.log.Warn("Sync run ended before finishing", fields...)
			}
		}
	}
}
