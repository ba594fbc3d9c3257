package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/sysocial/sysocial-backend/internal/gateway"
)

// HealthWorker checks every backend on a cron schedule and publishes the
// results to the status board.
type HealthWorker struct {
	table    *gateway.Table
	board    *gateway.StatusBoard
	checker  *gateway.Checker
	interval time.Duration
	log      zerolog.Logger
}

// NewHealthWorker creates a new HealthWorker.
func NewHealthWorker(table *gateway.Table, board *gateway.StatusBoard, checker *gateway.Checker, interval time.Duration, log zerolog.Logger) *HealthWorker {
	return &HealthWorker{
		table:    table,
		board:    board,
		checker:  checker,
		interval: interval,
		log:      log.With().Str("component", "health_worker").Logger(),
	}
}

// Start runs one check immediately, then one per interval until ctx is done.
// Call in a goroutine.
func (w *HealthWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	w.CheckAll(ctx)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", w.interval), func() { w.CheckAll(ctx) }); err != nil {
		w.log.Error().Err(err).Msg("Invalid health check schedule")
		return
	}
	c.Start()

	<-ctx.Done()
	w.log.Info().Msg("Worker stopping...")
	<-c.Stop().Done()
	w.log.Info().Msg("Worker stopped")
}

// CheckAll checks all backends concurrently and publishes one snapshot.
func (w *HealthWorker) CheckAll(ctx context.Context) {
	services := w.table.Services()
	results := make([]gateway.ServiceStatus, len(services))

	var wg sync.WaitGroup
	for i, svc := range services {
		wg.Add(1)
		go func(i int, svc gateway.Service) {
			defer wg.Done()
			results[i] = w.checker.Check(ctx, svc)
		}(i, svc)
	}
	wg.Wait()

	prev := w.board.Snapshot()
	snap := make(gateway.Snapshot, len(results))
	for _, st := range results {
		st.Prefixes = w.table.Prefixes(st.Name)
		if old, ok := prev[st.Name]; ok && old.Status != st.Status {
			w.log.Info().
				Str("service", st.Name).
				Str("from", old.Status).
				Str("to", st.Status).
				Str("error", st.Error).
				Msg("Backend status changed")
		}
		snap[st.Name] = st
	}
	w.board.Publish(snap)
}
