package worker

import (
	"context"
	"sync"
	"time"

	"marketdata-aggregator/internal/application"

	"go.uber.org/zap"
)

var _ application.Worker = (*Scheduler)(nil)

const defaultInterval = time.Minute

// Scheduler refreshes the watchlist through the aggregator on a fixed interval,
// independently of request traffic.
type Scheduler struct {
	Refresher application.Refresher
	Watchlist []string
	Currency  string
	Interval  time.Duration
	Log       *zap.Logger
}

// Start ticks once immediately, then every Interval, until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	interval := s.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	log.Info("scheduler_started",
		zap.Duration("interval", interval),
		zap.Strings("watchlist", s.Watchlist),
		zap.String("currency", s.Currency),
	)
	s.tick(ctx, log)
	for {
		select {
		case <-ctx.Done():
			log.Info("scheduler_stopped")
			return
		case <-t.C:
			s.tick(ctx, log)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, log *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("scheduler_tick_panic", zap.Any("r", r))
		}
	}()
	if ctx.Err() != nil {
		return
	}
	started := time.Now()
	results := s.Refresher.FetchMultiple(ctx, s.Watchlist, s.Currency)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Warn("scheduler_refresh_failed",
				zap.String("symbol", r.Symbol),
				zap.String("currency", s.Currency),
				zap.Error(r.Err),
			)
		}
	}
	log.Info("scheduler_tick_done",
		zap.Int("symbols", len(results)),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(started)),
	)
}

// Launch runs Start in a goroutine. The returned stop cancels the loop and
// waits for it to exit; calling it more than once is safe.
func (s *Scheduler) Launch(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Start(ctx)
	}()
	var once sync.Once
	return func() {
		once.Do(cancel)
		<-done
	}
}
