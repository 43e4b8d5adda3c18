package worker

import (
	"context"
	"log/slog"
	"time"

	"football-pulse/internal/news"
)

// NewsRunner is one pass of the news pipeline.
type NewsRunner interface {
	Run(ctx context.Context) (news.Result, error)
}

// NewsCollector runs the news pipeline on an interval.
type NewsCollector struct {
	Pipeline NewsRunner
	Interval time.Duration
}

func (w *NewsCollector) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = time.Hour
	}

	// initial run
	w.runOnce(ctx)

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *NewsCollector) runOnce(ctx context.Context) {
	res, err := w.Pipeline.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("news-collector: run failed", "error", err)
		return
	}
	slog.Info("news-collector: completed", "added", res.Added, "rewritten", res.Rewritten, "total", res.Total)
}
