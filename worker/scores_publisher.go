package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"football-pulse/internal/model"
	"football-pulse/internal/scores"
)

// ScoresFetcher loads one scoreboard view, reporting upstream failures.
type ScoresFetcher interface {
	Fetch(ctx context.Context, kind scores.Kind) ([]model.Match, error)
}

// MatchWriter persists a view as <kind>-matches.json.
type MatchWriter interface {
	WriteMatches(kind scores.Kind, matches []model.Match) error
}

// ScoresPublisher refreshes the static match files on an interval.
type ScoresPublisher struct {
	Scores   ScoresFetcher
	Store    MatchWriter
	Interval time.Duration
}

func (w *ScoresPublisher) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 5 * time.Minute
	}

	// initial run
	if err := w.RunOnce(ctx); err != nil {
		slog.Error("scores-publisher: run failed", "error", err)
	}

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := w.RunOnce(ctx); err != nil {
				slog.Error("scores-publisher: run failed", "error", err)
			}
		}
	}
}

// RunOnce writes every view. A view whose fetch fails keeps its previous file.
func (w *ScoresPublisher) RunOnce(ctx context.Context) error {
	var errs []error
	for _, k := range scores.Kinds {
		ms, err := w.Scores.Fetch(ctx, k)
		if err != nil {
			errs = append(errs, fmt.Errorf("fetch %s: %w", k, err))
			continue
		}
		if err := w.Store.WriteMatches(k, ms); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", k, err))
			continue
		}
		slog.Info("scores-publisher: view written", "kind", k, "matches", len(ms))
	}
	return errors.Join(errs...)
}
