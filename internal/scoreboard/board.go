// Package scoreboard drives a scores view the way a ticker widget does: select
// a tab, load it, render it, and keep refreshing while the live tab is open.
package scoreboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"football-pulse/internal/model"
	"football-pulse/internal/scores"
)

// State is the lifecycle of the selected view.
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateRendered State = "rendered"
)

// DefaultInterval is the live tab refresh cadence.
const DefaultInterval = 60 * time.Second

// Snapshot is what a viewer renders.
type Snapshot struct {
	Seq       uint64        `json:"seq"`
	Tab       scores.Kind   `json:"tab"`
	State     State         `json:"state"`
	Matches   []model.Match `json:"matches"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Fetcher loads one view; failures surface as an empty list.
type Fetcher interface {
	FetchFootballScores(ctx context.Context, kind scores.Kind) []model.Match
}

// Board holds one viewer's selection. Every Select starts a new cycle with a
// higher sequence number; results from older cycles are dropped.
type Board struct {
	fetcher  Fetcher
	interval time.Duration
	onUpdate func(Snapshot)

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	current Snapshot
	wg      sync.WaitGroup
}

// New creates an idle board. onUpdate is called with the board lock held and
// must not call back into the board.
func New(f Fetcher, interval time.Duration, onUpdate func(Snapshot)) *Board {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if onUpdate == nil {
		onUpdate = func(Snapshot) {}
	}
	return &Board{
		fetcher:  f,
		interval: interval,
		onUpdate: onUpdate,
		current:  Snapshot{State: StateIdle, Matches: []model.Match{}},
	}
}

// Select switches the board to kind, cancelling the previous cycle, and
// returns the new cycle's sequence number.
func (b *Board) Select(ctx context.Context, kind scores.Kind) uint64 {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	b.seq++
	seq := b.seq
	cctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.current = Snapshot{Seq: seq, Tab: kind, State: StateLoading, Matches: []model.Match{}, UpdatedAt: time.Now()}
	b.onUpdate(b.current)
	b.wg.Add(1)
	b.mu.Unlock()

	go b.run(cctx, seq, kind)
	return seq
}

// Snapshot returns the latest state.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Close stops the current cycle and waits for it to exit.
func (b *Board) Close() {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	// invalidate anything still in flight
	b.seq++
	b.mu.Unlock()
	b.wg.Wait()
}

func (b *Board) run(ctx context.Context, seq uint64, kind scores.Kind) {
	defer b.wg.Done()
	b.load(ctx, seq, kind)
	if kind != scores.KindLive {
		return
	}
	t := time.NewTicker(b.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !b.enter(seq, StateLoading, nil) {
				return
			}
			b.load(ctx, seq, kind)
		}
	}
}

func (b *Board) load(ctx context.Context, seq uint64, kind scores.Kind) {
	ms := b.fetcher.FetchFootballScores(ctx, kind)
	if ms == nil {
		ms = []model.Match{}
	}
	b.enter(seq, StateRendered, ms)
}

// enter moves the board to state when seq is still current. A nil matches
// keeps the previous list on screen.
func (b *Board) enter(seq uint64, state State, ms []model.Match) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if seq != b.seq {
		slog.Debug("scoreboard: discard stale result", "seq", seq, "current", b.seq, "state", state)
		return false
	}
	next := b.current
	next.State = state
	if ms != nil {
		next.Matches = ms
	}
	next.UpdatedAt = time.Now()
	b.current = next
	b.onUpdate(next)
	return true
}
