package worker

import (
	"context"
	"log/slog"
	"sync"
)

// Worker runs until ctx is cancelled.
type Worker interface {
	Start(ctx context.Context) error
}

// Func adapts a blocking function, such as an HTTP server loop, to Worker.
type Func func(ctx context.Context) error

func (f Func) Start(ctx context.Context) error { return f(ctx) }

// Manager starts and supervises a set of workers.
type Manager struct {
	workers []Worker
}

func NewManager(ws ...Worker) *Manager {
	return &Manager{workers: ws}
}

// Start runs every worker. The first worker error cancels the rest and is returned
// once all of them have exited.
func (m *Manager) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, len(m.workers))
	for _, w := range m.workers {
		wg.Add(1)
		go func(w Worker) {
			defer wg.Done()
			if err := w.Start(ctx); err != nil {
				slog.Error("worker: stopped with error", "error", err)
				errs <- err
				cancel()
			}
		}(w)
	}
	// Wait for context cancellation then wait for workers to exit.
	<-ctx.Done()
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
