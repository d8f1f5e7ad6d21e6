package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"finsight/internal/core"
)

// MirrorQueue is a store that tracks which records reached the mirror.
type MirrorQueue interface {
	PendingMirror(ctx context.Context, limit int) ([]core.Record, error)
	MarkMirrorError(ctx context.Context, id string) error
}

// Mirrorer writes one record to the mirror.
type Mirrorer interface {
	Mirror(ctx context.Context, r core.Record) error
}

// MirrorSweeperConfig tunes the sweep loop.
type MirrorSweeperConfig struct {
	// PollInterval is how often pending records are checked (default: 1m).
	PollInterval time.Duration
	// BatchSize caps records per sweep (default: 50).
	BatchSize int
	// MinAge skips records younger than this so the message path gets
	// the first chance to mirror them (default: 2m).
	MinAge time.Duration
}

func DefaultMirrorSweeperConfig() MirrorSweeperConfig {
	return MirrorSweeperConfig{
		PollInterval: time.Minute,
		BatchSize:    50,
		MinAge:       2 * time.Minute,
	}
}

// MirrorSweeper is the backup path for records whose message was lost.
type MirrorSweeper struct {
	queue  MirrorQueue
	mirror Mirrorer
	config MirrorSweeperConfig
	now    func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewMirrorSweeper(queue MirrorQueue, mirror Mirrorer, config MirrorSweeperConfig) *MirrorSweeper {
	return &MirrorSweeper{queue: queue, mirror: mirror, config: config, now: time.Now}
}

// Start begins the sweep loop. Returns an error if already running.
func (p *MirrorSweeper) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("mirror sweeper is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Mirror sweeper started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)
	return nil
}

// Stop signals the loop and waits for it or for ctx.
func (p *MirrorSweeper) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.stopCh)
	done := p.doneCh
	p.mu.Unlock()

	select {
	case <-done:
		slog.InfoContext(ctx, "Mirror sweeper stopped")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Mirror sweeper stop timed out")
		return ctx.Err()
	}
}

func (p *MirrorSweeper) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.Sweep(ctx)
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Sweep(ctx)
		}
	}
}

// Sweep mirrors one batch of pending records old enough to be considered
// lost, returning how many were mirrored.
func (p *MirrorSweeper) Sweep(ctx context.Context) int {
	pending, err := p.queue.PendingMirror(ctx, p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list pending mirror records", "error", err)
		return 0
	}

	cutoff := p.now().Add(-p.config.MinAge)
	done := 0
	for _, r := range pending {
		if ctx.Err() != nil {
			break
		}
		if r.RecordedAt.After(cutoff) {
			continue
		}
		if err := p.mirror.Mirror(ctx, r); err != nil {
			slog.WarnContext(ctx, "Mirror sweep failed", "id", r.ID, "error", err)
			if err := p.queue.MarkMirrorError(ctx, r.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark mirror error", "id", r.ID, "error", err)
			}
			continue
		}
		done++
	}
	if done > 0 {
		slog.InfoContext(ctx, "Mirror sweep completed", "mirrored", done, "pending", len(pending))
	}
	return done
}
