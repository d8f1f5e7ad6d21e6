// Package widget keeps per-user insight widget state across requests.
//
// Each user has at most one widget. Starting a load moves it to loading
// under a fresh generation number; a completion is applied only while its
// generation is still the current one, so a slow answer for an old
// (month, year) never overwrites a newer request.
package widget

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"finsight/internal/cache"
	"finsight/internal/insight"
)

// Phase is a widget state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseEmpty   Phase = "empty"
	PhaseError   Phase = "error"
)

// Key identifies what a widget is showing.
type Key struct {
	Owner string
	Year  int
	Month int
}

func (k Key) String() string { return fmt.Sprintf("%s/%04d-%02d", k.Owner, k.Year, k.Month) }

// State is a snapshot of one user's widget.
type State struct {
	Key        Key
	Phase      Phase
	Generation uint64
	Bullets    []string
	Message    string
	UpdatedAt  time.Time
}

// Loader produces the insight for a key.
type Loader func(ctx context.Context, key Key) (insight.Result, error)

// Board owns the widget states of all users.
type Board struct {
	states  *cache.LRUCache[State]
	gen     atomic.Uint64
	load    Loader
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// Config bounds the board.
type Config struct {
	MaxUsers int
	TTL      time.Duration
	Timeout  time.Duration
}

// NewBoard creates a board backed by an LRU cache.
func NewBoard(cfg Config, load Loader, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		states:  cache.NewLRUCache[State](cfg.MaxUsers, cfg.TTL),
		load:    load,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Cache exposes the state cache for registration with a cache.Manager.
func (b *Board) Cache() cache.Cleaner { return b.states }

// Get returns the owner's widget, idle when nothing was started.
func (b *Board) Get(owner string) State {
	if s, ok := b.states.Get(owner); ok {
		return s
	}
	return State{Key: Key{Owner: owner}, Phase: PhaseIdle}
}

// Start begins a load for key and returns the loading state. The load runs
// in the background and outlives the calling request.
func (b *Board) Start(ctx context.Context, key Key) State {
	gen := b.gen.Add(1)
	loading := State{Key: key, Phase: PhaseLoading, Generation: gen, UpdatedAt: time.Now()}
	b.states.Set(key.Owner, loading)

	bg := context.WithoutCancel(ctx)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.run(bg, key, gen)
	}()
	return loading
}

func (b *Board) run(ctx context.Context, key Key, gen uint64) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	res, err := b.load(ctx, key)
	if err != nil {
		b.logger.WarnContext(ctx, "Insight load failed", "key", key.String(), "error", err)
		res = insight.Failed()
	}
	if !b.complete(key, gen, res) {
		b.logger.DebugContext(ctx, "Stale insight discarded", "key", key.String(), "generation", gen)
	}
}

// complete applies a finished load when gen is still current for the owner.
func (b *Board) complete(key Key, gen uint64, res insight.Result) bool {
	_, applied := b.states.Update(key.Owner, func(cur State, ok bool) (State, bool) {
		if !ok || cur.Generation != gen || cur.Key != key {
			return cur, false
		}
		next := cur
		next.Phase = phaseOf(res.Status)
		next.Bullets = res.Bullets
		next.Message = res.Message
		next.UpdatedAt = time.Now()
		return next, true
	})
	return applied
}

// Wait blocks until every background load has finished.
func (b *Board) Wait() { b.wg.Wait() }

func phaseOf(s insight.Status) Phase {
	switch s {
	case insight.StatusSuccess:
		return PhaseSuccess
	case insight.StatusEmpty:
		return PhaseEmpty
	default:
		return PhaseError
	}
}
