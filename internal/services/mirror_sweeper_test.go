package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/core"
)

type fakeQueue struct {
	pending []core.Record
	errored []string
}

func (q *fakeQueue) PendingMirror(ctx context.Context, limit int) ([]core.Record, error) {
	if len(q.pending) > limit {
		return q.pending[:limit], nil
	}
	return q.pending, nil
}

func (q *fakeQueue) MarkMirrorError(ctx context.Context, id string) error {
	q.errored = append(q.errored, id)
	return nil
}

type fakeMirror struct {
	failing  map[string]bool
	mirrored []string
}

func (m *fakeMirror) Mirror(ctx context.Context, r core.Record) error {
	if m.failing[r.ID] {
		return errors.New("quota exceeded")
	}
	m.mirrored = append(m.mirrored, r.ID)
	return nil
}

func TestMirrorSweeper_Sweep(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	q := &fakeQueue{pending: []core.Record{
		{ID: "old", RecordedAt: now.Add(-time.Hour)},
		{ID: "broken", RecordedAt: now.Add(-time.Hour)},
		{ID: "fresh", RecordedAt: now.Add(-10 * time.Second)},
	}}
	m := &fakeMirror{failing: map[string]bool{"broken": true}}

	s := NewMirrorSweeper(q, m, DefaultMirrorSweeperConfig())
	s.now = func() time.Time { return now }

	assert.Equal(t, 1, s.Sweep(context.Background()))
	assert.Equal(t, []string{"old"}, m.mirrored)
	assert.Equal(t, []string{"broken"}, q.errored)
}

func TestMirrorSweeper_StartStop(t *testing.T) {
	s := NewMirrorSweeper(&fakeQueue{}, &fakeMirror{}, MirrorSweeperConfig{PollInterval: time.Hour, BatchSize: 10})
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	assert.Error(t, s.Start(ctx))

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))
	require.NoError(t, s.Stop(stopCtx))
}

func TestDefaultMirrorSweeperConfig(t *testing.T) {
	c := DefaultMirrorSweeperConfig()
	assert.Equal(t, time.Minute, c.PollInterval)
	assert.Equal(t, 50, c.BatchSize)
	assert.Equal(t, 2*time.Minute, c.MinAge)
}
