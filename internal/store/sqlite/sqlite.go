// Package sqlite is the self-hosted record store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"finsight/internal/core"
	"finsight/internal/store"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so recorded_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const recordColumns = "id, owner_id, kind, amount, occurred_at, recorded_at, label, description"

// Store is a SQLite-backed record store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the database file if needed and applies migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Create validates and inserts a record.
func (s *Store) Create(ctx context.Context, n core.NewRecord) (core.Record, error) {
	if err := n.Validate(); err != nil {
		return core.Record{}, err
	}

	r := core.Record{
		ID:          uuid.NewString(),
		OwnerID:     n.OwnerID,
		Kind:        n.Kind,
		Amount:      n.Amount,
		OccurredAt:  core.At(n.OccurredAt),
		RecordedAt:  s.now().UTC(),
		Label:       n.Label,
		Description: n.Description,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO records ("+recordColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		r.ID, r.OwnerID, string(r.Kind), r.Amount.String(),
		n.OccurredAt.UTC().Format(time.RFC3339Nano),
		r.RecordedAt.Format(timeLayout), r.Label, r.Description,
	)
	if err != nil {
		return core.Record{}, fmt.Errorf("insert record: %w", err)
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", r.ID,
		"kind", r.Kind,
		"amount", r.Amount.String(),
		"label", r.Label)

	return r, nil
}

// List returns the owner's records of one kind, newest recorded first.
func (s *Store) List(ctx context.Context, owner string, kind core.Kind) ([]core.Record, error) {
	if !kind.Valid() {
		return nil, core.ErrInvalidKind
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE owner_id = ? AND kind = ? ORDER BY recorded_at DESC, rowid DESC",
		owner, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

// Get returns one of the owner's records by kind and ID.
func (s *Store) Get(ctx context.Context, owner string, kind core.Kind, id string) (core.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE id = ? AND kind = ? AND owner_id = ?", id, string(kind), owner)
	r, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, store.ErrNotFound
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get record: %w", err)
	}
	return r, nil
}

// PendingMirror returns records not yet copied to the spreadsheet mirror,
// oldest first.
func (s *Store) PendingMirror(ctx context.Context, limit int) ([]core.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE mirror_status = 'pending' ORDER BY recorded_at ASC, rowid ASC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("list pending mirror: %w", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

// MarkMirrored records a successful mirror write.
func (s *Store) MarkMirrored(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE records SET mirror_status = 'done', mirrored_at = ? WHERE id = ?",
		s.now().UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("mark mirrored: %w", err)
	}
	return nil
}

// MarkMirrorError parks a record whose mirror write failed.
func (s *Store) MarkMirrorError(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE records SET mirror_status = 'error' WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark mirror error: %w", err)
	}
	slog.WarnContext(ctx, "Record marked with mirror error", "id", id)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(sc scanner) (core.Record, error) {
	var (
		r          core.Record
		kind       string
		amount     string
		occurred   sql.NullString
		recordedAt string
	)
	if err := sc.Scan(&r.ID, &r.OwnerID, &kind, &amount, &occurred, &recordedAt, &r.Label, &r.Description); err != nil {
		return core.Record{}, err
	}
	r.Kind = core.Kind(kind)
	r.Amount = core.StoredAmount(amount)
	if occurred.Valid {
		r.OccurredAt = core.Normalize(occurred.String)
	}
	if t, err := time.Parse(timeLayout, recordedAt); err == nil {
		r.RecordedAt = t
	}
	return r, nil
}

func scanAll(rows *sql.Rows) ([]core.Record, error) {
	var out []core.Record
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
