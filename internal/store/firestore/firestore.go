// Package firestore stores records in Cloud Firestore, one collection per
// record kind ("incomes", "expenses").
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"finsight/internal/core"
	"finsight/internal/store"
)

// Document field names.
const (
	fieldOwner       = "ownerId"
	fieldAmount      = "amount"
	fieldOccurredAt  = "occurredAt"
	fieldRecordedAt  = "recordedAt"
	fieldLabel       = "label"
	fieldDescription = "description"
)

// Store wraps a Firestore client with record operations.
type Store struct {
	client *firestore.Client
	prefix string
	now    func() time.Time
}

// New wraps an existing client. Collection names get the optional prefix,
// which keeps environments sharing one project apart.
func New(client *firestore.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix, now: time.Now}
}

func (s *Store) collection(kind core.Kind) *firestore.CollectionRef {
	return s.client.Collection(s.prefix + kind.Collection())
}

// Create validates the record and adds it with a server-assigned recordedAt.
func (s *Store) Create(ctx context.Context, n core.NewRecord) (core.Record, error) {
	if err := n.Validate(); err != nil {
		return core.Record{}, err
	}

	ref, _, err := s.collection(n.Kind).Add(ctx, map[string]any{
		fieldOwner:       n.OwnerID,
		fieldAmount:      n.Amount.InexactFloat64(),
		fieldOccurredAt:  n.OccurredAt.UTC(),
		fieldLabel:       n.Label,
		fieldDescription: n.Description,
		fieldRecordedAt:  firestore.ServerTimestamp,
	})
	if err != nil {
		return core.Record{}, fmt.Errorf("add %s document: %w", n.Kind, err)
	}

	return core.Record{
		ID:          ref.ID,
		OwnerID:     n.OwnerID,
		Kind:        n.Kind,
		Amount:      n.Amount,
		OccurredAt:  core.At(n.OccurredAt),
		RecordedAt:  s.now().UTC(),
		Label:       n.Label,
		Description: n.Description,
	}, nil
}

// List returns the owner's records of one kind, newest recorded first.
func (s *Store) List(ctx context.Context, owner string, kind core.Kind) ([]core.Record, error) {
	if !kind.Valid() {
		return nil, core.ErrInvalidKind
	}
	iter := s.collection(kind).
		Where(fieldOwner, "==", owner).
		OrderBy(fieldRecordedAt, firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var out []core.Record
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", kind.Collection(), err)
		}
		out = append(out, FromDocument(doc.Ref.ID, kind, doc.Data()))
	}
	return out, nil
}

// Get returns one of the owner's records by kind and document ID.
func (s *Store) Get(ctx context.Context, owner string, kind core.Kind, id string) (core.Record, error) {
	snap, err := s.collection(kind).Doc(id).Get(ctx)
	if snap != nil && !snap.Exists() {
		return core.Record{}, store.ErrNotFound
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get %s/%s: %w", kind.Collection(), id, err)
	}
	r := FromDocument(snap.Ref.ID, kind, snap.Data())
	if r.OwnerID != owner {
		return core.Record{}, store.ErrNotFound
	}
	return r, nil
}

func (s *Store) Close() error { return s.client.Close() }

// FromDocument maps raw document fields to a record. Fields of unexpected
// shape degrade instead of failing: a malformed date leaves OccurredAt
// invalid and a non-numeric amount reads as zero.
func FromDocument(id string, kind core.Kind, data map[string]any) core.Record {
	r := core.Record{
		ID:         id,
		Kind:       kind,
		Amount:     core.StoredAmount(data[fieldAmount]),
		OccurredAt: core.Normalize(data[fieldOccurredAt]),
	}
	r.OwnerID, _ = data[fieldOwner].(string)
	r.Label, _ = data[fieldLabel].(string)
	r.Description, _ = data[fieldDescription].(string)
	if t, ok := data[fieldRecordedAt].(time.Time); ok {
		r.RecordedAt = t
	}
	return r
}
