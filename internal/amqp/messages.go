package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"finsight/internal/core"
)

// RecordCreatedMessage announces a newly stored record. It carries the
// full record so consumers never need to read back from the store.
type RecordCreatedMessage struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Kind        core.Kind `json:"kind"`
	Amount      string    `json:"amount"`
	OccurredAt  string    `json:"occurred_at"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewRecordCreatedMessage builds the event for a stored record.
func NewRecordCreatedMessage(r core.Record) *RecordCreatedMessage {
	return &RecordCreatedMessage{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Kind:        r.Kind,
		Amount:      core.FormatAmount(r.Amount),
		OccurredAt:  r.OccurredAt.Format(),
		Label:       r.Label,
		Description: r.Description,
		Timestamp:   time.Now().UTC(),
	}
}

// Validate rejects messages a consumer cannot act on.
func (m *RecordCreatedMessage) Validate() error {
	if m.ID == "" {
		return errors.New("missing record id")
	}
	if !m.Kind.Valid() {
		return core.ErrInvalidKind
	}
	return nil
}

// Record rebuilds the record carried by the message.
func (m *RecordCreatedMessage) Record() core.Record {
	return core.Record{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Kind:        m.Kind,
		Amount:      core.StoredAmount(m.Amount),
		OccurredAt:  core.Normalize(m.OccurredAt),
		RecordedAt:  m.Timestamp,
		Label:       m.Label,
		Description: m.Description,
	}
}

func (m *RecordCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordCreatedMessageFromJSON decodes and validates a message body.
func RecordCreatedMessageFromJSON(data []byte) (*RecordCreatedMessage, error) {
	var msg RecordCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
