package amqp

import (
	"encoding/json"
	"time"
)

const (
	KindExpense = "expense"
	KindIncome  = "income"

	OpUpsert = "upsert"
	OpDelete = "delete"
)

// EntrySyncMessage is the lightweight message queued for the sync worker.
// It carries only identifiers; the worker fetches the row from the local
// database when it handles the message.
type EntrySyncMessage struct {
	Kind      string    `json:"kind"`
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntrySyncMessage creates a sync message for one entry.
func NewEntrySyncMessage(kind, op, id, userID string) *EntrySyncMessage {
	return &EntrySyncMessage{
		Kind:      kind,
		Op:        op,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntrySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntrySyncMessageFromJSON creates a message from JSON bytes
func EntrySyncMessageFromJSON(data []byte) (*EntrySyncMessage, error) {
	var msg EntrySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
