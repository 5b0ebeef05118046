package amqp

import (
	"encoding/json"
	"time"
)

// Operations carried by record change events.
const (
	OpCreated  = "created"
	OpUpdated  = "updated"
	OpDeleted  = "deleted"
	OpImported = "imported"
)

// RecordChangeMessage is a lightweight notification that a ledger record
// changed. It carries only the id and operation; consumers fetch the full
// record from the store when they need it.
type RecordChangeMessage struct {
	ID        int64     `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordChangeMessage creates a change message stamped with the current time.
func NewRecordChangeMessage(id int64, op string) *RecordChangeMessage {
	return &RecordChangeMessage{
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangeMessageFromJSON creates a message from JSON bytes.
func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
