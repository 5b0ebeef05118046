package amqp

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCloseIsConcurrencySafe(t *testing.T) {
	// Publishers and the shutdown path share the connection fields; every
	// access goes through the mutex, so concurrent closes must not race.
	c := &Client{url: "amqp://localhost", exchangeName: "ledger", queueName: "record_changes"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Close(); err != nil {
				t.Errorf("close: %v", err)
			}
		}()
	}
	wg.Wait()

	if err := c.Close(); err != nil {
		t.Fatalf("close after close: %v", err)
	}
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"connection closed", errors.New("connection closed"), true},
		{"unexpected EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"other error", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isConnectionError(tt.err)
			if result != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestNewRecordChangeMessage(t *testing.T) {
	msg := NewRecordChangeMessage(12345, OpCreated)

	if msg.ID != 12345 {
		t.Errorf("ID = %v, want 12345", msg.ID)
	}
	if msg.Op != OpCreated {
		t.Errorf("Op = %v, want %v", msg.Op, OpCreated)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
}

func TestRecordChangeMessage_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &RecordChangeMessage{
		ID:        12345,
		Op:        OpDeleted,
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := RecordChangeMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("RecordChangeMessageFromJSON() error = %v", err)
	}

	if parsed.ID != msg.ID {
		t.Errorf("Parsed ID = %v, want %v", parsed.ID, msg.ID)
	}
	if parsed.Op != msg.Op {
		t.Errorf("Parsed Op = %v, want %v", parsed.Op, msg.Op)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestRecordChangeMessage_InvalidJSON(t *testing.T) {
	if _, err := RecordChangeMessageFromJSON([]byte(`{"id": "not_a_number"}`)); err == nil {
		t.Error("RecordChangeMessageFromJSON() should fail with invalid JSON")
	}
}
