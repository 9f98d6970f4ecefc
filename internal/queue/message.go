package queue

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MessageVersion is the current payload schema version.
const MessageVersion = 1

// Message asks a worker to summarize one document.
type Message struct {
	DocumentID string `json:"documentId"`
	RequestID  string `json:"requestId,omitempty"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// NewMessage stamps a message for documentID.
func NewMessage(documentID, requestID string, now time.Time) Message {
	return Message{
		DocumentID: strings.TrimSpace(documentID),
		RequestID:  strings.TrimSpace(requestID),
		EnqueuedAt: now.UTC().Format(time.RFC3339),
		Version:    MessageVersion,
	}
}

// Age reports how long the message waited since it was enqueued. Unparseable
// timestamps yield zero.
func (m Message) Age(now time.Time) time.Duration {
	at, err := time.Parse(time.RFC3339, m.EnqueuedAt)
	if err != nil {
		return 0
	}
	if d := now.Sub(at); d > 0 {
		return d
	}
	return 0
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload. A missing version is read as version 1;
// newer versions are rejected so an old worker never half-processes them.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Version == 0 {
		msg.Version = MessageVersion
	}
	if msg.Version > MessageVersion {
		return Message{}, fmt.Errorf("unsupported message version %d", msg.Version)
	}
	return msg, nil
}
