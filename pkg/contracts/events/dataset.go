// Package events contains the WebSocket event contracts of the explorer.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Dataset lifecycle
	MessageTypeDatasetLoading MessageType = "dataset:loading"
	MessageTypeDatasetLoaded  MessageType = "dataset:loaded"
	MessageTypeDatasetFailed  MessageType = "dataset:failed"

	// MessageTypeConnection greets a client once it is registered.
	MessageTypeConnection MessageType = "connection"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// DatasetEvent describes a change in the dataset being explored.
type DatasetEvent struct {
	TaskID    string `json:"task_id"`
	Source    string `json:"source"`
	Status    string `json:"status"`
	DatasetID string `json:"dataset_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Rows      int    `json:"rows,omitempty"`
	Columns   int    `json:"columns,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ConnectionEvent is sent to a client once it has registered.
type ConnectionEvent struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	ClientID string `json:"client_id"`
}
