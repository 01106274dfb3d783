package services

import (
	"log/slog"

	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/session"
	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/events"
)

// WebSocketHub defines the interface for WebSocket broadcasting
type WebSocketHub interface {
	Broadcast(messageType string, data interface{})
}

// DatasetNotifier forwards session load events to WebSocket clients.
type DatasetNotifier struct {
	hub    WebSocketHub
	logger *slog.Logger
}

// NewDatasetNotifier creates a notifier broadcasting on hub.
func NewDatasetNotifier(hub WebSocketHub, logger *slog.Logger) *DatasetNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetNotifier{hub: hub, logger: logger.With(slog.String("component", "dataset_notifier"))}
}

// Attach subscribes the notifier to sess.
func (n *DatasetNotifier) Attach(sess *session.Session) {
	sess.Subscribe(n.Handle)
}

// Handle implements session.Listener.
func (n *DatasetNotifier) Handle(ev session.Event) {
	payload := events.DatasetEvent{
		TaskID: ev.Task.ID,
		Source: ev.Task.Source,
		Status: string(ev.Task.Status),
	}

	var msgType events.MessageType
	switch ev.Type {
	case session.EventLoadStarted:
		msgType = events.MessageTypeDatasetLoading
	case session.EventLoadCompleted:
		msgType = events.MessageTypeDatasetLoaded
		if ev.Dataset != nil {
			payload.DatasetID = ev.Dataset.ID
			payload.Name = ev.Dataset.Name
			payload.Rows = ev.Dataset.Table.Len()
			payload.Columns = ev.Dataset.Table.Width()
		}
	case session.EventLoadFailed:
		msgType = events.MessageTypeDatasetFailed
		if ev.Err != nil {
			payload.Error = ev.Err.Error()
		}
	default:
		n.logger.Warn("unknown session event", slog.String("type", string(ev.Type)))
		return
	}

	n.hub.Broadcast(string(msgType), payload)
}
