package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/session"
	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/events"
)

// MockWebSocketHub is a mock for WebSocketHub interface
type MockWebSocketHub struct {
	mock.Mock
}

func (m *MockWebSocketHub) Broadcast(messageType string, data interface{}) {
	m.Called(messageType, data)
}

func TestDatasetNotifier_Handle(t *testing.T) {
	table := domain.NewTable([]string{"A", "B"}, []domain.Row{
		{domain.ParseCell("1"), domain.ParseCell("x")},
	})
	task := session.TaskSnapshot{ID: "t1", Source: "/data/epd.csv", Status: session.TaskStatusRunning}

	tests := []struct {
		name     string
		event    session.Event
		wantType events.MessageType
		want     events.DatasetEvent
	}{
		{
			name:     "started",
			event:    session.Event{Type: session.EventLoadStarted, Task: task},
			wantType: events.MessageTypeDatasetLoading,
			want:     events.DatasetEvent{TaskID: "t1", Source: "/data/epd.csv", Status: "running"},
		},
		{
			name: "completed",
			event: session.Event{
				Type:    session.EventLoadCompleted,
				Task:    session.TaskSnapshot{ID: "t1", Source: "/data/epd.csv", Status: session.TaskStatusCompleted},
				Dataset: &session.Dataset{ID: "d1", Name: "epd.csv", Table: table},
			},
			wantType: events.MessageTypeDatasetLoaded,
			want: events.DatasetEvent{
				TaskID: "t1", Source: "/data/epd.csv", Status: "completed",
				DatasetID: "d1", Name: "epd.csv", Rows: 1, Columns: 2,
			},
		},
		{
			name: "failed",
			event: session.Event{
				Type: session.EventLoadFailed,
				Task: session.TaskSnapshot{ID: "t1", Source: "/data/epd.csv", Status: session.TaskStatusFailed},
				Err:  errors.New("boom"),
			},
			wantType: events.MessageTypeDatasetFailed,
			want:     events.DatasetEvent{TaskID: "t1", Source: "/data/epd.csv", Status: "failed", Error: "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := new(MockWebSocketHub)
			hub.On("Broadcast", string(tt.wantType), tt.want).Once()

			NewDatasetNotifier(hub, discardLogger()).Handle(tt.event)
			hub.AssertExpectations(t)
		})
	}
}

func TestDatasetNotifier_IgnoresUnknownEvents(t *testing.T) {
	hub := new(MockWebSocketHub)
	NewDatasetNotifier(hub, discardLogger()).Handle(session.Event{Type: "paused"})
	hub.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
}

func TestDatasetNotifier_Attach(t *testing.T) {
	f := newFixture(t)
	hub := new(MockWebSocketHub)
	done := make(chan struct{})
	hub.On("Broadcast", string(events.MessageTypeDatasetLoading), mock.Anything).Once()
	hub.On("Broadcast", string(events.MessageTypeDatasetFailed), mock.Anything).Once().
		Run(func(mock.Arguments) { close(done) })

	NewDatasetNotifier(hub, discardLogger()).Attach(f.session)
	f.session.Load(context.Background(), "does-not-exist.csv")

	<-done
	hub.AssertExpectations(t)
	assert.Len(t, f.session.Tasks(), 1)
}
