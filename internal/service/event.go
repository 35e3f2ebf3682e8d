package service

import "time"

// EventType names a live event.
type EventType string

const (
	EventTyping         EventType = "typing"
	EventTurn           EventType = "turn"
	EventSessionStarted EventType = "session_started"
	EventSessionEnded   EventType = "session_ended"
	EventMoodTracked    EventType = "mood_tracked"
)

// Event is one live notification. Data is flattened next to type and ts on the wire.
type Event struct {
	Type EventType
	Ts   int64
	Data map[string]interface{}
}

func (s *Service) publish(eventType EventType, data map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(Event{Type: eventType, Ts: time.Now().UnixMilli(), Data: data})
}
