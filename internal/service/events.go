package service

import (
	"sync"
	"time"
)

// EventType defines the type of event
type EventType string

const (
	EventPassCompleted  EventType = "pass_completed"
	EventDeviceOffline  EventType = "device_offline"
	EventQueryFailed    EventType = "query_failed"
	EventDevicesRemoved EventType = "devices_removed"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// PassSummary is the payload of pass_completed
type PassSummary struct {
	Sequence     int       `json:"sequence"`
	CapturedAt   time.Time `json:"captured_at"`
	Setup        bool      `json:"setup"`
	Observations int       `json:"observations"`
	Offline      int       `json:"offline"`
	Skipped      int       `json:"skipped"`
	Devices      int       `json:"devices"`
	Edges        int       `json:"edges"`
}

// QueryFailure is the payload of query_failed
type QueryFailure struct {
	RequestID int    `json:"request_id"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
