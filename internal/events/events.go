package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types published by the service
const (
	EventUserRegistered  = "user.registered"
	EventUserLoggedIn    = "user.logged_in"
	EventUserLoggedOut   = "user.logged_out"
	EventUserForcedOut   = "user.forced_logout"
	EventTestCreated     = "test.created"
	EventTestUpdated     = "test.updated"
	EventTestDeleted     = "test.deleted"
	EventTestLiked       = "test.liked"
	EventTestDisliked    = "test.disliked"
	EventResultSubmitted = "result.submitted"
)

// Event is the envelope published for every domain event
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// NewEvent builds an event envelope with a fresh ID and timestamp
func NewEvent(eventType string, data map[string]interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "stddy-bddy",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes domain events to the configured transport
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
