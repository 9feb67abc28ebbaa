package entity

import "time"

// EventRecord represents an event stored in the events table.
type EventRecord struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	StreamID   string    `gorm:"size:36;not null;uniqueIndex:idx_events_stream_version" json:"streamId"`
	StreamType string    `gorm:"size:50;not null" json:"streamType"`
	Version    int       `gorm:"not null;uniqueIndex:idx_events_stream_version" json:"version"`
	EventType  string    `gorm:"size:100;not null" json:"eventType"`
	Payload    []byte    `gorm:"not null" json:"payload"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (EventRecord) TableName() string { return "events" }

// Event represents a domain event.
type Event interface {
	EventType() string
}

// StreamOrder is the stream type of order timeline events.
const StreamOrder = "order"
