package model

import (
	"time"

	"github.com/google/uuid"
)

// EventSnapshotRefreshed is the event type of SnapshotRefreshedEvent.
const EventSnapshotRefreshed = "markets.snapshot_refreshed"

// SnapshotRefreshedEvent announces that a new snapshot is being served.
// It carries counts only; consumers read the markets from the API or cache.
type SnapshotRefreshedEvent struct {
	ID         uuid.UUID `json:"id"`
	SnapshotID uuid.UUID `json:"snapshotId"`
	EventType  string    `json:"eventType"`
	Count      int       `json:"count"`
	FetchedAt  time.Time `json:"fetchedAt"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewSnapshotRefreshedEvent builds the event for snap.
func NewSnapshotRefreshedEvent(snap Snapshot, now time.Time) SnapshotRefreshedEvent {
	return SnapshotRefreshedEvent{
		ID:         uuid.New(),
		SnapshotID: snap.ID,
		EventType:  EventSnapshotRefreshed,
		Count:      snap.Len(),
		FetchedAt:  snap.FetchedAt,
		Timestamp:  now.UTC(),
	}
}
