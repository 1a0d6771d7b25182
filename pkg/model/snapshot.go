package model

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is the full result of one fetch cycle. The next successful cycle
// replaces it wholesale.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	FetchedAt time.Time `json:"fetchedAt"`
	Markets   []Market  `json:"markets"`
}

// NewSnapshot stamps markets with a fresh id and the given fetch time.
func NewSnapshot(markets []Market, fetchedAt time.Time) Snapshot {
	if markets == nil {
		markets = []Market{}
	}
	return Snapshot{
		ID:        uuid.New(),
		FetchedAt: fetchedAt.UTC(),
		Markets:   markets,
	}
}

// Len returns the number of markets in the snapshot.
func (s Snapshot) Len() int { return len(s.Markets) }
