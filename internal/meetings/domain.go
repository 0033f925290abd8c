// Package meetings exposes committee-scoped meeting listings.
package meetings

import (
	"time"

	"github.com/google/uuid"
)

// Meeting is a scheduled sitting of one committee.
type Meeting struct {
	ID          uuid.UUID
	CommitteeID uuid.UUID
	Title       string
	ScheduledAt time.Time
	Location    string
	Status      string
}
