// Package committees manages committees and their membership rolls, the
// primary visibility boundary for non-admin users.
package committees

import (
	"time"

	"github.com/google/uuid"
)

// Committee is an organizational sub-unit.
type Committee struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Membership ties a user to a committee for a validity window. A membership
// is active while EndDate is null or has not yet passed. Membership grants
// committee visibility; elevated actions additionally require a role.
type Membership struct {
	UserID      uuid.UUID
	CommitteeID uuid.UUID
	StartDate   time.Time
	EndDate     *time.Time
}

// Active reports whether the membership window is still open at the given
// date.
func (m Membership) Active(at time.Time) bool {
	return m.EndDate == nil || !m.EndDate.Before(at)
}
