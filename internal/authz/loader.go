package authz

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/grace-gov/grace-api/internal/shared"
)

// Loader assembles the UserContext for an already-identified principal.
type Loader struct {
	repo Repository
}

// NewLoader constructs a Loader.
func NewLoader(repo Repository) *Loader {
	return &Loader{repo: repo}
}

// Load fetches the principal's organization, role assignments and active
// committee memberships and combines them into a UserContext. The three
// reads have no ordering dependency and run concurrently; failure of any one
// fails the whole load. Partial contexts are never returned.
func (l *Loader) Load(ctx context.Context, userID uuid.UUID, email string) (*UserContext, error) {
	var (
		orgID         uuid.NullUUID
		assignments   []RoleAssignment
		membershipIDs []uuid.UUID
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orgID, err = l.repo.OrganizationID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		assignments, err = l.repo.RoleAssignments(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		membershipIDs, err = l.repo.ActiveMembershipCommittees(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrContextLoad, err)
	}

	roles := make([]Role, 0, len(assignments))
	roleCommittees := make([]uuid.UUID, 0, len(assignments))
	seenRoles := make(map[Role]struct{}, len(assignments))
	for _, a := range assignments {
		if !a.Role.Valid() {
			continue
		}
		if _, ok := seenRoles[a.Role]; !ok {
			seenRoles[a.Role] = struct{}{}
			roles = append(roles, a.Role)
		}
		if a.CommitteeID.Valid {
			roleCommittees = append(roleCommittees, a.CommitteeID.UUID)
		}
	}

	return &UserContext{
		ID:             userID,
		Email:          email,
		OrganizationID: orgID,
		Roles:          roles,
		CommitteeIDs:   dedupeCommittees(roleCommittees, membershipIDs),
	}, nil
}
