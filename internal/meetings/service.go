package meetings

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/grace-gov/grace-api/internal/authz"
	"github.com/grace-gov/grace-api/internal/platform/httpx"
)

// Service applies authorization filters to meeting reads.
type Service struct {
	repo      Repository
	evaluator *authz.Evaluator
}

// NewService constructs a Service.
func NewService(repo Repository, evaluator *authz.Evaluator) *Service {
	return &Service{repo: repo, evaluator: evaluator}
}

// ListVisible returns meetings the user may see, optionally narrowed to one
// committee. A committee hint outside the user's reach is denied rather
// than silently emptied so the client can distinguish "no meetings" from
// "no access".
func (s *Service) ListVisible(ctx context.Context, uc *authz.UserContext, committeeHint uuid.NullUUID) ([]Meeting, error) {
	if committeeHint.Valid {
		ok, err := s.evaluator.CheckCommitteeAccess(ctx, committeeHint.UUID, uc)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: committee %s", httpx.ErrForbidden, committeeHint.UUID)
		}
		return s.repo.ListByCommittees(ctx, []uuid.UUID{committeeHint.UUID})
	}

	filter := s.evaluator.ResolveCommitteeFilter(uc)
	if !filter.Unrestricted {
		return s.repo.ListByCommittees(ctx, filter.CommitteeIDs)
	}
	orgFilter := s.evaluator.ResolveOrganizationFilter(uc)
	if orgFilter.Unrestricted {
		return s.repo.ListAll(ctx)
	}
	if !orgFilter.OrganizationID.Valid {
		return nil, nil
	}
	return s.repo.ListByOrganization(ctx, orgFilter.OrganizationID.UUID)
}
