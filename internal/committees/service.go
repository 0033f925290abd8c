package committees

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/grace-gov/grace-api/internal/authz"
	"github.com/grace-gov/grace-api/internal/platform/httpx"
	"github.com/grace-gov/grace-api/internal/shared"
)

// Service applies authorization filters to committee reads and guards
// membership writes.
type Service struct {
	repo      Repository
	evaluator *authz.Evaluator
	audit     *shared.AuditLogger
}

// NewService constructs a Service.
func NewService(repo Repository, evaluator *authz.Evaluator, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, evaluator: evaluator, audit: audit}
}

// ListVisible returns the committees the user may see. super_admin sees
// everything; admin sees their organization; everyone else sees exactly
// their committee id set, which may be empty.
func (s *Service) ListVisible(ctx context.Context, uc *authz.UserContext) ([]Committee, error) {
	filter := s.evaluator.ResolveCommitteeFilter(uc)
	if !filter.Unrestricted {
		return s.repo.ListByIDs(ctx, filter.CommitteeIDs)
	}
	orgFilter := s.evaluator.ResolveOrganizationFilter(uc)
	if orgFilter.Unrestricted {
		return s.repo.ListAll(ctx)
	}
	if !orgFilter.OrganizationID.Valid {
		// Admin without an organization: nothing to show.
		return nil, nil
	}
	return s.repo.ListByOrganization(ctx, orgFilter.OrganizationID.UUID)
}

// Get fetches one committee after a committee access check.
func (s *Service) Get(ctx context.Context, id uuid.UUID, uc *authz.UserContext) (*Committee, error) {
	ok, err := s.evaluator.CheckCommitteeAccess(ctx, id, uc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: committee %s", httpx.ErrForbidden, id)
	}
	return s.repo.Get(ctx, id)
}

// AddMember opens a membership window. Callers must already hold an admin
// role; the committee itself must still be inside the caller's reach.
func (s *Service) AddMember(ctx context.Context, uc *authz.UserContext, committeeID, userID uuid.UUID, endDate *time.Time) error {
	ok, err := s.evaluator.CheckCommitteeAccess(ctx, committeeID, uc)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: committee %s", httpx.ErrForbidden, committeeID)
	}
	m := Membership{
		UserID:      userID,
		CommitteeID: committeeID,
		StartDate:   time.Now().UTC(),
		EndDate:     endDate,
	}
	if err := s.repo.AddMember(ctx, m); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  uc.ID,
			Action:   "MEMBER_ADD",
			Entity:   "committee_members",
			EntityID: committeeID.String(),
			Meta:     map[string]any{"user_id": userID.String()},
		})
	}
	return nil
}

// RemoveMember closes the open membership window as of today.
func (s *Service) RemoveMember(ctx context.Context, uc *authz.UserContext, committeeID, userID uuid.UUID) error {
	ok, err := s.evaluator.CheckCommitteeAccess(ctx, committeeID, uc)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: committee %s", httpx.ErrForbidden, committeeID)
	}
	if err := s.repo.EndMembership(ctx, committeeID, userID, time.Now().UTC()); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  uc.ID,
			Action:   "MEMBER_REMOVE",
			Entity:   "committee_members",
			EntityID: committeeID.String(),
			Meta:     map[string]any{"user_id": userID.String()},
		})
	}
	return nil
}
