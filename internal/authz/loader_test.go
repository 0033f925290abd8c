package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/grace-gov/grace-api/internal/authz"
	"github.com/grace-gov/grace-api/internal/shared"
	_ "github.com/grace-gov/grace-api/testing"
)

type stubRepo struct {
	orgID       uuid.NullUUID
	orgErr      error
	assignments []authz.RoleAssignment
	rolesErr    error
	memberships []uuid.UUID
	membersErr  error

	committeeOrgs map[uuid.UUID]uuid.UUID
	committeeErr  error
	roleRows      map[uuid.UUID]bool
	roleRowErr    error
}

func (s *stubRepo) OrganizationID(ctx context.Context, userID uuid.UUID) (uuid.NullUUID, error) {
	return s.orgID, s.orgErr
}

func (s *stubRepo) RoleAssignments(ctx context.Context, userID uuid.UUID) ([]authz.RoleAssignment, error) {
	return s.assignments, s.rolesErr
}

func (s *stubRepo) ActiveMembershipCommittees(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.memberships, s.membersErr
}

func (s *stubRepo) CommitteeOrganization(ctx context.Context, committeeID uuid.UUID) (uuid.UUID, error) {
	if s.committeeErr != nil {
		return uuid.Nil, s.committeeErr
	}
	org, ok := s.committeeOrgs[committeeID]
	if !ok {
		return uuid.Nil, shared.ErrNotFound
	}
	return org, nil
}

func (s *stubRepo) HasCommitteeRole(ctx context.Context, userID, committeeID uuid.UUID) (bool, error) {
	if s.roleRowErr != nil {
		return false, s.roleRowErr
	}
	return s.roleRows[committeeID], nil
}

func scoped(role authz.Role, committeeID uuid.UUID) authz.RoleAssignment {
	return authz.RoleAssignment{Role: role, CommitteeID: uuid.NullUUID{UUID: committeeID, Valid: true}}
}

func global(role authz.Role) authz.RoleAssignment {
	return authz.RoleAssignment{Role: role}
}

func TestLoadUnionsCommitteeSources(t *testing.T) {
	userID := uuid.New()
	c1, c2, c3 := uuid.New(), uuid.New(), uuid.New()
	repo := &stubRepo{
		assignments: []authz.RoleAssignment{
			scoped(authz.RoleChair, c1),
			scoped(authz.RoleMember, c2),
		},
		memberships: []uuid.UUID{c2, c3},
	}
	loader := authz.NewLoader(repo)

	uc, err := loader.Load(context.Background(), userID, "chair@council.test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(uc.CommitteeIDs) != 3 {
		t.Fatalf("expected 3 distinct committees, got %d: %v", len(uc.CommitteeIDs), uc.CommitteeIDs)
	}
	for _, want := range []uuid.UUID{c1, c2, c3} {
		if !uc.HasCommittee(want) {
			t.Fatalf("committee %s missing from context", want)
		}
	}
}

func TestLoadCommitteeOrderDoesNotMatter(t *testing.T) {
	userID := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	load := func(assignments []authz.RoleAssignment, memberships []uuid.UUID) []uuid.UUID {
		repo := &stubRepo{assignments: assignments, memberships: memberships}
		uc, err := authz.NewLoader(repo).Load(context.Background(), userID, "u@test")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		return uc.CommitteeIDs
	}

	a := load(
		[]authz.RoleAssignment{scoped(authz.RoleClerk, ids[0]), scoped(authz.RoleClerk, ids[1])},
		[]uuid.UUID{ids[2]},
	)
	b := load(
		[]authz.RoleAssignment{scoped(authz.RoleClerk, ids[1]), scoped(authz.RoleClerk, ids[0])},
		[]uuid.UUID{ids[2], ids[0]},
	)
	if len(a) != len(b) {
		t.Fatalf("committee sets differ in size: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("committee sets differ at %d: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestLoadDropsUnknownRoles(t *testing.T) {
	repo := &stubRepo{
		assignments: []authz.RoleAssignment{
			global(authz.RoleMember),
			global(authz.Role("intern")),
			global(authz.RoleMember),
		},
	}
	uc, err := authz.NewLoader(repo).Load(context.Background(), uuid.New(), "u@test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(uc.Roles) != 1 || uc.Roles[0] != authz.RoleMember {
		t.Fatalf("expected the single known role, got %v", uc.Roles)
	}
}

func TestLoadFailsClosedOnAnyReadError(t *testing.T) {
	cases := map[string]*stubRepo{
		"organization": {orgErr: errors.New("conn refused")},
		"roles":        {rolesErr: errors.New("conn refused")},
		"memberships":  {membersErr: errors.New("conn refused")},
	}
	for name, repo := range cases {
		uc, err := authz.NewLoader(repo).Load(context.Background(), uuid.New(), "u@test")
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !errors.Is(err, shared.ErrContextLoad) {
			t.Fatalf("%s: expected context load sentinel, got %v", name, err)
		}
		if uc != nil {
			t.Fatalf("%s: partial context returned", name)
		}
	}
}

func TestLoadRebuildsFreshPerRequest(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{assignments: []authz.RoleAssignment{global(authz.RoleChair)}}
	loader := authz.NewLoader(repo)

	first, err := loader.Load(context.Background(), userID, "chair@council.test")
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if !first.HasRole(authz.RoleChair) {
		t.Fatalf("expected chair role on first load")
	}

	// Revoke the only role; the next request must observe it without any
	// explicit invalidation.
	repo.assignments = nil
	second, err := loader.Load(context.Background(), userID, "chair@council.test")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if len(second.Roles) != 0 {
		t.Fatalf("revoked role still present: %v", second.Roles)
	}
}

func TestLoadEmptyAssignmentsYieldEmptyContext(t *testing.T) {
	uc, err := authz.NewLoader(&stubRepo{}).Load(context.Background(), uuid.New(), "new@council.test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(uc.Roles) != 0 {
		t.Fatalf("expected no roles, got %v", uc.Roles)
	}
	if len(uc.CommitteeIDs) != 0 {
		t.Fatalf("expected no committees, got %v", uc.CommitteeIDs)
	}
	if uc.OrganizationID.Valid {
		t.Fatalf("expected no organization")
	}
}
