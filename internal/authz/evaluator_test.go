package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/grace-gov/grace-api/internal/authz"
	"github.com/grace-gov/grace-api/internal/platform/httpx"
)

func userWith(roles ...authz.Role) *authz.UserContext {
	return &authz.UserContext{ID: uuid.New(), Email: "u@test", Roles: roles}
}

func orgUser(orgID uuid.UUID, roles ...authz.Role) *authz.UserContext {
	uc := userWith(roles...)
	uc.OrganizationID = uuid.NullUUID{UUID: orgID, Valid: true}
	return uc
}

func TestRequireRoleDenialCarriesBothSides(t *testing.T) {
	eval := authz.NewEvaluator(&stubRepo{})
	uc := userWith(authz.RoleMember)

	err := eval.RequireRole(uc, authz.RoleAdmin, authz.RoleSuperAdmin)
	if err == nil {
		t.Fatalf("expected denial")
	}
	if !errors.Is(err, httpx.ErrForbidden) {
		t.Fatalf("denial must map to forbidden, got %v", err)
	}
	var denied *authz.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected DeniedError, got %T", err)
	}
	if len(denied.Required) != 2 || denied.Required[0] != authz.RoleAdmin {
		t.Fatalf("required roles wrong: %v", denied.Required)
	}
	if len(denied.Current) != 1 || denied.Current[0] != authz.RoleMember {
		t.Fatalf("current roles wrong: %v", denied.Current)
	}
}

func TestRequireRoleAnyIntersectionPasses(t *testing.T) {
	eval := authz.NewEvaluator(&stubRepo{})
	uc := userWith(authz.RoleClerk, authz.RoleLegal)
	if err := eval.RequireRole(uc, authz.RoleLegal); err != nil {
		t.Fatalf("expected pass, got %v", err)
	}
}

func TestRequireAdminAcceptsBothAdminRoles(t *testing.T) {
	eval := authz.NewEvaluator(&stubRepo{})
	for _, role := range []authz.Role{authz.RoleAdmin, authz.RoleSuperAdmin} {
		if err := eval.RequireAdmin(userWith(role)); err != nil {
			t.Fatalf("%s: expected pass, got %v", role, err)
		}
	}
	if err := eval.RequireAdmin(userWith(authz.RoleChair)); err == nil {
		t.Fatalf("chair must not pass the admin gate")
	}
}

func TestRequireOrganizationAccess(t *testing.T) {
	eval := authz.NewEvaluator(&stubRepo{})
	home := uuid.New()
	other := uuid.New()
	want := func(id uuid.UUID) uuid.NullUUID { return uuid.NullUUID{UUID: id, Valid: true} }

	// super_admin passes for any organization.
	if err := eval.RequireOrganizationAccess(userWith(authz.RoleSuperAdmin), want(other)); err != nil {
		t.Fatalf("super_admin: %v", err)
	}
	// admin passes for their own organization and for no hint at all.
	admin := orgUser(home, authz.RoleAdmin)
	if err := eval.RequireOrganizationAccess(admin, want(home)); err != nil {
		t.Fatalf("admin own org: %v", err)
	}
	if err := eval.RequireOrganizationAccess(admin, uuid.NullUUID{}); err != nil {
		t.Fatalf("admin no hint: %v", err)
	}
	// admin is denied a foreign organization.
	if err := eval.RequireOrganizationAccess(admin, want(other)); err == nil {
		t.Fatalf("admin foreign org: expected denial")
	}
	// an admin with no organization of their own is denied any explicit hint.
	if err := eval.RequireOrganizationAccess(userWith(authz.RoleAdmin), want(home)); err == nil {
		t.Fatalf("orgless admin: expected denial")
	}
	// non-admin roles are not organization-gated here.
	if err := eval.RequireOrganizationAccess(userWith(authz.RoleMember), want(other)); err != nil {
		t.Fatalf("member: %v", err)
	}
}

func TestResolveOrganizationFilter(t *testing.T) {
	eval := authz.NewEvaluator(&stubRepo{})
	home := uuid.New()

	if f := eval.ResolveOrganizationFilter(userWith(authz.RoleSuperAdmin)); !f.Unrestricted {
		t.Fatalf("super_admin must be unrestricted")
	}
	f := eval.ResolveOrganizationFilter(orgUser(home, authz.RoleAdmin))
	if f.Unrestricted {
		t.Fatalf("admin must be restricted")
	}
	if !f.OrganizationID.Valid || f.OrganizationID.UUID != home {
		t.Fatalf("admin filter must carry own organization, got %v", f.OrganizationID)
	}
	// no organization on file narrows to nothing rather than widening.
	f = eval.ResolveOrganizationFilter(userWith(authz.RoleMember))
	if f.Unrestricted || f.OrganizationID.Valid {
		t.Fatalf("orgless user must get a restricted empty filter, got %+v", f)
	}
}

func TestResolveCommitteeFilter(t *testing.T) {
	eval := authz.NewEvaluator(&stubRepo{})
	c1 := uuid.New()

	for _, role := range []authz.Role{authz.RoleSuperAdmin, authz.RoleAdmin} {
		if f := eval.ResolveCommitteeFilter(userWith(role)); !f.Unrestricted {
			t.Fatalf("%s must be unrestricted", role)
		}
	}

	uc := userWith(authz.RoleMember)
	uc.CommitteeIDs = []uuid.UUID{c1}
	f := eval.ResolveCommitteeFilter(uc)
	if f.Unrestricted || len(f.CommitteeIDs) != 1 || f.CommitteeIDs[0] != c1 {
		t.Fatalf("member filter wrong: %+v", f)
	}

	// an empty committee set stays empty, it does not widen.
	f = eval.ResolveCommitteeFilter(userWith(authz.RoleMember))
	if f.Unrestricted || len(f.CommitteeIDs) != 0 {
		t.Fatalf("empty set must stay empty: %+v", f)
	}
}

func TestCheckCommitteeAccessSuperAdminSkipsStorage(t *testing.T) {
	// The repo errors on every lookup; super_admin must never reach it.
	repo := &stubRepo{committeeErr: errors.New("down"), roleRowErr: errors.New("down")}
	eval := authz.NewEvaluator(repo)

	ok, err := eval.CheckCommitteeAccess(context.Background(), uuid.New(), userWith(authz.RoleSuperAdmin))
	if err != nil {
		t.Fatalf("super_admin: %v", err)
	}
	if !ok {
		t.Fatalf("super_admin must have access to any committee id")
	}
}

func TestCheckCommitteeAccessAdminComparesOrganizations(t *testing.T) {
	home := uuid.New()
	inOrg := uuid.New()
	elsewhere := uuid.New()
	repo := &stubRepo{committeeOrgs: map[uuid.UUID]uuid.UUID{
		inOrg:     home,
		elsewhere: uuid.New(),
	}}
	eval := authz.NewEvaluator(repo)
	admin := orgUser(home, authz.RoleAdmin)

	ok, err := eval.CheckCommitteeAccess(context.Background(), inOrg, admin)
	if err != nil || !ok {
		t.Fatalf("admin own-org committee: ok=%v err=%v", ok, err)
	}
	ok, err = eval.CheckCommitteeAccess(context.Background(), elsewhere, admin)
	if err != nil || ok {
		t.Fatalf("admin foreign committee: ok=%v err=%v", ok, err)
	}
	// a nonexistent committee is a denial, not an internal error.
	ok, err = eval.CheckCommitteeAccess(context.Background(), uuid.New(), admin)
	if err != nil || ok {
		t.Fatalf("admin nonexistent committee: ok=%v err=%v", ok, err)
	}
}

func TestCheckCommitteeAccessMemberFallsBackToRoleRow(t *testing.T) {
	visible := uuid.New()
	lagging := uuid.New()
	hidden := uuid.New()
	repo := &stubRepo{roleRows: map[uuid.UUID]bool{lagging: true}}
	eval := authz.NewEvaluator(repo)

	uc := userWith(authz.RoleMember)
	uc.CommitteeIDs = []uuid.UUID{visible}

	ok, err := eval.CheckCommitteeAccess(context.Background(), visible, uc)
	if err != nil || !ok {
		t.Fatalf("visible committee: ok=%v err=%v", ok, err)
	}
	ok, err = eval.CheckCommitteeAccess(context.Background(), lagging, uc)
	if err != nil || !ok {
		t.Fatalf("role-row fallback: ok=%v err=%v", ok, err)
	}
	ok, err = eval.CheckCommitteeAccess(context.Background(), hidden, uc)
	if err != nil || ok {
		t.Fatalf("hidden committee: ok=%v err=%v", ok, err)
	}
}

func TestCheckCommitteeAccessSurfacesLookupFaults(t *testing.T) {
	repo := &stubRepo{roleRowErr: errors.New("timeout")}
	eval := authz.NewEvaluator(repo)

	_, err := eval.CheckCommitteeAccess(context.Background(), uuid.New(), userWith(authz.RoleMember))
	if err == nil {
		t.Fatalf("expected a surfaced lookup error")
	}
}
