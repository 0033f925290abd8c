package authz_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/grace-gov/grace-api/internal/authz"
)

func TestScopeHintPrecedence(t *testing.T) {
	pathID := uuid.New()
	queryID := uuid.New()
	bodyID := uuid.New()

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(authz.ScopeCommittee, pathID.String())

	body := `{"committeeId":"` + bodyID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/x?committeeId="+queryID.String(), strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	hint := authz.ScopeHint(req, authz.ScopeCommittee)
	if !hint.Valid || hint.UUID != pathID {
		t.Fatalf("path must win, got %v", hint)
	}
}

func TestScopeHintFallsBackToQueryThenBody(t *testing.T) {
	queryID := uuid.New()
	bodyID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/x?committeeId="+queryID.String(), strings.NewReader(`{"committeeId":"`+bodyID.String()+`"}`))
	if hint := authz.ScopeHint(req, authz.ScopeCommittee); !hint.Valid || hint.UUID != queryID {
		t.Fatalf("query must win over body, got %v", hint)
	}

	req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"committeeId":"`+bodyID.String()+`"}`))
	if hint := authz.ScopeHint(req, authz.ScopeCommittee); !hint.Valid || hint.UUID != bodyID {
		t.Fatalf("body must be used last, got %v", hint)
	}
}

func TestScopeHintRestoresBody(t *testing.T) {
	bodyID := uuid.New()
	payload := `{"committeeId":"` + bodyID.String() + `","title":"Budget review"}`
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(payload))

	if hint := authz.ScopeHint(req, authz.ScopeCommittee); !hint.Valid {
		t.Fatalf("expected a body hint")
	}
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("reread body: %v", err)
	}
	if string(raw) != payload {
		t.Fatalf("body not restored: %q", raw)
	}
}

func TestScopeHintIgnoresGarbage(t *testing.T) {
	// malformed uuid in the query
	req := httptest.NewRequest(http.MethodGet, "/x?committeeId=not-a-uuid", nil)
	if hint := authz.ScopeHint(req, authz.ScopeCommittee); hint.Valid {
		t.Fatalf("malformed query hint must be ignored")
	}
	// non-JSON body
	req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("committeeId=abc"))
	if hint := authz.ScopeHint(req, authz.ScopeCommittee); hint.Valid {
		t.Fatalf("non-JSON body must be ignored")
	}
	// GET requests never consult the body
	req = httptest.NewRequest(http.MethodGet, "/x", strings.NewReader(`{"committeeId":"`+uuid.NewString()+`"}`))
	if hint := authz.ScopeHint(req, authz.ScopeCommittee); hint.Valid {
		t.Fatalf("GET body must not be consulted")
	}
}
