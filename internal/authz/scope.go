package authz

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Scope hints arrive in path parameters, query parameters or body fields,
// checked in that precedence order.
const (
	ScopeOrganization = "organizationId"
	ScopeCommittee    = "committeeId"
)

// ScopeHint extracts a uuid scope hint named field from the request. The
// body is only consulted for JSON payloads and is restored afterwards so
// handlers can still decode it.
func ScopeHint(r *http.Request, field string) uuid.NullUUID {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if raw := rctx.URLParam(field); raw != "" {
			return parseHint(raw)
		}
	}
	if raw := r.URL.Query().Get(field); raw != "" {
		return parseHint(raw)
	}
	return bodyHint(r, field)
}

func parseHint(raw string) uuid.NullUUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: id, Valid: true}
}

func bodyHint(r *http.Request, field string) uuid.NullUUID {
	if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
		return uuid.NullUUID{}
	}
	raw, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	// Restore the body regardless of the outcome.
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return uuid.NullUUID{}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return uuid.NullUUID{}
	}
	var value string
	if err := json.Unmarshal(fields[field], &value); err != nil {
		return uuid.NullUUID{}
	}
	return parseHint(value)
}
