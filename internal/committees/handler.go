package committees

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/grace-gov/grace-api/internal/authz"
	"github.com/grace-gov/grace-api/internal/platform/httpx"
)

// Handler manages committee endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authzMW authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: authzMW, validator: validator.New()}
}

// MountRoutes registers committee routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireCommitteeAccess())
		r.Get("/{committeeId}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAdmin())
		r.Post("/{committeeId}/members", h.addMember)
		r.Delete("/{committeeId}/members/{userId}", h.removeMember)
	})
}

type committeeResponse struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
}

func toResponse(c Committee) committeeResponse {
	return committeeResponse{
		ID:             c.ID.String(),
		OrganizationID: c.OrganizationID.String(),
		Name:           c.Name,
		Description:    c.Description,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	uc := authz.UserFromContext(r.Context())
	committees, err := h.service.ListVisible(r.Context(), uc)
	if err != nil {
		h.logger.Error("list committees", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]committeeResponse, 0, len(committees))
	for _, c := range committees {
		out = append(out, toResponse(c))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"committees": out})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "committeeId"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed committee id")
		return
	}
	uc := authz.UserFromContext(r.Context())
	committee, err := h.service.Get(r.Context(), id, uc)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*committee))
}

type addMemberRequest struct {
	UserID  string `json:"userId" validate:"required,uuid"`
	EndDate string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	committeeID, err := uuid.Parse(chi.URLParam(r, "committeeId"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed committee id")
		return
	}
	var req addMemberRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "userId is required")
		return
	}
	userID, _ := uuid.Parse(req.UserID)
	var endDate *time.Time
	if req.EndDate != "" {
		parsed, _ := time.Parse("2006-01-02", req.EndDate)
		endDate = &parsed
	}

	uc := authz.UserFromContext(r.Context())
	if err := h.service.AddMember(r.Context(), uc, committeeID, userID, endDate); err != nil {
		h.logger.Error("add member", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	committeeID, err := uuid.Parse(chi.URLParam(r, "committeeId"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed committee id")
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed user id")
		return
	}
	uc := authz.UserFromContext(r.Context())
	if err := h.service.RemoveMember(r.Context(), uc, committeeID, userID); err != nil {
		h.logger.Error("remove member", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
