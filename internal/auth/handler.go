package auth

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/grace-gov/grace-api/internal/authn"
	"github.com/grace-gov/grace-api/internal/authz"
	"github.com/grace-gov/grace-api/internal/platform/httpx"
	"github.com/grace-gov/grace-api/internal/shared"
)

// Handler exposes the local login endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers auth routes. Login is the only anonymous endpoint;
// the rest sit behind the authentication middleware installed by the
// router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
}

// MountProtectedRoutes registers routes that require an authenticated
// caller.
func (h *Handler) MountProtectedRoutes(r chi.Router) {
	r.Post("/logout", h.logout)
	r.Get("/me", h.me)
}

// LoginForTest exposes the login handler for tests.
func (h *Handler) LoginForTest(w http.ResponseWriter, r *http.Request) {
	h.login(w, r)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email and password are required")
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", shared.UserSafeMessage(err))
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	var resp loginResponse
	resp.Token = token
	resp.User.ID = user.ID.String()
	resp.User.Email = user.Email
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token, ok := authn.BearerToken(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	if err := h.service.Logout(r.Context(), token); err != nil {
		h.logger.Error("logout", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type meResponse struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	OrganizationID *string  `json:"organizationId"`
	Roles          []string `json:"roles"`
	CommitteeIDs   []string `json:"committeeIds"`
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	uc := authz.UserFromContext(r.Context())
	if uc == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	resp := meResponse{
		ID:           uc.ID.String(),
		Email:        uc.Email,
		Roles:        make([]string, 0, len(uc.Roles)),
		CommitteeIDs: make([]string, 0, len(uc.CommitteeIDs)),
	}
	if uc.OrganizationID.Valid {
		org := uc.OrganizationID.UUID.String()
		resp.OrganizationID = &org
	}
	for _, role := range uc.Roles {
		resp.Roles = append(resp.Roles, string(role))
	}
	for _, id := range uc.CommitteeIDs {
		resp.CommitteeIDs = append(resp.CommitteeIDs, id.String())
	}
	httpx.JSON(w, http.StatusOK, resp)
}
