package meetings

import (
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/grace-gov/grace-api/internal/authz"
	"github.com/grace-gov/grace-api/internal/platform/httpx"
	"github.com/grace-gov/grace-api/internal/shared"
)

// Handler manages meeting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers meeting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
}

type meetingResponse struct {
	ID          string `json:"id"`
	CommitteeID string `json:"committeeId"`
	Title       string `json:"title"`
	ScheduledAt string `json:"scheduledAt"`
	Location    string `json:"location,omitempty"`
	Status      string `json:"status"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	uc := authz.UserFromContext(r.Context())
	hint := authz.ScopeHint(r, authz.ScopeCommittee)

	meetings, err := h.service.ListVisible(r.Context(), uc, hint)
	if err != nil {
		h.logger.Error("list meetings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pagination := shared.NewPagination(page, perPage, len(meetings))
	meetings = pageSlice(meetings, pagination)

	out := make([]meetingResponse, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, meetingResponse{
			ID:          m.ID.String(),
			CommitteeID: m.CommitteeID.String(),
			Title:       m.Title,
			ScheduledAt: m.ScheduledAt.Format(time.RFC3339),
			Location:    m.Location,
			Status:      m.Status,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"meetings": out,
		"pagination": map[string]int{
			"page":       pagination.Page,
			"perPage":    pagination.PerPage,
			"total":      pagination.Total,
			"totalPages": pagination.TotalPages,
		},
	})
}

// pageSlice windows the already-filtered result set. Visibility filtering
// happens before pagination so page counts reflect what the caller may see.
func pageSlice(meetings []Meeting, p shared.Pagination) []Meeting {
	start := (p.Page - 1) * p.PerPage
	if start >= len(meetings) {
		return nil
	}
	end := start + p.PerPage
	if end > len(meetings) {
		end = len(meetings)
	}
	return meetings[start:end]
}
