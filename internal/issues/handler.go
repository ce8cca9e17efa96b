package issues

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yashng7/zero-grid/internal/platform/httpx"
	"github.com/yashng7/zero-grid/internal/ratelimit"
	"github.com/yashng7/zero-grid/internal/shared"
)

// Handler serves issue endpoints. Routes expect an authenticated identity in
// the request context.
type Handler struct {
	logger  *slog.Logger
	service *Service
	limiter *ratelimit.Limiter
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, limiter *ratelimit.Limiter) *Handler {
	return &Handler{logger: logger, service: service, limiter: limiter}
}

// MountRoutes registers issue routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listIssues)
	r.Post("/", h.createIssue)
	r.Get("/{id}", h.getIssue)
	r.Put("/{id}", h.updateIssue)
	r.Delete("/{id}", h.deleteIssue)
}

// guard resolves the caller and applies the per-user limit for op.
func (h *Handler) guard(w http.ResponseWriter, r *http.Request, op string) (shared.Identity, bool) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, h.logger, shared.Unauthorized("Authentication required"))
		return id, false
	}
	if !h.limiter.Guard(w, r, ratelimit.Key(op, id.UserID), ratelimit.Default, "") {
		return id, false
	}
	return id, true
}

func (h *Handler) listIssues(w http.ResponseWriter, r *http.Request) {
	id, ok := h.guard(w, r, "issues")
	if !ok {
		return
	}

	var typ *Type
	if q := r.URL.Query().Get("type"); q != "" {
		t := Type(q)
		typ = &t
	}
	list, err := h.service.GetIssues(r.Context(), id.UserID, typ)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, list)
}

func (h *Handler) createIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.guard(w, r, "create-issue")
	if !ok {
		return
	}

	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, h.logger, shared.DecodeError(err, issueMessages))
		return
	}
	if err := ValidateCreate(in); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	issue, err := h.service.CreateIssue(r.Context(), id.UserID, in)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusCreated, issue)
}

func (h *Handler) getIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.guard(w, r, "issue")
	if !ok {
		return
	}

	issue, err := h.service.GetIssueByID(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, issue)
}

func (h *Handler) updateIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.guard(w, r, "update-issue")
	if !ok {
		return
	}

	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, h.logger, shared.DecodeError(err, issueMessages))
		return
	}
	if err := ValidateUpdate(in); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	issue, err := h.service.UpdateIssue(r.Context(), id.UserID, chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, issue)
}

func (h *Handler) deleteIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.guard(w, r, "delete-issue")
	if !ok {
		return
	}

	if err := h.service.DeleteIssue(r.Context(), id.UserID, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Issue deleted successfully")
}
