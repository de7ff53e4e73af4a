package issue

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/campus-fixit/internal"
	"github.com/frahmantamala/campus-fixit/internal/auth"
	"github.com/frahmantamala/campus-fixit/internal/transport"
	"github.com/frahmantamala/campus-fixit/internal/upload"
	"github.com/frahmantamala/campus-fixit/pkg/logger"
)

type ServiceAPI interface {
	CreateIssue(ctx context.Context, dto CreateIssueDTO, creatorID string) (*IssueV1, error)
	ListForUser(ctx context.Context, userID string, filter ListFilter) ([]IssueV1, error)
	ListAll(ctx context.Context, filter ListFilter) ([]IssueV1, error)
	GetByID(ctx context.Context, id string) (*Issue, error)
	Expand(ctx context.Context, issue *Issue) (*IssueV1, error)
	UpdateStatus(ctx context.Context, id string, dto UpdateStatusDTO, adminID string) (*IssueV1, error)
	AddRemark(ctx context.Context, id string, dto AddRemarkDTO, authorID string) (*IssueV1, error)
	Stats(ctx context.Context) (*StatsV1, error)
}

type Handler struct {
	*transport.BaseHandler
	Service       ServiceAPI
	Images        upload.ImageStore
	Policy        *auth.Policy
	MaxUploadSize int64
}

func NewHandler(service ServiceAPI, images upload.ImageStore, policy *auth.Policy, maxUploadSize int64) *Handler {
	if policy == nil {
		policy = auth.DefaultPolicy()
	}
	return &Handler{
		BaseHandler:   transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:       service,
		Images:        images,
		Policy:        policy,
		MaxUploadSize: maxUploadSize,
	}
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (internal.Identity, bool) {
	id, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrNotAuthenticated)
		return internal.Identity{}, false
	}
	return id, true
}

// CreateIssue accepts multipart/form-data with an optional "image" file, or
// a JSON body without one.
func (h *Handler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	var dto CreateIssueDTO
	var imageURL string

	if upload.IsMultipart(r) {
		img, err := upload.ParseForm(w, r, "image", h.MaxUploadSize)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
		dto = CreateIssueDTO{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Category:    r.FormValue("category"),
		}
		if img != nil {
			defer img.Close()
			if h.Images == nil {
				h.HandleServiceError(w, r, internal.NewInternalError("image storage is not configured", nil))
				return
			}
			imageURL, err = h.Images.Save(r.Context(), img)
			if err != nil {
				h.HandleServiceError(w, r, err)
				return
			}
			dto.ImageURL = &imageURL
		}
	} else if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	issue, err := h.Service.CreateIssue(r.Context(), dto, id.UserID)
	if err != nil {
		if imageURL != "" {
			if derr := h.Images.Delete(context.WithoutCancel(r.Context()), imageURL); derr != nil {
				h.Logger.Warn("CreateIssue: failed to remove orphaned image", "url", imageURL, "error", derr)
			}
		}
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, issue, "Issue created successfully")
}

func filterFromQuery(r *http.Request) ListFilter {
	q := r.URL.Query()
	return ListFilter{Category: q.Get("category"), Status: q.Get("status")}
}

func (h *Handler) GetMyIssues(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	issues, err := h.Service.ListForUser(r.Context(), id.UserID, filterFromQuery(r))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, issues, "Issues retrieved successfully")
}

// GetAllIssues is mounted behind the admin gate.
func (h *Handler) GetAllIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := h.Service.ListAll(r.Context(), filterFromQuery(r))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, issues, "Issues retrieved successfully")
}

func (h *Handler) GetIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	issue, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Policy.Authorize(id, auth.ActionReadIssue, &auth.Resource{OwnerID: issue.CreatedBy}); err != nil {
		h.Logger.Warn("GetIssue: access denied", "issue_id", issue.ID, "user_id", id.UserID)
		h.HandleServiceError(w, r, err)
		return
	}

	out, err := h.Service.Expand(r.Context(), issue)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, out, "")
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	var dto UpdateStatusDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	issue, err := h.Service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), dto, id.UserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, issue, "Issue status updated successfully")
}

func (h *Handler) AddRemark(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	var dto AddRemarkDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	issue, err := h.Service.AddRemark(r.Context(), chi.URLParam(r, "id"), dto, id.UserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, issue, "Remark added successfully")
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, stats, "")
}
